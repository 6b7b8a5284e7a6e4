package adapters

import (
	"net/http"
	"time"

	"github.com/mongonsh/simple-voice-assistant/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "voice_relay"

type PrometheusMetrics struct {
	registry          *prometheus.Registry
	chatRequestsTotal *prometheus.CounterVec
	chatDuration      *prometheus.HistogramVec
	synthesisTotal    *prometheus.CounterVec
	tokensTotal       *prometheus.CounterVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		chatRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "chat_requests_total",
				Help:      "Total number of chat requests by outcome",
			},
			[]string{"outcome"},
		),
		chatDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "chat_duration_seconds",
				Help:      "Duration of chat request handling in seconds",
				Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"outcome"},
		),
		synthesisTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "speech_synthesis_total",
				Help:      "Total number of speech synthesis attempts by result",
			},
			[]string{"result"}, // result: ready, skipped
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "generation_tokens_total",
				Help:      "Total tokens consumed by text generation",
			},
			[]string{"model", "type"}, // type: input, output
		),
	}

	m.registry.MustRegister(
		m.chatRequestsTotal,
		m.chatDuration,
		m.synthesisTotal,
		m.tokensTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *PrometheusMetrics) ObserveChat(outcome string, duration time.Duration) {
	m.chatRequestsTotal.WithLabelValues(outcome).Inc()
	m.chatDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) ObserveSynthesis(ready bool) {
	result := "skipped"
	if ready {
		result = "ready"
	}
	m.synthesisTotal.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) ObserveUsage(model string, usage domain.Usage) {
	m.tokensTotal.WithLabelValues(model, "input").Add(float64(usage.InputTokens))
	m.tokensTotal.WithLabelValues(model, "output").Add(float64(usage.OutputTokens))
}

func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
