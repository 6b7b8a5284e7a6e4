package outbound

import (
	"time"

	"github.com/mongonsh/simple-voice-assistant/domain"
)

const (
	ChatOutcomeOK              = "ok"
	ChatOutcomeValidationError = "validation_error"
	ChatOutcomeUpstreamError   = "upstream_error"
)

type MetricsPort interface {
	ObserveChat(outcome string, duration time.Duration)
	ObserveSynthesis(ready bool)
	ObserveUsage(model string, usage domain.Usage)
}
