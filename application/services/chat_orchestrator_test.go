package services

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/config"
	"github.com/mongonsh/simple-voice-assistant/domain"
	"github.com/mongonsh/simple-voice-assistant/infrastructure/adapters"
	"github.com/mongonsh/simple-voice-assistant/mock"
	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inlineDispatcher struct{}

func (inlineDispatcher) Submit(task func()) error {
	task()
	return nil
}

type recordingRecorder struct {
	mu        sync.Mutex
	exchanges []domain.Exchange
	err       error
}

func (r *recordingRecorder) Record(_ context.Context, exchange domain.Exchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges = append(r.exchanges, exchange)
	return r.err
}

func (r *recordingRecorder) Exchanges() []domain.Exchange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Exchange(nil), r.exchanges...)
}

type countingMetrics struct {
	mu        sync.Mutex
	outcomes  []string
	synthesis []bool
}

func (m *countingMetrics) ObserveChat(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *countingMetrics) ObserveSynthesis(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synthesis = append(m.synthesis, ready)
}

func (m *countingMetrics) ObserveUsage(string, domain.Usage) {}

type fixture struct {
	generator   *mock.TextGenerator
	synthesizer *mock.SpeechSynthesizer
	store       outbound.AudioStorePort
	audioDir    string
	recorder    *recordingRecorder
	metrics     *countingMetrics
	chatConfig  *config.ChatConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := adapters.NewZerologWrapperWithWriter(io.Discard, "debug")
	dir := t.TempDir()
	store, err := adapters.NewFsAudioStore(dir, logger)
	require.NoError(t, err)

	return &fixture{
		generator:   mock.NewTextGenerator("Sure, happy to help."),
		synthesizer: mock.NewSpeechSynthesizer(),
		store:       store,
		audioDir:    dir,
		recorder:    &recordingRecorder{},
		metrics:     &countingMetrics{},
		chatConfig: &config.ChatConfig{
			SystemPrompt:  config.DefaultSystemPrompt,
			HistoryMode:   config.TrimLastHistory,
			SpeechEnabled: true,
		},
	}
}

func (f *fixture) orchestrator(dispatcher outbound.TaskDispatcher) *chatOrchestrator {
	logger := adapters.NewZerologWrapperWithWriter(io.Discard, "debug")
	voice := domain.VoiceConfig{VoiceID: config.DefaultElevenLabsVoiceId, ModelID: config.DefaultElevenLabsModelId}
	renderer := NewSpeechRenderer(logger, f.synthesizer, f.store, voice, f.chatConfig.SpeechEnabled)
	return NewChatOrchestrator(logger, f.generator, renderer, f.recorder, dispatcher, f.metrics,
		f.chatConfig, "http://localhost:5000/").(*chatOrchestrator)
}

func (f *fixture) storedFiles(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(f.audioDir)
	require.NoError(t, err)
	return entries
}

func TestChatOrchestrator_Handle(t *testing.T) {
	f := newFixture(t)
	orchestrator := f.orchestrator(inlineDispatcher{})

	res, err := orchestrator.Handle(context.Background(), domain.ChatRequest{
		Message: "hello",
		History: []domain.ConversationTurn{domain.NewUserTurn("hello")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Sure, happy to help.", res.Response)
	require.NotNil(t, res.AudioURL)
	assert.Regexp(t, `^http://localhost:5000/audio/[0-9a-f-]{36}\.mp3$`, *res.AudioURL)

	calls := f.generator.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, config.DefaultSystemPrompt, calls[0].SystemPrompt)
	assert.Equal(t, []domain.ConversationTurn{domain.NewUserTurn("hello")}, calls[0].Messages)

	synthCalls := f.synthesizer.Calls()
	require.Len(t, synthCalls, 1)
	assert.Equal(t, "Sure, happy to help.", synthCalls[0].Text)
	assert.Equal(t, config.DefaultElevenLabsVoiceId, synthCalls[0].Voice.VoiceID)

	assert.Len(t, f.storedFiles(t), 1)
	assert.Equal(t, []string{outbound.ChatOutcomeOK}, f.metrics.outcomes)

	exchanges := f.recorder.Exchanges()
	require.Len(t, exchanges, 1)
	assert.Equal(t, "Sure, happy to help.", exchanges[0].Reply)
	assert.NotEmpty(t, exchanges[0].AudioID)
}

func TestChatOrchestrator_HistoryTrimming(t *testing.T) {
	f := newFixture(t)
	orchestrator := f.orchestrator(inlineDispatcher{})

	history := []domain.ConversationTurn{
		{Role: domain.UserRole, Content: "a"},
		{Role: domain.AssistantRole, Content: "b"},
		{Role: domain.UserRole, Content: "c"},
	}
	original := append([]domain.ConversationTurn(nil), history...)

	_, err := orchestrator.Handle(context.Background(), domain.ChatRequest{Message: "c", History: history})
	require.NoError(t, err)

	calls := f.generator.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []domain.ConversationTurn{
		{Role: domain.UserRole, Content: "a"},
		{Role: domain.AssistantRole, Content: "b"},
		{Role: domain.UserRole, Content: "c"},
	}, calls[0].Messages)
	assert.Equal(t, original, history)
}

func TestChatOrchestrator_ExclusiveHistory(t *testing.T) {
	f := newFixture(t)
	f.chatConfig.HistoryMode = config.ExclusiveHistory
	orchestrator := f.orchestrator(inlineDispatcher{})

	_, err := orchestrator.Handle(context.Background(), domain.ChatRequest{
		Message: "c",
		History: []domain.ConversationTurn{
			{Role: domain.UserRole, Content: "a"},
			{Role: domain.AssistantRole, Content: "b"},
		},
	})
	require.NoError(t, err)

	calls := f.generator.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []domain.ConversationTurn{
		{Role: domain.UserRole, Content: "a"},
		{Role: domain.AssistantRole, Content: "b"},
		{Role: domain.UserRole, Content: "c"},
	}, calls[0].Messages)
}

func TestChatOrchestrator_EmptyHistory(t *testing.T) {
	f := newFixture(t)
	orchestrator := f.orchestrator(inlineDispatcher{})

	_, err := orchestrator.Handle(context.Background(), domain.ChatRequest{Message: "first"})
	require.NoError(t, err)

	calls := f.generator.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []domain.ConversationTurn{domain.NewUserTurn("first")}, calls[0].Messages)
}

func TestChatOrchestrator_ValidationError(t *testing.T) {
	for _, history := range [][]domain.ConversationTurn{nil, {domain.NewUserTurn("earlier")}} {
		f := newFixture(t)
		orchestrator := f.orchestrator(inlineDispatcher{})

		_, err := orchestrator.Handle(context.Background(), domain.ChatRequest{History: history})

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "No message provided", validationErr.Message)
		assert.Empty(t, f.generator.Calls())
		assert.Empty(t, f.synthesizer.Calls())
		assert.Empty(t, f.recorder.Exchanges())
		assert.Equal(t, []string{outbound.ChatOutcomeValidationError}, f.metrics.outcomes)
	}
}

func TestChatOrchestrator_WhitespaceMessageIsForwarded(t *testing.T) {
	f := newFixture(t)
	orchestrator := f.orchestrator(inlineDispatcher{})

	_, err := orchestrator.Handle(context.Background(), domain.ChatRequest{Message: " "})
	require.NoError(t, err)

	calls := f.generator.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []domain.ConversationTurn{domain.NewUserTurn(" ")}, calls[0].Messages)
}

func TestChatOrchestrator_GenerationFailure(t *testing.T) {
	f := newFixture(t)
	f.generator.FailWith(domain.NewUpstreamError("anthropic", 529, "Overloaded", nil))
	orchestrator := f.orchestrator(inlineDispatcher{})

	_, err := orchestrator.Handle(context.Background(), domain.ChatRequest{Message: "hi"})

	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, 529, upstreamErr.Status)
	assert.Len(t, f.generator.Calls(), 1)
	assert.Empty(t, f.synthesizer.Calls())
	assert.Empty(t, f.storedFiles(t))
	assert.Empty(t, f.recorder.Exchanges())
	assert.Equal(t, []string{outbound.ChatOutcomeUpstreamError}, f.metrics.outcomes)
}

func TestChatOrchestrator_GenerationFailureWrapsPlainErrors(t *testing.T) {
	f := newFixture(t)
	f.generator.FailWith(errors.New("socket closed"))
	orchestrator := f.orchestrator(inlineDispatcher{})

	_, err := orchestrator.Handle(context.Background(), domain.ChatRequest{Message: "hi"})

	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Contains(t, err.Error(), "socket closed")
}

func TestChatOrchestrator_SynthesisFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.synthesizer.FailWith(domain.NewUpstreamError("elevenlabs", 401, "quota exceeded", domain.ErrUnauthorized))
	orchestrator := f.orchestrator(inlineDispatcher{})

	res, err := orchestrator.Handle(context.Background(), domain.ChatRequest{Message: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "Sure, happy to help.", res.Response)
	assert.Nil(t, res.AudioURL)
	assert.Empty(t, f.storedFiles(t))
	assert.Equal(t, []bool{false}, f.metrics.synthesis)
	assert.Equal(t, []string{outbound.ChatOutcomeOK}, f.metrics.outcomes)

	exchanges := f.recorder.Exchanges()
	require.Len(t, exchanges, 1)
	assert.Empty(t, exchanges[0].AudioID)
}

func TestChatOrchestrator_SpeechDisabled(t *testing.T) {
	f := newFixture(t)
	f.chatConfig.SpeechEnabled = false
	orchestrator := f.orchestrator(inlineDispatcher{})

	res, err := orchestrator.Handle(context.Background(), domain.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Nil(t, res.AudioURL)
	assert.Empty(t, f.synthesizer.Calls())
}

func TestChatOrchestrator_RecorderFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.recorder.err = errors.New("table missing")
	orchestrator := f.orchestrator(inlineDispatcher{})

	res, err := orchestrator.Handle(context.Background(), domain.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.NotNil(t, res.AudioURL)
}

func TestChatOrchestrator_WorkerPool(t *testing.T) {
	pool, err := ants.NewPool(4)
	require.NoError(t, err)
	defer pool.Release()

	f := newFixture(t)
	orchestrator := f.orchestrator(pool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orchestrator.Handle(context.Background(), domain.ChatRequest{Message: "hi"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		return len(f.recorder.Exchanges()) == 8
	}, 5*time.Second, 10*time.Millisecond)
	assert.Len(t, f.storedFiles(t), 8)
}
