package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

const Model = "mock-model"

// TextGenerator replies from a fixed script, cycling when it runs out, or
// echoes the last user turn when no script is configured.
type TextGenerator struct {
	mu      sync.Mutex
	replies []string
	next    int
	err     error
	calls   []outbound.GenerateTextRequest
}

func NewTextGenerator(replies ...string) *TextGenerator {
	return &TextGenerator{replies: replies}
}

// FailWith makes every following call return err.
func (g *TextGenerator) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func (g *TextGenerator) Generate(ctx context.Context, req outbound.GenerateTextRequest) (domain.Generation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	messages := make([]domain.ConversationTurn, len(req.Messages))
	copy(messages, req.Messages)
	g.calls = append(g.calls, outbound.GenerateTextRequest{SystemPrompt: req.SystemPrompt, Messages: messages})

	if err := ctx.Err(); err != nil {
		return domain.Generation{}, domain.NewUpstreamError("mock", 0, "cancelled", err)
	}
	if g.err != nil {
		return domain.Generation{}, g.err
	}

	text := g.reply(req.Messages)
	return domain.Generation{
		Text:       text,
		Model:      Model,
		StopReason: "end_turn",
		Usage: domain.Usage{
			InputTokens:  countWords(req.SystemPrompt) + countTurnWords(req.Messages),
			OutputTokens: countWords(text),
		},
	}, nil
}

func (g *TextGenerator) reply(messages []domain.ConversationTurn) string {
	if len(g.replies) > 0 {
		text := g.replies[g.next%len(g.replies)]
		g.next++
		return text
	}
	if len(messages) == 0 {
		return "Hello!"
	}
	return "You said: " + messages[len(messages)-1].Content
}

func (g *TextGenerator) Calls() []outbound.GenerateTextRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	calls := make([]outbound.GenerateTextRequest, len(g.calls))
	copy(calls, g.calls)
	return calls
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func countTurnWords(turns []domain.ConversationTurn) int {
	total := 0
	for _, turn := range turns {
		total += countWords(turn.Content)
	}
	return total
}
