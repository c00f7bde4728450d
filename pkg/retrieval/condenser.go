package retrieval

import (
	"context"
	"fmt"
	"strings"

	"docuchat-be/pkg/llm"

	"go.uber.org/zap"
)

// historyWindow caps how many trailing turns feed the rewrite.
const historyWindow = 10

// Condenser rewrites a conversational follow-up into a standalone query using
// recent turn history. The rewrite itself is delegated to the LLM provider.
type Condenser struct {
	provider llm.LLMProvider
	logger   *zap.Logger
}

func NewCondenser(provider llm.LLMProvider, logger *zap.Logger) *Condenser {
	return &Condenser{
		provider: provider,
		logger:   logger,
	}
}

// Condense returns a standalone version of followUp. With empty history the
// trimmed follow-up is returned without any external call. A failed or empty
// rewrite falls back to the original follow-up; the failure is never
// propagated, so a broken rewrite collaborator cannot abort retrieval.
func (c *Condenser) Condense(ctx context.Context, history []Turn, followUp string) string {
	trimmed := strings.TrimSpace(followUp)
	if len(history) == 0 {
		return trimmed
	}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	var b strings.Builder
	b.WriteString("Rewrite the follow-up question as a single self-contained question, using the conversation for context. Reply with the rewritten question only.\n\nConversation:\n")
	for _, t := range history {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
	}
	fmt.Fprintf(&b, "\nFollow-up: %s", trimmed)

	rewritten, err := c.provider.Generate(ctx, b.String(), llm.WithTemperature(0))
	if err != nil {
		c.logger.Warn("query condensation failed, using raw follow-up", zap.Error(err))
		return trimmed
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return trimmed
	}
	return rewritten
}
