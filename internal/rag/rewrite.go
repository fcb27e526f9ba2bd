package rag

import (
	"context"
	"fmt"
	"strings"

	"docrag/internal/contextutil"
	"docrag/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks docrag/internal/rag Generator

// Generator produces text from a system instruction plus user content. It is
// never assumed to be available; every call site must have a fallback.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// maxRewriteTurns bounds how much history takes part in a rewrite request.
const maxRewriteTurns = 6

// QueryRewriter turns follow-up questions into standalone questions using the
// session's recent history. Rewriting is an accuracy enhancement, never a
// correctness dependency: any failure falls back to the original question.
type QueryRewriter struct {
	gen Generator
}

// NewQueryRewriter creates a rewriter backed by the given generator.
func NewQueryRewriter(gen Generator) *QueryRewriter {
	return &QueryRewriter{gen: gen}
}

// Rewrite derives a self-contained question. With empty history the question
// is returned unchanged and no generation call is made.
func (r *QueryRewriter) Rewrite(ctx context.Context, history []domain.ChatMessage, question string) string {
	if len(history) == 0 {
		return question
	}

	if len(history) > maxRewriteTurns {
		history = history[len(history)-maxRewriteTurns:]
	}

	var b strings.Builder
	b.WriteString("History:\n")
	for _, msg := range history {
		b.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
	}
	b.WriteString("\nQuestion:\n")
	b.WriteString(question)

	rewritten, err := r.gen.Generate(ctx, rewriteSystemPrompt, b.String())
	if err != nil {
		logger := contextutil.LoggerFromContext(ctx)
		logger.WarnContext(ctx, "query rewriting failed, using original question", "error", err)
		return question
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question
	}
	return rewritten
}
