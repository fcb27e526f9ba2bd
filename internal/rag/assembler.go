// Package rag turns retrieved evidence into grounded answers: query
// rewriting, citation extraction, and answer assembly with an extractive
// fallback when generation is unavailable.
package rag

import (
	"context"
	"fmt"
	"time"

	"docrag/internal/contextutil"
	"docrag/internal/domain"
	"docrag/internal/memory"
	"docrag/internal/retrieval"
	"docrag/internal/vectorstore"
)

// Options tunes retrieval depth and generation limits.
type Options struct {
	// RetrieveK is how many fused candidates hybrid retrieval returns for
	// question answering.
	RetrieveK int
	// RerankK is how many candidates survive the rerank pass.
	RerankK int
	// SummarizeK is the retrieval depth for summaries, deliberately larger
	// than question answering.
	SummarizeK int
	// QAContextBlocks caps context blocks in a question-answering prompt.
	QAContextBlocks int
	// SummaryContextBlocks caps context blocks in a summary prompt.
	SummaryContextBlocks int
	// GenTimeout bounds a single generation call. On expiry the request
	// routes into the fallback path instead of failing.
	GenTimeout time.Duration
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		RetrieveK:            15,
		RerankK:              8,
		SummarizeK:           60,
		QAContextBlocks:      15,
		SummaryContextBlocks: 60,
		GenTimeout:           60 * time.Second,
	}
}

// Result is a produced answer with the citations of the evidence it used.
// Citations are always computed from the evidence, independent of whether
// generation succeeded or the fallback path was taken.
type Result struct {
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
}

// Assembler runs the full answer pipeline: rewrite, retrieve, rerank,
// generate or fall back, record history.
type Assembler struct {
	embedder   retrieval.Embedder
	vectors    vectorstore.VectorStore
	collection string
	generator  Generator
	rewriter   *QueryRewriter
	history    memory.History
	opts       Options
}

// NewAssembler wires the pipeline. Zero-valued option fields are replaced by
// defaults.
func NewAssembler(
	embedder retrieval.Embedder,
	vectors vectorstore.VectorStore,
	collection string,
	generator Generator,
	history memory.History,
	opts Options,
) *Assembler {
	defaults := DefaultOptions()
	if opts.RetrieveK <= 0 {
		opts.RetrieveK = defaults.RetrieveK
	}
	if opts.RerankK <= 0 {
		opts.RerankK = defaults.RerankK
	}
	if opts.SummarizeK <= 0 {
		opts.SummarizeK = defaults.SummarizeK
	}
	if opts.QAContextBlocks <= 0 {
		opts.QAContextBlocks = defaults.QAContextBlocks
	}
	if opts.SummaryContextBlocks <= 0 {
		opts.SummaryContextBlocks = defaults.SummaryContextBlocks
	}
	if opts.GenTimeout <= 0 {
		opts.GenTimeout = defaults.GenTimeout
	}
	return &Assembler{
		embedder:   embedder,
		vectors:    vectors,
		collection: collection,
		generator:  generator,
		rewriter:   NewQueryRewriter(generator),
		history:    history,
		opts:       opts,
	}
}

// Answer answers a question against one session's corpus. corpus is the
// session's chunk set, already filtered to the requested source files if the
// caller narrowed it; sourceFiles additionally narrows the semantic retrieval
// leg. An empty corpus returns retrieval.ErrEmptyCorpus.
func (a *Assembler) Answer(ctx context.Context, sessionID, question string, corpus []domain.Chunk, sourceFiles []string) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	past, err := a.history.Messages(ctx, sessionID)
	if err != nil {
		logger.WarnContext(ctx, "failed to load conversation history", "session_id", sessionID, "error", err)
		past = nil
	}

	standalone := a.rewriter.Rewrite(ctx, past, question)
	if standalone != question {
		logger.InfoContext(ctx, "question rewritten", "original", question, "standalone", standalone)
	}

	evidence, err := a.retrieve(ctx, sessionID, standalone, corpus, sourceFiles, a.opts.RetrieveK, a.opts.RerankK)
	if err != nil {
		return Result{}, err
	}
	if len(evidence) == 0 {
		logger.InfoContext(ctx, "no evidence found", "session_id", sessionID, "question", standalone)
		return Result{Answer: NotFoundAnswer, Citations: []domain.Citation{}}, nil
	}

	citations := BuildCitations(evidence)

	userPrompt := fmt.Sprintf("%s\n\n--- Context ---\n\n%s", standalone, buildContext(evidence, a.opts.QAContextBlocks))
	answer := a.generate(ctx, qaSystemPrompt, userPrompt, evidence)

	a.record(ctx, sessionID, question, answer)

	return Result{Answer: answer, Citations: citations}, nil
}

// Summarize produces a structured summary of a session's full corpus. It
// retrieves against a fixed broad query with a larger depth than question
// answering and does not touch conversation history.
func (a *Assembler) Summarize(ctx context.Context, sessionID string, corpus []domain.Chunk) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	evidence, err := a.retrieve(ctx, sessionID, SummaryQuery, corpus, nil, a.opts.SummarizeK, a.opts.SummarizeK)
	if err != nil {
		return Result{}, err
	}
	if len(evidence) == 0 {
		logger.InfoContext(ctx, "no evidence found for summary", "session_id", sessionID)
		return Result{Answer: NotFoundAnswer, Citations: []domain.Citation{}}, nil
	}

	citations := BuildCitations(evidence)

	userPrompt := fmt.Sprintf("Summarize the documents.\n\n--- Context ---\n\n%s", buildContext(evidence, a.opts.SummaryContextBlocks))
	answer := a.generate(ctx, summarySystemPrompt, userPrompt, evidence)

	return Result{Answer: answer, Citations: citations}, nil
}

// retrieve builds a fresh retriever scoped to one session and runs the
// hybrid search plus rerank pass.
func (a *Assembler) retrieve(ctx context.Context, sessionID, query string, corpus []domain.Chunk, sourceFiles []string, retrieveK, rerankK int) ([]domain.SearchResult, error) {
	retriever, err := retrieval.NewHybridRetriever(corpus, a.embedder, a.vectors, a.collection, sessionID, sourceFiles)
	if err != nil {
		return nil, err
	}

	candidates, err := retriever.Search(ctx, query, retrieveK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	return retrieval.Rerank(query, candidates, rerankK), nil
}

// generate calls the generator under the configured timeout. Any failure,
// quota, timeout or transport, produces the extractive fallback instead of
// an error.
func (a *Assembler) generate(ctx context.Context, systemPrompt, userPrompt string, evidence []domain.SearchResult) string {
	logger := contextutil.LoggerFromContext(ctx)

	genCtx, cancel := context.WithTimeout(ctx, a.opts.GenTimeout)
	defer cancel()

	answer, err := a.generator.Generate(genCtx, systemPrompt, userPrompt)
	if err != nil {
		logger.ErrorContext(ctx, "generation failed, producing extractive fallback", "error", err)
		return fallbackAnswer(evidence)
	}
	return answer
}

// record appends the user question and the produced answer to the session's
// history, in that order. History failures are logged, never surfaced: the
// answer already exists and must reach the caller.
func (a *Assembler) record(ctx context.Context, sessionID, question, answer string) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := a.history.Append(ctx, sessionID, domain.ChatMessage{Role: domain.RoleUser, Content: question}); err != nil {
		logger.WarnContext(ctx, "failed to record user message", "session_id", sessionID, "error", err)
		return
	}
	if err := a.history.Append(ctx, sessionID, domain.ChatMessage{Role: domain.RoleAssistant, Content: answer}); err != nil {
		logger.WarnContext(ctx, "failed to record assistant message", "session_id", sessionID, "error", err)
	}
}
