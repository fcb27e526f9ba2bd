package rag

import (
	"fmt"
	"strings"

	"docrag/internal/domain"
)

// NotFoundAnswer is returned when retrieval produced no evidence at all. No
// generation call is made in that case.
const NotFoundAnswer = "I could not find this information in the uploaded documents."

// FallbackPrefix marks an extractive answer produced because the generation
// capability was unavailable.
const FallbackPrefix = "⚠️ Generation unavailable. Relevant document excerpts:"

// SummaryQuery is the fixed broad query used to gather evidence for whole
// session summaries.
const SummaryQuery = "document summary main topics technical details evidence"

// fallbackSnippetLen caps each excerpt in the extractive fallback.
const fallbackSnippetLen = 300

const qaSystemPrompt = "You are a document-grounded assistant. " +
	"Answer ONLY using the numbered context blocks provided. " +
	"Every factual sentence must cite the index of the block it came from, like [1]. " +
	"If the context does not contain the answer, say explicitly that the information is not present in the documents. " +
	"Do not use external knowledge. Be concise and factual."

const summarySystemPrompt = "You are a document-grounded assistant producing a structured summary. " +
	"Use ONLY the numbered context blocks provided. " +
	"Structure the summary into four sections: Executive Summary, Key Themes, Deep Dive, and Evidence. " +
	"Every sentence must carry a citation marker naming the block index it is grounded in, like [3]. " +
	"If a topic is not covered by the context, do not mention it. Do not use external knowledge."

const rewriteSystemPrompt = "Given the conversation history and the latest question, " +
	"rewrite the question to be fully self-contained so it can be understood without the history. " +
	"Return only the rewritten question. Do not answer it."

// buildContext renders evidence as numbered, source-labeled blocks. At most
// maxBlocks blocks are included; the grounding instruction in the system
// prompts refers to these indexes.
func buildContext(evidence []domain.SearchResult, maxBlocks int) string {
	if maxBlocks > 0 && len(evidence) > maxBlocks {
		evidence = evidence[:maxBlocks]
	}

	var b strings.Builder
	for i, result := range evidence {
		b.WriteString(fmt.Sprintf("[%d] Source: %s, page %d\n", i+1, result.Chunk.SourceFile, result.Chunk.PageNumber))
		b.WriteString(result.Chunk.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// fallbackAnswer concatenates truncated evidence snippets behind the
// unavailable marker. It is a pure function of the evidence, so the degraded
// path is testable without any network.
func fallbackAnswer(evidence []domain.SearchResult) string {
	var b strings.Builder
	b.WriteString(FallbackPrefix)
	b.WriteString("\n")
	for _, result := range evidence {
		snippet := result.Chunk.Text
		if runes := []rune(snippet); len(runes) > fallbackSnippetLen {
			snippet = string(runes[:fallbackSnippetLen]) + "..."
		}
		b.WriteString("\n- ")
		b.WriteString(snippet)
	}
	return b.String()
}
