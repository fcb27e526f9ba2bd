package ingest

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"docrag/internal/domain"
)

// PagesFromMarkdown converts markdown (or plain text) content into pages.
// Each level-1 heading starts a new page, mirroring how a PDF extractor
// produces one record per physical page; content before the first heading,
// or content with no headings at all, becomes page 1. Formatting is stripped
// so downstream chunking and lexical scoring operate on plain text.
func PagesFromMarkdown(content []byte, sourceFile string) []domain.Page {
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil
	}

	parser := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := parser.Parser().Parse(text.NewReader(content))

	var sections []string
	var current strings.Builder

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			sections = append(sections, normalizeWhitespace(current.String()))
		}
		current.Reset()
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if _, isBlock := n.(*ast.Paragraph); isBlock {
				current.WriteString(" ")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 {
				flush()
			}
			current.WriteString(extractNodeText(node, content))
			current.WriteString(". ")
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			current.WriteString(string(node.Segment.Value(content)))
			current.WriteString(" ")
		case *ast.String:
			current.WriteString(string(node.Value))
			current.WriteString(" ")
		}
		return ast.WalkContinue, nil
	})
	flush()

	pages := make([]domain.Page, 0, len(sections))
	for i, section := range sections {
		pages = append(pages, domain.Page{
			Text:       section,
			PageNumber: i + 1,
			SourceFile: sourceFile,
		})
	}
	return pages
}

// extractNodeText collects the plain text beneath a node.
func extractNodeText(n ast.Node, content []byte) string {
	var builder strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := child.(type) {
		case *ast.Text:
			builder.Write(node.Segment.Value(content))
		case *ast.String:
			builder.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(builder.String())
}

// normalizeWhitespace collapses runs of whitespace into single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
