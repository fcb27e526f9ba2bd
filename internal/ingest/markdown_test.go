package ingest

import (
	"strings"
	"testing"
)

func TestPagesFromMarkdownSplitsOnTopLevelHeadings(t *testing.T) {
	content := []byte(`# Introduction

This report covers the annual results.

# Methods

We analyzed quarterly data.

## Details

Sampling was stratified.
`)

	pages := PagesFromMarkdown(content, "report.md")
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].PageNumber != 1 || pages[1].PageNumber != 2 {
		t.Errorf("pages not numbered sequentially: %+v", pages)
	}
	for _, p := range pages {
		if p.SourceFile != "report.md" {
			t.Errorf("page lost source file: %+v", p)
		}
	}
	if !strings.Contains(pages[0].Text, "annual results") {
		t.Errorf("page 1 missing introduction text: %q", pages[0].Text)
	}
	if !strings.Contains(pages[1].Text, "Sampling was stratified") {
		t.Errorf("page 2 missing subsection text: %q", pages[1].Text)
	}
	if strings.Contains(pages[1].Text, "#") {
		t.Errorf("markdown heading markers leaked into page text: %q", pages[1].Text)
	}
}

func TestPagesFromMarkdownPlainText(t *testing.T) {
	pages := PagesFromMarkdown([]byte("Just a paragraph without any headings."), "notes.txt")
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].PageNumber != 1 {
		t.Errorf("expected page number 1, got %d", pages[0].PageNumber)
	}
	if !strings.Contains(pages[0].Text, "without any headings") {
		t.Errorf("unexpected page text: %q", pages[0].Text)
	}
}

func TestPagesFromMarkdownEmptyContent(t *testing.T) {
	if pages := PagesFromMarkdown([]byte("   \n\t"), "empty.md"); len(pages) != 0 {
		t.Fatalf("expected no pages for blank content, got %d", len(pages))
	}
}

func TestPagesFromMarkdownNormalizesWhitespace(t *testing.T) {
	pages := PagesFromMarkdown([]byte("line one\n\n\nline   two"), "spacing.md")
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if strings.Contains(pages[0].Text, "  ") {
		t.Errorf("whitespace not collapsed: %q", pages[0].Text)
	}
}
