package document

import (
	"errors"
	"strings"
	"testing"

	"papersumm/internal/domain"
)

const paper = `A Study of Things

Abstract
We study things.

1. Introduction
Things matter.

2 Related Work
Others studied things.

Conclusion
Things were studied.`

func TestSplitSections(t *testing.T) {
	sections := SplitSections(paper)

	wantNames := []string{"abstract", "introduction", "related work", "conclusion"}
	if got := SectionNames(sections); strings.Join(got, ",") != strings.Join(wantNames, ",") {
		t.Fatalf("unexpected sections: %v", got)
	}

	if sections[0].Text != "We study things." {
		t.Fatalf("unexpected abstract: %q", sections[0].Text)
	}
	if sections[3].Text != "Things were studied." {
		t.Fatalf("unexpected conclusion: %q", sections[3].Text)
	}
}

func TestSplitSectionsWithoutHeadings(t *testing.T) {
	sections := SplitSections("Just a note about abstract ideas.")

	if len(sections) != 1 || sections[0].Name != domain.FullSection {
		t.Fatalf("expected a single full section, got %+v", sections)
	}
}

func TestSplitSectionsRepeatedHeadingKeepsFirstPosition(t *testing.T) {
	sections := SplitSections("Results\nfirst\nDiscussion\nmid\nRESULTS\nsecond")

	if got := SectionNames(sections); strings.Join(got, ",") != "results,discussion" {
		t.Fatalf("unexpected sections: %v", got)
	}
	if sections[0].Text != "second" {
		t.Fatalf("expected last body to win, got %q", sections[0].Text)
	}
}

func TestExtractTextPlain(t *testing.T) {
	got, err := ExtractText("paper.txt", "text/plain; charset=utf-8", []byte("  line   one \r\n\r\n\r\nline two  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "line one\n\nline two" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractTextHTML(t *testing.T) {
	html := `<html><head><title>T</title><style>p{}</style></head>
<body><h2>Abstract</h2><p>We study <b>things</b>.</p><script>alert(1)</script>
<h2>Conclusion</h2><p>Done.</p></body></html>`

	got, err := ExtractText("paper.html", "text/html", []byte(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(got, "alert") || strings.Contains(got, "p{}") {
		t.Fatalf("expected scripts and styles to be removed, got %q", got)
	}

	names := SectionNames(SplitSections(got))
	if strings.Join(names, ",") != "abstract,conclusion" {
		t.Fatalf("expected headings on their own lines, got %q", got)
	}
}

func TestExtractTextUsesExtensionForGenericType(t *testing.T) {
	got, err := ExtractText("notes.md", "application/octet-stream", []byte("# Title\nbody"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "# Title\nbody" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractTextRejectsUnsupportedType(t *testing.T) {
	_, err := ExtractText("paper.pdf", "application/pdf", []byte("%PDF-1.7"))
	if !errors.Is(err, ErrUnsupportedContentType) {
		t.Fatalf("expected unsupported content type, got %v", err)
	}
}

func TestExtractTextRejectsBlankText(t *testing.T) {
	_, err := ExtractText("blank.txt", "text/plain", []byte(" \n\t "))
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected empty text error, got %v", err)
	}
}
