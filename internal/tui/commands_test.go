package tui

import (
	"strings"
	"testing"
)

func TestExportPathSitsBesideDocument(t *testing.T) {
	t.Parallel()
	got := exportPathFor("/case/docs/Motion to Dismiss.pdf")
	want := "/case/docs/Motion to Dismiss-notes.md"
	if got != want {
		t.Fatalf("exportPathFor = %q, want %q", got, want)
	}
}

func TestExportPathWithoutExtension(t *testing.T) {
	t.Parallel()
	got := exportPathFor("/case/docs/exhibit-a")
	if got != "/case/docs/exhibit-a-notes.md" {
		t.Fatalf("exportPathFor = %q", got)
	}
}

func TestShortenTextCollapsesWhitespace(t *testing.T) {
	t.Parallel()
	got := shortenText("  the   witness \n testified  ", 80)
	if got != "the witness testified" {
		t.Fatalf("shortenText = %q", got)
	}
}

func TestShortenTextTruncates(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("word ", 40)
	got := shortenText(long, 20)
	if len(got) > 25 {
		t.Fatalf("shortened text still too long: %d chars", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
}

func TestSplitDocLines(t *testing.T) {
	t.Parallel()
	if lines := splitDocLines("   \n  "); lines != nil {
		t.Fatalf("blank text should yield no lines, got %#v", lines)
	}
	lines := splitDocLines("one\ntwo")
	if len(lines) != 2 || lines[1] != "two" {
		t.Fatalf("unexpected lines %#v", lines)
	}
}
