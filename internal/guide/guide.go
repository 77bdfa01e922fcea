package guide

import (
	"fmt"
	"strings"
)

// Step represents one actionable recommendation in the review workflow.
type Step struct {
	Title       string
	Description string
}

// Metadata carries just enough context for personalizing guide steps.
type Metadata struct {
	DocumentName string
	CaseName     string
}

// Build returns the review checklist shown in the help overlay, tailored to
// the document currently open.
func Build(meta Metadata) []Step {
	displayName := strings.TrimSpace(meta.DocumentName)
	if displayName == "" {
		displayName = "the document"
	}
	caseSuffix := ""
	if strings.TrimSpace(meta.CaseName) != "" {
		caseSuffix = fmt.Sprintf(" for %s", meta.CaseName)
	}

	return []Step{
		{
			Title:       "Pass 1 – Orient",
			Description: fmt.Sprintf("Skim %s%s: filing date, parties, docket context. If the text pane is empty or garbled, run OCR before reading further.", displayName, caseSuffix),
		},
		{
			Title:       "Pass 2 – Highlight",
			Description: "Select the passages that matter: admissions, dates, dollar amounts, contradictions. Each highlight lands in the note outline at your configured nesting level with a jump-back reference.",
		},
		{
			Title:       "Pass 3 – Annotate",
			Description: "Attach comments to the highlights that need follow-up, and adjust the nesting level so related captures group under the same outline branch.",
		},
		{
			Title:       "Export",
			Description: "Export the note outline to markdown when the review is done; the outline keeps one bullet per captured passage in reading order.",
		},
		{
			Title:       "Housekeeping",
			Description: "Closed tabs keep their highlights and notes; reopening a file by path restores everything. Only an explicit workspace reset (Ctrl+R, twice) discards state.",
		},
	}
}
