// internal/feedback/export.go
package feedback

import (
	"fmt"
	"strings"

	"planmark/internal/annotation"
	"planmark/internal/diff"
)

// ExportReport renders annotations (and optionally a diff summary) as a
// structured plain-text feedback message. The output is handed verbatim to
// an external agent, so it must stay stable and readable.
func ExportReport(anns []annotation.Annotation, d *diff.Result) string {
	ordered := make([]annotation.Annotation, len(anns))
	copy(ordered, anns)
	annotation.SortForDisplay(ordered)

	var b strings.Builder
	b.WriteString("# Plan Feedback\n")

	for i, a := range ordered {
		fmt.Fprintf(&b, "\n## Feedback %d\n\n", i+1)
		writeAnnotation(&b, a)
	}

	if len(ordered) == 0 && d == nil {
		b.WriteString("\nNo feedback recorded.\n")
	}

	if d != nil {
		b.WriteString("\n## Change Summary\n\n")
		fmt.Fprintf(&b, "+%d/-%d lines, %d modified sections.\n",
			d.Stats.Additions, d.Stats.Deletions, d.Stats.Modifications)
	}

	return b.String()
}

func writeAnnotation(b *strings.Builder, a annotation.Annotation) {
	switch a.Type {
	case annotation.TypeDeletion:
		b.WriteString("Remove this:\n\n")
		writeQuoted(b, a.TargetText)
		if a.Note != "" {
			fmt.Fprintf(b, "\nReason: %s\n", a.Note)
		}
	case annotation.TypeReplacement:
		b.WriteString("Replace:\n\n")
		writeQuoted(b, a.TargetText)
		b.WriteString("\nwith:\n\n")
		writeQuoted(b, a.Note)
	case annotation.TypeInsertion:
		b.WriteString("After:\n\n")
		writeQuoted(b, a.TargetText)
		b.WriteString("\ninsert:\n\n")
		writeQuoted(b, a.Note)
	case annotation.TypeComment:
		b.WriteString("Regarding:\n\n")
		writeQuoted(b, a.TargetText)
		fmt.Fprintf(b, "\n%s\n", a.Note)
	case annotation.TypeGlobalComment:
		fmt.Fprintf(b, "%s\n", a.Note)
	}

	if a.Author != "" {
		fmt.Fprintf(b, "\n-- %s\n", a.Author)
	}
	if a.Orphaned {
		b.WriteString("\n(The quoted text no longer appears in the current plan.)\n")
	}
}

// writeQuoted renders text as a blockquote, one marker per line
func writeQuoted(b *strings.Builder, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(b, "> %s\n", line)
	}
}
