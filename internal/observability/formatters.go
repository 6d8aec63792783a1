// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	inner := boxWidth - 4
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads s with spaces to n runes
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// PrintReference outputs the structure the gate enforces for every candidate.
func (p *Printer) PrintReference(ref *document.Reference) {
	if ref == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Preamble: %d bytes\n", len(ref.Preamble()))
	fmt.Fprintf(&sb, "Bullets:  %d\n\n", ref.BulletCount())

	sb.WriteString("Sections:\n")
	for _, marker := range ref.SectionMarkers() {
		fmt.Fprintf(&sb, "  • %s\n", marker)
	}

	entries := ref.EntryIdentifiers()
	fmt.Fprintf(&sb, "\nEntries (%d):\n", len(entries))
	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		fmt.Fprintf(&sb, "  • %s\n", entries[i])
	}
	if len(entries) > maxItemsToShow {
		fmt.Fprintf(&sb, "  ... and %d more\n", len(entries)-maxItemsToShow)
	}

	p.printBox("REFERENCE DOCUMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVerdict outputs the gate's decision for one record.
func (p *Printer) PrintVerdict(label string, v types.Verdict, attempts int) {
	var sb strings.Builder
	if v.Accepted {
		fmt.Fprintf(&sb, "✅ ACCEPTED after %d generation(s)", attempts)
	} else {
		fmt.Fprintf(&sb, "⚠ %s after %d generation(s)\n", v.Kind, attempts)
		if v.Kind.Recoverable() && attempts < 2 {
			sb.WriteString("  (recoverable: retrying with corrective prompt)\n")
		}
		for _, line := range wrap(v.Detail, boxWidth-6) {
			fmt.Fprintf(&sb, "  %s\n", line)
		}
	}

	p.printBox("VERDICT: "+label, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs the counters and failures of a finished run.
func (p *Printer) PrintRunSummary(log types.RunLog) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run:       %s\n", log.RunID)
	fmt.Fprintf(&sb, "Processed: %d\n", log.Processed)
	fmt.Fprintf(&sb, "OK:        %d\n", log.OK)
	fmt.Fprintf(&sb, "Errors:    %d\n", log.Errors)

	var failed []types.RecordOutcome
	for _, d := range log.Details {
		if d.Status != types.OutcomeOK {
			failed = append(failed, d)
		}
	}
	if len(failed) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(failed), maxItemsToShow)
		for i := 0; i < count; i++ {
			reason := failed[i].Reason
			if failed[i].Kind != types.KindNone {
				reason = string(failed[i].Kind)
			}
			fmt.Fprintf(&sb, "  • %s: %s\n", failed[i].RecordID, reason)
		}
		if len(failed) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(failed)-maxItemsToShow)
		}
	}

	p.printBox("RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// wrap splits text into lines of at most width runes on word boundaries
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && utf8.RuneCountInString(line.String())+1+utf8.RuneCountInString(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
