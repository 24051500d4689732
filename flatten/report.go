package flatten

import (
	"fmt"
	"io"
	"strings"

	"github.com/theimaginaryfoundation/convo-flatten/flatten/fileutils"
)

const (
	previewRows  = 3
	previewChars = 100
)

// WriteStatsReport prints the statistics of one conversion and a short preview of the table.
func WriteStatsReport(w io.Writer, outPath string, table Table, stats Stats) error {
	var b strings.Builder

	fmt.Fprintln(&b, "Conversion statistics:")
	fmt.Fprintf(&b, "   Total messages processed: %d\n", stats.TotalMessages)
	fmt.Fprintf(&b, "   Final rows in CSV: %d\n", stats.FinalRows)
	fmt.Fprintf(&b, "   Empty content removed: %d\n", stats.EmptyContentRemoved)
	fmt.Fprintf(&b, "   System messages removed: %d\n", stats.SystemMessagesRemoved)
	fmt.Fprintf(&b, "   Duplicates removed: %d\n", stats.DuplicatesRemoved)
	if stats.OversizedRemoved > 0 {
		fmt.Fprintf(&b, "   Oversized rows removed: %d\n", stats.OversizedRemoved)
	}
	if stats.TotalMessages > 0 {
		fmt.Fprintf(&b, "   Data retention rate: %.1f%%\n", stats.RetentionRate())
	} else {
		fmt.Fprintln(&b, "   Data retention rate: n/a")
	}
	fmt.Fprintf(&b, "Output saved to: %s\n", outPath)

	fmt.Fprintln(&b, "\nContent analysis:")
	if stats.HasRows() {
		fmt.Fprintf(&b, "   Average content length: %.0f characters\n", stats.AvgContentLength)
		fmt.Fprintf(&b, "   Longest message: %d characters\n", stats.MaxContentLength)
	} else {
		fmt.Fprintln(&b, "   Average content length: n/a")
		fmt.Fprintln(&b, "   Longest message: n/a")
	}
	fmt.Fprintln(&b, "   Role distribution:")
	for _, rc := range stats.Roles {
		fmt.Fprintf(&b, "     %s: %d (%.1f%%)\n", rc.Role, rc.Count, rc.Percent)
	}

	if len(table.Rows) > 0 {
		fmt.Fprintf(&b, "\nPreview of first %d rows:\n", min(previewRows, len(table.Rows)))
		for i, r := range table.Rows[:min(previewRows, len(table.Rows))] {
			preview := fileutils.SanitizeNewlines(fileutils.Truncate(r.Content, previewChars))
			fmt.Fprintf(&b, "   Row %d: %s | %d chars | %s\n", i+1, r.Role, r.ContentLength, preview)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Analysis is the content of the analysis report for one export.
type Analysis struct {
	SourceFile       string
	Conversations    int
	Messages         int
	FirstTimestamp   *float64
	LastTimestamp    *float64
	Roles            []RoleCount
	AvgContentLength float64
	MaxContentLength int
	Summaries        []ThreadSummary
}

// BuildAnalysis derives the report figures from a table. It uses the row fields directly, so
// it works for minimal tables too.
func BuildAnalysis(sourceFile string, table Table) Analysis {
	convs := make(map[string]struct{})
	for _, r := range table.Rows {
		convs[r.ConversationID] = struct{}{}
	}
	first, last := timestampRange(table.Rows)
	avg, longest := contentLengths(table.Rows)
	return Analysis{
		SourceFile:       sourceFile,
		Conversations:    len(convs),
		Messages:         len(table.Rows),
		FirstTimestamp:   first,
		LastTimestamp:    last,
		Roles:            RoleDistribution(table.Rows),
		AvgContentLength: avg,
		MaxContentLength: longest,
	}
}

// WriteText writes the plain-text analysis report.
func (a Analysis) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintln(&b, "ChatGPT Conversations Analysis Report")
	fmt.Fprintln(&b, strings.Repeat("=", 40))
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Source file: %s\n", a.SourceFile)
	fmt.Fprintf(&b, "Total conversations: %d\n", a.Conversations)
	fmt.Fprintf(&b, "Total messages: %d\n", a.Messages)
	if a.FirstTimestamp != nil && a.LastTimestamp != nil {
		fmt.Fprintf(&b, "Date range: %s to %s\n", timestampISO8601(a.FirstTimestamp), timestampISO8601(a.LastTimestamp))
	} else {
		fmt.Fprintln(&b, "Date range: n/a")
	}

	fmt.Fprintln(&b, "\nRole Distribution:")
	for _, rc := range a.Roles {
		fmt.Fprintf(&b, "  %s: %d messages\n", rc.Role, rc.Count)
	}

	if a.Messages > 0 {
		fmt.Fprintf(&b, "\nAverage message length: %.0f characters\n", a.AvgContentLength)
		fmt.Fprintf(&b, "Longest message: %d characters\n", a.MaxContentLength)
	} else {
		fmt.Fprintln(&b, "\nAverage message length: n/a")
		fmt.Fprintln(&b, "Longest message: n/a")
	}

	if len(a.Summaries) > 0 {
		fmt.Fprintln(&b, "\nConversation Summaries:")
		for _, s := range a.Summaries {
			fmt.Fprintf(&b, "\n[%s] %s\n", s.ConversationID, s.Title)
			if s.Err != nil || s.Summary == "" {
				fmt.Fprintln(&b, "  summary unavailable")
				continue
			}
			fmt.Fprintf(&b, "  %s\n", s.Summary)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTextFile writes the report to path atomically.
func (a Analysis) WriteTextFile(path string) error {
	var b strings.Builder
	if err := a.WriteText(&b); err != nil {
		return err
	}
	if err := fileutils.WriteFileAtomic(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("WriteTextFile: %w", err)
	}
	return nil
}
