package flatten

import (
	"context"
	"strings"

	"github.com/theimaginaryfoundation/convo-flatten/flatten/fileutils"
)

// MaxThreadTextChars caps the transcript handed to a ThreadSummarizer.
const MaxThreadTextChars = 80_000

// ThreadSummarizer produces a one-paragraph summary of a conversation transcript.
type ThreadSummarizer interface {
	SummarizeThread(ctx context.Context, threadText string) (string, error)
}

// Thread is the rows of one conversation, in table order.
type Thread struct {
	ConversationID string
	Title          string
	Rows           []Row
}

// ThreadSummary is the summarizer output for one thread. Err is set when summarization failed.
type ThreadSummary struct {
	ConversationID string
	Title          string
	Summary        string
	Err            error
}

// Threads groups the table rows by conversation, in order of first appearance.
func (t Table) Threads() []Thread {
	index := make(map[string]int)
	var out []Thread
	for _, r := range t.Rows {
		i, ok := index[r.ConversationID]
		if !ok {
			i = len(out)
			index[r.ConversationID] = i
			out = append(out, Thread{ConversationID: r.ConversationID, Title: r.ConversationTitle})
		}
		out[i].Rows = append(out[i].Rows, r)
	}
	return out
}

// Text renders the thread as "role: content" lines, cut to maxChars runes (0 = no limit).
func (th Thread) Text(maxChars int) string {
	var b strings.Builder
	for i, r := range th.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		role := r.Role
		if role == "" {
			role = "unknown"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(r.Content)
	}
	return fileutils.Truncate(b.String(), maxChars)
}

// SummarizeThreads summarizes up to limit threads in order. A failure for one thread is
// recorded on its ThreadSummary and does not stop the others; only context cancellation
// is returned as an error, together with the summaries gathered so far.
func SummarizeThreads(ctx context.Context, threads []Thread, s ThreadSummarizer, limit int) ([]ThreadSummary, error) {
	if limit <= 0 || limit > len(threads) {
		limit = len(threads)
	}
	out := make([]ThreadSummary, 0, limit)
	for _, th := range threads[:limit] {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		text, err := s.SummarizeThread(ctx, th.Text(MaxThreadTextChars))
		out = append(out, ThreadSummary{
			ConversationID: th.ConversationID,
			Title:          th.Title,
			Summary:        strings.TrimSpace(text),
			Err:            err,
		})
	}
	return out, nil
}
