package flatten

import (
	"bytes"
	"cmp"
	"encoding/json"
	"slices"
	"strings"
	"unicode/utf8"
)

// Options controls a Flatten run.
type Options struct {
	// Clean enables Normalize on message text plus the post-pass (oversize filter and sort).
	Clean bool

	// Minimal restricts the emitted columns to id, conversation_id, parent_id, role, content.
	Minimal bool
}

const (
	minContentRunes    = 3
	fingerprintRunes   = 100
	maxContentLength   = 50000
	roleSystem         = "system"
	hiddenMetadataFlag = "is_visually_hidden_from_conversation"
)

// Flatten turns every message node of the archive into a Row, dropping short, hidden-system
// and duplicate messages, and returns the resulting table with run statistics.
//
// Nodes are visited in mapping order, conversations in archive order. With opts.Clean the
// table is additionally filtered for oversized rows and stably sorted by
// (conversation_id, timestamp), missing timestamps last.
//
// Flatten holds no state between calls and is safe for concurrent use on a shared archive.
func Flatten(archive Archive, opts Options) (Table, Stats) {
	run := flattenRun{
		opts: opts,
		seen: make(map[string]struct{}),
	}
	for _, conv := range archive {
		if conv.Mapping == nil {
			continue
		}
		for pair := conv.Mapping.Oldest(); pair != nil; pair = pair.Next() {
			run.addNode(conv, pair.Key, pair.Value)
		}
	}

	rows := run.rows
	if opts.Clean {
		rows = run.finalize()
	}

	stats := run.stats
	stats.summarize(rows)
	return Table{Minimal: opts.Minimal, Rows: rows}, stats
}

type flattenRun struct {
	opts  Options
	seen  map[string]struct{}
	rows  []Row
	stats Stats
}

func (r *flattenRun) addNode(conv Conversation, key string, node Node) {
	m := node.Message
	if m == nil {
		return
	}
	r.stats.TotalMessages++

	content := partsText(m.Content)
	if r.opts.Clean {
		content = Normalize(content)
	}

	if utf8.RuneCountInString(trimSpace(content)) < minContentRunes {
		r.stats.EmptyContentRemoved++
		return
	}

	role := m.role()
	if role == roleSystem && isHiddenFromConversation(m.Metadata) {
		r.stats.SystemMessagesRemoved++
		return
	}

	fp := fingerprint(content)
	if _, ok := r.seen[fp]; ok {
		r.stats.DuplicatesRemoved++
		return
	}
	r.seen[fp] = struct{}{}

	id := key
	if m.ID != nil {
		id = *m.ID
	}
	parent := ""
	if node.Parent != nil {
		parent = *node.Parent
	}

	r.rows = append(r.rows, Row{
		ID:                id,
		ConversationID:    conv.Key(),
		ConversationTitle: conv.DisplayTitle(),
		ParentID:          parent,
		Role:              role,
		Content:           content,
		Timestamp:         copyFloat(m.CreateTime),
		Status:            m.Status,
		ContentLength:     utf8.RuneCountInString(content),
	})
}

// finalize drops oversized rows and sorts the rest into a new slice.
func (r *flattenRun) finalize() []Row {
	kept := make([]Row, 0, len(r.rows))
	for _, row := range r.rows {
		if row.ContentLength >= maxContentLength {
			r.stats.OversizedRemoved++
			continue
		}
		kept = append(kept, row)
	}
	slices.SortStableFunc(kept, compareRows)
	return kept
}

func compareRows(a, b Row) int {
	if c := strings.Compare(a.ConversationID, b.ConversationID); c != 0 {
		return c
	}
	switch {
	case a.Timestamp == nil && b.Timestamp == nil:
		return 0
	case a.Timestamp == nil:
		return 1
	case b.Timestamp == nil:
		return -1
	}
	return cmp.Compare(*a.Timestamp, *b.Timestamp)
}

func (m *Message) role() string {
	if m.Author == nil {
		return ""
	}
	return m.Author.Role
}

// partsText joins the message parts with a single space. String parts are kept verbatim,
// structured parts are rendered as compact JSON, anything else is ignored.
func partsText(c *Content) string {
	if c == nil || len(c.Parts) == 0 {
		return ""
	}
	texts := make([]string, 0, len(c.Parts))
	for _, p := range c.Parts {
		if s, ok := partText(p); ok {
			texts = append(texts, s)
		}
	}
	return strings.Join(texts, " ")
}

func partText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", false
		}
		return buf.String(), true
	default:
		return "", false
	}
}

// fingerprint is the duplicate-detection key: the lowercased text cut to its first 100 runes.
func fingerprint(content string) string {
	lower := strings.ToLower(content)
	n := 0
	for i := range lower {
		if n == fingerprintRunes {
			return lower[:i]
		}
		n++
	}
	return lower
}

func isHiddenFromConversation(metadata map[string]any) bool {
	if len(metadata) == 0 {
		return false
	}
	v, ok := metadata[hiddenMetadataFlag]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
