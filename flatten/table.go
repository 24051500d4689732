package flatten

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/theimaginaryfoundation/convo-flatten/flatten/fileutils"
)

// Row is one flattened message. Every field is populated regardless of the column set;
// the owning Table decides which of them are emitted.
type Row struct {
	ID                string
	ConversationID    string
	ConversationTitle string
	ParentID          string
	Role              string
	Content           string
	Timestamp         *float64
	Status            string
	ContentLength     int
}

// Table is the ordered result of a Flatten run.
type Table struct {
	Minimal bool
	Rows    []Row
}

type column struct {
	name  string
	value func(Row) string
}

var (
	colID             = column{"id", func(r Row) string { return r.ID }}
	colConversationID = column{"conversation_id", func(r Row) string { return r.ConversationID }}
	colTitle          = column{"conversation_title", func(r Row) string { return r.ConversationTitle }}
	colParentID       = column{"parent_id", func(r Row) string { return r.ParentID }}
	colRole           = column{"role", func(r Row) string { return r.Role }}
	colContent        = column{"content", func(r Row) string { return r.Content }}
	colTimestamp      = column{"timestamp", func(r Row) string { return formatTimestamp(r.Timestamp) }}
	colStatus         = column{"status", func(r Row) string { return r.Status }}
	colContentLength  = column{"content_length", func(r Row) string { return strconv.Itoa(r.ContentLength) }}

	fullColumns = []column{
		colID, colConversationID, colTitle, colParentID, colRole,
		colContent, colTimestamp, colStatus, colContentLength,
	}
	minimalColumns = []column{colID, colConversationID, colParentID, colRole, colContent}
)

func (t Table) columns() []column {
	if t.Minimal {
		return minimalColumns
	}
	return fullColumns
}

// Header returns the emitted column names in order.
func (t Table) Header() []string {
	cols := t.columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// Records returns the emitted values of every row, aligned with Header.
func (t Table) Records() [][]string {
	cols := t.columns()
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, len(cols))
		for j, c := range cols {
			rec[j] = c.value(r)
		}
		out[i] = rec
	}
	return out
}

// WriteCSV writes the header and all rows as UTF-8 CSV with minimal quoting.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("WriteCSV: rows: %w", err)
	}
	return nil
}

// WriteCSVFile writes the table to path atomically.
func (t Table) WriteCSVFile(path string) error {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return err
	}
	if err := fileutils.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("WriteCSVFile: %w", err)
	}
	return nil
}

func formatTimestamp(ts *float64) string {
	if ts == nil {
		return ""
	}
	return strconv.FormatFloat(*ts, 'f', -1, 64)
}
