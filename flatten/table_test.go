package flatten

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(minimal bool) Table {
	ts := 1700000000.25
	return Table{
		Minimal: minimal,
		Rows: []Row{
			{
				ID: "m1", ConversationID: "c1", ConversationTitle: "Quotes, \"commas\"", ParentID: "",
				Role: "user", Content: "line one\nline \"two\", end", Timestamp: &ts,
				Status: "finished_successfully", ContentLength: 24,
			},
			{ID: "m2", ConversationID: "c1", ConversationTitle: "Untitled", ParentID: "m1", Role: "assistant", Content: "plain", ContentLength: 5},
		},
	}
}

func TestTable_WriteCSV_Full(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, sampleTable(false).WriteCSV(&buf))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"id", "conversation_id", "conversation_title", "parent_id", "role", "content", "timestamp", "status", "content_length"}, recs[0])
	assert.Equal(t, []string{"m1", "c1", "Quotes, \"commas\"", "", "user", "line one\nline \"two\", end", "1700000000.25", "finished_successfully", "24"}, recs[1])
	assert.Equal(t, []string{"m2", "c1", "Untitled", "m1", "assistant", "plain", "", "", "5"}, recs[2])
}

func TestTable_WriteCSV_MinimalQuoting(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, sampleTable(true).WriteCSV(&buf))

	want := "id,conversation_id,parent_id,role,content\n" +
		"m1,c1,,user,\"line one\nline \"\"two\"\", end\"\n" +
		"m2,c1,m1,assistant,plain\n"
	assert.Equal(t, want, buf.String())
}

func TestTable_WriteCSVFile(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "nested", "out.csv")
	require.NoError(t, sampleTable(true).WriteCSVFile(p))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "m2,c1,m1,assistant,plain\n")

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file cleaned up")
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	whole := 1700000000.0
	frac := 1700000000.123456
	assert.Equal(t, "", formatTimestamp(nil))
	assert.Equal(t, "1700000000", formatTimestamp(&whole))
	assert.Equal(t, "1700000000.123456", formatTimestamp(&frac))
}
