package flatten

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPathsFor(t *testing.T) {
	t.Parallel()

	p := OutputPathsFor(filepath.Join("exports", "conversations.json"), "")
	assert.Equal(t, OutputPaths{
		RawCSV:     filepath.Join("exports", "conversations_raw.csv"),
		CleanedCSV: filepath.Join("exports", "conversations_cleaned.csv"),
		Analysis:   filepath.Join("exports", "conversations_analysis.txt"),
	}, p)

	p = OutputPathsFor(filepath.Join("exports", "my.export.json"), "out")
	assert.Equal(t, filepath.Join("out", "my.export_raw.csv"), p.RawCSV)

	p = OutputPathsFor("archive", "")
	assert.Equal(t, "archive_cleaned.csv", p.CleanedCSV)
}
