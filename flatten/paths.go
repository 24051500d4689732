package flatten

import (
	"path/filepath"
	"strings"
)

// OutputPaths are the files written for one input export.
type OutputPaths struct {
	RawCSV     string
	CleanedCSV string
	Analysis   string
}

// OutputPathsFor derives output file names from the input's stem. An empty outputDir means
// the input's own directory.
func OutputPathsFor(inputPath, outputDir string) OutputPaths {
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return OutputPaths{
		RawCSV:     filepath.Join(outputDir, stem+"_raw.csv"),
		CleanedCSV: filepath.Join(outputDir, stem+"_cleaned.csv"),
		Analysis:   filepath.Join(outputDir, stem+"_analysis.txt"),
	}
}
