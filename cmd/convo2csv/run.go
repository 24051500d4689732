package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/convo-flatten/flatten"
	"github.com/theimaginaryfoundation/convo-flatten/flatten/fileutils"
)

type app struct {
	cfg           Config
	log           *zap.Logger
	stdin         io.Reader
	stdout        io.Writer
	newSummarizer summarizerFactory
}

func (a *app) run(ctx context.Context) error {
	input, err := a.resolveInput()
	if err != nil {
		return err
	}

	archive, err := flatten.ReadArchive(input, flatten.DecodeOptions{ArrayField: a.cfg.ArrayField})
	if err != nil {
		return err
	}
	paths := flatten.OutputPathsFor(input, a.cfg.OutputDir)
	a.log.Info("archive loaded",
		zap.String("input", input),
		zap.Int("conversations", len(archive)),
		zap.Int("nodes", archive.NodeCount()),
		zap.String("output_dir", filepath.Dir(paths.RawCSV)),
	)

	var analysisTable flatten.Table
	if !a.cfg.CleanedOnly {
		t, err := a.convert(archive, paths.RawCSV, false)
		if err != nil {
			return err
		}
		analysisTable = t
	}
	if !a.cfg.RawOnly {
		t, err := a.convert(archive, paths.CleanedCSV, true)
		if err != nil {
			return err
		}
		analysisTable = t
	}

	analysis := flatten.BuildAnalysis(input, analysisTable)
	if a.cfg.Summarize > 0 {
		if a.cfg.APIKey == "" {
			a.log.Warn("no OpenAI API key configured, using placeholder summaries")
		}
		summaries, err := flatten.SummarizeThreads(ctx, analysisTable.Threads(), a.newSummarizer(a.cfg), a.cfg.Summarize)
		for _, s := range summaries {
			if s.Err != nil {
				a.log.Warn("thread summary failed", zap.String("conversation_id", s.ConversationID), zap.Error(s.Err))
			}
		}
		if err != nil {
			return fmt.Errorf("summarize threads: %w", err)
		}
		analysis.Summaries = summaries
	}

	if err := analysis.WriteTextFile(paths.Analysis); err != nil {
		return err
	}
	a.log.Info("wrote analysis report", zap.String("path", paths.Analysis))
	return nil
}

func (a *app) convert(archive flatten.Archive, path string, clean bool) (flatten.Table, error) {
	a.log.Info("converting", zap.Bool("cleaning", clean), zap.Bool("minimal", a.cfg.Minimal))

	table, stats := flatten.Flatten(archive, flatten.Options{Clean: clean, Minimal: a.cfg.Minimal})
	if err := table.WriteCSVFile(path); err != nil {
		return flatten.Table{}, err
	}
	a.log.Info("wrote table",
		zap.String("path", path),
		zap.Int("rows", stats.FinalRows),
		zap.Int("total_messages", stats.TotalMessages),
		zap.Int("removed", stats.Removed()),
	)

	label := "Raw conversion (no cleaning)"
	if clean {
		label = "Cleaned conversion"
	}
	fmt.Fprintf(a.stdout, "\n%s\n", label)
	if err := flatten.WriteStatsReport(a.stdout, path, table, stats); err != nil {
		return flatten.Table{}, fmt.Errorf("write stats report: %w", err)
	}
	return table, nil
}

func (a *app) resolveInput() (string, error) {
	if a.cfg.InputPath != "" {
		if !fileutils.FileExists(a.cfg.InputPath) {
			return "", fmt.Errorf("input file %q not found", a.cfg.InputPath)
		}
		return a.cfg.InputPath, nil
	}

	dir := a.cfg.SearchDir
	if dir == "" {
		dir = "."
	}
	a.log.Info("searching for conversations exports", zap.String("dir", dir))
	found, err := fileutils.FindConversationFiles(dir)
	if err != nil {
		return "", err
	}
	if len(found) == 1 {
		return found[0], nil
	}
	return chooseFile(a.stdin, a.stdout, found)
}

// chooseFile lists candidate exports and reads a 1-based selection from in.
func chooseFile(in io.Reader, out io.Writer, files []string) (string, error) {
	fmt.Fprintf(out, "Found %d JSON files:\n", len(files))
	for i, f := range files {
		size := ""
		if info, err := os.Stat(f); err == nil {
			size = fmt.Sprintf(" (%.1f MB)", float64(info.Size())/(1<<20))
		}
		fmt.Fprintf(out, "  %d. %s%s\n", i+1, f, size)
	}
	fmt.Fprint(out, "Select file number: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read selection: %w", err)
	}
	choice := strings.TrimSpace(line)
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(files) {
		return "", fmt.Errorf("invalid selection %q", choice)
	}
	return files[n-1], nil
}
