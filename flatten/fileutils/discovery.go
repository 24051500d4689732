package fileutils

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

const (
	conversationsFileName = "conversations.json"

	// Fallback candidates smaller than this are assumed not to be exports.
	minFallbackSize = 1000
)

// ErrNoInput is returned when discovery finds no candidate export file.
var ErrNoInput = errors.New("no conversations export found")

// FindConversationFiles searches dir recursively for conversations.json files. When there
// are none it falls back to any .json file larger than 1000 bytes. Paths are sorted.
func FindConversationFiles(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}

	var exact, fallback []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if d.Name() == conversationsFileName {
			exact = append(exact, path)
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > minFallbackSize {
			fallback = append(fallback, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("FindConversationFiles: walk %s: %w", dir, err)
	}

	found := exact
	if len(found) == 0 {
		found = fallback
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("FindConversationFiles: %s: %w", dir, ErrNoInput)
	}
	slices.Sort(found)
	return found, nil
}
