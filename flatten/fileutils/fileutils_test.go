package fileutils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dst := filepath.Join(dir, "out", "x_raw.csv")

	if err := WriteFileAtomic(dst, []byte("a,b\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteFileAtomic(dst, []byte("c,d\n"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(b) != "c,d\n" {
		t.Fatalf("dst=%q", string(b))
	}

	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the destination file, got %d entries", len(entries))
	}
	if !FileExists(dst) {
		t.Fatalf("FileExists(%q)=false", dst)
	}
	if FileExists(dir) {
		t.Fatalf("FileExists should be false for directories")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "hello", max: 10, want: "hello"},
		{in: "hello", max: 5, want: "hello"},
		{in: "hello world", max: 5, want: "hello..."},
		{in: "héllo wörld", max: 4, want: "héll..."},
		{in: "anything", max: 0, want: "anything"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Fatalf("Truncate(%q, %d)=%q want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestSanitizeNewlines(t *testing.T) {
	t.Parallel()

	if got := SanitizeNewlines("a\r\nb\rc\nd"); got != `a\nb\nc\nd` {
		t.Fatalf("got %q", got)
	}
}

func TestFindConversationFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "b", "conversations.json"), "[]")
	mustWrite(t, filepath.Join(dir, "a", "conversations.json"), "[]")
	mustWrite(t, filepath.Join(dir, "big.json"), strings.Repeat(" ", 2000))

	got, err := FindConversationFiles(dir)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	want := []string{filepath.Join(dir, "a", "conversations.json"), filepath.Join(dir, "b", "conversations.json")}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFindConversationFiles_Fallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "export.json"), "["+strings.Repeat(" ", 1200)+"]")
	mustWrite(t, filepath.Join(dir, "small.json"), "[]")
	mustWrite(t, filepath.Join(dir, "notes.txt"), strings.Repeat("x", 5000))

	got, err := FindConversationFiles(dir)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0] != filepath.Join(dir, "export.json") {
		t.Fatalf("got %v", got)
	}
}

func TestFindConversationFiles_None(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "small.json"), "{}")

	_, err := FindConversationFiles(dir)
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}

	if _, err := FindConversationFiles(filepath.Join(dir, "missing")); err == nil || errors.Is(err, ErrNoInput) {
		t.Fatalf("expected walk error for missing dir, got %v", err)
	}
}

func TestDecodeModelJSON(t *testing.T) {
	t.Parallel()

	var v struct {
		Summary string `json:"summary"`
	}
	if err := DecodeModelJSON("Here you go:\n```json\n{\"summary\":\"ok\"}\n```", &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Summary != "ok" {
		t.Fatalf("summary=%q", v.Summary)
	}
	if err := DecodeModelJSON("   ", &v); err == nil {
		t.Fatalf("expected error for empty output")
	}
	if err := DecodeModelJSON("no json here", &v); err == nil {
		t.Fatalf("expected error when no object is present")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
