package flatten

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Matches the same set as isSpace.
	whitespaceRun = regexp.MustCompile(`[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]+`)
	codeFence     = regexp.MustCompile("```[\\p{L}\\p{N}_]*\\n?")
	newlineRun    = regexp.MustCompile(`\n+`)
	htmlTag       = regexp.MustCompile(`<[^>]+>`)
	periodRun     = regexp.MustCompile(`\.{3,}`)
	zeroWidth     = regexp.MustCompile(`[\x{200b}-\x{200d}\x{feff}]`)
)

// Normalize cleans message text: whitespace runs become a single space, code fences and
// HTML-style tags are removed, runs of three or more periods become "...", zero-width and
// BOM characters are dropped and the result is trimmed.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	// Every pass either shortens the text or only rewrites single whitespace
	// characters to ' ', so this reaches a fixed point.
	for {
		next := normalizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = whitespaceRun.ReplaceAllString(trimSpace(s), " ")
	s = codeFence.ReplaceAllString(s, "")
	s = newlineRun.ReplaceAllString(s, " ")
	s = htmlTag.ReplaceAllString(s, "")
	s = periodRun.ReplaceAllString(s, "...")
	s = zeroWidth.ReplaceAllString(s, "")
	return trimSpace(s)
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
