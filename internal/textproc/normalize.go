// Package textproc provides text cleanup, sentence segmentation, chunking
// and basic text statistics used by every summarization strategy.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	disallowedChars  = regexp.MustCompile(`[^\p{L}\p{N}_\s.!?,;:\-()]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([.!?,;:])`)
)

// Normalize cleans raw document text into the canonical form consumed by the
// segmenter and the generation engines.
//
// The result contains only letters, digits, underscores, single spaces and the
// punctuation set ". ! ? , ; : - ( )", has no space before ". ! ? , ; :" and
// starts with an uppercase letter. Normalize is idempotent.
func Normalize(text string) string {
	// unicode.IsSpace covers NBSP, em space and line separators, which RE2's
	// \s does not.
	text = strings.Join(strings.Fields(text), " ")
	text = disallowedChars.ReplaceAllString(text, "")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = strings.TrimSpace(text)

	if text == "" {
		return text
	}

	first, size := utf8.DecodeRuneInString(text)
	if unicode.IsLower(first) {
		text = string(unicode.ToUpper(first)) + text[size:]
	}

	return text
}

// WordCount returns the number of whitespace-delimited words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// RuneLength is the default length measure for chunking: the number of
// characters in text.
func RuneLength(text string) int {
	return utf8.RuneCountInString(text)
}
