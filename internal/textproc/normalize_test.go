package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "the   quick\n\tbrown fox", "The quick brown fox"},
		{"strips disallowed characters", "price: $5 & more #deals", "Price: 5 more deals"},
		{"removes space before punctuation", "wait , what ?", "Wait, what?"},
		{"keeps allowed punctuation", "a-b (c); d: e!", "A-b (c); d: e!"},
		{"capitalizes first letter", "éclair time.", "Éclair time."},
		{"leaves digits first", "42 is the answer.", "42 is the answer."},
		{"empty", "", ""},
		{"only disallowed", "@#$%^&*", ""},
		{"trims", "   padded text   ", "Padded text"},
		{"no-break space", "hello\u00a0world", "Hello world"},
		{"em space", "hello\u2003world", "Hello world"},
		{"vertical tab", "hello\vworld", "Hello world"},
		{"line separator", "one\u2028two\u0085three", "One two three"},
		{"stripped symbol between spaces", "fish & chips", "Fish chips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"hello   world !",
		"  @@ spaced # out , text ; here :  ",
		"multi\n\nline\ttext. with (parens) and - dashes ?",
		"ünïcödé wörds . more",
		"no\u00a0break\u2003spaces\v here",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeKeepsWordsApartAcrossUnicodeSpaces(t *testing.T) {
	assert.Equal(t, 4, WordCount(Normalize("alpha\u00a0beta\u2003gamma\vdelta")))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount(" one two\tthree\n"))
}

func TestRuneLength(t *testing.T) {
	assert.Equal(t, 5, RuneLength("héllo"))
}
