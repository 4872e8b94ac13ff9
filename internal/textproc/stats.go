package textproc

import (
	"strings"
	"unicode/utf8"
)

// TextStatistics describes the shape of a document.
type TextStatistics struct {
	WordCount              int     `json:"word_count"`
	SentenceCount          int     `json:"sentence_count"`
	CharacterCount         int     `json:"character_count"`
	CharacterCountNoSpaces int     `json:"character_count_no_spaces"`
	TokenCount             int     `json:"token_count"`
	AvgWordsPerSentence    float64 `json:"avg_words_per_sentence"`
	AvgCharsPerWord        float64 `json:"avg_chars_per_word"`
	Language               string  `json:"language"`
}

// Statistics computes word, sentence, character and token counts for text.
// Token counts use tc when it is non-nil and a character estimate otherwise.
func (s *Segmenter) Statistics(text string, tc *TokenCounter) (TextStatistics, error) {
	sents, err := s.Split(text)
	if err != nil {
		return TextStatistics{}, err
	}

	words := strings.Fields(text)
	stats := TextStatistics{
		WordCount:              len(words),
		SentenceCount:          len(sents),
		CharacterCount:         utf8.RuneCountInString(text),
		CharacterCountNoSpaces: utf8.RuneCountInString(strings.ReplaceAll(text, " ", "")),
		TokenCount:             tc.CountTokens(text),
		Language:               string(DetectLanguage(text)),
	}

	if len(sents) > 0 {
		stats.AvgWordsPerSentence = float64(len(words)) / float64(len(sents))
	}
	if len(words) > 0 {
		chars := 0
		for _, w := range words {
			chars += utf8.RuneCountInString(w)
		}
		stats.AvgCharsPerWord = float64(chars) / float64(len(words))
	}

	return stats, nil
}
