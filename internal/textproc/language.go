package textproc

import "strings"

// Language is an advisory language label.
type Language string

// Detectable languages.
const (
	LanguageEnglish Language = "english"
	LanguageSpanish Language = "spanish"
	LanguageFrench  Language = "french"
	LanguageUnknown Language = "unknown"
)

var stopwords = map[Language][]string{
	LanguageEnglish: {"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by"},
	LanguageSpanish: {"el", "la", "y", "o", "pero", "en", "a", "para", "de", "con", "por"},
	LanguageFrench:  {"le", "la", "et", "ou", "mais", "dans", "à", "pour", "de", "avec", "par"},
}

// DetectLanguage guesses the language of text from the distinct stopwords it
// contains. A tie for the highest count yields LanguageUnknown. The result is
// advisory and never changes how text is summarized.
func DetectLanguage(text string) Language {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[w] = struct{}{}
	}

	counts := make(map[Language]int, len(stopwords))
	for lang, list := range stopwords {
		for _, sw := range list {
			if _, ok := words[sw]; ok {
				counts[lang]++
			}
		}
	}

	en, es, fr := counts[LanguageEnglish], counts[LanguageSpanish], counts[LanguageFrench]
	switch {
	case en > es && en > fr:
		return LanguageEnglish
	case es > en && es > fr:
		return LanguageSpanish
	case fr > en && fr > es:
		return LanguageFrench
	default:
		return LanguageUnknown
	}
}
