package ml

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Below this whatlanggo confidence the stop-word heuristic decides.
const reliableLanguage = 0.5

var (
	romanianMarkers = []string{
		"și", "sau", "este", "sunt", "pentru", "cu", "de", "la", "în", "pe", "că", "să",
		"nu", "se", "ce", "mai", "foarte", "după", "până", "către", "asupra", "dintre", "printre",
	}
	englishMarkers = []string{
		"the", "and", "or", "is", "are", "for", "with", "of", "at", "in", "on", "that",
		"to", "not", "what", "more", "very", "after", "until", "towards", "among", "between",
	}
)

// DetectLanguage returns an ISO 639-1 code, or "unknown".
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return "unknown"
	}
	info := whatlanggo.Detect(text)
	if info.Confidence >= reliableLanguage {
		if code := info.Lang.Iso6391(); code != "" {
			return code
		}
	}
	return guessLanguage(text)
}

// guessLanguage counts distinct marker words of Romanian and English.
func guessLanguage(text string) string {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), isSeparator) {
		words[w] = true
	}
	count := func(markers []string) int {
		n := 0
		for _, m := range markers {
			if words[m] {
				n++
			}
		}
		return n
	}

	ro, en := count(romanianMarkers), count(englishMarkers)
	switch {
	case ro > en && ro > 2:
		return "ro"
	case en > ro && en > 2:
		return "en"
	default:
		return "unknown"
	}
}

func isSeparator(r rune) bool {
	return strings.ContainsRune(" \t\n\r.,;:!?\"'()[]{}-", r)
}

var languageNames = map[string]string{
	"ro": "Romanian",
	"en": "English",
	"fr": "French",
	"es": "Spanish",
	"de": "German",
	"it": "Italian",
}

// LanguageName returns the English name of a language code, or the code
// itself when it is not one of the commonly analysed languages.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
