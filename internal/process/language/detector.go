// Package language classifies post text by language so the pipeline can gate
// out non-Uzbek posts before classification.
package language

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Detection results.
const (
	Uzbek   = "uzbek"
	Russian = "russian"
	English = "english"
	Unknown = "unknown"
)

// minTextLen is the shortest text the detector will judge; anything shorter
// is Unknown, which callers treat as "not Uzbek".
const minTextLen = 10

const markerWordThreshold = 2

// Letters that exist in Uzbek Cyrillic but not in Russian. A single
// occurrence settles the question.
const uzbekCyrillicLetters = "ўЎқҚғҒҳҲ"

var russianMarkers = []string{
	"который", "которая", "которые", "является", "были", "было",
	"этого", "этом", "этой", "также", "более", "может",
	"после", "году", "года", "лет", "человек", "людей",
	"власти", "властей", "стран", "страны", "российск",
	"сообщ", "заявил", "отметил", "подчеркнул",
}

var uzbekMarkers = []string{
	"ва", "билан", "учун", "бўлиб", "қилди", "қилиш",
	"бўйича", "ҳақида", "ҳам", "эса", "лекин", "аммо",
	"шунингдек", "ўзбекистон", "тошкент", "ташкент", "вилоят",
}

var englishMarkers = []string{
	"the", "and", "for", "with", "that", "this", "from", "have", "been",
}

// Detect classifies text as Uzbek, Russian, English or Unknown. The rules
// run in priority order; ambiguous short text stays Unknown so the caller
// drops it rather than guessing.
func Detect(text string) string {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextLen {
		return Unknown
	}

	var cyrillic, latin int

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			latin++
		}
	}

	if strings.ContainsAny(text, uzbekCyrillicLetters) {
		return Uzbek
	}

	lower := strings.ToLower(text)

	if countMarkers(lower, uzbekMarkers) >= markerWordThreshold {
		return Uzbek
	}

	if countMarkers(lower, russianMarkers) >= markerWordThreshold && cyrillic > latin {
		return Russian
	}

	// Mostly Cyrillic but few Russian markers: Uzbek written in Cyrillic.
	if cyrillic > latin*2 {
		return Uzbek
	}

	if latin > cyrillic {
		if countMarkers(lower, englishMarkers) >= markerWordThreshold {
			return English
		}

		return Uzbek
	}

	return Unknown
}

// IsUzbek is the gate used by the ingestion pipeline.
func IsUzbek(text string) bool {
	return Detect(text) == Uzbek
}

func countMarkers(lower string, markers []string) int {
	count := 0

	for _, m := range markers {
		if strings.Contains(lower, m) {
			count++
		}
	}

	return count
}
