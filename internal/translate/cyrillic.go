package translate

import (
	"strings"
	"unicode"
)

// Uzbek Latin to Cyrillic transliteration. Digraphs and the apostrophe
// letters come first so they win over their single-letter parts; the
// U+02BB and ASCII apostrophe spellings of oʻ/gʻ are both covered.
var latinToCyrillic = strings.NewReplacer(
	"oʻ", "ў", "gʻ", "ғ", "o'", "ў", "g'", "ғ",
	"Oʻ", "Ў", "Gʻ", "Ғ", "O'", "Ў", "G'", "Ғ",
	"sh", "ш", "ch", "ч", "ng", "нг", "yo", "ё", "yu", "ю", "ya", "я",
	"Sh", "Ш", "Ch", "Ч", "Ng", "Нг", "Yo", "Ё", "Yu", "Ю", "Ya", "Я",
	"a", "а", "b", "б", "d", "д", "e", "е", "f", "ф", "g", "г", "h", "ҳ",
	"i", "и", "j", "ж", "k", "к", "l", "л", "m", "м", "n", "н", "o", "о",
	"p", "п", "q", "қ", "r", "р", "s", "с", "t", "т", "u", "у", "v", "в",
	"x", "х", "y", "й", "z", "з",
	"A", "А", "B", "Б", "D", "Д", "E", "Е", "F", "Ф", "G", "Г", "H", "Ҳ",
	"I", "И", "J", "Ж", "K", "К", "L", "Л", "M", "М", "N", "Н", "O", "О",
	"P", "П", "Q", "Қ", "R", "Р", "S", "С", "T", "Т", "U", "У", "V", "В",
	"X", "Х", "Y", "Й", "Z", "З",
)

// ToCyrillic converts Uzbek Latin script to Cyrillic. Text that is already
// mostly Cyrillic passes through unchanged.
func ToCyrillic(text string) string {
	if text == "" || isMostlyCyrillic(text) {
		return text
	}

	return latinToCyrillic.Replace(text)
}

// isMostlyCyrillic reports whether more than half of the letters are
// Cyrillic.
func isMostlyCyrillic(text string) bool {
	var letters, cyrillic int

	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}

		letters++

		if unicode.Is(unicode.Cyrillic, r) {
			cyrillic++
		}
	}

	return letters > 0 && cyrillic*2 > letters
}
