package cleaner

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "markdown link resolves to label",
			input:    "Yangilik: [batafsil o'qing](https://example.uz/news/1) shu yerda",
			expected: "Yangilik: batafsil o'qing shu yerda",
		},
		{
			name:     "bare urls removed",
			input:    "Prezident yangi qonunni imzoladi. https://kun.uz/12345",
			expected: "Prezident yangi qonunni imzoladi.",
		},
		{
			name:     "www url removed",
			input:    "Batafsil ma'lumot www.example.uz saytida",
			expected: "Batafsil ma'lumot saytida",
		},
		{
			name:     "hashtags removed",
			input:    "Yangi qonun imzolandi #siyosat #yangilik",
			expected: "Yangi qonun imzolandi",
		},
		{
			name:     "promo line with marker glyph removed",
			input:    "⚡️ Дунё🌐Уз - Тв да кўрсатмайдиган хабарлар канали!\nAsosiy yangilik matni shu yerda",
			expected: "Asosiy yangilik matni shu yerda",
		},
		{
			name:     "source attribution line removed",
			input:    "Yangilik matni\nManba: @kunuz",
			expected: "Yangilik matni",
		},
		{
			name:     "official channel phrase removed",
			input:    "Yangilik matni\n@kunuz rasmiy kanali obuna bo'ling",
			expected: "Yangilik matni",
		},
		{
			name:     "trailing mention removed",
			input:    "Yangilik matni davom etadi @kunuz",
			expected: "Yangilik matni davom etadi",
		},
		{
			name:     "outlet possessive rewritten to bare noun",
			input:    "Kun.uz surishtiruvi natijalarini e'lon qildi",
			expected: "surishtiruv natijalarini e'lon qildi",
		},
		{
			name:     "outlet names removed",
			input:    "Bu haqda Daryo xabar berdi, Gazeta.uz tasdiqladi",
			expected: "Bu haqda xabar berdi, tasdiqladi",
		},
		{
			name:     "standalone telegram mention removed",
			input:    "Bizni Telegram orqali kuzatib boring",
			expected: "Bizni orqali kuzatib boring",
		},
		{
			name:     "category header line removed",
			input:    "🌍 Dunyo yangiliklari\n\nAQSH prezidenti bayonot berdi",
			expected: "AQSH prezidenti bayonot berdi",
		},
		{
			name:     "tv pitch line removed in latin script",
			input:    "Tv da ko'rsatmaydigan yangiliklar kanali!\nAsosiy matn shu yerda",
			expected: "Asosiy matn shu yerda",
		},
		{
			name:     "emoji spam collapsed",
			input:    "Yangilik 🔥🔥🔥🔥 juda muhim",
			expected: "Yangilik 🔥 juda muhim",
		},
		{
			name:     "short emoji run kept",
			input:    "Yangilik 🔥🔥 juda muhim",
			expected: "Yangilik 🔥🔥 juda muhim",
		},
		{
			name:     "keycap digit spam collapsed",
			input:    "Raqam 5️⃣5️⃣5️⃣ chiqdi",
			expected: "Raqam 5️⃣ chiqdi",
		},
		{
			name:     "bold and spoiler markers stripped",
			input:    "**Muhim** yangilik ||sir emas|| ~~eski~~ matn",
			expected: "Muhim yangilik sir emas eski matn",
		},
		{
			name:     "whitespace normalized",
			input:    "Birinchi   qator\n\n\n\nIkkinchi    qator",
			expected: "Birinchi qator\n\nIkkinchi qator",
		},
		{
			name:     "branding line, url and hashtag all removed",
			input:    "⚡️ Дунё🌐Уз хабарлар канали!\n\nPrezident yangi qonunni imzoladi. https://kun.uz/12345 #siyosat",
			expected: "Prezident yangi qonunni imzoladi.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCleanIsPure(t *testing.T) {
	input := "Prezident yangi qonunni imzoladi. #siyosat"

	first := Clean(input)
	second := Clean(input)

	if first != second {
		t.Errorf("Clean() not deterministic: %q vs %q", first, second)
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("a", 200)

	if got := Preview(long, 100); len([]rune(got)) != 103 {
		t.Errorf("Preview() length = %d, want 103", len([]rune(got)))
	}

	if got := Preview("qisqa", 100); got != "qisqa" {
		t.Errorf("Preview() = %q, want unchanged", got)
	}
}
