package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCyrillic(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "empty text",
			text: "",
			want: "",
		},
		{
			name: "plain letters",
			text: "qonun qabul qilindi",
			want: "қонун қабул қилинди",
		},
		{
			name: "digraphs win over their parts",
			text: "shahar yangi chiroyli",
			want: "шаҳар янги чиройли",
		},
		{
			name: "apostrophe letters",
			text: "O'zbekiston bog'bon",
			want: "Ўзбекистон боғбон",
		},
		{
			name: "modifier letter apostrophes",
			text: "oʻquvchi gʻalaba",
			want: "ўқувчи ғалаба",
		},
		{
			name: "digits and punctuation untouched",
			text: "2026-yil, 1-sentabr.",
			want: "2026-йил, 1-сентабр.",
		},
		{
			name: "mostly cyrillic text passes through",
			text: "Ҳукумат қарор қабул қилди",
			want: "Ҳукумат қарор қабул қилди",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToCyrillic(tt.text))
		})
	}
}
