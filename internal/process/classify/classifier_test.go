package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xabarchi/newsbot/internal/core/llm"
	"github.com/xabarchi/newsbot/internal/platform/config"
)

func newTestClassifier(client llm.Client) *Classifier {
	logger := zerolog.Nop()

	return New(client, &logger)
}

func TestClassify_KeywordStages(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "too short",
			text: "Salom",
			want: "",
		},
		{
			name: "short cyrillic text under the character minimum",
			text: "давлат",
			want: "",
		},
		{
			name: "economy indicator override",
			text: "Dollar kursi oshdi, maosh narxlar ortidan yetib bormayapti",
			want: config.CategoryEconomy,
		},
		{
			name: "weather indicator override",
			text: "Ertaga harorat besh gradus sovuq bo'ladi",
			want: config.CategoryWeather,
		},
		{
			name: "politics wins priority tie against sport",
			text: "Prezident stadionga tashrif buyurdi",
			want: config.CategoryPolitics,
		},
		{
			name: "weather dropped from mixed candidates",
			text: "Yomg'ir bozorni yopdi",
			want: config.CategoryEconomy,
		},
		{
			name: "short keyword matches whole words only",
			text: "Kompaniya AI modelini taqdim etdi",
			want: config.CategoryTechnology,
		},
		{
			name: "short keyword inside longer word does not match",
			text: "Golf musobaqasi boshlandi bugun",
			want: "",
		},
		{
			name: "ambiguous climate word without context stays social",
			text: "Shahar havosi iflos bo'lib qoldi",
			want: config.CategorySociety,
		},
		{
			name: "ambiguous climate word alone scores no category",
			text: "Tashqarida havo juda yaxshi edi bugun",
			want: "",
		},
		{
			name: "ambiguous climate word with context scores weather",
			text: "Havo prognoz markazi ma'lum qildi",
			want: config.CategoryWeather,
		},
		{
			name: "digit heavy fallback",
			text: "1000 2000 3000 4000",
			want: config.CategoryEconomy,
		},
		{
			name: "long text fallback",
			text: strings.Repeat("zxcvb qwerty ", 45),
			want: config.CategorySociety,
		},
		{
			name: "no signal at all",
			text: "zxcvb qwerty asdfgh",
			want: "",
		},
	}

	c := newTestClassifier(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(context.Background(), tt.text, "testchannel")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := newTestClassifier(nil)
	text := "Prezident stadionga tashrif buyurdi"

	first := c.Classify(context.Background(), text, "ch")
	require.NotEmpty(t, first)

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Classify(context.Background(), text, "ch"))
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := newTestClassifier(nil)

	assert.Equal(t,
		c.Classify(context.Background(), "PREZIDENT qaror imzoladi", "ch"),
		c.Classify(context.Background(), "prezident qaror imzoladi", "ch"),
	)
}

func TestClassify_LLMOverride(t *testing.T) {
	text := "Prezident stadionga tashrif buyurdi"

	t.Run("known label accepted", func(t *testing.T) {
		mock := &llm.MockClient{Category: config.CategorySport}
		c := newTestClassifier(mock)

		got := c.Classify(context.Background(), text, "ch")
		assert.Equal(t, config.CategorySport, got)
		assert.Equal(t, 1, mock.Calls)
	})

	t.Run("general pseudo-category rejected", func(t *testing.T) {
		mock := &llm.MockClient{Category: config.CategoryGeneral}
		c := newTestClassifier(mock)

		got := c.Classify(context.Background(), text, "ch")
		assert.Equal(t, config.CategoryPolitics, got)
	})

	t.Run("unknown label falls back to keywords", func(t *testing.T) {
		mock := &llm.MockClient{Category: "breaking"}
		c := newTestClassifier(mock)

		got := c.Classify(context.Background(), text, "ch")
		assert.Equal(t, config.CategoryPolitics, got)
	})

	t.Run("llm error falls back to keywords", func(t *testing.T) {
		mock := &llm.MockClient{Err: errors.New("upstream down")}
		c := newTestClassifier(mock)

		got := c.Classify(context.Background(), text, "ch")
		assert.Equal(t, config.CategoryPolitics, got)
	})

	t.Run("no category answer falls back to keywords", func(t *testing.T) {
		mock := &llm.MockClient{Err: llm.ErrNoCategory}
		c := newTestClassifier(mock)

		got := c.Classify(context.Background(), text, "ch")
		assert.Equal(t, config.CategoryPolitics, got)
	})
}
