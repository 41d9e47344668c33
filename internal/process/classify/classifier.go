// Package classify assigns a single category to cleaned post text.
//
// Plain keyword matching is ambiguous across this domain's overlapping
// vocabularies (weather words appear inside economic and social text), so
// classification runs in stages: an optional AI override, a strong-indicator
// check, weighted keyword scoring with priority tie-breaking, and structural
// fallbacks. The classifier prefers returning no category over a wrong one;
// uncategorized items are dropped, not stored.
package classify

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/xabarchi/newsbot/internal/core/llm"
	"github.com/xabarchi/newsbot/internal/platform/config"
)

const (
	minTextLen = 10

	indicatorThreshold = 2
	wholeWordMaxLen    = 3

	digitDensityThreshold = 0.10
	longTextThreshold     = 500
)

type Classifier struct {
	llmClient llm.Client
	logger    *zerolog.Logger
}

func New(llmClient llm.Client, logger *zerolog.Logger) *Classifier {
	if llmClient == nil {
		llmClient = llm.NewDisabled()
	}

	return &Classifier{
		llmClient: llmClient,
		logger:    logger,
	}
}

// Classify returns the category for the text, or "" when none resolves.
// Apart from the optional AI override it is a pure function of its inputs.
func (c *Classifier) Classify(ctx context.Context, text, channel string) string {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextLen {
		return ""
	}

	if category := c.classifyWithLLM(ctx, text, channel); category != "" {
		return category
	}

	// Caser carries fold state, so a fresh one per call keeps Classify safe
	// for concurrent use.
	caser := cases.Fold()
	lower := caser.String(text)

	if category := classifyByIndicators(lower); category != "" {
		return category
	}

	if category := classifyByScore(caser, lower); category != "" {
		return category
	}

	return classifyByShape(text)
}

// classifyWithLLM consults the optional AI override. The answer is used only
// when it names a configured category; anything else falls through to the
// keyword stages.
func (c *Classifier) classifyWithLLM(ctx context.Context, text, channel string) string {
	category, err := c.llmClient.ClassifyNews(ctx, text, channel)
	if err != nil {
		if !errors.Is(err, llm.ErrDisabled) && !errors.Is(err, llm.ErrNoCategory) {
			c.logger.Debug().Err(err).Msg("llm classifier unavailable, using keyword stages")
		}

		return ""
	}

	if category == config.CategoryGeneral || !config.IsKnownCategory(category) {
		c.logger.Debug().Str("category", category).Msg("llm returned unknown category label, ignoring")

		return ""
	}

	return category
}

// classifyByIndicators resolves the common weather/economy ambiguity before
// scoring: two strong indicators of one side with zero of the other settle
// the category outright.
func classifyByIndicators(lower string) string {
	economy := countContained(lower, config.EconomyIndicators)
	weather := countContained(lower, config.WeatherIndicators)

	if economy >= indicatorThreshold && weather == 0 {
		return config.CategoryEconomy
	}

	if weather >= indicatorThreshold && economy == 0 {
		return config.CategoryWeather
	}

	return ""
}

func classifyByScore(caser cases.Caser, lower string) string {
	scores := make(map[string]int)

	for _, ck := range config.Categories() {
		score := 0

		for _, keyword := range ck.Keywords {
			kw := caser.String(keyword)
			if !keywordMatches(lower, kw) {
				continue
			}

			// Climate-ambiguous words (havo, qor, nam and their Cyrillic
			// twins) appear incidentally in every category's text; they
			// count nowhere without a weather-context word alongside.
			if isClimateAmbiguous(kw) && !hasWeatherContext(lower) {
				continue
			}

			score++
		}

		if score > 0 {
			scores[ck.Category] = score
		}
	}

	if len(scores) == 0 {
		return ""
	}

	return resolveCandidates(scores)
}

// resolveCandidates picks among the top-scoring categories. Weather is
// dropped from mixed candidate sets (its vocabulary co-occurs incidentally);
// remaining ties resolve by the fixed priority order.
func resolveCandidates(scores map[string]int) string {
	maxScore := 0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}

	candidates := make(map[string]bool, len(scores))
	for cat, s := range scores {
		if s == maxScore {
			candidates[cat] = true
		}
	}

	if candidates[config.CategoryWeather] && len(candidates) > 1 {
		delete(candidates, config.CategoryWeather)
	}

	for _, cat := range config.CategoryPriority {
		if candidates[cat] {
			return cat
		}
	}

	// Priority covers every configured category; this is unreachable unless
	// the tables drift apart.
	for _, ck := range config.Categories() {
		if candidates[ck.Category] {
			return ck.Category
		}
	}

	return ""
}

// classifyByShape is the last-resort structural fallback when no keyword
// scored: number-heavy text is usually market data, long-form text defaults
// to the society category.
func classifyByShape(text string) string {
	runes := []rune(text)

	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}

	if len(runes) > 0 && float64(digits)/float64(len(runes)) > digitDensityThreshold {
		return config.CategoryEconomy
	}

	if len(runes) > longTextThreshold {
		return config.CategorySociety
	}

	return ""
}

// keywordMatches reports whether the keyword occurs in the text. Keywords of
// up to three characters must match as whole words to avoid false positives
// from short substrings.
func keywordMatches(lower, keyword string) bool {
	if len([]rune(keyword)) <= wholeWordMaxLen {
		return containsWholeWord(lower, keyword)
	}

	return strings.Contains(lower, keyword)
}

func containsWholeWord(text, word string) bool {
	for from := 0; ; {
		idx := strings.Index(text[from:], word)
		if idx < 0 {
			return false
		}

		start := from + idx
		end := start + len(word)

		if !isWordRune(runeBefore(text, start)) && !isWordRune(runeAt(text, end)) {
			return true
		}

		from = start + len(word)
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func runeBefore(s string, idx int) rune {
	if idx <= 0 {
		return ' '
	}

	r, _ := decodeLastRune(s[:idx])

	return r
}

func runeAt(s string, idx int) rune {
	if idx >= len(s) {
		return ' '
	}

	for _, r := range s[idx:] {
		return r
	}

	return ' '
}

func decodeLastRune(s string) (rune, int) {
	var last rune = ' '

	size := 0

	for i, r := range s {
		last = r
		size = len(s) - i
	}

	return last, size
}

func isClimateAmbiguous(keyword string) bool {
	for _, w := range config.ClimateAmbiguous {
		if keyword == w {
			return true
		}
	}

	return false
}

func hasWeatherContext(lower string) bool {
	return countContained(lower, config.WeatherContext) > 0
}

func countContained(lower string, words []string) int {
	count := 0

	for _, w := range words {
		if strings.Contains(lower, w) {
			count++
		}
	}

	return count
}
