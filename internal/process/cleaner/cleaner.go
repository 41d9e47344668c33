// Package cleaner strips source-channel noise from raw post text: links,
// hashtags, channel branding, call-to-action lines, emoji spam and markdown
// artifacts. It is a best-effort denoising pass; downstream classification
// must tolerate residual noise.
package cleaner

import (
	"regexp"
	"strings"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// Rules run in order. Earlier removals change what later patterns match:
// markdown links must resolve to labels before bare-URL removal, and line
// pattern removal must happen before whitespace normalization glues lines
// together.
var rules = []rule{
	// Markdown links resolve to their label.
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},

	// Bare URLs.
	{regexp.MustCompile(`https?://\S+`), ""},
	{regexp.MustCompile(`www\.\S+`), ""},

	// Hashtags.
	{regexp.MustCompile(`#[\p{L}\p{N}_]+`), ""},

	// Lines injected by sources: marker glyphs, attribution, CTA.
	{regexp.MustCompile(`(?m)^[⚡️👉📢🔗❗️]+[^\n]*\n?`), ""},
	{regexp.MustCompile(`(?im)^🔗?\s*manba:?[^\n]*\n?`), ""},
	{regexp.MustCompile(`(?i)manba:?\s*@\w+\s*`), ""},
	{regexp.MustCompile(`(?im)^📹\s*vid[еe]o[^\n]*\n?`), ""},
	{regexp.MustCompile(`(?i)vid[еe]o(sharh)?ni\s+tomosha\s+qiling`), ""},
	{regexp.MustCompile(`(?im)^[^\n]*rasmiy\s+kanali[^\n]*\n?`), ""},
	{regexp.MustCompile(`(?i)\s*rasmiy\s+kanali`), ""},
	{regexp.MustCompile(`(?im)^[^\n]*(xabarlar|хабарлар)\s+(kanali|канали)[^\n]*\n?`), ""},
	{regexp.MustCompile(`(?im)^batafsil\s*—[^\n]*\n?`), ""},
	{regexp.MustCompile(`(?im)^подробнее\s*—[^\n]*\n?`), ""},

	// Outlet self-references. Kun.uz possessives rewrite to the bare noun;
	// the names themselves disappear.
	{regexp.MustCompile(`(?i)kun\.uz\s*surishtiruvi`), "surishtiruv"},
	{regexp.MustCompile(`(?i)kun\.uz\s*jurnalistining`), "jurnalistning"},
	{regexp.MustCompile(`(?i)kun\.uz\s*`), ""},
	{regexp.MustCompile(`(?i)gazeta\.uz\s*`), ""},
	{regexp.MustCompile(`(?i)\bdaryo\s*`), ""},
	{regexp.MustCompile(`(?i)yangiliklargruhi\s*`), ""},

	// Standalone Telegram mentions.
	{regexp.MustCompile(`(?m)\s+Telegram\s*\n`), "\n"},
	{regexp.MustCompile(`(?i)\s+telegram\s+`), " "},

	// Ad lines anywhere in the post: anything from a lightning bolt to the
	// end of the line, and the recurring "не показывают по ТВ" channel pitch
	// in both scripts.
	{regexp.MustCompile(`⚡[^\n]*\n?`), ""},
	{regexp.MustCompile(`(?i)[^\n]*тв\s*да\s*кўрсатмайдиган[^\n]*канали[^\n]*\n?`), ""},
	{regexp.MustCompile(`(?i)[^\n]*tv\s*da\s*ko['ʻ’]?rsatmaydigan[^\n]*kanali[^\n]*\n?`), ""},

	// Category header lines the sources prepend to every post.
	{regexp.MustCompile(`(?im)^(🌍\s*(дунё|dunyo)|👥\s*(жамият|jamiyat)|⚽\s*(спорт|sport)|💰\s*(иқтисод|iqtisod)|🏛\s*(сиёсат|siyosat)|💻\s*(технология|texnologiya)|🏥\s*(саломатлик|salomatlik)|🌤\s*(об-ҳаво|ob-havo|obhavo))[^\n]*\n?`), ""},

	// Channel handle pipes and trailing mentions.
	{regexp.MustCompile(`\|\s*@\w+\s*`), " "},
	{regexp.MustCompile(`@\w+\s*\|`), " "},
	{regexp.MustCompile(`(?m)\s+@\w+\s*$`), ""},

	// Markdown emphasis delimiters, keeping the enclosed text.
	{regexp.MustCompile(`\*{2,}`), ""},
	{regexp.MustCompile(`\|\|`), ""},
	{regexp.MustCompile(`~~`), ""},

	// Lines left holding only punctuation after the removals above.
	{regexp.MustCompile(`(?m)^\s*[!?.]+\s*$`), ""},
}

var (
	intraLineSpace = regexp.MustCompile(`[ \t]+`)
	blankLines     = regexp.MustCompile(`\n\s*\n+`)
)

// Clean returns the denoised text. It is a pure function and never fails;
// empty input yields empty output.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	for _, r := range rules {
		text = r.re.ReplaceAllString(text, r.repl)
	}

	text = collapseEmojiRuns(text)

	return normalizeWhitespace(text)
}

const (
	emojiRangeLo   = 0x1F300
	emojiRangeHi   = 0x1F9FF
	emojiRunCutoff = 3
	variantRune    = 0xFE0F
	keycapRune     = 0x20E3
)

// collapseEmojiRuns reduces runs of three or more identical emoji to a
// single one, and repeated keycap digits (5️⃣5️⃣) to a single keycap.
// RE2 has no backreferences, so this runs as a scan instead of a pattern.
func collapseEmojiRuns(text string) string {
	runes := []rune(text)

	var out []rune

	for i := 0; i < len(runes); {
		r := runes[i]

		if r >= emojiRangeLo && r <= emojiRangeHi {
			runLen := 1
			for i+runLen < len(runes) && runes[i+runLen] == r {
				runLen++
			}

			if runLen >= emojiRunCutoff {
				out = append(out, r)
			} else {
				for j := 0; j < runLen; j++ {
					out = append(out, r)
				}
			}

			i += runLen

			continue
		}

		if keycapLen := keycapAt(runes, i); keycapLen > 0 {
			runLen := keycapLen
			for next := keycapAt(runes, i+runLen); next > 0 && runes[i+runLen] == r; next = keycapAt(runes, i+runLen) {
				runLen += next
			}

			out = append(out, runes[i:i+keycapLen]...)
			i += runLen

			continue
		}

		out = append(out, r)
		i++
	}

	return string(out)
}

// keycapAt reports the length of a keycap emoji sequence (digit, optional
// variation selector, combining keycap) starting at index i, or 0.
func keycapAt(runes []rune, i int) int {
	if i >= len(runes) || runes[i] < '0' || runes[i] > '9' {
		return 0
	}

	j := i + 1
	if j < len(runes) && runes[j] == variantRune {
		j++
	}

	if j < len(runes) && runes[j] == keycapRune {
		return j - i + 1
	}

	return 0
}

// normalizeWhitespace collapses runs of spaces within lines, trims every
// line, and reduces multiple blank lines to a single one.
func normalizeWhitespace(text string) string {
	text = intraLineSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Preview returns the first maxLen characters of text for log output.
func Preview(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	return string(runes[:maxLen]) + "..."
}
