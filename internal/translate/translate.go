// Package translate localizes outgoing news text through the public Google
// Translate endpoint. Translation is best-effort: any failure returns the
// original text, and delivery is never blocked on it.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xabarchi/newsbot/internal/platform/observability"
)

const (
	requestTimeout = 10 * time.Second

	// Uzbek text is served as stored; only ru and en hit the service, and
	// uz_cyrl is a local transliteration.
	langUzbek         = "uz"
	langUzbekCyrillic = "uz_cyrl"
	langRussian       = "ru"
	langEnglish       = "en"
)

type Translator struct {
	endpoint string
	client   *http.Client
	logger   *zerolog.Logger
}

func New(endpoint string, logger *zerolog.Logger) *Translator {
	return &Translator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
	}
}

// Translate returns the text in the target language, or the original text
// unchanged when the target is the source language or the service fails.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) string {
	if text == "" || targetLang == "" || targetLang == langUzbek {
		return text
	}

	if targetLang == langUzbekCyrillic {
		return ToCyrillic(text)
	}

	if targetLang != langRussian && targetLang != langEnglish {
		return text
	}

	translated, err := t.request(ctx, text, targetLang)
	if err != nil {
		observability.TranslateRequestsTotal.WithLabelValues("error").Inc()
		t.logger.Warn().Err(err).Str("target", targetLang).Msg("translation failed, delivering original text")

		return text
	}

	observability.TranslateRequestsTotal.WithLabelValues("ok").Inc()

	return translated
}

func (t *Translator) request(ctx context.Context, text, targetLang string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}

	translated, err := parseResponse(body)
	if err != nil {
		return "", fmt.Errorf("parse translate response: %w", err)
	}

	if translated == "" {
		return "", fmt.Errorf("translate service returned empty result")
	}

	return translated, nil
}

// parseResponse decodes the translate_a/single payload: an array whose first
// element is a list of [translatedSegment, originalSegment, ...] tuples.
func parseResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}

	if len(payload) == 0 {
		return "", fmt.Errorf("empty payload")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", err
	}

	var sb strings.Builder

	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}

		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}

		sb.WriteString(part)
	}

	return strings.TrimSpace(sb.String()), nil
}
