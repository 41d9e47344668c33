package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/xabarchi/newsbot/internal/platform/config"
	"github.com/xabarchi/newsbot/internal/platform/observability"
)

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = time.Minute
	rateLimiterBurst        = 5
)

// ErrCircuitBreakerOpen indicates the circuit breaker is open.
var ErrCircuitBreakerOpen = fmt.Errorf("llm: circuit breaker is open")

const systemPrompt = `You classify Uzbek news posts for a Telegram news bot.
Assign exactly one category from this list, or "none" when the post is not
factual news (ads, opinions, entertainment):
siyosat | iqtisod | jamiyat | sport | texnologiya | dunyo | salomatlik | obhavo

Respond strictly as JSON: {"category": "<label>"}
Accuracy matters more than coverage: when unsure, answer "none".`

type openaiClient struct {
	client      *openai.Client
	model       string
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state.
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

// NewOpenAI builds the OpenAI-backed classifier override.
func NewOpenAI(cfg *config.Config, logger *zerolog.Logger) Client {
	return &openaiClient{
		client:      openai.NewClient(cfg.LLMAPIKey),
		model:       cfg.LLMModel,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.LLMRPS)), rateLimiterBurst),
	}
}

type classifyResponse struct {
	Category string `json:"category"`
}

func (c *openaiClient) ClassifyNews(ctx context.Context, text, channel string) (string, error) {
	if err := c.checkCircuit(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limiter: %w", err)
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Channel: @%s\n\n%s", channel, text)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})

	observability.LLMRequestDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())

	if err != nil {
		c.recordFailure()

		return "", fmt.Errorf("llm chat completion: %w", err)
	}

	c.recordSuccess()

	if len(resp.Choices) == 0 {
		return "", ErrNoCategory
	}

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		c.logger.Debug().Err(err).Msg("llm returned non-JSON classification")

		return "", ErrNoCategory
	}

	category := strings.ToLower(strings.TrimSpace(parsed.Category))
	if category == "" || category == "none" {
		return "", ErrNoCategory
	}

	return category, nil
}

func (c *openaiClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", ErrCircuitBreakerOpen, c.circuitOpenUntil)
	}

	return nil
}

func (c *openaiClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures = 0
}

func (c *openaiClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures++
	if c.consecutiveFailures >= circuitBreakerThreshold {
		c.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}
