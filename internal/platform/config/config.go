package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	// Subscriber-facing bot.
	BotToken string  `env:"BOT_TOKEN,required"`
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// MTProto reader credentials (user account).
	TGAPIID       int    `env:"TG_API_ID,required"`
	TGAPIHash     string `env:"TG_API_HASH,required"`
	TGPhone       string `env:"TG_PHONE"`
	TG2FAPassword string `env:"TG_2FA_PASSWORD"`
	TGSessionPath string `env:"TG_SESSION_PATH" envDefault:"./tg.session"`

	// Source channels, comma-separated usernames without the @ prefix.
	SourceChannels []string `env:"SOURCE_CHANNELS" envSeparator:","`

	ReaderFetchLimit   int           `env:"READER_FETCH_LIMIT" envDefault:"20"`
	ReaderCatchupLimit int           `env:"READER_CATCHUP_LIMIT" envDefault:"100"`
	ReaderPollInterval time.Duration `env:"READER_POLL_INTERVAL" envDefault:"30s"`

	WorkerBatchSize    int           `env:"WORKER_BATCH_SIZE" envDefault:"10"`
	WorkerPollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"10s"`

	// Fan-out pacing toward the Bot API.
	FanoutConcurrency int           `env:"FANOUT_CONCURRENCY" envDefault:"4"`
	FanoutSendDelay   time.Duration `env:"FANOUT_SEND_DELAY" envDefault:"300ms"`

	TrialDays int `env:"TRIAL_DAYS" envDefault:"7"`

	// Optional AI classifier override. Empty key disables the stage.
	LLMAPIKey    string `env:"LLM_API_KEY"`
	LLMModel     string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMRPS       int    `env:"LLM_RPS" envDefault:"1"`
	MinTextLen   int    `env:"MIN_TEXT_LEN" envDefault:"10"`
	HealthPort   int    `env:"HEALTH_PORT" envDefault:"8080"`
	TranslateURL string `env:"TRANSLATE_URL" envDefault:"https://translate.googleapis.com/translate_a/single"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}

// TrialDuration returns the trial window as a duration.
func (c *Config) TrialDuration() time.Duration {
	return time.Duration(c.TrialDays) * 24 * time.Hour
}

// IsAdmin reports whether the given Telegram user is an administrator.
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}

	return false
}
