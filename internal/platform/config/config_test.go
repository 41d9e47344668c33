package config

import (
	"os"
	"testing"
)

const (
	testEnvPostgresDSN = "POSTGRES_DSN"
	testEnvBotToken    = "BOT_TOKEN"
	testEnvTGAPIID     = "TG_API_ID"
	testEnvTGAPIHash   = "TG_API_HASH"

	testPostgresDSN = "postgres://localhost/test"
	testBotToken    = "123456:ABC-DEF"
	testTGAPIID     = "12345"
	testTGAPIHash   = "abcdef123456"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()

	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
	t.Setenv(testEnvBotToken, testBotToken)
	t.Setenv(testEnvTGAPIID, testTGAPIID)
	t.Setenv(testEnvTGAPIHash, testTGAPIHash)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvPostgresDSN)
	os.Unsetenv(testEnvBotToken)
	os.Unsetenv(testEnvTGAPIID)
	os.Unsetenv(testEnvTGAPIHash)

	_, err := Load()
	if err == nil {
		t.Error("expected error for missing required env vars")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AppEnv != "local" {
		t.Errorf("AppEnv = %q, want %q", cfg.AppEnv, "local")
	}

	if cfg.TrialDays != 7 {
		t.Errorf("TrialDays = %d, want 7", cfg.TrialDays)
	}

	if cfg.WorkerBatchSize != 10 {
		t.Errorf("WorkerBatchSize = %d, want 10", cfg.WorkerBatchSize)
	}

	if cfg.FanoutSendDelay.Milliseconds() != 300 {
		t.Errorf("FanoutSendDelay = %v, want 300ms", cfg.FanoutSendDelay)
	}
}

func TestLoad_SourceChannels(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("SOURCE_CHANNELS", "kunuz,yangiliklar331")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.SourceChannels) != 2 || cfg.SourceChannels[0] != "kunuz" {
		t.Errorf("SourceChannels = %v, want [kunuz yangiliklar331]", cfg.SourceChannels)
	}
}

func TestConfig_IsAdmin(t *testing.T) {
	cfg := &Config{AdminIDs: []int64{42, 1001}}

	if !cfg.IsAdmin(42) {
		t.Error("IsAdmin(42) = false, want true")
	}

	if cfg.IsAdmin(7) {
		t.Error("IsAdmin(7) = true, want false")
	}
}
