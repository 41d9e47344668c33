// Package app wires the application together and exposes its run modes:
//
//   - Bot mode: subscriber-facing Telegram bot (registration, categories, plans)
//   - Reader mode: MTProto client that ingests posts from source channels
//   - Worker mode: processing pipeline (clean, classify, dedup, fan-out)
//   - All mode: every component in one process for small deployments
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xabarchi/newsbot/internal/bot"
	"github.com/xabarchi/newsbot/internal/core/llm"
	"github.com/xabarchi/newsbot/internal/fanout"
	"github.com/xabarchi/newsbot/internal/ingest/reader"
	"github.com/xabarchi/newsbot/internal/platform/config"
	"github.com/xabarchi/newsbot/internal/platform/observability"
	"github.com/xabarchi/newsbot/internal/process/classify"
	"github.com/xabarchi/newsbot/internal/process/dedup"
	"github.com/xabarchi/newsbot/internal/process/pipeline"
	db "github.com/xabarchi/newsbot/internal/storage"
	"github.com/xabarchi/newsbot/internal/subscription"
	"github.com/xabarchi/newsbot/internal/translate"
)

const errBotInit = "bot initialization failed: %w"

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.database, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunBot runs the subscriber bot mode.
func (a *App) RunBot(ctx context.Context) error {
	a.logger.Info().Msg("Starting bot mode")

	b, err := a.newBot()
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	if err := b.Run(ctx); err != nil {
		return fmt.Errorf("bot run: %w", err)
	}

	return nil
}

// RunReader runs the channel reader mode.
func (a *App) RunReader(ctx context.Context) error {
	a.logger.Info().Msg("Starting reader mode")

	r := reader.New(a.cfg, a.database, a.logger)

	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("reader run: %w", err)
	}

	return nil
}

// RunWorker runs the processing pipeline mode. The bot transport is attached
// so classified items can resolve media and fan out immediately.
func (a *App) RunWorker(ctx context.Context) error {
	a.logger.Info().Msg("Starting worker mode")

	b, err := a.newBot()
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	p := a.newPipeline(b)

	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	return nil
}

// RunAll runs the reader, the worker pipeline and the bot in one process.
func (a *App) RunAll(ctx context.Context) error {
	a.logger.Info().Msg("Starting all-in-one mode")

	b, err := a.newBot()
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)

	go func() {
		errCh <- a.RunReader(ctx)
	}()

	go func() {
		errCh <- a.newPipeline(b).Run(ctx)
	}()

	go func() {
		errCh <- b.Run(ctx)
	}()

	err = <-errCh
	cancel()

	// Drain the remaining components, keeping the first real failure over
	// the cancellations it triggered.
	for i := 0; i < 2; i++ {
		other := <-errCh
		if other == nil || errors.Is(other, context.Canceled) {
			continue
		}

		if err == nil || errors.Is(err, context.Canceled) {
			err = other
		}
	}

	if errors.Is(err, context.Canceled) {
		return err //nolint:wrapcheck
	}

	if err != nil {
		return fmt.Errorf("all-in-one run: %w", err)
	}

	return nil
}

func (a *App) newBot() (*bot.Bot, error) {
	subs := subscription.NewService(a.database, a.cfg, a.logger)
	translator := translate.New(a.cfg.TranslateURL, a.logger)

	return bot.New(a.cfg, a.database, subs, translator, a.logger)
}

func (a *App) newPipeline(b *bot.Bot) *pipeline.Pipeline {
	classifier := classify.New(a.newLLMClient(), a.logger)
	guard := dedup.NewGuard(a.database, a.logger)
	selector := fanout.NewSelector(a.database)
	dispatcher := fanout.NewDispatcher(
		selector, b, a.database, a.cfg.FanoutConcurrency, a.cfg.FanoutSendDelay, a.logger)

	return pipeline.New(a.cfg, a.database, classifier, guard, b, dispatcher, a.logger)
}

func (a *App) newLLMClient() llm.Client {
	if a.cfg.LLMAPIKey == "" {
		a.logger.Info().Msg("LLM classification disabled, using keyword scoring only")

		return llm.NewDisabled()
	}

	return llm.NewOpenAI(a.cfg, a.logger)
}
