// Package app assembles the assistant from configuration. Both programs
// (the HTTP API and the Telegram bot) build the same service graph here and
// differ only in the front door they attach.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"github.com/tbourn/go-assistant-backend/internal/bot"
	"github.com/tbourn/go-assistant-backend/internal/config"
	"github.com/tbourn/go-assistant-backend/internal/faq"
	httpapi "github.com/tbourn/go-assistant-backend/internal/http"
	"github.com/tbourn/go-assistant-backend/internal/llm"
	"github.com/tbourn/go-assistant-backend/internal/repo"
	"github.com/tbourn/go-assistant-backend/internal/services"
	"github.com/tbourn/go-assistant-backend/internal/storage"
)

// pollSlack is added to the long-poll timeout for the Telegram HTTP client.
const pollSlack = 10 * time.Second

// Flags are the command-line overrides shared by both programs.
type Flags struct {
	Addr    string
	EnvFile string
	DBDSN   string
}

// ParseFlags parses args (without the program name). A nil Flags and nil
// error mean --help was printed.
func ParseFlags(name string, args []string) (*Flags, error) {
	var f Flags
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.StringVar(&f.Addr, "addr", "", "listen port, overrides PORT")
	flagSet.StringVar(&f.EnvFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	flagSet.StringVar(&f.DBDSN, "db-dsn", "", "durable store DSN, overrides DB_DSN")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// LoadConfig loads the dotenv file (a missing file is fine), reads the
// environment and applies flag overrides.
func LoadConfig(f Flags) (config.Config, error) {
	if f.EnvFile != "" {
		if err := godotenv.Load(f.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("load %s: %w", f.EnvFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if f.Addr != "" {
		cfg.Port = f.Addr
	}
	if f.DBDSN != "" {
		cfg.DB.DSN = f.DBDSN
	}
	return cfg, nil
}

// App is the assembled service graph.
type App struct {
	Config       config.Config
	DB           *gorm.DB
	Gateway      *llm.Gateway
	Orchestrator *services.Orchestrator
	Profiles     services.ProfileService
	Support      *services.SupportService
	FAQ          *faq.Book
	// Telegram is nil when no bot token is configured.
	Telegram *bot.Client

	tickets storage.TicketStore
	closers []func() error
}

// Build opens the durable store, falling back to memory when it is
// unreachable, and wires the pipeline. Infrastructure problems degrade
// instead of failing.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Config: cfg}

	db, err := repo.Open(cfg.DB)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("driver", cfg.DB.Driver).Msg("durable store not opened")
	default:
		if err := repo.AutoMigrate(db); err != nil {
			log.Warn().Err(err).Msg("auto-migrate failed")
		}
		a.DB = db
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
	}

	history := storage.NewHistoryStore(ctx, a.DB)
	a.tickets = storage.NewTicketStore(ctx, a.DB)
	a.Profiles = services.NewProfileService(ctx, a.DB)

	gemini := llm.NewGeminiBackend(cfg.Model.GeminiAPIKey, cfg.Model.Temperature, cfg.Model.MaxTokens)
	a.closers = append(a.closers, gemini.Close)
	a.Gateway = llm.NewGateway(
		llm.NewAggregatorBackend(cfg.Model.BaseURL, cfg.Model.APIKey, cfg.Model.Timeout, cfg.Model.Temperature, cfg.Model.MaxTokens),
		gemini,
	)
	a.Orchestrator = services.NewOrchestrator(history, a.Profiles, a.Gateway, cfg.MaxHistory, cfg.Model.DefaultModel)

	var esc services.Escalator
	if cfg.Telegram.Token != "" {
		a.Telegram = bot.NewClient(cfg.Telegram.APIBase, cfg.Telegram.Token, cfg.Telegram.PollTimeout+pollSlack, cfg.Telegram.SendRPS)
		esc = bot.NewEscalator(a.Telegram, a.Profiles, cfg.Admin)
	}
	a.Support = services.NewSupportService(a.tickets, esc)

	var extra []faq.Entry
	if cfg.FAQPath != "" {
		if extra, err = faq.LoadFile(cfg.FAQPath); err != nil {
			log.Warn().Err(err).Str("path", cfg.FAQPath).Msg("extra FAQ entries not loaded")
		}
	}
	a.FAQ = faq.NewBook(extra)

	log.Info().
		Str("history", history.Backend()).
		Str("tickets", a.tickets.Backend()).
		Str("profiles", a.Profiles.Backend()).
		Str("default_model", a.Orchestrator.DefaultModel).
		Bool("model_ready", a.Gateway.Ready(a.Orchestrator.DefaultModel)).
		Bool("escalation", esc != nil).
		Int("faq_extra", len(extra)).
		Msg("assistant assembled")
	return a, nil
}

// Bot builds the long-poll dispatcher. It fails when no token is set.
func (a *App) Bot() (*bot.Bot, error) {
	if a.Telegram == nil {
		return nil, errors.New("TELEGRAM_TOKEN is required")
	}
	return bot.New(bot.Deps{
		Messenger: a.Telegram,
		Assistant: a.Orchestrator,
		Sessions:  a.Orchestrator.Sessions,
		Profiles:  a.Profiles,
		Support:   a.Support,
		FAQ:       a.FAQ,
		Admin:     a.Config.Admin,
	}, a.Config.Telegram.PollTimeout), nil
}

// Checks are the readiness checks for /readyz.
func (a *App) Checks() []httpapi.Check {
	return []httpapi.Check{
		{Name: "store", Run: func(ctx context.Context) error {
			if a.tickets.Backend() == storage.BackendMemory {
				// Running on the fallback is degraded but serving.
				return nil
			}
			return repo.Ping(ctx, a.DB)
		}},
		{Name: "model", Run: func(context.Context) error {
			if !a.Gateway.Ready(a.Orchestrator.DefaultModel) {
				return errors.New("default model backend is not configured")
			}
			return nil
		}},
	}
}

// Close releases the model clients and the database pool.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
