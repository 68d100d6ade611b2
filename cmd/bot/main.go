// Command bot runs the assistant's Telegram front door over long polling.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-assistant-backend/internal/app"
	"github.com/tbourn/go-assistant-backend/internal/observability"
	"github.com/tbourn/go-assistant-backend/internal/sysutil"
)

var version = "dev"

func main() {
	flags, err := app.ParseFlags("bot", os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if flags == nil {
		return
	}
	cfg, err := app.LoadConfig(*flags)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.SetupLogger(os.Stderr, cfg.LogPretty, "assistant-bot")
	sysutil.SetLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Build{Version: version, Component: "bot"})
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	}

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("assemble assistant")
	}
	defer a.Close()

	b, err := a.Bot()
	if err != nil {
		log.Fatal().Err(err).Msg("bot not configured")
	}
	if err := b.Run(ctx); err != nil {
		log.Error().Err(err).Msg("bot stopped")
	}

	if shutdownOTel != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("trace exporter shutdown")
		}
	}
	log.Info().Msg("bot exited")
}
