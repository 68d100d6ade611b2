// Command server runs the assistant's HTTP API.
//
// @title                   Assistant API
// @version                 1.0
// @description             Conversational assistant for PC, software and mobile OS questions.
// @description             Identity is the Telegram user id passed as user_id.
// @BasePath                /api
// @schemes                 http https
// @produce                 json
// @consumes                json
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-assistant-backend/internal/app"
	httpapi "github.com/tbourn/go-assistant-backend/internal/http"
	"github.com/tbourn/go-assistant-backend/internal/observability"
	"github.com/tbourn/go-assistant-backend/internal/sysutil"
)

const shutdownTimeout = 30 * time.Second

var version = "dev"

func main() {
	flags, err := app.ParseFlags("server", os.Args[1:])
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
	sysutil.SetupLogger(os.Stderr, cfg.LogPretty, "assistant-api")
	sysutil.SetLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Build{Version: version, Component: "api"})
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	}

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("assemble assistant")
	}
	defer a.Close()

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Assistant: a.Orchestrator,
		Support:   a.Support,
		FAQ:       a.FAQ,
		Checks:    a.Checks(),
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("addr", srv.Addr).Msg("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if shutdownOTel != nil {
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("trace exporter shutdown")
		}
	}
	log.Info().Msg("server exited")
}
