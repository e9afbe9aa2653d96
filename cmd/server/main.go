package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/remontpro/frontdesk/internal/backend"
	"github.com/remontpro/frontdesk/internal/config"
	httpapi "github.com/remontpro/frontdesk/internal/http"
	"github.com/remontpro/frontdesk/internal/session"
	"github.com/remontpro/frontdesk/internal/viewstate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "frontdesk").Logger()

	client := backend.New(cfg.BackendURL, cfg.RequestTimeout)
	sessions := session.NewManager(client, cfg.CookieSecure)
	views := viewstate.NewRegistry()

	router := httpapi.Router(cfg, client, sessions, views, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("backend", cfg.BackendURL).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
