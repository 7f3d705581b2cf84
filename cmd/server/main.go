package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Lobby/internal/adapters/http"
	"github.com/dkeye/Lobby/internal/adapters/tcp"
	"github.com/dkeye/Lobby/internal/app"
	"github.com/dkeye/Lobby/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	policy, err := app.PolicyByName(cfg.Backpressure)
	if err != nil {
		log.Fatal().Err(err).Msg("bad backpressure policy")
	}
	hub := app.NewHub(app.Options{
		RateLimit:    cfg.RateLimit,
		RateInterval: cfg.RateInterval,
		Policy:       policy,
	})

	lines := tcp.NewServer(hub, tcp.Options{
		OutboxSize:    cfg.OutboxSize,
		MaxLineLength: cfg.MaxLineLength,
		IdleTimeout:   cfg.IdleTimeout,
		WriteTimeout:  cfg.WriteTimeout,
	})
	go func() {
		if err := lines.ListenAndServe(ctx, cfg.TCPAddr); err != nil {
			log.Error().Err(err).Str("addr", cfg.TCPAddr).Msg("line server error")
			cancel()
		}
	}()

	var srv *http.Server
	if cfg.HTTPAddr != "" {
		srv = &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: router.SetupRouter(ctx, cfg, hub),
		}
		go func() {
			log.Info().Str("addr", cfg.HTTPAddr).Msg("http server started")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server error")
				cancel()
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http server forced to shutdown")
		}
	}
	if err := hub.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("sessions still open at exit")
	}
	log.Info().Msg("Server exited gracefully")
}
