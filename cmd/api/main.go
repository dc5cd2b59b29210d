package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/scythe504/quizrush-backend/internal/game"
	"github.com/scythe504/quizrush-backend/internal/server"
)

func main() {
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func run(ctx context.Context, cfg *Config) error {
	if cfg.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := game.NewOrchestrator(clockwork.NewRealClock(), game.Config{
		RoundDuration:  cfg.roundDuration,
		GraceDelay:     cfg.graceDelay,
		MaxPlayers:     cfg.maxPlayers,
		IdleTimeout:    cfg.sessionTimeout,
		ReconnectGrace: cfg.reconnectGrace,
	})
	orch.StartReaper(ctx, time.Minute)

	srv := server.New(cfg.bind, cfg.port, orch).HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
