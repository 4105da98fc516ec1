// main.go
//
// Entry point for the hangman server.
// Loads configuration and the word pool, opens and migrates SQLite, then
// serves HTTP until SIGINT/SIGTERM and shuts down gracefully.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/auth"
	"github.com/robalobadob/hangman/apps/go-server/internal/config"
	"github.com/robalobadob/hangman/apps/go-server/internal/db"
	"github.com/robalobadob/hangman/apps/go-server/internal/httpserver"
	"github.com/robalobadob/hangman/apps/go-server/internal/store"
	"github.com/robalobadob/hangman/apps/go-server/internal/words"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.Logging)

	pool, err := words.Load(cfg.Game.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Game.WordsFile).Msg("failed to load word pool")
	}
	log.Info().Int("words", pool.Len()).Strs("categories", pool.Categories()).Msg("word pool loaded")

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer sqlDB.Close()
	if err := db.Migrate(sqlDB); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	srv := httpserver.New(httpserver.Deps{
		Config: cfg,
		Store:  store.NewMemoryStore(),
		DB:     sqlDB,
		Auth:   auth.NewService(sqlDB, cfg.Auth, cfg.IsProduction()),
		Words:  pool,
	})

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Server.Env).Msg("starting go-server")
		if err := srv.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}

func setupLogging(c config.LoggingConfig) {
	if lvl, err := zerolog.ParseLevel(c.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339
	if c.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
