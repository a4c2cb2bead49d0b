package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/06AleKey04/bingo/internal/config"
	"github.com/06AleKey04/bingo/internal/httpserver"
	"github.com/06AleKey04/bingo/internal/session"
	"github.com/06AleKey04/bingo/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	kv, db, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage).Msg("failed to open store")
	}
	if db != nil {
		defer db.Close()
	}

	mgr, err := session.Restore(context.Background(), kv, session.JSONCodec{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to restore session")
	}

	srv := httpserver.New(mgr, cfg)
	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Int("port", cfg.Port).Str("storage", cfg.Storage).Bool("auth", cfg.AuthEnabled()).Msg("starting bingo server")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-done
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv.Close()
	if err := hs.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if err := mgr.Close(ctx); err != nil {
		log.Error().Err(err).Msg("final session save")
	}
	log.Info().Msg("server stopped")
}

// openStore returns the configured KV store and, for sqlite, the handle to
// close on exit.
func openStore(cfg *config.Config) (store.KV, *sql.DB, error) {
	if cfg.Storage == "memory" {
		return store.NewMemory(), nil, nil
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return store.NewSQLite(db), db, nil
}
