package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdv/internal/config"
	"pdv/internal/infra"
	"pdv/internal/repository"
	"pdv/internal/router"
	"pdv/internal/store"
	"pdv/internal/store/memstore"
	"pdv/internal/store/postgrest"
	"pdv/internal/store/sqlstore"
	"pdv/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	st, closeStore, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	metrics := infra.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Receipt pipeline (PDF + optional email) runs only with redis.
	deps := router.Deps{Store: st, Metrics: metrics}
	if rdb != nil {
		defer rdb.Close()
		dispatcher := worker.NewDispatcher(rdb)
		deps.Redis = rdb
		deps.Dispatcher = dispatcher

		pool := worker.NewPool(rdb, worker.DefaultMaxAttempts)
		var emails worker.EmailEnqueuer
		if mailer := infra.NewMailer(cfg); mailer != nil {
			emails = dispatcher
			pool.Handle(worker.JobEmail, worker.NewEmailWorker(mailer))
		}
		pool.Handle(worker.JobRecibo, worker.NewReciboWorker(repository.New(st), cfg.ReciboStoragePath, emails, metrics))
		pool.Start(ctx, cfg.WorkerPoolSize)
	} else {
		log.Warn().Msg("REDIS_URL vazio: recibos e Idempotency-Key desativados")
	}

	r, err := router.New(cfg, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("store", cfg.StoreDriver).Str("venda_modo", cfg.VendaModo).
			Msgf("PDV backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

// newStore builds the backend selected by STORE_DRIVER and its close func.
func newStore(cfg *config.Config) (store.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgREST:
		breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig("postgrest"))
		c := postgrest.New(postgrest.Config{
			URL:     cfg.SupabaseURL,
			Key:     cfg.SupabaseKey,
			Timeout: time.Duration(cfg.StoreTimeoutSeconds) * time.Second,
		}, breaker)
		return c, func() error { return nil }, nil

	case config.DriverPostgres:
		db, err := infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s := sqlstore.New(db)
		return s, s.Close, nil

	case config.DriverMemory:
		log.Warn().Msg("STORE_DRIVER=memory: dados nao persistem entre execucoes")
		return memstore.New(repository.Tables...), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("driver desconhecido %q", cfg.StoreDriver)
}
