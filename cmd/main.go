// Package main runs the P2P bank API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/p2p-bank/cmd/httpserver"
	"github.com/go-petr/p2p-bank/db/migrations"
	"github.com/go-petr/p2p-bank/internal/historycache"
	"github.com/go-petr/p2p-bank/internal/middleware"
	"github.com/go-petr/p2p-bank/internal/transferevents"
	"github.com/go-petr/p2p-bank/internal/transferservice"
	"github.com/go-petr/p2p-bank/pkg/configpkg"
	"github.com/go-petr/p2p-bank/pkg/dbpkg"

	_ "github.com/lib/pq"
)

const pingTimeout = 2 * time.Second

type publisher interface {
	transferservice.Publisher
	Close() error
}

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}
	defer db.Close()

	if err := dbpkg.Migrate(db, migrations.FS, migrations.Dir); err != nil {
		logger.Fatal().Err(err).Msg("cannot migrate database")
	}

	var opts []httpserver.Option

	if rdb := connectRedis(logger, config); rdb != nil {
		defer rdb.Close()

		opts = append(opts, httpserver.WithHistoryCache(historycache.New(rdb, config.HistoryCacheTTL)))
	}

	events := connectBroker(logger, config)
	defer events.Close()

	opts = append(opts, httpserver.WithPublisher(events))

	server, err := httpserver.New(db, logger, config, opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("address", srv.Addr).Msg("P2P BANK API SERVER HAS STARTED")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("cannot start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// connectRedis returns nil when REDIS_ADDR is empty or Redis does not answer.
func connectRedis(logger zerolog.Logger, config configpkg.Config) *redis.Client {
	if config.RedisAddr == "" {
		logger.Info().Msg("history cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("address", config.RedisAddr).Msg("redis unavailable, history cache disabled")
		_ = rdb.Close()

		return nil
	}

	return rdb
}

// connectBroker falls back to transferevents.Discard when AMQP_URL is empty or the broker is down.
func connectBroker(logger zerolog.Logger, config configpkg.Config) publisher {
	if config.AMQPURL == "" {
		logger.Info().Msg("transfer events disabled")
		return transferevents.Discard{}
	}

	p, err := transferevents.Dial(config.AMQPURL)
	if err != nil {
		logger.Warn().Err(err).Msg("rabbitmq unavailable, transfer events disabled")
		return transferevents.Discard{}
	}

	return p
}
