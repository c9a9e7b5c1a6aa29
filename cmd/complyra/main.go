package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	v1 "github.com/complyra/complyra/internal/api/v1"
	"github.com/complyra/complyra/internal/audit"
	"github.com/complyra/complyra/internal/auth"
	"github.com/complyra/complyra/internal/config"
	"github.com/complyra/complyra/internal/messenger"
	complyraslack "github.com/complyra/complyra/internal/messenger/slack"
	"github.com/complyra/complyra/internal/notify"
	"github.com/complyra/complyra/internal/server"
	"github.com/complyra/complyra/internal/store/postgres"
	redisstore "github.com/complyra/complyra/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("COMPLYRA_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("COMPLYRA_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis for dispatcher wakeup fanout.
	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	// Create auth service. Login outcomes land in the audit trail.
	recorder := audit.NewRecorder()
	authSvc := auth.NewService(store.Actors(), recorder, store.Pool(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// Wire delivery channels: log is always available, Slack when configured.
	registry := notify.NewRegistry()
	registry.Register("log", messenger.NewLogMessenger())
	if cfg.Slack.BotToken != "" {
		slackClient := slacklib.New(cfg.Slack.BotToken)
		registry.Register("slack", complyraslack.NewSlackMessenger(slackClient, cfg.Slack.ChannelID))
		log.Info().Str("channel_id", cfg.Slack.ChannelID).Msg("slack delivery enabled")
	}

	producer := notify.NewProducer(store.Notifications(), store.Systems(), store.Tasks(), pubsub, cfg.Notify.DefaultChannel)
	dispatcher := notify.NewDispatcher(store.Notifications(), registry)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Queue wakeups let the dispatcher drain immediately after an enqueue;
	// the poll ticker covers missed fanout.
	wakeups, cleanup, err := pubsub.Subscribe(ctx, notify.QueueChannel)
	if err != nil {
		log.Warn().Err(err).Msg("queue wakeup subscription failed, dispatcher will poll only")
	} else {
		defer cleanup()
	}
	go dispatcher.Run(ctx, cfg.Notify.DispatchInterval, cfg.Notify.DispatchBatch, wakeups)

	// Create HTTP server with all routes wired.
	deps := v1.NewDeps(store, store.Pool(), producer)
	srv := server.New(ctx, cfg, store, authSvc, deps)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
