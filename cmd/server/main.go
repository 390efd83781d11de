// @title        PeerRent Auth API
// @version      1.0
// @description  Hybrid PIN + emailed code login for the PeerRent marketplace.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/peerrent/auth-service/internal/api"
	"github.com/peerrent/auth-service/internal/api/handler"
	"github.com/peerrent/auth-service/internal/core/ports"
	"github.com/peerrent/auth-service/internal/core/service"
	"github.com/peerrent/auth-service/internal/infrastructure/db/memory"
	"github.com/peerrent/auth-service/internal/infrastructure/db/mongo"
	"github.com/peerrent/auth-service/internal/infrastructure/db/redis"
	"github.com/peerrent/auth-service/internal/infrastructure/events"
	"github.com/peerrent/auth-service/internal/infrastructure/mail"
	"github.com/peerrent/auth-service/internal/infrastructure/queue"
	"github.com/peerrent/auth-service/internal/pkg/config"
	"github.com/peerrent/auth-service/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "auth-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "auth-service",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var checks []handler.DependencyCheck

	// --- Credential store ---
	var repo ports.AccountRepository
	switch cfg.Mongo.Store {
	case "memory":
		log.Warn().Msg("using in-memory account store, data is lost on restart")
		repo = memory.NewAccountRepository()
	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return err
		}
		defer disconnectMongo(client, log)

		accounts := mongo.NewAccountRepository(db)
		if err := accounts.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
		repo = accounts
		checks = append(checks, handler.MongoCheck(client))
	}

	// --- Rate limiting ---
	var limiter ports.AttemptLimiter
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return err
		}
		defer closeRedis(rdb, log)

		limiter = redis.NewAttemptLimiter(rdb, cfg.Redis.LimitPerMinute, 0)
		checks = append(checks, handler.RedisCheck(rdb))
	}

	// --- Notifier ---
	notifier, err := buildNotifier(cfg, log)
	if err != nil {
		return err
	}
	if cfg.Notify.Async {
		dispatcher := queue.NewDispatcher(cfg.Notify.Workers, notifier, cfg.Notify.Timeout, log)
		dispatcher.Start()
		// Runs after e.Shutdown: requests still in flight can queue codes, and
		// every queued code is sent or logged before the process exits.
		defer func() {
			dispatcher.Close()
			dispatcher.Wait()
		}()
		notifier = dispatcher
	}

	// --- Audit events ---
	opts := []service.Option{
		service.WithCodeTTL(cfg.Auth.CodeTTL),
		service.WithNotifyTimeout(cfg.Notify.Timeout),
		service.WithLogger(log.With().Str("component", "auth_service").Logger()),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewKafkaPublisher(events.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			Async:   true,
		}, log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warn().Err(err).Msg("close kafka publisher")
			}
		}()
		opts = append(opts, service.WithEventPublisher(publisher))
	}

	tokens := service.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(
		repo,
		service.NewBcryptHasher(cfg.Auth.BcryptCost),
		service.RandomCodeGenerator{},
		notifier,
		tokens,
		opts...,
	)

	e := api.NewRouter(api.RouterConfig{
		AuthService:         authService,
		Tokens:              tokens,
		Limiter:             limiter,
		Health:              handler.NewHealthHandler(log.With().Str("component", "health").Logger(), checks...),
		Log:                 log,
		SecureCookies:       cfg.IsProduction(),
		TokenTTL:            cfg.Auth.TokenTTL,
		UniformCodeResponse: cfg.Auth.UniformCodeResponse,
	})

	srvErrCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		srvErrCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-srvErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("server exited cleanly")
	return nil
}

// buildNotifier assembles relay, circuit breaker and metrics for the
// configured mail driver.
func buildNotifier(cfg *config.Config, log zerolog.Logger) (ports.Notifier, error) {
	if cfg.Mail.Driver == "log" {
		log.Warn().Msg("MAIL_DRIVER=log: login codes are written to the log")
		return mail.Instrument(mail.NewLogNotifier(log)), nil
	}

	smtpNotifier, err := mail.NewSMTPNotifier(mail.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		CodeTTL:  cfg.Auth.CodeTTL,
	})
	if err != nil {
		return nil, err
	}

	breaker := mail.NewBreakerNotifier(smtpNotifier, mail.DefaultBreakerConfig("smtp"), log)
	return mail.Instrument(breaker), nil
}

func disconnectMongo(client *mongodriver.Client, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Warn().Err(err).Msg("disconnect mongo")
	}
}

func closeRedis(rdb *goredis.Client, log zerolog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("close redis")
	}
}
