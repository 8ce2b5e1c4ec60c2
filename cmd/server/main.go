package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shahwaiz14/event-tracker/internal/audit"
	auditrepo "github.com/shahwaiz14/event-tracker/internal/audit/repository"
	"github.com/shahwaiz14/event-tracker/internal/config"
	"github.com/shahwaiz14/event-tracker/internal/db"
	eventrepo "github.com/shahwaiz14/event-tracker/internal/event/repository"
	eventservice "github.com/shahwaiz14/event-tracker/internal/event/service"
	eventlogrepo "github.com/shahwaiz14/event-tracker/internal/eventlog/repository"
	eventlogservice "github.com/shahwaiz14/event-tracker/internal/eventlog/service"
	healthhandler "github.com/shahwaiz14/event-tracker/internal/health/handler"
	identityservice "github.com/shahwaiz14/event-tracker/internal/identity/service"
	"github.com/shahwaiz14/event-tracker/internal/lib/logger/sl"
	"github.com/shahwaiz14/event-tracker/internal/security"
	"github.com/shahwaiz14/event-tracker/internal/server"
	"github.com/shahwaiz14/event-tracker/internal/server/middleware"
	"github.com/shahwaiz14/event-tracker/internal/stats/cache"
	statsrepo "github.com/shahwaiz14/event-tracker/internal/stats/repository"
	statsservice "github.com/shahwaiz14/event-tracker/internal/stats/service"
	"github.com/shahwaiz14/event-tracker/internal/telemetry"
	"github.com/shahwaiz14/event-tracker/internal/telemetry/otel"
	"github.com/shahwaiz14/event-tracker/internal/telemetry/producer"
	userrepo "github.com/shahwaiz14/event-tracker/internal/user/repository"
)

const (
	envLocal = "local"
	envProd  = "production"

	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", sl.Err(err))
		os.Exit(1)
	}
	log := setupLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting event tracker", slog.String("env", cfg.Env), slog.String("addr", cfg.HTTPAddr))

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", sl.Err(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	signer, pub, generated, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		return err
	}
	if generated {
		log.Warn("JWT keys not configured; using an ephemeral key pair, tokens will not survive a restart")
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		return err
	}
	providers.SetGlobal()

	// Sinks for recorded event logs.
	emitters := []telemetry.EventEmitter{otel.NewEventEmitter(providers.LoggerProvider)}
	var broker producer.Producer
	if kp := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.EventLogKafkaTopic); kp != nil {
		broker = kp
		emitters = append(emitters, broker)
		log.Info("publishing recorded event logs to kafka", slog.String("topic", cfg.EventLogKafkaTopic))
	}

	var trendCache *cache.TrendCache
	var engineCache statsservice.TrendCache
	var healthCache healthhandler.CachePinger
	if cfg.RedisAddr != "" {
		trendCache = cache.New(cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL(),
		})
		engineCache = trendCache
		healthCache = trendCache
		log.Info("stats cache enabled", slog.String("redis_addr", cfg.RedisAddr))
	}

	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(database), middleware.ClientIPFromContext, log)
	events := eventrepo.NewPostgresRepository(database)
	engine := statsservice.NewEngine(statsrepo.NewPostgresRepository(database), engineCache, log)
	registry := eventservice.NewRegistry(events, engine)
	recorder := eventlogservice.NewRecorder(events, eventlogrepo.NewPostgresRepository(database), engine, telemetry.Multi(emitters...))
	auth := identityservice.NewAuthService(userrepo.NewPostgresRepository(database), security.NewHasher(cfg.BcryptCost), tokens, auditLogger)

	handler := server.NewHandler(server.Deps{
		Auth:         auth,
		Events:       registry,
		EventLogs:    recorder,
		Stats:        engine,
		Tokens:       tokens,
		AuditLogger:  auditLogger,
		HealthPinger: database,
		HealthCache:  healthCache,
		Log:          log,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown", sl.Err(err))
	}

	// Let in-flight async emits finish before their sinks close.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if broker != nil {
		if err := broker.Close(); err != nil {
			log.Warn("kafka producer close", sl.Err(err))
		}
	}
	if trendCache != nil {
		if err := trendCache.Stop(); err != nil {
			log.Warn("stats cache close", sl.Err(err))
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("otel shutdown", sl.Err(err))
	}
	return nil
}

func setupLogger(env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(env, level)}
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
}

func parseLevel(env, level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if env == envProd {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
