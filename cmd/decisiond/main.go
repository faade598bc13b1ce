package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/aman3729/credit-score/internal/application/usecase"
	"github.com/aman3729/credit-score/internal/domain/model"
	"github.com/aman3729/credit-score/internal/domain/service"
	"github.com/aman3729/credit-score/internal/infrastructure/cache"
	"github.com/aman3729/credit-score/internal/infrastructure/config"
	"github.com/aman3729/credit-score/internal/infrastructure/kafka"
	"github.com/aman3729/credit-score/internal/infrastructure/policyfile"
	pgRepo "github.com/aman3729/credit-score/internal/infrastructure/postgres"
	grpcPresentation "github.com/aman3729/credit-score/internal/presentation/grpc"
	"github.com/aman3729/credit-score/internal/presentation/rest"
	"github.com/aman3729/credit-score/pkg/auth"
	pkgkafka "github.com/aman3729/credit-score/pkg/kafka"
	"github.com/aman3729/credit-score/pkg/observability"
	pkgpostgres "github.com/aman3729/credit-score/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: cfg.ServiceName,
	})

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("decision engine stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("decision engine stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Info("starting decision engine",
		"environment", cfg.Environment,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Tracing and metrics.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.IsDevelopment(),
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
	}

	registry := prometheus.NewRegistry()
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
		Registry:    registry,
	})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort
	metrics := observability.NewMetrics(registry)

	// Database.
	dbCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		AppName:  cfg.ServiceName,
		MaxConns: cfg.DB.MaxConns,
	}
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pkgpostgres.RunMigrations(dbCfg.DSN(), pgRepo.Migrations, pgRepo.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Redis policy cache in front of the policy table.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	policyRepo := pgRepo.NewPolicyRepo(pool)
	policies := cache.NewPolicyCache(redisClient, policyRepo, cfg.Redis.PolicyTTL, metrics, logger)

	parser, err := policyfile.NewParser()
	if err != nil {
		return fmt.Errorf("init policy parser: %w", err)
	}
	if cfg.PolicyDir != "" {
		if err := seedPolicies(ctx, cfg.PolicyDir, parser, policies, logger); err != nil {
			return err
		}
	}

	profiles := pgRepo.NewProfileRepo(pool)
	ledger := pgRepo.NewDecisionLedgerRepo(pool)

	// Outbox relay to Kafka.
	producer, err := pkgkafka.NewProducer(pkgkafka.Config{
		ClientID: cfg.ServiceName,
		Brokers:  cfg.Kafka.Brokers,
	})
	if err != nil {
		return fmt.Errorf("init kafka producer: %w", err)
	}
	defer producer.Close()

	relay := kafka.NewOutboxRelay(
		pgRepo.NewOutboxRepo(pool),
		kafka.NewEventPublisher(producer, cfg.Kafka.Topic, logger),
		metrics,
		cfg.Kafka.PollInterval,
		cfg.Kafka.BatchSize,
		logger,
	)
	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	go relay.Run(relayCtx)

	// Use cases.
	pipeline := service.NewDecisionPipeline(nil)
	handler := grpcPresentation.NewDecisionHandler(grpcPresentation.UseCases{
		Evaluate:    usecase.NewEvaluateBorrowerUseCase(policies, profiles, ledger, ledger, pipeline, metrics, logger),
		Manual:      usecase.NewRecordManualDecisionUseCase(ledger, pipeline, metrics, logger),
		Recalculate: usecase.NewRecalculateDecisionUseCase(policies, profiles, ledger, ledger, pipeline, metrics, logger),
		Current:     usecase.NewGetCurrentDecisionUseCase(ledger),
		History:     usecase.NewGetDecisionHistoryUseCase(ledger),
		Validate:    usecase.NewValidatePolicyUseCase(policies, parser),
		Publish:     usecase.NewPublishPolicyUseCase(parser, policies, logger),
	}, logger)

	jwtSvc, err := newJWTService(cfg.Auth)
	if err != nil {
		return err
	}

	grpcServer, err := grpcPresentation.NewServer(handler, jwtSvc, grpcPresentation.ServerOptions{
		CertFile:   cfg.TLS.CertFile,
		KeyFile:    cfg.TLS.KeyFile,
		Reflection: cfg.Reflection,
	}, logger)
	if err != nil {
		return err
	}

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, map[string]rest.Check{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
		"redis":    policies.Ping,
	}, metricsHandler, logger).RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
	}

	stopRelay()
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	return serveErr
}

// newJWTService prefers an RSA public key and falls back to the shared secret.
func newJWTService(cfg config.AuthConfig) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{Issuer: cfg.Issuer}
	switch {
	case cfg.PublicKeyFile != "":
		keyData, err := auth.LoadKeyFromFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	case cfg.JWTSecret != "":
		jwtCfg.Secret = cfg.JWTSecret
	default:
		jwtCfg.Secret = "development-only-secret"
	}
	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("init jwt: %w", err)
	}
	return svc, nil
}

// seedPolicies publishes every policy file whose version is newer than the
// stored one. Files at or below the stored version are skipped.
func seedPolicies(ctx context.Context, dir string, parser *policyfile.Parser, publisher *cache.PolicyCache, logger *slog.Logger) error {
	files, err := policyfile.LoadDir(dir, parser)
	if err != nil {
		return fmt.Errorf("load policy dir: %w", err)
	}
	for _, p := range files.All() {
		err := publisher.Publish(ctx, p)
		switch {
		case err == nil:
			logger.Info("policy published from file", "bank_code", p.BankCode, "version", p.Version)
		case model.IsConfiguration(err):
			logger.Debug("policy file not newer than stored version", "bank_code", p.BankCode, "version", p.Version)
		default:
			return fmt.Errorf("seed policy %s: %w", p.BankCode, err)
		}
	}
	return nil
}
