package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/coverledger/coverledger-backend/internal/api/rest"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/cache"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/config"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/database"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/evidence"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/ledger"
	"github.com/coverledger/coverledger-backend/internal/infrastructure/repository"
	"github.com/coverledger/coverledger-backend/internal/riskmodel"
	"github.com/coverledger/coverledger-backend/internal/service/claims"
	"github.com/coverledger/coverledger-backend/internal/service/ledgerevents"
	"github.com/coverledger/coverledger-backend/internal/service/underwriting"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const claimObserverName = "claim-resolution"

func main() {
	var configPath = flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	slog.SetDefault(buildSlog(cfg))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("service exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting coverledger api",
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Environment))

	pool, err := database.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	repos := repository.NewRepositories(pool)

	scorer, err := riskmodel.LoadScorer(cfg.Model.Path)
	if err != nil {
		return fmt.Errorf("load risk model: %w", err)
	}
	logger.Info("risk model loaded",
		zap.String("path", cfg.Model.Path),
		zap.String("version", scorer.Version()))

	ledgerClient, err := ledger.NewClient(ledger.Config{
		RPCURL:          cfg.Ledger.RPCURL,
		ContractAddress: cfg.Ledger.ContractAddress,
		ConfirmTimeout:  cfg.Ledger.ConfirmTimeout,
		ConfirmInterval: cfg.Ledger.ConfirmInterval,
	}, logger)
	if err != nil {
		return fmt.Errorf("create ledger client: %w", err)
	}

	// Redis is an optimization layer. Losing it costs cached scores and the
	// shared rate limit, not correctness, so startup continues without it.
	var (
		redisCache      cache.Cache
		rateLimiter     cache.RateLimiter
		assessmentCache underwriting.AssessmentCache
	)
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache and shared rate limiting",
			zap.String("address", cfg.Redis.Address),
			zap.Error(err))
	} else {
		defer redisClient.Close()
		if redisCache, err = cache.NewRedisCache(redisClient, logger); err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		rateLimiter = cache.NewRedisRateLimiter(redisClient, logger)
		assessmentCache = cache.NewAssessmentCache(redisCache, logger)
	}

	var evidenceStore claims.EvidenceVerifier
	if cfg.Evidence.Enabled {
		store, err := evidence.NewStore(&cfg.Evidence, logger)
		if err != nil {
			return fmt.Errorf("create evidence store: %w", err)
		}
		evidenceStore = store
	}

	underwritingService := underwriting.NewService(
		repos.Applicant,
		repos.Policy,
		repos.Assessment,
		scorer,
		ledgerClient,
		assessmentCache,
		cfg.Ledger.ContractAddress,
		logger,
	)
	claimsService := claims.NewService(
		repos.Policy,
		repos.Claim,
		ledgerClient,
		evidenceStore,
		logger,
	)

	auth := rest.NewAuthenticator(rest.AuthConfig{
		Secret:      []byte(cfg.Security.JWTSecret),
		TokenExpiry: cfg.Security.TokenExpiry,
	})

	health := rest.NewHealthHandler(cfg.Version)
	health.Register("database", rest.HealthCheckerFunc(pool.Ping))
	if redisClient != nil {
		health.Register("redis", rest.HealthCheckerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}
	health.Register("ledger", rest.HealthCheckerFunc(func(ctx context.Context) error {
		_, err := ledgerClient.BlockNumber(ctx)
		return err
	}))

	handler := rest.NewHandler(rest.Services{
		Underwriting: underwritingService,
		Claims:       claimsService,
	}, auth, health)
	server := rest.NewServer(cfg, handler, rateLimiter, slog.Default())

	observer := ledgerevents.NewObserver(
		claimObserverName,
		ledgerClient,
		repos.Watermark,
		ledgerevents.NewClaimResolutionSink(repos.Claim, logger),
		cfg.Ledger.PollInterval,
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		if err := observer.Run(gctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func buildSlog(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
