package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hapyland/internal/api"
	"hapyland/internal/api/middleware"
	"hapyland/internal/app/service"
	"hapyland/internal/app/worker"
	"hapyland/internal/common/security"
	"hapyland/internal/domain/repository"
	"hapyland/internal/engine"
	"hapyland/internal/platform/cache"
	"hapyland/internal/platform/config"
	"hapyland/internal/platform/database"
	"hapyland/internal/platform/logger"
	"hapyland/internal/platform/messaging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	config.Load()
	cfg := config.AppConfig

	zl, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	security.InitJWT(cfg.JWTKey)

	if err := database.Connect(zl); err != nil {
		return err
	}
	defer database.Close(zl)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		if err := cache.ConnectRedis(ctx, zl); err != nil {
			zl.Warn("rate limiting disabled", zap.Error(err))
		} else {
			defer cache.CloseRedis(zl)
			limiter = middleware.NewRateLimiter(cache.RDB, cfg.RateLimitPerMinute, zl)
		}
	}

	transpiler, executor, closeEngine, err := buildEngine(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer closeEngine()

	pool := worker.NewPool(executor, cfg.ExecutionWorkers, zl)
	gateway := service.NewExecutionService(transpiler, pool, cfg.ExecutionTimeout, zl)

	userRepo := repository.NewPgUserRepository(database.DB)
	challengeRepo := repository.NewPgChallengeRepository(database.DB)
	authService := service.NewAuthService(userRepo, database.DB, service.AcceptAnyPassword)
	challengeService := service.NewChallengeService(challengeRepo, database.DB)

	router := api.NewRouter(zl, database.DB, authService, challengeService, gateway, limiter, api.Options{
		CookieName:     cfg.SessionCookieName,
		SecureCookie:   !cfg.IsDevelopment(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		RequestTimeout: cfg.ExecutionTimeout + 5*time.Second,
		StaticDir:      cfg.StaticDir,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.ExecutionTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pool.Start(gctx)
	})
	g.Go(func() error {
		zl.Info("server starting", zap.String("addr", server.Addr), zap.String("engine", cfg.EngineBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not listen on %s: %w", server.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	zl.Info("server and execution pool stopped")
	return nil
}

// buildEngine picks the transpiler and executor transports from configuration.
func buildEngine(ctx context.Context, cfg *config.Config, zl *zap.Logger) (engine.Transpiler, engine.Executor, func(), error) {
	if cfg.EngineBackend == "nats" {
		nc, err := messaging.Connect(cfg.NatsURL, zl)
		if err != nil {
			return nil, nil, nil, err
		}
		return engine.NewNATSTranspiler(nc), engine.NewNATSExecutor(nc), func() { nc.Drain() }, nil
	}

	transpiler := engine.NewCommandTranspiler(cfg.TranspilerCmd)
	if cfg.SandboxContainer == "" {
		zl.Warn("SANDBOX_CONTAINER not set, programs run unsandboxed on the host",
			zap.Strings("executor", cfg.ExecutorCmd))
		return transpiler, engine.NewCommandExecutor(cfg.ExecutorCmd), func() {}, nil
	}

	cli, err := engine.NewDockerClient()
	if err != nil {
		return nil, nil, nil, err
	}
	executor := engine.NewDockerExecutor(cli, cfg.SandboxContainer, cfg.ExecutorCmd)
	if err := executor.Ping(ctx); err != nil {
		cli.Close()
		return nil, nil, nil, err
	}
	zl.Info("using sandbox container", zap.String("container", cfg.SandboxContainer))
	return transpiler, executor, func() { cli.Close() }, nil
}
