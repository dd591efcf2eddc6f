package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hapyland/internal/app/worker"
	"hapyland/internal/engine"
	"hapyland/internal/platform/config"
	"hapyland/internal/platform/logger"
	"hapyland/internal/platform/messaging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// engine-worker answers the API's NATS requests with local commands, optionally
// running programs inside the sandbox container.
func main() {
	config.Load()
	cfg := config.AppConfig

	zl, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nc, err := messaging.Connect(cfg.NatsURL, zl)
	if err != nil {
		zl.Fatal("engine worker cannot start", zap.Error(err))
	}
	defer nc.Drain()

	var executor engine.Executor = engine.NewCommandExecutor(cfg.ExecutorCmd)
	if cfg.SandboxContainer != "" {
		cli, err := engine.NewDockerClient()
		if err != nil {
			zl.Fatal("engine worker cannot start", zap.Error(err))
		}
		defer cli.Close()
		sandbox := engine.NewDockerExecutor(cli, cfg.SandboxContainer, cfg.ExecutorCmd)
		if err := sandbox.Ping(ctx); err != nil {
			zl.Fatal("sandbox unavailable", zap.Error(err))
		}
		executor = sandbox
	}

	pool := worker.NewPool(executor, cfg.ExecutionWorkers, zl)
	responder := engine.NewResponder(engine.NewCommandTranspiler(cfg.TranspilerCmd), pool, cfg.ExecutionTimeout, zl)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pool.Start(gctx) })
	g.Go(func() error { return responder.Serve(gctx, nc) })

	if err := g.Wait(); err != nil {
		zl.Error("engine worker stopped with error", zap.Error(err))
		return
	}
	zl.Info("engine worker stopped")
}
