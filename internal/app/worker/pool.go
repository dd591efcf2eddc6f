package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"hapyland/internal/engine"

	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("execution pool is not running")

type job struct {
	ctx    context.Context
	source string
	opts   engine.RunOptions
	result chan<- jobResult
}

type jobResult struct {
	res engine.RunResult
	err error
}

// Pool bounds how many programs run at once. It wraps an engine.Executor and is one
// itself, so the gateway does not know whether it is talking to a pool.
type Pool struct {
	exec    engine.Executor
	workers int
	jobs    chan job
	logger  *zap.Logger
	stopped chan struct{}
}

func NewPool(exec engine.Executor, workers int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		exec:    exec,
		workers: workers,
		jobs:    make(chan job),
		logger:  logger,
		stopped: make(chan struct{}),
	}
}

// Start runs the workers and blocks until ctx is cancelled and every in-flight job has
// returned.
func (p *Pool) Start(ctx context.Context) error {
	p.logger.Info("execution pool started", zap.Int("workers", p.workers))

	done := make(chan struct{}, p.workers)
	for i := 0; i < p.workers; i++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()
			p.work(ctx, id)
		}(i + 1)
	}

	<-ctx.Done()
	close(p.stopped)
	for i := 0; i < p.workers; i++ {
		<-done
	}
	p.logger.Info("execution pool stopped")
	return nil
}

func (p *Pool) work(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			j.result <- p.runJob(id, j)
		}
	}
}

func (p *Pool) runJob(id int, j job) (out jobResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("executor panicked",
				zap.Int("worker", id),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			out = jobResult{err: fmt.Errorf("executor panic: %v", r)}
		}
	}()

	// the caller may have given up while the job sat in the queue
	if err := j.ctx.Err(); err != nil {
		return jobResult{err: err}
	}

	res, err := p.exec.Run(j.ctx, j.source, j.opts)
	if err != nil {
		p.logger.Debug("execution failed", zap.Int("worker", id), zap.Error(err))
	}
	return jobResult{res: res, err: err}
}

// Run queues the program and waits for a worker to finish it.
func (p *Pool) Run(ctx context.Context, source string, opts engine.RunOptions) (engine.RunResult, error) {
	result := make(chan jobResult, 1)
	j := job{ctx: ctx, source: source, opts: opts, result: result}

	select {
	case p.jobs <- j:
	case <-p.stopped:
		return engine.RunResult{}, ErrPoolClosed
	case <-ctx.Done():
		return engine.RunResult{}, waitError(ctx)
	}

	select {
	case r := <-result:
		return r.res, r.err
	case <-ctx.Done():
		return engine.RunResult{}, waitError(ctx)
	}
}

func waitError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("waiting for a worker: %w", engine.ErrTimeout)
	}
	return ctx.Err()
}
