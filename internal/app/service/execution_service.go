package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hapyland/internal/domain/model"
	"hapyland/internal/engine"

	"go.uber.org/zap"
)

// ExecutionService is the execution gateway: it drives the transpiler and the executor
// for one submission and folds whatever happens into an ExecutionOutcome.
type ExecutionService struct {
	transpiler engine.Transpiler
	executor   engine.Executor
	timeout    time.Duration
	logger     *zap.Logger
}

func NewExecutionService(transpiler engine.Transpiler, executor engine.Executor, timeout time.Duration, logger *zap.Logger) *ExecutionService {
	return &ExecutionService{
		transpiler: transpiler,
		executor:   executor,
		timeout:    timeout,
		logger:     logger,
	}
}

// Execute never returns an error. Collaborator faults, timeouts and panics all come back
// as an OutcomeFault.
func (s *ExecutionService) Execute(ctx context.Context, req model.SubmissionRequest) (outcome model.ExecutionOutcome) {
	if !req.HasCode() {
		return model.InvalidInputOutcome()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("execution pipeline panicked", zap.Any("panic", r))
			outcome = model.FaultOutcome(model.MessageCompileError, fmt.Errorf("%v", r))
		}
		s.logOutcome(req, outcome, time.Since(start))
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	translated, err := s.transpiler.Transpile(ctx, *req.Code)
	if err != nil {
		return s.fault(err)
	}

	if req.CompileOnly {
		return model.CompletedOutcome(&translated, nil, "")
	}

	res, err := s.executor.Run(ctx, translated, engine.RunOptions{CaptureOutput: true, Sandboxed: true})
	if err != nil {
		return s.fault(err)
	}

	result := res.Output
	if result == "" {
		result = res.Error
	}
	return model.CompletedOutcome(&translated, &result, res.Error)
}

func (s *ExecutionService) fault(err error) model.ExecutionOutcome {
	if errors.Is(err, engine.ErrTimeout) {
		err = fmt.Errorf("execution exceeded %s: %w", s.timeout, err)
	}
	return model.FaultOutcome(model.MessageCompileError, err)
}

func (s *ExecutionService) logOutcome(req model.SubmissionRequest, outcome model.ExecutionOutcome, elapsed time.Duration) {
	fields := []zap.Field{
		zap.Bool("compile_only", req.CompileOnly),
		zap.String("status", string(outcome.Status)),
		zap.Duration("duration", elapsed),
	}
	if outcome.Kind == model.OutcomeFault {
		s.logger.Warn("execution fault", append(fields, zap.String("error", outcome.Error))...)
		return
	}
	s.logger.Debug("execution finished", fields...)
}
