package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// QueueGroup lets several engine workers share the request subjects.
const QueueGroup = "hapy-engine"

// Responder is the worker side of NATSTranspiler and NATSExecutor: it answers their
// requests with local collaborators.
type Responder struct {
	transpiler Transpiler
	executor   Executor
	timeout    time.Duration
	logger     *zap.Logger
}

func NewResponder(transpiler Transpiler, executor Executor, timeout time.Duration, logger *zap.Logger) *Responder {
	return &Responder{transpiler: transpiler, executor: executor, timeout: timeout, logger: logger}
}

// Serve subscribes to both subjects and blocks until ctx is done, then drains.
func (s *Responder) Serve(ctx context.Context, nc *nats.Conn) error {
	handlers := map[string]func(context.Context, []byte) []byte{
		SubjectTranspile: s.handleTranspile,
		SubjectExecute:   s.handleExecute,
	}

	subs := make([]*nats.Subscription, 0, len(handlers))
	for subject, handle := range handlers {
		// callbacks run one at a time per subscription, so each request gets its own goroutine
		sub, err := nc.QueueSubscribe(subject, QueueGroup, func(msg *nats.Msg) {
			go s.respond(msg, handle)
		})
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", subject, err)
		}
		subs = append(subs, sub)
		s.logger.Info("listening", zap.String("subject", subject), zap.String("queue", QueueGroup))
	}

	<-ctx.Done()
	for _, sub := range subs {
		if err := sub.Drain(); err != nil {
			s.logger.Warn("drain failed", zap.String("subject", sub.Subject), zap.Error(err))
		}
	}
	return nil
}

// respond does not inherit the Serve context: requests still in flight while the
// subscriptions drain are allowed to finish within their own timeout.
func (s *Responder) respond(msg *nats.Msg, handle func(context.Context, []byte) []byte) {
	reqCtx, cancel := s.requestContext()
	defer cancel()
	if err := msg.Respond(handle(reqCtx, msg.Data)); err != nil {
		s.logger.Warn("failed to respond", zap.String("subject", msg.Subject), zap.Error(err))
	}
}

func (s *Responder) requestContext() (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(context.Background(), s.timeout)
	}
	return context.WithCancel(context.Background())
}

func (s *Responder) handleTranspile(ctx context.Context, data []byte) []byte {
	var req transpileRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return mustJSON(transpileReply{Fault: "malformed request: " + err.Error()})
	}

	out, err := s.transpiler.Transpile(ctx, req.Source)
	if err != nil {
		if IsTranslationError(err) {
			s.logger.Debug("transpile rejected source", zap.String("request_id", req.RequestID), zap.Error(err))
			return mustJSON(transpileReply{Error: err.Error()})
		}
		s.logger.Warn("transpiler fault", zap.String("request_id", req.RequestID), zap.Error(err))
		return mustJSON(transpileReply{Fault: err.Error()})
	}
	return mustJSON(transpileReply{Source: out})
}

func (s *Responder) handleExecute(ctx context.Context, data []byte) []byte {
	var req executeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return mustJSON(executeReply{Fault: "malformed request: " + err.Error()})
	}

	res, err := s.executor.Run(ctx, req.Source, RunOptions{CaptureOutput: req.CaptureOutput, Sandboxed: req.Sandboxed})
	if err != nil {
		s.logger.Warn("execution fault", zap.String("request_id", req.RequestID), zap.Error(err))
		return mustJSON(executeReply{Fault: err.Error()})
	}
	return mustJSON(executeReply{Output: res.Output, Error: res.Error})
}

func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// the reply types only hold strings
		panic(err)
	}
	return b
}
