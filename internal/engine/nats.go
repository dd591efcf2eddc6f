package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hapyland/internal/common"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectTranspile = "hapy.transpile.request"
	SubjectExecute   = "hapy.execute.request"
)

// requester is the part of *nats.Conn the remote engine needs.
type requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

type transpileRequest struct {
	RequestID string `json:"request_id"`
	Source    string `json:"source"`
}

type transpileReply struct {
	Source string `json:"source"`
	Error  string `json:"error,omitempty"`
	Fault  string `json:"fault,omitempty"`
}

type executeRequest struct {
	RequestID     string `json:"request_id"`
	Source        string `json:"source"`
	CaptureOutput bool   `json:"capture_output"`
	Sandboxed     bool   `json:"sandboxed"`
}

type executeReply struct {
	Output string `json:"output"`
	Error  string `json:"error"`
	Fault  string `json:"fault,omitempty"`
}

// NATSTranspiler hands translation to a remote engine worker over request/reply.
type NATSTranspiler struct {
	nc requester
}

func NewNATSTranspiler(nc *nats.Conn) *NATSTranspiler {
	return &NATSTranspiler{nc: nc}
}

func (t *NATSTranspiler) Transpile(ctx context.Context, source string) (string, error) {
	var reply transpileReply
	req := transpileRequest{RequestID: uuid.NewString(), Source: source}
	if err := request(ctx, t.nc, SubjectTranspile, req, &reply); err != nil {
		return "", err
	}
	if reply.Fault != "" {
		return "", fmt.Errorf("remote transpiler: %s: %w", reply.Fault, common.ErrServiceUnavailable)
	}
	if reply.Error != "" {
		return "", &TranslationError{Detail: reply.Error}
	}
	return reply.Source, nil
}

// NATSExecutor is the executor counterpart of NATSTranspiler.
type NATSExecutor struct {
	nc requester
}

func NewNATSExecutor(nc *nats.Conn) *NATSExecutor {
	return &NATSExecutor{nc: nc}
}

func (e *NATSExecutor) Run(ctx context.Context, source string, opts RunOptions) (RunResult, error) {
	var reply executeReply
	req := executeRequest{
		RequestID:     uuid.NewString(),
		Source:        source,
		CaptureOutput: opts.CaptureOutput,
		Sandboxed:     opts.Sandboxed,
	}
	if err := request(ctx, e.nc, SubjectExecute, req, &reply); err != nil {
		return RunResult{}, err
	}
	if reply.Fault != "" {
		return RunResult{}, fmt.Errorf("remote executor: %s: %w", reply.Fault, common.ErrServiceUnavailable)
	}

	res := RunResult{Error: reply.Error}
	if opts.CaptureOutput {
		res.Output = reply.Output
	}
	return res, nil
}

func request(ctx context.Context, nc requester, subject string, payload, reply interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", subject, err)
	}

	msg, err := nc.RequestWithContext(ctx, subject, data)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, nats.ErrTimeout):
			return fmt.Errorf("%s: %w", subject, ErrTimeout)
		case errors.Is(err, nats.ErrNoResponders):
			return fmt.Errorf("%s: no engine worker listening: %w", subject, err)
		}
		return fmt.Errorf("%s: %w", subject, err)
	}

	if err := json.Unmarshal(msg.Data, reply); err != nil {
		return fmt.Errorf("decoding %s reply: %w", subject, err)
	}
	return nil
}
