// Package engine holds the two collaborators the execution pipeline drives: the hapy
// transpiler and the executor for the translated program, plus their transports.
package engine

import (
	"context"
	"errors"
)

type Transpiler interface {
	// Transpile turns hapy source into the target program. Malformed input is reported
	// as a *TranslationError; anything else is an infrastructure fault.
	Transpile(ctx context.Context, source string) (string, error)
}

type RunOptions struct {
	CaptureOutput bool
	Sandboxed     bool
}

// RunResult is the executor's two-channel answer. Both channels may be empty.
type RunResult struct {
	Error  string
	Output string
}

type Executor interface {
	// Run executes a translated program. A program that fails at runtime is not an error:
	// its stderr comes back in RunResult.Error. The returned error is for faults only.
	Run(ctx context.Context, source string, opts RunOptions) (RunResult, error)
}

var (
	ErrTimeout      = errors.New("execution timed out")
	ErrEmptyCommand = errors.New("no command configured")
)

type TranslationError struct {
	Detail string
}

func (e *TranslationError) Error() string {
	if e.Detail == "" {
		return "translation failed"
	}
	return e.Detail
}

// IsTranslationError reports whether err came from malformed hapy input.
func IsTranslationError(err error) bool {
	var te *TranslationError
	return errors.As(err, &te)
}
