package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait keeps reading pipes after the process was killed.
const waitDelay = 500 * time.Millisecond

type commandOutput struct {
	stdout string
	stderr string
}

// runCommand feeds input to argv on stdin and collects both output streams.
func runCommand(ctx context.Context, argv []string, input string) (commandOutput, error) {
	if len(argv) == 0 {
		return commandOutput{}, ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = waitDelay
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := commandOutput{stdout: stdout.String(), stderr: stderr.String()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return out, fmt.Errorf("%s: %w", argv[0], ErrTimeout)
		}
		return out, ctxErr
	}
	return out, err
}

// CommandTranspiler runs a local transpiler binary, source on stdin, program on stdout.
type CommandTranspiler struct {
	command []string
}

func NewCommandTranspiler(command []string) *CommandTranspiler {
	return &CommandTranspiler{command: command}
}

func (t *CommandTranspiler) Transpile(ctx context.Context, source string) (string, error) {
	out, err := runCommand(ctx, t.command, source)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(out.stderr)
			if detail == "" {
				detail = exitErr.Error()
			}
			return "", &TranslationError{Detail: detail}
		}
		return "", fmt.Errorf("running transpiler: %w", err)
	}
	return out.stdout, nil
}

// CommandExecutor runs the translated program with a local interpreter. It runs on the
// host, so RunOptions.Sandboxed is not enforced here; use DockerExecutor for that.
type CommandExecutor struct {
	command []string
}

func NewCommandExecutor(command []string) *CommandExecutor {
	return &CommandExecutor{command: command}
}

func (e *CommandExecutor) Run(ctx context.Context, source string, opts RunOptions) (RunResult, error) {
	out, err := runCommand(ctx, e.command, source)
	res := RunResult{Error: out.stderr}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return RunResult{}, fmt.Errorf("running executor: %w", err)
		}
		// the program failed; a silent failure still has to show up on the error channel
		if strings.TrimSpace(res.Error) == "" {
			res.Error = exitErr.Error()
		}
	}

	if opts.CaptureOutput {
		res.Output = out.stdout
	}
	return res, nil
}
