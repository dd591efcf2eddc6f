package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// DockerExecutor runs translated programs inside an already running sandbox container
// (no network, capped memory), one exec per request.
type DockerExecutor struct {
	cli         *client.Client
	containerID string
	command     []string
}

func NewDockerExecutor(cli *client.Client, containerID string, command []string) *DockerExecutor {
	return &DockerExecutor{cli: cli, containerID: containerID, command: command}
}

// NewDockerClient builds a client from DOCKER_HOST and friends.
func NewDockerClient() (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return cli, nil
}

// Ping checks that the sandbox container exists and is running.
func (e *DockerExecutor) Ping(ctx context.Context) error {
	info, err := e.cli.ContainerInspect(ctx, e.containerID)
	if err != nil {
		return fmt.Errorf("inspecting sandbox %s: %w", shortID(e.containerID), err)
	}
	if info.State == nil || !info.State.Running {
		return fmt.Errorf("sandbox %s is not running", shortID(e.containerID))
	}
	return nil
}

func (e *DockerExecutor) Run(ctx context.Context, source string, opts RunOptions) (RunResult, error) {
	if len(e.command) == 0 {
		return RunResult{}, ErrEmptyCommand
	}

	created, err := e.cli.ContainerExecCreate(ctx, e.containerID, container.ExecOptions{
		Cmd:          e.command,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("creating exec in %s: %w", shortID(e.containerID), err)
	}

	attach, err := e.cli.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return RunResult{}, fmt.Errorf("attaching to exec %s: %w", shortID(created.ID), err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	done := make(chan error, 1)
	go func() {
		if _, err := io.Copy(attach.Conn, strings.NewReader(source)); err != nil {
			done <- fmt.Errorf("writing program: %w", err)
			return
		}
		if err := attach.CloseWrite(); err != nil {
			done <- fmt.Errorf("closing stdin: %w", err)
			return
		}
		_, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader)
		done <- err
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return RunResult{}, fmt.Errorf("sandbox %s: %w", shortID(e.containerID), ErrTimeout)
		}
		return RunResult{}, ctx.Err()
	case err := <-done:
		if err != nil {
			return RunResult{}, fmt.Errorf("reading exec output: %w", err)
		}
	}

	inspect, err := waitForExit(ctx, func(ctx context.Context) (container.ExecInspect, error) {
		return e.cli.ContainerExecInspect(ctx, created.ID)
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("inspecting exec %s: %w", shortID(created.ID), err)
	}

	res := RunResult{Error: stderr.String()}
	if inspect.ExitCode != 0 && strings.TrimSpace(res.Error) == "" {
		res.Error = fmt.Sprintf("exit status %d", inspect.ExitCode)
	}
	if opts.CaptureOutput {
		res.Output = stdout.String()
	}
	return res, nil
}

// execPollInterval spaces exec inspections while the process is still reported running.
var execPollInterval = 50 * time.Millisecond

// waitForExit inspects the exec until the daemon no longer reports it running.
// The output stream can hit EOF before the exit code is recorded.
func waitForExit(ctx context.Context, inspect func(context.Context) (container.ExecInspect, error)) (container.ExecInspect, error) {
	ticker := time.NewTicker(execPollInterval)
	defer ticker.Stop()

	for {
		info, err := inspect(ctx)
		if err != nil {
			return container.ExecInspect{}, err
		}
		if !info.Running {
			return info, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return container.ExecInspect{}, ErrTimeout
			}
			return container.ExecInspect{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
