package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTranspiler_PassesSourceThrough(t *testing.T) {
	tr := NewCommandTranspiler([]string{"cat"})

	out, err := tr.Transpile(context.Background(), "print('hapy')")
	require.NoError(t, err)
	assert.Equal(t, "print('hapy')", out)
}

func TestCommandTranspiler_NonZeroExitIsTranslationError(t *testing.T) {
	tr := NewCommandTranspiler([]string{"sh", "-c", "echo 'unexpected token {{' >&2; exit 2"})

	_, err := tr.Transpile(context.Background(), "bad syntax {{")
	require.Error(t, err)
	assert.True(t, IsTranslationError(err))
	assert.Equal(t, "unexpected token {{", err.Error())
}

func TestCommandTranspiler_MissingBinaryIsFault(t *testing.T) {
	tr := NewCommandTranspiler([]string{"/definitely/not/a/transpiler"})

	_, err := tr.Transpile(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, IsTranslationError(err))
}

func TestCommandTranspiler_EmptyCommand(t *testing.T) {
	_, err := NewCommandTranspiler(nil).Transpile(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestCommandExecutor_CapturesBothChannels(t *testing.T) {
	ex := NewCommandExecutor([]string{"sh"})

	res, err := ex.Run(context.Background(), "echo hapy; echo warn >&2", RunOptions{CaptureOutput: true})
	require.NoError(t, err)
	assert.Equal(t, "hapy\n", res.Output)
	assert.Equal(t, "warn\n", res.Error)
}

func TestCommandExecutor_WithoutCaptureDropsOutput(t *testing.T) {
	ex := NewCommandExecutor([]string{"sh"})

	res, err := ex.Run(context.Background(), "echo hapy", RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Output)
}

func TestCommandExecutor_RuntimeFailureIsNotAFault(t *testing.T) {
	ex := NewCommandExecutor([]string{"sh"})

	res, err := ex.Run(context.Background(), "echo partial; echo boom >&2; exit 1", RunOptions{CaptureOutput: true})
	require.NoError(t, err)
	assert.Equal(t, "partial\n", res.Output)
	assert.Equal(t, "boom\n", res.Error)
}

func TestCommandExecutor_SilentFailureReportsExitStatus(t *testing.T) {
	ex := NewCommandExecutor([]string{"sh"})

	res, err := ex.Run(context.Background(), "exit 3", RunOptions{CaptureOutput: true})
	require.NoError(t, err)
	assert.Equal(t, "exit status 3", res.Error)
}

func TestCommandExecutor_Timeout(t *testing.T) {
	ex := NewCommandExecutor([]string{"sh"})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ex.Run(ctx, "sleep 5", RunOptions{CaptureOutput: true})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Less(t, time.Since(start), 3*time.Second)
}
