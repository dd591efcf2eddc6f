package engine

import (
	"context"
	"encoding/json"
	"testing"

	"hapyland/internal/common"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequester struct {
	subject string
	sent    []byte
	reply   interface{}
	err     error
}

func (f *fakeRequester) RequestWithContext(_ context.Context, subj string, data []byte) (*nats.Msg, error) {
	f.subject = subj
	f.sent = data
	if f.err != nil {
		return nil, f.err
	}
	body, err := json.Marshal(f.reply)
	if err != nil {
		return nil, err
	}
	return &nats.Msg{Subject: subj, Data: body}, nil
}

func TestNATSTranspiler_Success(t *testing.T) {
	fake := &fakeRequester{reply: transpileReply{Source: "print('hi')"}}
	tr := &NATSTranspiler{nc: fake}

	out, err := tr.Transpile(context.Background(), "show 'hi'")
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", out)
	assert.Equal(t, SubjectTranspile, fake.subject)

	var sent transpileRequest
	require.NoError(t, json.Unmarshal(fake.sent, &sent))
	assert.Equal(t, "show 'hi'", sent.Source)
	assert.NotEmpty(t, sent.RequestID)
}

func TestNATSTranspiler_ReplyErrorIsTranslationError(t *testing.T) {
	fake := &fakeRequester{reply: transpileReply{Error: "line 1: unexpected EOF"}}
	tr := &NATSTranspiler{nc: fake}

	_, err := tr.Transpile(context.Background(), "show")
	require.Error(t, err)
	assert.True(t, IsTranslationError(err))
	assert.Equal(t, "line 1: unexpected EOF", err.Error())
}

func TestNATSTranspiler_ReplyFaultIsNotTranslationError(t *testing.T) {
	tr := &NATSTranspiler{nc: &fakeRequester{reply: transpileReply{Fault: "fork/exec hapy: no such file or directory"}}}

	_, err := tr.Transpile(context.Background(), "show 'hi'")
	require.Error(t, err)
	assert.False(t, IsTranslationError(err))
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
	assert.Contains(t, err.Error(), "no such file or directory")
}

func TestNATSTranspiler_NoResponders(t *testing.T) {
	tr := &NATSTranspiler{nc: &fakeRequester{err: nats.ErrNoResponders}}

	_, err := tr.Transpile(context.Background(), "show")
	require.Error(t, err)
	assert.ErrorIs(t, err, nats.ErrNoResponders)
	assert.False(t, IsTranslationError(err))
}

func TestNATSExecutor_Timeout(t *testing.T) {
	ex := &NATSExecutor{nc: &fakeRequester{err: context.DeadlineExceeded}}

	_, err := ex.Run(context.Background(), "print(1)", RunOptions{CaptureOutput: true})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestNATSExecutor_PassesOptionsAndChannels(t *testing.T) {
	fake := &fakeRequester{reply: executeReply{Output: "1\n", Error: "warning\n"}}
	ex := &NATSExecutor{nc: fake}

	res, err := ex.Run(context.Background(), "print(1)", RunOptions{CaptureOutput: true, Sandboxed: true})
	require.NoError(t, err)
	assert.Equal(t, RunResult{Output: "1\n", Error: "warning\n"}, res)

	var sent executeRequest
	require.NoError(t, json.Unmarshal(fake.sent, &sent))
	assert.True(t, sent.Sandboxed)
	assert.True(t, sent.CaptureOutput)
	assert.Equal(t, SubjectExecute, fake.subject)
}

func TestNATSExecutor_RemoteFault(t *testing.T) {
	ex := &NATSExecutor{nc: &fakeRequester{reply: executeReply{Fault: "container pool exhausted"}}}

	_, err := ex.Run(context.Background(), "print(1)", RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
	assert.Contains(t, err.Error(), "container pool exhausted")
}
