package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls atomic.Int64
	err   error
}

func (f *fakeExpirer) ExpireSubscriptions(context.Context) (int64, error) {
	f.calls.Add(1)
	return 2, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStart_SweepsImmediatelyAndOnSchedule(t *testing.T) {
	exp := &fakeExpirer{}
	s := New(exp, "@every 1s", testLogger())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return exp.calls.Load() >= 1 }, time.Second, 10*time.Millisecond,
		"startup sweep")
	assert.Eventually(t, func() bool { return exp.calls.Load() >= 2 }, 3*time.Second, 50*time.Millisecond,
		"scheduled sweep")
}

func TestStart_RejectsBadSpec(t *testing.T) {
	s := New(&fakeExpirer{}, "whenever", testLogger())
	assert.Error(t, s.Start(context.Background()))
}

func TestSweep_FailureIsNotFatal(t *testing.T) {
	exp := &fakeExpirer{err: errors.New("database is locked")}
	s := New(exp, "@every 1h", testLogger())

	s.Sweep(context.Background())
	s.Sweep(context.Background())
	assert.Equal(t, int64(2), exp.calls.Load())
}
