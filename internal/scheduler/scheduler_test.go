package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/dashboard-service/internal/model"
	"jobmate/dashboard-service/internal/scheduler"
)

type stubRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *stubRefresher) Refresh(context.Context) ([]model.Job, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return []model.Job{{ID: "job-1"}}, nil
}

type recordingReporter struct {
	mu     sync.Mutex
	states []bool
}

func (r *recordingReporter) SetServing(ok bool) {
	r.mu.Lock()
	r.states = append(r.states, ok)
	r.mu.Unlock()
}

func (r *recordingReporter) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.states...)
}

func TestRunOnce_ReportsOutcome(t *testing.T) {
	ok := &stubRefresher{}
	failing := &stubRefresher{err: errors.New("upstream down")}
	rep := &recordingReporter{}

	require.NoError(t, scheduler.New(ok, 6, rep, nil).RunOnce(context.Background()))
	require.Error(t, scheduler.New(failing, 6, rep, nil).RunOnce(context.Background()))

	assert.Equal(t, []bool{true, false}, rep.snapshot())
}

func TestRunOnce_NilReporter(t *testing.T) {
	r := &stubRefresher{}
	require.NoError(t, scheduler.New(r, 1, nil, nil).RunOnce(context.Background()))
	assert.EqualValues(t, 1, r.calls.Load())
}

func TestStart_RunsImmediately(t *testing.T) {
	r := &stubRefresher{}
	rep := &recordingReporter{}
	s := scheduler.New(r, 24, rep, nil)

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return len(rep.snapshot()) >= 1 }, time.Second, 10*time.Millisecond)
}

func TestStart_InvalidSpec(t *testing.T) {
	s := scheduler.NewWithSpec(&stubRefresher{}, "every now and then", nil, nil)
	assert.Error(t, s.Start(context.Background()))
}
