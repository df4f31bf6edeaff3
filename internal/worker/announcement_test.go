package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) CacheAnnouncement(context.Context) (string, error) {
	c.calls.Add(1)
	return "announcement", c.err
}

func TestAnnouncementWorker_RefreshesUntilCanceled(t *testing.T) {
	r := &countingRefresher{}
	w := NewAnnouncementWorker(r, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestAnnouncementWorker_KeepsRunningOnError(t *testing.T) {
	r := &countingRefresher{err: errors.New("db down")}
	w := NewAnnouncementWorker(r, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestNewAnnouncementWorker_DefaultInterval(t *testing.T) {
	w := NewAnnouncementWorker(&countingRefresher{}, 0, zerolog.Nop())
	assert.Equal(t, time.Hour, w.interval)
}
