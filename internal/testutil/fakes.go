package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/conference-central/internal/auth"
	"github.com/iliyamo/conference-central/internal/queue"
)

// RecordingQueue captures enqueued tasks.  When Err is set Enqueue fails
// without recording.
type RecordingQueue struct {
	mu    sync.Mutex
	tasks []queue.Task
	Err   error
}

func (q *RecordingQueue) Enqueue(_ context.Context, t queue.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	q.tasks = append(q.tasks, t)
	return nil
}

// Tasks returns a copy of the recorded tasks.
func (q *RecordingQueue) Tasks() []queue.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]queue.Task(nil), q.tasks...)
}

// ErrCacheDown is returned by FailingCache.
var ErrCacheDown = errors.New("cache down")

// FailingCache fails every operation.
type FailingCache struct{}

func (FailingCache) Get(context.Context, string) (string, bool, error) { return "", false, ErrCacheDown }
func (FailingCache) Set(context.Context, string, string) error         { return ErrCacheDown }
func (FailingCache) Delete(context.Context, string) error              { return ErrCacheDown }

// StepClock is a manually advanced clock.
type StepClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStepClock starts the clock at t.
func NewStepClock(t time.Time) *StepClock { return &StepClock{now: t} }

func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *StepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// As returns ctx carrying an identity for userID with a derived email.
func As(ctx context.Context, userID string) context.Context {
	return auth.WithIdentity(ctx, auth.Identity{UserID: userID, Email: userID + "@example.com"})
}
