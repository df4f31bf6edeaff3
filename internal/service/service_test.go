package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-central/internal/auth"
	"github.com/iliyamo/conference-central/internal/cache"
	"github.com/iliyamo/conference-central/internal/service"
	"github.com/iliyamo/conference-central/internal/testutil"
)

type fixture struct {
	svc   *service.Service
	store *testutil.MemStore
	tasks *testutil.RecordingQueue
	cache service.Cache
	clock *testutil.StepClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithCache(t, cache.NewMemory())
}

func newFixtureWithCache(t *testing.T, c service.Cache) *fixture {
	t.Helper()
	f := &fixture{
		store: testutil.NewMemStore(),
		tasks: &testutil.RecordingQueue{},
		cache: c,
		clock: testutil.NewStepClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	f.svc = service.New(f.store, f.cache, f.tasks, auth.ContextProvider{}, service.WithClock(f.clock))
	return f
}

// conference creates a conference organized by userID and returns its key.
func (f *fixture) conference(t *testing.T, userID string, in service.ConferenceInput) string {
	t.Helper()
	v, err := f.svc.CreateConference(testutil.As(context.Background(), userID), in)
	require.NoError(t, err)
	return v.Conference.Key
}

// session adds a session by speaker and advances the clock one second.
func (f *fixture) session(t *testing.T, userID, confKey, name, speaker, typ string) string {
	t.Helper()
	s, err := f.svc.CreateSession(testutil.As(context.Background(), userID), service.SessionInput{
		ConferenceKey: confKey,
		Name:          name,
		Speaker:       speaker,
		Duration:      45,
		TypeOfSession: typ,
		Date:          "2025-06-01",
		StartTime:     "10:00",
	})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return s.Key
}

func intPtr(n int) *int { return &n }
