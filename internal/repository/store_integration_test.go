//go:build integration

package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iliyamo/conference-central/internal/auth"
	"github.com/iliyamo/conference-central/internal/cache"
	"github.com/iliyamo/conference-central/internal/database"
	"github.com/iliyamo/conference-central/internal/model"
	"github.com/iliyamo/conference-central/internal/query"
	"github.com/iliyamo/conference-central/internal/repository"
	"github.com/iliyamo/conference-central/internal/service"
	"github.com/iliyamo/conference-central/internal/testutil"
)

const (
	mysqlPassword = "secret"
	mysqlDatabase = "conference_central_test"
)

var (
	mysqlContainer testcontainers.Container
	testDB         *sql.DB
)

// TestMain starts a MySQL container and applies the migrations once for
// every test in the package.
func TestMain(m *testing.M) {
	ctx := context.Background()

	if err := setupMySQL(ctx); err != nil {
		fmt.Printf("Failed to setup MySQL: %v\n", err)
		if mysqlContainer != nil {
			_ = mysqlContainer.Terminate(ctx)
		}
		os.Exit(1)
	}

	code := m.Run()

	_ = testDB.Close()
	if err := mysqlContainer.Terminate(ctx); err != nil {
		fmt.Printf("Failed to terminate MySQL container: %v\n", err)
	}
	os.Exit(code)
}

func setupMySQL(ctx context.Context) error {
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mysqlPassword,
			"MYSQL_DATABASE":      mysqlDatabase,
		},
		// The entrypoint runs a temporary server on port 0 first; only the
		// final server listens on 3306.
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(3 * time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	mysqlContainer = container

	host, err := container.Host(ctx)
	if err != nil {
		return fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		return fmt.Errorf("failed to get container port: %w", err)
	}

	opts := database.Options{User: "root", Password: mysqlPassword, Host: host, Port: port.Port(), Name: mysqlDatabase}
	deadline := time.Now().Add(time.Minute)
	for {
		testDB, err = database.Open(ctx, opts)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("failed to connect: %w", err)
		}
		time.Sleep(time.Second)
	}

	if err := database.Migrate(ctx, testDB); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// newService wires the service to the MySQL store.
func newService(t *testing.T) (*service.Service, *repository.Store) {
	t.Helper()
	store := repository.NewStore(testDB)
	clk := testutil.NewStepClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := service.New(store, cache.NewMemory(), &testutil.RecordingQueue{}, auth.ContextProvider{}, service.WithClock(clk))
	return svc, store
}

// uniqueUser returns a user id not shared with other tests.
func uniqueUser(name string) string {
	return name + "-" + uuid.NewString()[:8]
}

func createConference(t *testing.T, svc *service.Service, organizer string, in service.ConferenceInput) string {
	t.Helper()
	v, err := svc.CreateConference(testutil.As(context.Background(), organizer), in)
	require.NoError(t, err)
	return v.Conference.Key
}

func intPtr(n int) *int { return &n }

func TestRegistrationAgainstMySQL(t *testing.T) {
	svc, _ := newService(t)
	organizer := uniqueUser("org")
	key := createConference(t, svc, organizer, service.ConferenceInput{Name: "GopherCon", MaxAttendees: intPtr(1)})

	bob := testutil.As(context.Background(), uniqueUser("bob"))
	carol := testutil.As(context.Background(), uniqueUser("carol"))

	t.Run("unregister before registering reports false", func(t *testing.T) {
		ok, err := svc.UnregisterFromConference(bob, key)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("register then register again conflicts", func(t *testing.T) {
		ok, err := svc.RegisterForConference(bob, key)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = svc.RegisterForConference(bob, key)
		assert.ErrorIs(t, err, service.ErrConflict)
		assert.EqualError(t, err, "You have already registered for this conference")
	})

	t.Run("no seats left conflicts", func(t *testing.T) {
		_, err := svc.RegisterForConference(carol, key)
		assert.ErrorIs(t, err, service.ErrConflict)
		assert.EqualError(t, err, "There are no seats available.")

		prof, err := svc.GetProfile(carol)
		require.NoError(t, err)
		assert.Empty(t, prof.ConferenceKeysToAttend)
	})

	t.Run("unregister releases the seat", func(t *testing.T) {
		ok, err := svc.UnregisterFromConference(bob, key)
		require.NoError(t, err)
		assert.True(t, ok)

		v, err := svc.GetConference(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, 1, v.Conference.SeatsAvailable)
	})

	t.Run("unknown conference", func(t *testing.T) {
		_, err := svc.RegisterForConference(bob, uuid.NewString())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestConcurrentRegistrationForLastSeat(t *testing.T) {
	svc, _ := newService(t)
	key := createConference(t, svc, uniqueUser("org"), service.ConferenceInput{Name: "Tiny", MaxAttendees: intPtr(1)})

	users := []string{uniqueUser("a"), uniqueUser("b")}
	results := make([]error, len(users))
	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			_, results[i] = svc.RegisterForConference(testutil.As(context.Background(), u), key)
		}(i, u)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, service.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)

	v, err := svc.GetConference(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Conference.SeatsAvailable)
}

func TestSetSeatsAvailable(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	key := createConference(t, svc, uniqueUser("org"), service.ConferenceInput{Name: "Seats", MaxAttendees: intPtr(3)})

	t.Run("negative is rejected", func(t *testing.T) {
		require.Error(t, store.SetSeatsAvailable(ctx, key, -1))
		c, err := store.GetConference(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 3, c.SeatsAvailable)
	})

	t.Run("unchanged value still finds the row", func(t *testing.T) {
		assert.NoError(t, store.SetSeatsAvailable(ctx, key, 3))
	})

	t.Run("unknown key is not found", func(t *testing.T) {
		assert.ErrorIs(t, store.SetSeatsAvailable(ctx, uuid.NewString(), 1), repository.ErrNotFound)
	})
}

func TestLazyProfileCreation(t *testing.T) {
	_, store := newService(t)
	ctx := context.Background()
	id := uniqueUser("ada")

	_, err := store.GetProfile(ctx, id)
	require.ErrorIs(t, err, repository.ErrNotFound)

	first := &model.Profile{UserID: id, DisplayName: "first", MainEmail: "a@example.com", TeeShirtSize: model.TeeShirtNotSpecified}
	second := &model.Profile{UserID: id, DisplayName: "second", MainEmail: "b@example.com", TeeShirtSize: model.TeeShirtMW}
	require.NoError(t, store.CreateProfile(ctx, first))
	require.NoError(t, store.CreateProfile(ctx, second))

	p, err := store.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "first", p.DisplayName)
	assert.Equal(t, model.TeeShirtNotSpecified, p.TeeShirtSize)
	assert.Equal(t, []string{}, p.ConferenceKeysToAttend)
}

func TestWishlistAgainstMySQL(t *testing.T) {
	svc, store := newService(t)
	organizer := uniqueUser("org")
	key := createConference(t, svc, organizer, service.ConferenceInput{Name: "Wish"})

	sess, err := svc.CreateSession(testutil.As(context.Background(), organizer), service.SessionInput{
		ConferenceKey: key,
		Name:          "Generics",
		Speaker:       "Rob",
		Duration:      30,
		TypeOfSession: "LECTURE",
		Date:          "2025-06-01",
		StartTime:     "09:00",
	})
	require.NoError(t, err)

	user := uniqueUser("bob")
	bob := testutil.As(context.Background(), user)

	t.Run("adding twice keeps one item", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			ok, err := svc.AddSessionToWishlist(bob, sess.Key)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		keys, err := store.ListWishlistSessionKeys(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, []string{sess.Key}, keys)
	})

	t.Run("duplicate insert is absorbed", func(t *testing.T) {
		item := model.WishlistItem{UserID: user, SessionKey: sess.Key}
		require.NoError(t, store.CreateWishlistItem(context.Background(), item))

		counts, err := store.CountWishlistedByConference(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, []model.ConferenceWishlistCount{{ConferenceKey: key, Count: 1}}, counts)
	})
}

func TestSessionOrderingAgainstMySQL(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	key := createConference(t, svc, uniqueUser("org"), service.ConferenceInput{Name: "Order"})

	// Equal creation times fall back to insertion order.
	names := []string{"first", "second", "third"}
	for i, name := range names {
		created := int64(100)
		if i == 2 {
			created = 50
		}
		require.NoError(t, store.CreateSession(ctx, &model.Session{
			Key:           uuid.NewString(),
			ConferenceKey: key,
			Name:          name,
			Speaker:       "Rob",
			Duration:      30,
			TypeOfSession: model.SessionLecture,
			Date:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			StartTime:     "09:00",
			CreatedTime:   created,
		}))
	}

	sessions, err := store.ListSessionsByConference(ctx, key)
	require.NoError(t, err)
	got := make([]string, 0, len(sessions))
	for _, s := range sessions {
		got = append(got, s.Name)
	}
	assert.Equal(t, []string{"third", "first", "second"}, got)
}

func TestTopicQueryAgainstMySQL(t *testing.T) {
	svc, _ := newService(t)
	organizer := uniqueUser("org")
	city := "City-" + uuid.NewString()[:8]

	createConference(t, svc, organizer, service.ConferenceInput{Name: "Alpha", City: city, Topics: []string{"Rust"}})
	createConference(t, svc, organizer, service.ConferenceInput{Name: "Beta", City: city, Topics: []string{"Go", "Cloud"}})
	createConference(t, svc, organizer, service.ConferenceInput{Name: "Gamma", City: city, Topics: []string{"Go"}})
	createConference(t, svc, organizer, service.ConferenceInput{Name: "Delta", City: city, Topics: []string{"Python", "AI"}})

	names := func(views []service.ConferenceView) []string {
		out := make([]string, 0, len(views))
		for _, v := range views {
			out = append(out, v.Conference.Name)
		}
		return out
	}

	cases := []struct {
		name string
		op   string
		want []string
	}{
		// Ordered by the smallest topic of each conference, then name:
		// AI (Delta), Cloud (Beta), Go (Gamma), Rust (Alpha).
		{name: "not equal matches any other topic", op: "NE", want: []string{"Delta", "Beta", "Alpha"}},
		{name: "greater than", op: "GT", want: []string{"Delta", "Alpha"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			views, err := svc.QueryConferences(context.Background(), []query.Filter{
				{Field: "CITY", Operator: "EQ", Value: city},
				{Field: "TOPIC", Operator: tc.op, Value: "Go"},
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(views))
		})
	}
}
