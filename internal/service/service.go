// Package service implements the conference API operations on top of the
// injected persistence, cache, task queue and identity collaborators.
package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iliyamo/conference-central/internal/auth"
	"github.com/iliyamo/conference-central/internal/clock"
	"github.com/iliyamo/conference-central/internal/model"
	"github.com/iliyamo/conference-central/internal/query"
	"github.com/iliyamo/conference-central/internal/queue"
	"github.com/iliyamo/conference-central/internal/repository"
)

// ConferenceStore persists conferences.  Get methods return an error
// wrapping repository.ErrNotFound for a missing key.
type ConferenceStore interface {
	CreateConference(ctx context.Context, c *model.Conference) error
	GetConference(ctx context.Context, key string) (*model.Conference, error)
	// GetConferenceForUpdate reads and locks the conference until the
	// surrounding transaction ends.
	GetConferenceForUpdate(ctx context.Context, key string) (*model.Conference, error)
	UpdateConference(ctx context.Context, c *model.Conference) error
	SetSeatsAvailable(ctx context.Context, key string, seats int) error
	// GetConferences returns the conferences for keys in key order,
	// skipping keys that do not resolve.
	GetConferences(ctx context.Context, keys []string) ([]*model.Conference, error)
	ListConferencesByOrganizer(ctx context.Context, userID string) ([]*model.Conference, error)
	QueryConferences(ctx context.Context, plan query.Plan) ([]*model.Conference, error)
	// ListNearlySoldOut returns names of conferences with
	// 0 < seatsAvailable <= maxSeats.
	ListNearlySoldOut(ctx context.Context, maxSeats int) ([]string, error)
}

// ProfileStore persists profiles and their registrations.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	GetProfileForUpdate(ctx context.Context, userID string) (*model.Profile, error)
	// CreateProfile inserts p unless a profile with the same id exists.
	CreateProfile(ctx context.Context, p *model.Profile) error
	UpdateProfile(ctx context.Context, p *model.Profile) error
	GetProfiles(ctx context.Context, userIDs []string) (map[string]*model.Profile, error)
	AddRegistration(ctx context.Context, userID, conferenceKey string) error
	RemoveRegistration(ctx context.Context, userID, conferenceKey string) error
}

// SessionStore persists conference sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, key string) (*model.Session, error)
	GetSessions(ctx context.Context, keys []string) ([]*model.Session, error)
	// ListSessionsByConference returns sessions ordered by creation.
	ListSessionsByConference(ctx context.Context, conferenceKey string) ([]*model.Session, error)
	ListSessionsByConferenceAndType(ctx context.Context, conferenceKey string, t model.SessionType) ([]*model.Session, error)
	ListSessionsBySpeaker(ctx context.Context, speaker string) ([]*model.Session, error)
	// ListSpeakers returns the distinct speakers of a conference, sorted.
	ListSpeakers(ctx context.Context, conferenceKey string) ([]string, error)
}

// WishlistStore persists session wishlists.
type WishlistStore interface {
	WishlistItemExists(ctx context.Context, userID, sessionKey string) (bool, error)
	// CreateWishlistItem inserts the item; a duplicate is not an error.
	CreateWishlistItem(ctx context.Context, item model.WishlistItem) error
	ListWishlistSessionKeys(ctx context.Context, userID string) ([]string, error)
	// CountWishlistedByConference groups a user's wishlist by conference,
	// ordered by count descending then conference key.
	CountWishlistedByConference(ctx context.Context, userID string) ([]model.ConferenceWishlistCount, error)
}

// Store is the persistence gateway.  WithTx runs fn in a transaction carried
// by the context passed to fn; store calls made with that context join it.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ConferenceStore
	ProfileStore
	SessionStore
	WishlistStore
}

// Cache is a best-effort string cache without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// TaskQueue enqueues asynchronous work.
type TaskQueue interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

// IdentityProvider resolves the caller of the current request.
type IdentityProvider interface {
	Identity(ctx context.Context) (auth.Identity, bool)
}

// Service implements every API operation.  It holds no per-request state.
type Service struct {
	store    Store
	cache    Cache
	tasks    TaskQueue
	identity IdentityProvider
	clock    clock.Clock
	log      zerolog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the clock used to stamp session creation times.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New wires a Service from its collaborators.
func New(store Store, cache Cache, tasks TaskQueue, identity IdentityProvider, opts ...Option) *Service {
	if store == nil || cache == nil || tasks == nil || identity == nil {
		panic("nil dependency passed to service.New")
	}
	s := &Service{
		store:    store,
		cache:    cache,
		tasks:    tasks,
		identity: identity,
		clock:    clock.NewSystem(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) requireIdentity(ctx context.Context) (auth.Identity, error) {
	id, ok := s.identity.Identity(ctx)
	if !ok {
		return auth.Identity{}, errorf(ErrUnauthorized, "Authorization required")
	}
	return id, nil
}

// enqueue is fire-and-forget: the task queue is at-least-once and the
// caller never observes the outcome, so failures are only logged.
func (s *Service) enqueue(ctx context.Context, task queue.Task) {
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		s.log.Error().Err(err).Str("task", task.Name).Msg("enqueue task failed")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
