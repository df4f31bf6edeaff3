package repository

import (
	"context"
	"database/sql"
)

// Store bundles the repositories behind a single gateway and scopes
// transactions through the context.
type Store struct {
	db *sql.DB
	*ConferenceRepo
	*ProfileRepo
	*SessionRepo
	*WishlistRepo
}

// NewStore returns a Store bound to db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:             db,
		ConferenceRepo: NewConferenceRepo(db),
		ProfileRepo:    NewProfileRepo(db),
		SessionRepo:    NewSessionRepo(db),
		WishlistRepo:   NewWishlistRepo(db),
	}
}

// WithTx runs fn in one transaction; every repository call made with the
// context passed to fn joins it.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, s.db, fn)
}
