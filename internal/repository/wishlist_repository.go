package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/conference-central/internal/model"
)

// WishlistRepo stores the sessions each user wants to attend.
type WishlistRepo struct {
	db *sql.DB
}

// NewWishlistRepo returns a new WishlistRepo bound to the given database.
func NewWishlistRepo(db *sql.DB) *WishlistRepo { return &WishlistRepo{db: db} }

// WishlistItemExists reports whether the user already wishlisted the session.
func (r *WishlistRepo) WishlistItemExists(ctx context.Context, userID, sessionKey string) (bool, error) {
	var one int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT 1 FROM wishlist_items WHERE user_id = ? AND session_id = ?`, userID, sessionKey).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateWishlistItem inserts the item.  The unique (user_id, session_id)
// index absorbs a concurrent duplicate.
func (r *WishlistRepo) CreateWishlistItem(ctx context.Context, item model.WishlistItem) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO wishlist_items (user_id, session_id) VALUES (?, ?)`, item.UserID, item.SessionKey)
	if isDuplicateEntry(err) {
		return nil
	}
	return err
}

// ListWishlistSessionKeys returns the user's wishlisted session keys in the
// order they were added.
func (r *WishlistRepo) ListWishlistSessionKeys(ctx context.Context, userID string) ([]string, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT session_id FROM wishlist_items WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// CountWishlistedByConference groups the user's wishlist by conference,
// most wishlisted first.
func (r *WishlistRepo) CountWishlistedByConference(ctx context.Context, userID string) ([]model.ConferenceWishlistCount, error) {
	const q = `SELECT s.conference_id, COUNT(*) AS n
		FROM wishlist_items w
		JOIN conference_sessions s ON s.id = w.session_id
		WHERE w.user_id = ?
		GROUP BY s.conference_id
		ORDER BY n DESC, s.conference_id ASC`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ConferenceWishlistCount{}
	for rows.Next() {
		var c model.ConferenceWishlistCount
		if err := rows.Scan(&c.ConferenceKey, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
