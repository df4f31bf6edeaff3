package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/conference-central/internal/model"
)

// ProfileRepo stores profiles and the registrations table that lists the
// conferences each profile attends.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo returns a new ProfileRepo bound to the given database.
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// GetProfile returns the profile of userID with its registrations.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return r.getProfile(ctx, userID, "")
}

// GetProfileForUpdate is GetProfile with the profile row locked.
func (r *ProfileRepo) GetProfileForUpdate(ctx context.Context, userID string) (*model.Profile, error) {
	return r.getProfile(ctx, userID, " FOR UPDATE")
}

func (r *ProfileRepo) getProfile(ctx context.Context, userID, lock string) (*model.Profile, error) {
	q := `SELECT user_id, display_name, main_email, tee_shirt_size FROM profiles WHERE user_id = ?` + lock
	var p model.Profile
	err := conn(ctx, r.db).QueryRowContext(ctx, q, userID).Scan(&p.UserID, &p.DisplayName, &p.MainEmail, &p.TeeShirtSize)
	if err != nil {
		return nil, notFound(err)
	}
	keys, err := r.registrations(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.ConferenceKeysToAttend = keys
	return &p, nil
}

// CreateProfile inserts p.  An existing profile with the same id is kept.
func (r *ProfileRepo) CreateProfile(ctx context.Context, p *model.Profile) error {
	const q = `INSERT IGNORE INTO profiles (user_id, display_name, main_email, tee_shirt_size) VALUES (?, ?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, p.UserID, p.DisplayName, p.MainEmail, string(p.TeeShirtSize))
	return err
}

// UpdateProfile stores the editable profile fields.
func (r *ProfileRepo) UpdateProfile(ctx context.Context, p *model.Profile) error {
	const q = `UPDATE profiles SET display_name = ?, main_email = ?, tee_shirt_size = ? WHERE user_id = ?`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, p.DisplayName, p.MainEmail, string(p.TeeShirtSize), p.UserID)
	return err
}

// GetProfiles loads several profiles at once, keyed by user id.  Missing
// ids are absent from the map.  Registrations are not loaded.
func (r *ProfileRepo) GetProfiles(ctx context.Context, userIDs []string) (map[string]*model.Profile, error) {
	out := make(map[string]*model.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	q := `SELECT user_id, display_name, main_email, tee_shirt_size FROM profiles
		WHERE user_id IN (` + placeholders(len(userIDs)) + `)`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, stringArgs(userIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.UserID, &p.DisplayName, &p.MainEmail, &p.TeeShirtSize); err != nil {
			return nil, err
		}
		out[p.UserID] = &p
	}
	return out, rows.Err()
}

// AddRegistration appends conferenceKey to the profile's attendance list.
func (r *ProfileRepo) AddRegistration(ctx context.Context, userID, conferenceKey string) error {
	const q = `INSERT INTO registrations (user_id, conference_id) VALUES (?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, userID, conferenceKey)
	return err
}

// RemoveRegistration deletes conferenceKey from the profile's attendance list.
func (r *ProfileRepo) RemoveRegistration(ctx context.Context, userID, conferenceKey string) error {
	const q = `DELETE FROM registrations WHERE user_id = ? AND conference_id = ?`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, userID, conferenceKey)
	return err
}

func (r *ProfileRepo) registrations(ctx context.Context, userID string) ([]string, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT conference_id FROM registrations WHERE user_id = ? ORDER BY id`, userID)
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
