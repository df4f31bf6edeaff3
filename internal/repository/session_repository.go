package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/conference-central/internal/model"
)

// SessionRepo stores conference sessions.  Sessions are ordered by
// created_time with the auto-increment seq column breaking ties, so
// insertion order wins among sessions created in the same second.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

const sessionColumns = `s.id, s.conference_id, s.name, s.highlights, s.speaker,
	s.duration_minutes, s.type_of_session, s.session_date, s.start_time, s.created_time`

const sessionOrder = ` ORDER BY s.created_time ASC, s.seq ASC`

// CreateSession inserts a session.
func (r *SessionRepo) CreateSession(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO conference_sessions
		(id, conference_id, name, highlights, speaker, duration_minutes, type_of_session, session_date, start_time, created_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, q,
		s.Key, s.ConferenceKey, s.Name, s.Highlights, s.Speaker, s.Duration,
		string(s.TypeOfSession), s.Date, s.StartTime, s.CreatedTime)
	return err
}

// GetSession returns the session with the given key.
func (r *SessionRepo) GetSession(ctx context.Context, key string) (*model.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM conference_sessions s WHERE s.id = ?`
	s, err := scanSession(conn(ctx, r.db).QueryRowContext(ctx, q, key))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// GetSessions returns the sessions for keys in key order, skipping keys
// that do not exist.
func (r *SessionRepo) GetSessions(ctx context.Context, keys []string) ([]*model.Session, error) {
	if len(keys) == 0 {
		return []*model.Session{}, nil
	}
	q := `SELECT ` + sessionColumns + ` FROM conference_sessions s WHERE s.id IN (` + placeholders(len(keys)) + `)`
	found, err := r.list(ctx, q, stringArgs(keys)...)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*model.Session, len(found))
	for _, s := range found {
		byKey[s.Key] = s
	}
	out := make([]*model.Session, 0, len(keys))
	for _, k := range keys {
		if s, ok := byKey[k]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// ListSessionsByConference returns a conference's sessions in creation order.
func (r *SessionRepo) ListSessionsByConference(ctx context.Context, conferenceKey string) ([]*model.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM conference_sessions s WHERE s.conference_id = ?` + sessionOrder
	return r.list(ctx, q, conferenceKey)
}

// ListSessionsByConferenceAndType narrows ListSessionsByConference to a type.
func (r *SessionRepo) ListSessionsByConferenceAndType(ctx context.Context, conferenceKey string, t model.SessionType) ([]*model.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM conference_sessions s
		WHERE s.conference_id = ? AND s.type_of_session = ?` + sessionOrder
	return r.list(ctx, q, conferenceKey, string(t))
}

// ListSessionsBySpeaker returns every session given by speaker.
func (r *SessionRepo) ListSessionsBySpeaker(ctx context.Context, speaker string) ([]*model.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM conference_sessions s WHERE s.speaker = ?` + sessionOrder
	return r.list(ctx, q, speaker)
}

// ListSpeakers returns the distinct speakers of a conference, sorted.
func (r *SessionRepo) ListSpeakers(ctx context.Context, conferenceKey string) ([]string, error) {
	const q = `SELECT DISTINCT speaker FROM conference_sessions WHERE conference_id = ? ORDER BY speaker`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, conferenceKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var sp string
		if err := rows.Scan(&sp); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (r *SessionRepo) list(ctx context.Context, q string, args ...any) ([]*model.Session, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSession(row rowScanner) (*model.Session, error) {
	var s model.Session
	if err := row.Scan(
		&s.Key, &s.ConferenceKey, &s.Name, &s.Highlights, &s.Speaker,
		&s.Duration, &s.TypeOfSession, &s.Date, &s.StartTime, &s.CreatedTime,
	); err != nil {
		return nil, err
	}
	s.Date = s.Date.UTC()
	return &s, nil
}
