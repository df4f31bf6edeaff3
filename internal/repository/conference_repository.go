package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/conference-central/internal/model"
	"github.com/iliyamo/conference-central/internal/query"
)

// ConferenceRepo stores conferences and their topics.  Topics live in
// conference_topics with a position column that preserves insertion order.
type ConferenceRepo struct {
	db *sql.DB
}

// NewConferenceRepo returns a new ConferenceRepo bound to the given database.
func NewConferenceRepo(db *sql.DB) *ConferenceRepo { return &ConferenceRepo{db: db} }

const conferenceColumns = `c.id, c.organizer_user_id, c.name, c.description, c.city,
	c.month, c.max_attendees, c.seats_available, c.start_date, c.end_date`

// CreateConference inserts the conference row and its topics atomically.
func (r *ConferenceRepo) CreateConference(ctx context.Context, c *model.Conference) error {
	return withTx(ctx, r.db, func(ctx context.Context) error {
		const q = `INSERT INTO conferences
			(id, organizer_user_id, name, description, city, month, max_attendees, seats_available, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := conn(ctx, r.db).ExecContext(ctx, q,
			c.Key, c.OrganizerUserID, c.Name, c.Description, c.City, c.Month,
			c.MaxAttendees, c.SeatsAvailable, nullDate(c.StartDate), nullDate(c.EndDate))
		if err != nil {
			return err
		}
		return r.insertTopics(ctx, c.Key, c.Topics)
	})
}

// GetConference returns the conference with the given key.
func (r *ConferenceRepo) GetConference(ctx context.Context, key string) (*model.Conference, error) {
	return r.getConference(ctx, key, "")
}

// GetConferenceForUpdate reads the conference with a row lock held until the
// surrounding transaction ends.  Outside a transaction the lock is released
// immediately.
func (r *ConferenceRepo) GetConferenceForUpdate(ctx context.Context, key string) (*model.Conference, error) {
	return r.getConference(ctx, key, " FOR UPDATE")
}

func (r *ConferenceRepo) getConference(ctx context.Context, key, lock string) (*model.Conference, error) {
	q := `SELECT ` + conferenceColumns + ` FROM conferences c WHERE c.id = ?` + lock
	row := conn(ctx, r.db).QueryRowContext(ctx, q, key)
	c, err := scanConference(row)
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.loadTopics(ctx, []*model.Conference{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateConference rewrites the mutable columns and replaces the topics.
// SeatsAvailable is left alone; registration owns it.
func (r *ConferenceRepo) UpdateConference(ctx context.Context, c *model.Conference) error {
	return withTx(ctx, r.db, func(ctx context.Context) error {
		const q = `UPDATE conferences
			SET name = ?, description = ?, city = ?, month = ?, max_attendees = ?, start_date = ?, end_date = ?
			WHERE id = ?`
		res, err := conn(ctx, r.db).ExecContext(ctx, q,
			c.Name, c.Description, c.City, c.Month, c.MaxAttendees,
			nullDate(c.StartDate), nullDate(c.EndDate), c.Key)
		if err != nil {
			return err
		}
		if err := requireRow(ctx, r.db, res, c.Key); err != nil {
			return err
		}
		if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM conference_topics WHERE conference_id = ?`, c.Key); err != nil {
			return err
		}
		return r.insertTopics(ctx, c.Key, c.Topics)
	})
}

// SetSeatsAvailable stores the remaining seat count of a conference.
func (r *ConferenceRepo) SetSeatsAvailable(ctx context.Context, key string, seats int) error {
	if seats < 0 {
		return fmt.Errorf("seats available for %s would be negative", key)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE conferences SET seats_available = ? WHERE id = ?`, seats, key)
	if err != nil {
		return err
	}
	return requireRow(ctx, r.db, res, key)
}

// GetConferences returns the conferences for keys in the same order,
// skipping keys that do not exist.
func (r *ConferenceRepo) GetConferences(ctx context.Context, keys []string) ([]*model.Conference, error) {
	if len(keys) == 0 {
		return []*model.Conference{}, nil
	}
	q := `SELECT ` + conferenceColumns + ` FROM conferences c WHERE c.id IN (` + placeholders(len(keys)) + `)`
	found, err := r.list(ctx, q, stringArgs(keys)...)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*model.Conference, len(found))
	for _, c := range found {
		byKey[c.Key] = c
	}
	out := make([]*model.Conference, 0, len(keys))
	for _, k := range keys {
		if c, ok := byKey[k]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListConferencesByOrganizer returns the conferences created by userID
// ordered by name.
func (r *ConferenceRepo) ListConferencesByOrganizer(ctx context.Context, userID string) ([]*model.Conference, error) {
	q := `SELECT ` + conferenceColumns + ` FROM conferences c WHERE c.organizer_user_id = ? ORDER BY c.name ASC, c.id ASC`
	return r.list(ctx, q, userID)
}

// QueryConferences executes a compiled filter plan.
func (r *ConferenceRepo) QueryConferences(ctx context.Context, plan query.Plan) ([]*model.Conference, error) {
	q, args, err := buildConferenceQuery(plan)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, q, args...)
}

// ListNearlySoldOut returns the names of conferences with at least one and
// at most maxSeats seats left.
func (r *ConferenceRepo) ListNearlySoldOut(ctx context.Context, maxSeats int) ([]string, error) {
	const q = `SELECT name FROM conferences
		WHERE seats_available > 0 AND seats_available <= ?
		ORDER BY name ASC, id ASC`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, maxSeats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *ConferenceRepo) list(ctx context.Context, q string, args ...any) ([]*model.Conference, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Conference{}
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadTopics(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ConferenceRepo) insertTopics(ctx context.Context, key string, topics []string) error {
	if len(topics) == 0 {
		return nil
	}
	q := `INSERT INTO conference_topics (conference_id, position, topic) VALUES `
	args := make([]any, 0, len(topics)*3)
	for i, t := range topics {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?)"
		args = append(args, key, i, t)
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, q, args...)
	return err
}

// loadTopics fills Topics for every conference with one query.
func (r *ConferenceRepo) loadTopics(ctx context.Context, confs []*model.Conference) error {
	if len(confs) == 0 {
		return nil
	}
	byKey := make(map[string]*model.Conference, len(confs))
	keys := make([]string, 0, len(confs))
	for _, c := range confs {
		c.Topics = []string{}
		if _, ok := byKey[c.Key]; !ok {
			keys = append(keys, c.Key)
		}
		byKey[c.Key] = c
	}

	q := `SELECT conference_id, topic FROM conference_topics
		WHERE conference_id IN (` + placeholders(len(keys)) + `)
		ORDER BY conference_id, position`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, stringArgs(keys)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key, topic string
		if err := rows.Scan(&key, &topic); err != nil {
			return err
		}
		if c, ok := byKey[key]; ok {
			c.Topics = append(c.Topics, topic)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConference(row rowScanner) (*model.Conference, error) {
	var c model.Conference
	var start, end sql.NullTime
	if err := row.Scan(
		&c.Key, &c.OrganizerUserID, &c.Name, &c.Description, &c.City,
		&c.Month, &c.MaxAttendees, &c.SeatsAvailable, &start, &end,
	); err != nil {
		return nil, err
	}
	c.StartDate = dateOrNil(start)
	c.EndDate = dateOrNil(end)
	return &c, nil
}

// requireRow turns an update that matched nothing into ErrNotFound.  MySQL
// reports zero affected rows when the values did not change, so a zero
// count is confirmed with a lookup.
func requireRow(ctx context.Context, db *sql.DB, res sql.Result, key string) error {
	n, err := res.RowsAffected()
	if err != nil || n > 0 {
		return err
	}
	var one int
	err = conn(ctx, db).QueryRowContext(ctx, `SELECT 1 FROM conferences WHERE id = ?`, key).Scan(&one)
	return notFound(err)
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func dateOrNil(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	d := t.Time.UTC()
	return &d
}
