// Package testutil provides in-memory doubles of the service collaborators
// for unit tests.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/conference-central/internal/model"
	"github.com/iliyamo/conference-central/internal/query"
	"github.com/iliyamo/conference-central/internal/repository"
)

type txKey struct{}

// MemStore is an in-memory persistence gateway.  Transactions are
// serialized and roll back every change when fn fails.
type MemStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state
	fail map[string]error
}

type state struct {
	conferences map[string]*model.Conference
	confOrder   []string
	profiles    map[string]*model.Profile
	sessions    []*model.Session
	wishlist    []model.WishlistItem
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		st: state{
			conferences: map[string]*model.Conference{},
			profiles:    map[string]*model.Profile{},
		},
		fail: map[string]error{},
	}
}

// FailOn makes every later call of the named method return err.
func (m *MemStore) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[method] = err
}

func (m *MemStore) failed(method string) error {
	return m.fail[method]
}

func (m *MemStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.st.clone()
	m.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.mu.Lock()
		m.st = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// write serializes a mutation made outside a transaction with running
// transactions, so a rollback never discards it.
func (m *MemStore) write(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	m.txMu.Lock()
	return m.txMu.Unlock
}

// ---- Conferences ----

func (m *MemStore) CreateConference(ctx context.Context, c *model.Conference) error {
	defer m.write(ctx)()
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed("CreateConference"); err != nil {
		return err
	}
	if _, ok := m.st.conferences[c.Key]; ok {
		return fmt.Errorf("duplicate conference %s", c.Key)
	}
	m.st.conferences[c.Key] = cloneConference(c)
	m.st.confOrder = append(m.st.confOrder, c.Key)
	return nil
}

func (m *MemStore) GetConference(_ context.Context, key string) (*model.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed("GetConference"); err != nil {
		return nil, err
	}
	c, ok := m.st.conferences[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneConference(c), nil
}

func (m *MemStore) GetConferenceForUpdate(ctx context.Context, key string) (*model.Conference, error) {
	return m.GetConference(ctx, key)
}

func (m *MemStore) UpdateConference(ctx context.Context, c *model.Conference) error {
	defer m.write(ctx)()
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed("UpdateConference"); err != nil {
		return err
	}
	cur, ok := m.st.conferences[c.Key]
	if !ok {
		return repository.ErrNotFound
	}
	next := cloneConference(c)
	next.SeatsAvailable = cur.SeatsAvailable
	m.st.conferences[c.Key] = next
	return nil
}

func (m *MemStore) SetSeatsAvailable(ctx context.Context, key string, seats int) error {
	defer m.write(ctx)()
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed("SetSeatsAvailable"); err != nil {
		return err
	}
	c, ok := m.st.conferences[key]
	if !ok {
		return repository.ErrNotFound
	}
	if seats < 0 {
		return fmt.Errorf("seats available for %s would be negative", key)
	}
	c.SeatsAvailable = seats
	return nil
}

func (m *MemStore) GetConferences(_ context.Context, keys []string) ([]*model.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Conference{}
	for _, k := range keys {
		if c, ok := m.st.conferences[k]; ok {
			out = append(out, cloneConference(c))
		}
	}
	return out, nil
}

func (m *MemStore) ListConferencesByOrganizer(_ context.Context, userID string) ([]*model.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Conference{}
	for _, k := range m.st.confOrder {
		if c := m.st.conferences[k]; c.OrganizerUserID == userID {
			out = append(out, cloneConference(c))
		}
	}
	sortConferences(out, []string{query.FieldName})
	return out, nil
}

// QueryConferences evaluates the plan the way the SQL renderer does:
// predicates are conjunctive, topics match when any topic satisfies the
// predicate, ordering follows plan.Order and then the key.
func (m *MemStore) QueryConferences(_ context.Context, plan query.Plan) ([]*model.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed("QueryConferences"); err != nil {
		return nil, err
	}
	out := []*model.Conference{}
	for _, k := range m.st.confOrder {
		c := m.st.conferences[k]
		if matchesAll(c, plan.Predicates) {
			out = append(out, cloneConference(c))
		}
	}
	sortConferences(out, plan.Order)
	return out, nil
}

func (m *MemStore) ListNearlySoldOut(_ context.Context, maxSeats int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed("ListNearlySoldOut"); err != nil {
		return nil, err
	}
	names := []string{}
	for _, c := range m.st.conferences {
		if c.SeatsAvailable > 0 && c.SeatsAvailable <= maxSeats {
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// ---- Profiles ----

func (m *MemStore) GetProfile(_ context.Context, userID string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed("GetProfile"); err != nil {
		return nil, err
	}
	p, ok := m.st.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (m *MemStore) GetProfileForUpdate(ctx context.Context, userID string) (*model.Profile, error) {
	return m.GetProfile(ctx, userID)
}

func (m *MemStore) CreateProfile(ctx context.Context, p *model.Profile) error {
	defer m.write(ctx)()
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed("CreateProfile"); err != nil {
		return err
	}
	if _, ok := m.st.profiles[p.UserID]; !ok {
		m.st.profiles[p.UserID] = cloneProfile(p)
	}
	return nil
}

func (m *MemStore) UpdateProfile(ctx context.Context, p *model.Profile) error {
	defer m.write(ctx)()
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.st.profiles[p.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.DisplayName = p.DisplayName
	cur.MainEmail = p.MainEmail
	cur.TeeShirtSize = p.TeeShirtSize
	return nil
}

func (m *MemStore) GetProfiles(_ context.Context, userIDs []string) (map[string]*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*model.Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := m.st.profiles[id]; ok {
			out[id] = cloneProfile(p)
		}
	}
	return out, nil
}

func (m *MemStore) AddRegistration(ctx context.Context, userID, conferenceKey string) error {
	defer m.write(ctx)()
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed("AddRegistration"); err != nil {
		return err
	}
	p, ok := m.st.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if slices.Contains(p.ConferenceKeysToAttend, conferenceKey) {
		return fmt.Errorf("duplicate registration %s/%s", userID, conferenceKey)
	}
	p.ConferenceKeysToAttend = append(p.ConferenceKeysToAttend, conferenceKey)
	return nil
}

func (m *MemStore) RemoveRegistration(ctx context.Context, userID, conferenceKey string) error {
	defer m.write(ctx)()
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.st.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	p.ConferenceKeysToAttend = slices.DeleteFunc(p.ConferenceKeysToAttend, func(k string) bool { return k == conferenceKey })
	return nil
}

// ---- Sessions ----

func (m *MemStore) CreateSession(ctx context.Context, s *model.Session) error {
	defer m.write(ctx)()
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed("CreateSession"); err != nil {
		return err
	}
	cp := *s
	m.st.sessions = append(m.st.sessions, &cp)
	return nil
}

func (m *MemStore) GetSession(_ context.Context, key string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.st.sessions {
		if s.Key == key {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MemStore) GetSessions(_ context.Context, keys []string) ([]*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Session{}
	for _, k := range keys {
		for _, s := range m.st.sessions {
			if s.Key == k {
				cp := *s
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (m *MemStore) ListSessionsByConference(_ context.Context, conferenceKey string) ([]*model.Session, error) {
	return m.listSessions(func(s *model.Session) bool { return s.ConferenceKey == conferenceKey })
}

func (m *MemStore) ListSessionsByConferenceAndType(_ context.Context, conferenceKey string, t model.SessionType) ([]*model.Session, error) {
	return m.listSessions(func(s *model.Session) bool {
		return s.ConferenceKey == conferenceKey && s.TypeOfSession == t
	})
}

func (m *MemStore) ListSessionsBySpeaker(_ context.Context, speaker string) ([]*model.Session, error) {
	return m.listSessions(func(s *model.Session) bool { return s.Speaker == speaker })
}

func (m *MemStore) ListSpeakers(_ context.Context, conferenceKey string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, s := range m.st.sessions {
		if s.ConferenceKey == conferenceKey && !seen[s.Speaker] {
			seen[s.Speaker] = true
			out = append(out, s.Speaker)
		}
	}
	sort.Strings(out)
	return out, nil
}

// listSessions keeps insertion order among equal creation times.
func (m *MemStore) listSessions(keep func(*model.Session) bool) ([]*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed("ListSessions"); err != nil {
		return nil, err
	}
	out := []*model.Session{}
	for _, s := range m.st.sessions {
		if keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedTime < out[j].CreatedTime })
	return out, nil
}

// ---- Wishlist ----

func (m *MemStore) WishlistItemExists(_ context.Context, userID, sessionKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.st.wishlist, model.WishlistItem{UserID: userID, SessionKey: sessionKey}), nil
}

func (m *MemStore) CreateWishlistItem(ctx context.Context, item model.WishlistItem) error {
	defer m.write(ctx)()
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.st.wishlist, item) {
		m.st.wishlist = append(m.st.wishlist, item)
	}
	return nil
}

func (m *MemStore) ListWishlistSessionKeys(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for _, it := range m.st.wishlist {
		if it.UserID == userID {
			out = append(out, it.SessionKey)
		}
	}
	return out, nil
}

func (m *MemStore) CountWishlistedByConference(_ context.Context, userID string) ([]model.ConferenceWishlistCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, it := range m.st.wishlist {
		if it.UserID != userID {
			continue
		}
		for _, s := range m.st.sessions {
			if s.Key == it.SessionKey {
				counts[s.ConferenceKey]++
				break
			}
		}
	}
	out := make([]model.ConferenceWishlistCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.ConferenceWishlistCount{ConferenceKey: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ConferenceKey < out[j].ConferenceKey
	})
	return out, nil
}

// WishlistLen returns the number of stored wishlist items.
func (m *MemStore) WishlistLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.wishlist)
}

// ---- helpers ----

func matchesAll(c *model.Conference, preds []query.Predicate) bool {
	for _, p := range preds {
		if !matches(c, p) {
			return false
		}
	}
	return true
}

func matches(c *model.Conference, p query.Predicate) bool {
	switch p.Field {
	case query.FieldTopics:
		want, _ := p.Value.(string)
		for _, t := range c.Topics {
			if p.Operator.Compare(strings.Compare(t, want)) {
				return true
			}
		}
		return false
	case query.FieldCity:
		want, _ := p.Value.(string)
		return p.Operator.Compare(strings.Compare(c.City, want))
	case query.FieldName:
		want, _ := p.Value.(string)
		return p.Operator.Compare(strings.Compare(c.Name, want))
	case query.FieldMonth:
		want, _ := p.Value.(int)
		return p.Operator.Compare(compareInt(c.Month, want))
	case query.FieldMaxAttendees:
		want, _ := p.Value.(int)
		return p.Operator.Compare(compareInt(c.MaxAttendees, want))
	}
	return false
}

func sortConferences(confs []*model.Conference, order []string) {
	sort.SliceStable(confs, func(i, j int) bool {
		for _, f := range order {
			if cmp := compareField(confs[i], confs[j], f); cmp != 0 {
				return cmp < 0
			}
		}
		return confs[i].Key < confs[j].Key
	})
}

func compareField(a, b *model.Conference, field string) int {
	switch field {
	case query.FieldCity:
		return strings.Compare(a.City, b.City)
	case query.FieldName:
		return strings.Compare(a.Name, b.Name)
	case query.FieldMonth:
		return compareInt(a.Month, b.Month)
	case query.FieldMaxAttendees:
		return compareInt(a.MaxAttendees, b.MaxAttendees)
	case query.FieldTopics:
		return strings.Compare(minTopic(a), minTopic(b))
	}
	return 0
}

func minTopic(c *model.Conference) string {
	if len(c.Topics) == 0 {
		return ""
	}
	return slices.Min(c.Topics)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (s state) clone() state {
	out := state{
		conferences: make(map[string]*model.Conference, len(s.conferences)),
		confOrder:   slices.Clone(s.confOrder),
		profiles:    make(map[string]*model.Profile, len(s.profiles)),
		sessions:    make([]*model.Session, 0, len(s.sessions)),
		wishlist:    slices.Clone(s.wishlist),
	}
	for k, c := range s.conferences {
		out.conferences[k] = cloneConference(c)
	}
	for k, p := range s.profiles {
		out.profiles[k] = cloneProfile(p)
	}
	for _, sess := range s.sessions {
		cp := *sess
		out.sessions = append(out.sessions, &cp)
	}
	return out
}

func cloneConference(c *model.Conference) *model.Conference {
	cp := *c
	cp.Topics = slices.Clone(c.Topics)
	if c.StartDate != nil {
		d := *c.StartDate
		cp.StartDate = &d
	}
	if c.EndDate != nil {
		d := *c.EndDate
		cp.EndDate = &d
	}
	return &cp
}

func cloneProfile(p *model.Profile) *model.Profile {
	cp := *p
	cp.ConferenceKeysToAttend = slices.Clone(p.ConferenceKeysToAttend)
	if cp.ConferenceKeysToAttend == nil {
		cp.ConferenceKeysToAttend = []string{}
	}
	return &cp
}
