package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/conference-central/internal/model"
	"github.com/iliyamo/conference-central/internal/query"
	"github.com/iliyamo/conference-central/internal/queue"
)

// ConferenceInput carries the user supplied conference fields.  Empty
// strings, nil slices and a nil MaxAttendees mean "not provided".
type ConferenceInput struct {
	Name         string
	Description  string
	City         string
	Topics       []string
	MaxAttendees *int
	StartDate    string
	EndDate      string
}

// ConferenceView is a conference together with its organizer's display name.
type ConferenceView struct {
	Conference           *model.Conference
	OrganizerDisplayName string
}

// CreateConference creates a conference owned by the caller, applying
// defaults for missing fields, and enqueues a confirmation email.
func (s *Service) CreateConference(ctx context.Context, in ConferenceInput) (*ConferenceView, error) {
	id, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, errorf(ErrValidation, "Conference 'name' field required")
	}

	conf := &model.Conference{
		Key:             uuid.NewString(),
		OrganizerUserID: id.UserID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		City:            model.DefaultCity,
		Topics:          model.DefaultTopics(),
		MaxAttendees:    model.DefaultMaxAttendees,
		SeatsAvailable:  model.DefaultSeatsAvailable,
	}
	if in.City != "" {
		conf.City = in.City
	}
	if len(in.Topics) > 0 {
		conf.Topics = dedupe(in.Topics)
	}
	if in.MaxAttendees != nil {
		if *in.MaxAttendees < 0 {
			return nil, errorf(ErrValidation, "maxAttendees must not be negative")
		}
		conf.MaxAttendees = *in.MaxAttendees
	}

	if conf.StartDate, err = parseDate("startDate", in.StartDate); err != nil {
		return nil, err
	}
	if conf.EndDate, err = parseDate("endDate", in.EndDate); err != nil {
		return nil, err
	}
	if conf.StartDate != nil {
		conf.Month = int(conf.StartDate.Month())
	}
	if conf.MaxAttendees > 0 {
		conf.SeatsAvailable = conf.MaxAttendees
	}

	prof, err := s.profileFor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateConference(ctx, conf); err != nil {
		return nil, fmt.Errorf("create conference: %w", err)
	}

	s.enqueue(ctx, queue.ConfirmationEmailTask(id.Email, describeConference(conf)))
	return &ConferenceView{Conference: conf, OrganizerDisplayName: prof.DisplayName}, nil
}

// UpdateConference applies the provided fields to a conference owned by the
// caller.  The read-check-write runs in one transaction with the conference
// locked so concurrent updates serialize.
func (s *Service) UpdateConference(ctx context.Context, key string, in ConferenceInput) (*ConferenceView, error) {
	id, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	var updated *model.Conference
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		conf, err := s.store.GetConferenceForUpdate(ctx, key)
		if err != nil {
			if isNotFound(err) {
				return errorf(ErrNotFound, "No conference found with key: %s", key)
			}
			return err
		}
		if conf.OrganizerUserID != id.UserID {
			return errorf(ErrForbidden, "Only the owner can update the conference.")
		}
		if err := applyConferencePatch(conf, in); err != nil {
			return err
		}
		if err := s.store.UpdateConference(ctx, conf); err != nil {
			return fmt.Errorf("update conference: %w", err)
		}
		updated = conf
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ConferenceView{Conference: updated, OrganizerDisplayName: s.displayName(ctx, updated.OrganizerUserID)}, nil
}

func applyConferencePatch(conf *model.Conference, in ConferenceInput) error {
	if name := strings.TrimSpace(in.Name); name != "" {
		conf.Name = name
	}
	if in.Description != "" {
		conf.Description = in.Description
	}
	if in.City != "" {
		conf.City = in.City
	}
	if len(in.Topics) > 0 {
		conf.Topics = dedupe(in.Topics)
	}
	if in.MaxAttendees != nil {
		if *in.MaxAttendees < 0 {
			return errorf(ErrValidation, "maxAttendees must not be negative")
		}
		conf.MaxAttendees = *in.MaxAttendees
	}
	if in.StartDate != "" {
		d, err := parseDate("startDate", in.StartDate)
		if err != nil {
			return err
		}
		conf.StartDate = d
		conf.Month = int(d.Month())
	}
	if in.EndDate != "" {
		d, err := parseDate("endDate", in.EndDate)
		if err != nil {
			return err
		}
		conf.EndDate = d
	}
	return nil
}

// GetConference returns a conference by key.  No identity is required.
func (s *Service) GetConference(ctx context.Context, key string) (*ConferenceView, error) {
	conf, err := s.getConference(ctx, key)
	if err != nil {
		return nil, err
	}
	return &ConferenceView{Conference: conf, OrganizerDisplayName: s.displayName(ctx, conf.OrganizerUserID)}, nil
}

// GetConferencesCreated lists the conferences organized by the caller.
func (s *Service) GetConferencesCreated(ctx context.Context) ([]ConferenceView, error) {
	id, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	prof, err := s.profileFor(ctx, id)
	if err != nil {
		return nil, err
	}
	confs, err := s.store.ListConferencesByOrganizer(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("list conferences by organizer: %w", err)
	}
	out := make([]ConferenceView, 0, len(confs))
	for _, c := range confs {
		out = append(out, ConferenceView{Conference: c, OrganizerDisplayName: prof.DisplayName})
	}
	return out, nil
}

// QueryConferences runs the compiled filters and resolves every organizer's
// display name with a single multi-get.
func (s *Service) QueryConferences(ctx context.Context, filters []query.Filter) ([]ConferenceView, error) {
	plan, err := query.Compile(filters)
	if err != nil {
		return nil, err
	}
	confs, err := s.store.QueryConferences(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("query conferences: %w", err)
	}
	return s.withOrganizers(ctx, confs)
}

// GetConferencesToAttend lists the conferences the caller registered for, in
// registration order.
func (s *Service) GetConferencesToAttend(ctx context.Context) ([]ConferenceView, error) {
	id, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	prof, err := s.profileFor(ctx, id)
	if err != nil {
		return nil, err
	}
	confs, err := s.store.GetConferences(ctx, prof.ConferenceKeysToAttend)
	if err != nil {
		return nil, fmt.Errorf("get conferences: %w", err)
	}
	return s.withOrganizers(ctx, confs)
}

func (s *Service) getConference(ctx context.Context, key string) (*model.Conference, error) {
	conf, err := s.store.GetConference(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, errorf(ErrNotFound, "No conference found with key: %s", key)
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	return conf, nil
}

func (s *Service) withOrganizers(ctx context.Context, confs []*model.Conference) ([]ConferenceView, error) {
	ids := make([]string, 0, len(confs))
	seen := make(map[string]bool, len(confs))
	for _, c := range confs {
		if !seen[c.OrganizerUserID] {
			seen[c.OrganizerUserID] = true
			ids = append(ids, c.OrganizerUserID)
		}
	}
	profiles, err := s.store.GetProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get organizer profiles: %w", err)
	}

	out := make([]ConferenceView, 0, len(confs))
	for _, c := range confs {
		v := ConferenceView{Conference: c}
		if p, ok := profiles[c.OrganizerUserID]; ok {
			v.OrganizerDisplayName = p.DisplayName
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) displayName(ctx context.Context, userID string) string {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if !isNotFound(err) {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("organizer profile lookup failed")
		}
		return ""
	}
	return p.DisplayName
}

func describeConference(c *model.Conference) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\r\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&b, "Description: %s\r\n", c.Description)
	}
	fmt.Fprintf(&b, "City: %s\r\n", c.City)
	fmt.Fprintf(&b, "Topics: %s\r\n", strings.Join(c.Topics, ", "))
	if c.StartDate != nil {
		fmt.Fprintf(&b, "Start date: %s\r\n", FormatDate(c.StartDate))
	}
	if c.EndDate != nil {
		fmt.Fprintf(&b, "End date: %s\r\n", FormatDate(c.EndDate))
	}
	fmt.Fprintf(&b, "Max attendees: %d\r\n", c.MaxAttendees)
	return b.String()
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
