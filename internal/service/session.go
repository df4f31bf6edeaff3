package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/conference-central/internal/model"
	"github.com/iliyamo/conference-central/internal/queue"
)

// SessionInput carries the fields of a new session.
type SessionInput struct {
	ConferenceKey string
	Name          string
	Highlights    string
	Speaker       string
	Duration      int
	TypeOfSession string
	Date          string
	StartTime     string
}

const startTimeLayout = "15:04"

// CreateSession adds a session to a conference organized by the caller and
// asks the worker to refresh the conference's featured speaker.
func (s *Service) CreateSession(ctx context.Context, in SessionInput) (*model.Session, error) {
	id, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	required := []struct{ name, value string }{
		{"name", in.Name},
		{"speaker", in.Speaker},
		{"typeOfSession", in.TypeOfSession},
		{"date", in.Date},
		{"startTime", in.StartTime},
		{"websafeConferenceKey", in.ConferenceKey},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, errorf(ErrValidation, "Session '%s' field required", f.name)
		}
	}
	if in.Duration <= 0 {
		return nil, errorf(ErrValidation, "Session 'duration' must be a positive number of minutes")
	}
	typ, err := model.ParseSessionType(in.TypeOfSession)
	if err != nil {
		return nil, errorf(ErrValidation, "Unknown typeOfSession: %s", in.TypeOfSession)
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	start := strings.TrimSpace(in.StartTime)
	if _, err := time.Parse(startTimeLayout, start); err != nil {
		return nil, errorf(ErrValidation, "startTime must be HH:MM")
	}

	conf, err := s.getConference(ctx, in.ConferenceKey)
	if err != nil {
		return nil, err
	}
	if conf.OrganizerUserID != id.UserID {
		return nil, errorf(ErrForbidden, "Only the owner can add sessions to the conference.")
	}

	sess := &model.Session{
		Key:           uuid.NewString(),
		ConferenceKey: conf.Key,
		Name:          strings.TrimSpace(in.Name),
		Highlights:    in.Highlights,
		Speaker:       strings.TrimSpace(in.Speaker),
		Duration:      in.Duration,
		TypeOfSession: typ,
		Date:          *date,
		StartTime:     start,
		CreatedTime:   s.clock.Now().Unix(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.enqueue(ctx, queue.FeaturedSpeakerTask(sess.Speaker, conf.Key))
	return sess, nil
}

// GetConferenceSessions lists a conference's sessions in creation order.
// An unknown conference yields an empty list.
func (s *Service) GetConferenceSessions(ctx context.Context, conferenceKey string) ([]*model.Session, error) {
	sessions, err := s.store.ListSessionsByConference(ctx, conferenceKey)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// GetConferenceSessionsByType lists a conference's sessions of one type.
func (s *Service) GetConferenceSessionsByType(ctx context.Context, conferenceKey, typeOfSession string) ([]*model.Session, error) {
	typ, err := model.ParseSessionType(typeOfSession)
	if err != nil {
		return nil, errorf(ErrValidation, "Unknown typeOfSession: %s", typeOfSession)
	}
	sessions, err := s.store.ListSessionsByConferenceAndType(ctx, conferenceKey, typ)
	if err != nil {
		return nil, fmt.Errorf("list sessions by type: %w", err)
	}
	return sessions, nil
}

// GetSessionsBySpeaker lists the sessions of a speaker across conferences.
func (s *Service) GetSessionsBySpeaker(ctx context.Context, speaker string) ([]*model.Session, error) {
	speaker = strings.TrimSpace(speaker)
	if speaker == "" {
		return nil, errorf(ErrValidation, "speaker is required")
	}
	sessions, err := s.store.ListSessionsBySpeaker(ctx, speaker)
	if err != nil {
		return nil, fmt.Errorf("list sessions by speaker: %w", err)
	}
	return sessions, nil
}

// GetConferenceSpeakers lists the distinct speakers of a conference.
func (s *Service) GetConferenceSpeakers(ctx context.Context, conferenceKey string) ([]string, error) {
	if _, err := s.getConference(ctx, conferenceKey); err != nil {
		return nil, err
	}
	speakers, err := s.store.ListSpeakers(ctx, conferenceKey)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	return speakers, nil
}
