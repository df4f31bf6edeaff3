package handler

import (
	"github.com/iliyamo/conference-central/internal/model"
	"github.com/iliyamo/conference-central/internal/service"
)

// ConferenceForm is the wire form of a conference.  Inbound, only the
// editable fields are read.
type ConferenceForm struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	OrganizerUserID      string   `json:"organizerUserId,omitempty"`
	Topics               []string `json:"topics,omitempty"`
	City                 string   `json:"city,omitempty"`
	StartDate            string   `json:"startDate,omitempty"`
	Month                int      `json:"month"`
	MaxAttendees         *int     `json:"maxAttendees,omitempty"`
	SeatsAvailable       int      `json:"seatsAvailable"`
	EndDate              string   `json:"endDate,omitempty"`
	WebsafeKey           string   `json:"websafeKey,omitempty"`
	OrganizerDisplayName string   `json:"organizerDisplayName,omitempty"`
}

// ConferenceForms wraps a list of conferences.
type ConferenceForms struct {
	Items []ConferenceForm `json:"items"`
}

// ConferenceQueryForms carries queryConferences filters.
type ConferenceQueryForms struct {
	Filters []ConferenceQueryForm `json:"filters"`
}

// ConferenceQueryForm is one filter, e.g. {"field":"MONTH","operator":"GT","value":"6"}.
type ConferenceQueryForm struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// ProfileForm is the wire form of a profile.
type ProfileForm struct {
	DisplayName            string   `json:"displayName"`
	MainEmail              string   `json:"mainEmail"`
	TeeShirtSize           string   `json:"teeShirtSize"`
	ConferenceKeysToAttend []string `json:"conferenceKeysToAttend"`
}

// ProfileMiniForm holds the editable profile fields.
type ProfileMiniForm struct {
	DisplayName  string `json:"displayName"`
	TeeShirtSize string `json:"teeShirtSize"`
}

// SessionForm is the wire form of a conference session.
type SessionForm struct {
	Name                 string `json:"name"`
	Highlights           string `json:"highlights,omitempty"`
	Speaker              string `json:"speaker"`
	Duration             int    `json:"duration"`
	TypeOfSession        string `json:"typeOfSession"`
	Date                 string `json:"date"`
	StartTime            string `json:"startTime"`
	WebsafeConferenceKey string `json:"websafeConferenceKey"`
	WebsafeKey           string `json:"websafeKey,omitempty"`
}

// SessionForms wraps a list of sessions.
type SessionForms struct {
	Items []SessionForm `json:"items"`
}

// WishlistRequest names the session to wishlist.
type WishlistRequest struct {
	SessionKey string `json:"sessionKey"`
}

// WishlistedConferenceForm is a conference with its wishlisted session count.
type WishlistedConferenceForm struct {
	ConferenceForm
	WishlistedSessions int `json:"wishlistedSessions"`
}

// WishlistedConferenceForms wraps a list of wishlisted conferences.
type WishlistedConferenceForms struct {
	Items []WishlistedConferenceForm `json:"items"`
}

// FeaturedSpeakerForm is the featured speaker of a conference.  Both fields
// are empty when the conference has none.
type FeaturedSpeakerForm struct {
	Speaker      string   `json:"speaker"`
	SessionNames []string `json:"sessionNames"`
}

// StringMessage wraps a single string result.
type StringMessage struct {
	Data string `json:"data"`
}

// StringMessages wraps a list of strings.
type StringMessages struct {
	Items []string `json:"items"`
}

// BooleanMessage wraps a single boolean result.
type BooleanMessage struct {
	Data bool `json:"data"`
}

func conferenceFormFrom(v service.ConferenceView) ConferenceForm {
	c := v.Conference
	maxAttendees := c.MaxAttendees
	topics := make([]string, len(c.Topics))
	copy(topics, c.Topics)
	return ConferenceForm{
		Name:                 c.Name,
		Description:          c.Description,
		OrganizerUserID:      c.OrganizerUserID,
		Topics:               topics,
		City:                 c.City,
		StartDate:            service.FormatDate(c.StartDate),
		Month:                c.Month,
		MaxAttendees:         &maxAttendees,
		SeatsAvailable:       c.SeatsAvailable,
		EndDate:              service.FormatDate(c.EndDate),
		WebsafeKey:           c.Key,
		OrganizerDisplayName: v.OrganizerDisplayName,
	}
}

func conferenceFormsFrom(views []service.ConferenceView) ConferenceForms {
	out := ConferenceForms{Items: make([]ConferenceForm, 0, len(views))}
	for _, v := range views {
		out.Items = append(out.Items, conferenceFormFrom(v))
	}
	return out
}

func (f ConferenceForm) input() service.ConferenceInput {
	return service.ConferenceInput{
		Name:         f.Name,
		Description:  f.Description,
		City:         f.City,
		Topics:       f.Topics,
		MaxAttendees: f.MaxAttendees,
		StartDate:    f.StartDate,
		EndDate:      f.EndDate,
	}
}

func profileFormFrom(p *model.Profile) ProfileForm {
	keys := make([]string, len(p.ConferenceKeysToAttend))
	copy(keys, p.ConferenceKeysToAttend)
	return ProfileForm{
		DisplayName:            p.DisplayName,
		MainEmail:              p.MainEmail,
		TeeShirtSize:           string(p.TeeShirtSize),
		ConferenceKeysToAttend: keys,
	}
}

func sessionFormFrom(s *model.Session) SessionForm {
	return SessionForm{
		Name:                 s.Name,
		Highlights:           s.Highlights,
		Speaker:              s.Speaker,
		Duration:             s.Duration,
		TypeOfSession:        string(s.TypeOfSession),
		Date:                 service.FormatDate(&s.Date),
		StartTime:            s.StartTime,
		WebsafeConferenceKey: s.ConferenceKey,
		WebsafeKey:           s.Key,
	}
}

func sessionFormsFrom(sessions []*model.Session) SessionForms {
	out := SessionForms{Items: make([]SessionForm, 0, len(sessions))}
	for _, s := range sessions {
		out.Items = append(out.Items, sessionFormFrom(s))
	}
	return out
}

func (f SessionForm) input() service.SessionInput {
	return service.SessionInput{
		ConferenceKey: f.WebsafeConferenceKey,
		Name:          f.Name,
		Highlights:    f.Highlights,
		Speaker:       f.Speaker,
		Duration:      f.Duration,
		TypeOfSession: f.TypeOfSession,
		Date:          f.Date,
		StartTime:     f.StartTime,
	}
}
