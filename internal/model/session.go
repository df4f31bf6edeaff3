package model

import "time"

// Session is a talk, workshop or other slot inside a conference.  The
// conference is its parent; sessions are never updated once created.
//
// Fields:
//  Key           – opaque identifier (conference_sessions.id).
//  ConferenceKey – owning conference.
//  Name          – session title.
//  Highlights    – optional summary.
//  Speaker       – speaker name, used for the featured speaker.
//  Duration      – length in minutes.
//  TypeOfSession – workshop, lecture, keynote, ...
//  Date          – calendar day of the session.
//  StartTime     – wall-clock start, "HH:MM".
//  CreatedTime   – unix seconds at creation; orders sessions.
type Session struct {
	Key           string      // conference_sessions.id
	ConferenceKey string      // conference_sessions.conference_id
	Name          string      // conference_sessions.name
	Highlights    string      // conference_sessions.highlights
	Speaker       string      // conference_sessions.speaker
	Duration      int         // conference_sessions.duration_minutes
	TypeOfSession SessionType // conference_sessions.type_of_session
	Date          time.Time   // conference_sessions.session_date
	StartTime     string      // conference_sessions.start_time
	CreatedTime   int64       // conference_sessions.created_time
}

// WishlistItem marks a session a user wants to attend.
type WishlistItem struct {
	UserID     string // wishlist_items.user_id
	SessionKey string // wishlist_items.session_id
}

// FeaturedSpeaker is the cached result of the featured speaker derivation:
// a speaker with more than one session in a conference and the names of
// those sessions in creation order.
type FeaturedSpeaker struct {
	Speaker      string   `json:"speaker"`
	SessionNames []string `json:"sessionNames"`
}

// ConferenceWishlistCount pairs a conference with the number of its sessions
// a user has wishlisted.
type ConferenceWishlistCount struct {
	ConferenceKey string
	Count         int
}
