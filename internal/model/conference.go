package model

import "time"

// Conference is an event organized by a single profile.  The organizer's
// profile is the parent of the conference: listing "conferences created by
// me" is a lookup on OrganizerUserID.
//
// Fields:
//  Key             – opaque identifier (conferences.id).
//  OrganizerUserID – profile that created the conference.
//  Name            – required display name.
//  Description     – free text.
//  City            – defaults to "Default City".
//  Topics          – set of topic strings, insertion order preserved.
//  Month           – month of StartDate (1–12) or 0 when StartDate is unset.
//  MaxAttendees    – capacity; 0 means unlimited seats are not tracked.
//  SeatsAvailable  – remaining seats; only registration changes it.
//  StartDate       – first day (calendar date, nil when unset).
//  EndDate         – last day (calendar date, nil when unset).
type Conference struct {
	Key             string     // conferences.id
	OrganizerUserID string     // conferences.organizer_user_id
	Name            string     // conferences.name
	Description     string     // conferences.description
	City            string     // conferences.city
	Topics          []string   // conference_topics.topic
	Month           int        // conferences.month
	MaxAttendees    int        // conferences.max_attendees
	SeatsAvailable  int        // conferences.seats_available
	StartDate       *time.Time // conferences.start_date (nullable)
	EndDate         *time.Time // conferences.end_date (nullable)
}

// Conference defaults applied on creation when a field is missing.
const (
	DefaultCity           = "Default City"
	DefaultMaxAttendees   = 0
	DefaultSeatsAvailable = 0
)

// DefaultTopics returns a fresh copy of the default topic list.
func DefaultTopics() []string {
	return []string{"Default", "Topic"}
}
