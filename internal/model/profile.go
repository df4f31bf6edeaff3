package model

// Profile holds the user-editable details of an authenticated identity plus
// the ordered list of conferences the user registered for.  A profile is
// created the first time its identity touches the API.
type Profile struct {
	UserID                 string       // profiles.user_id
	DisplayName            string       // profiles.display_name
	MainEmail              string       // profiles.main_email
	TeeShirtSize           TeeShirtSize // profiles.tee_shirt_size
	ConferenceKeysToAttend []string     // registrations.conference_id ordered by registrations.id
}

// IsAttending reports whether the profile is registered for the conference.
func (p *Profile) IsAttending(conferenceKey string) bool {
	for _, k := range p.ConferenceKeysToAttend {
		if k == conferenceKey {
			return true
		}
	}
	return false
}
