package service

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// parseDate reads a YYYY-MM-DD calendar date from the first ten characters
// of s, so "2025-06-01T09:00:00Z" is accepted as June 1st.  An empty string
// yields nil.
func parseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, errorf(ErrValidation, "%s must be a YYYY-MM-DD date", field)
	}
	return &d, nil
}

// FormatDate renders a calendar date, or "" for nil.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(dateLayout)
}
