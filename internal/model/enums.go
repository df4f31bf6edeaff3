package model

import (
	"errors"
	"strings"
)

// ErrUnknownEnumValue is returned when an enum name does not match any value.
var ErrUnknownEnumValue = errors.New("unknown enum value")

// TeeShirtSize is stored and transmitted by name.
type TeeShirtSize string

const (
	TeeShirtNotSpecified TeeShirtSize = "NOT_SPECIFIED"
	TeeShirtXSM          TeeShirtSize = "XS_M"
	TeeShirtXSW          TeeShirtSize = "XS_W"
	TeeShirtSM           TeeShirtSize = "S_M"
	TeeShirtSW           TeeShirtSize = "S_W"
	TeeShirtMM           TeeShirtSize = "M_M"
	TeeShirtMW           TeeShirtSize = "M_W"
	TeeShirtLM           TeeShirtSize = "L_M"
	TeeShirtLW           TeeShirtSize = "L_W"
	TeeShirtXLM          TeeShirtSize = "XL_M"
	TeeShirtXLW          TeeShirtSize = "XL_W"
	TeeShirtXXLM         TeeShirtSize = "XXL_M"
	TeeShirtXXLW         TeeShirtSize = "XXL_W"
	TeeShirtXXXLM        TeeShirtSize = "XXXL_M"
	TeeShirtXXXLW        TeeShirtSize = "XXXL_W"
)

var teeShirtSizes = []TeeShirtSize{
	TeeShirtNotSpecified,
	TeeShirtXSM, TeeShirtXSW,
	TeeShirtSM, TeeShirtSW,
	TeeShirtMM, TeeShirtMW,
	TeeShirtLM, TeeShirtLW,
	TeeShirtXLM, TeeShirtXLW,
	TeeShirtXXLM, TeeShirtXXLW,
	TeeShirtXXXLM, TeeShirtXXXLW,
}

// ParseTeeShirtSize resolves a size by name, case-insensitively.
func ParseTeeShirtSize(s string) (TeeShirtSize, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, v := range teeShirtSizes {
		if string(v) == name {
			return v, nil
		}
	}
	return "", ErrUnknownEnumValue
}

// SessionType classifies a conference session.
type SessionType string

const (
	SessionNotSpecified  SessionType = "NOT_SPECIFIED"
	SessionWorkshop      SessionType = "WORKSHOP"
	SessionLecture       SessionType = "LECTURE"
	SessionKeynote       SessionType = "KEYNOTE"
	SessionPanel         SessionType = "PANEL"
	SessionDemonstration SessionType = "DEMONSTRATION"
)

var sessionTypes = []SessionType{
	SessionNotSpecified,
	SessionWorkshop,
	SessionLecture,
	SessionKeynote,
	SessionPanel,
	SessionDemonstration,
}

// ParseSessionType resolves a session type by name, case-insensitively.
func ParseSessionType(s string) (SessionType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, v := range sessionTypes {
		if string(v) == name {
			return v, nil
		}
	}
	return "", ErrUnknownEnumValue
}
