package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeeShirtSize(t *testing.T) {
	got, err := ParseTeeShirtSize(" xl_w ")
	require.NoError(t, err)
	assert.Equal(t, TeeShirtXLW, got)

	_, err = ParseTeeShirtSize("HUGE")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)
}

func TestParseSessionType(t *testing.T) {
	got, err := ParseSessionType("keynote")
	require.NoError(t, err)
	assert.Equal(t, SessionKeynote, got)

	_, err = ParseSessionType("")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)
}
