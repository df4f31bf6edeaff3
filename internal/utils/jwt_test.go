package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-central/internal/auth"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	id := auth.Identity{UserID: "u-1", Email: "alice@example.com", Name: "Alice"}

	tok, err := NewAccessToken("secret", id, 5)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), tok.Exp, 5*time.Second)

	got, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	id := auth.Identity{UserID: "u-1", Email: "alice@example.com"}
	good, err := NewAccessToken("secret", id, 5)
	require.NoError(t, err)
	expired, err := NewAccessToken("secret", id, -5)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := []struct {
		name, secret, raw string
	}{
		{"wrong secret", "other", good.Token},
		{"expired", "secret", expired.Token},
		{"garbage", "secret", "not-a-token"},
		{"no expiry", "secret", noExp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAccessToken(tc.secret, tc.raw)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewAccessToken_RequiresUserID(t *testing.T) {
	_, err := NewAccessToken("secret", auth.Identity{Email: "a@b.c"}, 5)
	require.Error(t, err)
}
