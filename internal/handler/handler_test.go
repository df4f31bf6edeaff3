package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-central/internal/auth"
	"github.com/iliyamo/conference-central/internal/cache"
	"github.com/iliyamo/conference-central/internal/handler"
	"github.com/iliyamo/conference-central/internal/router"
	"github.com/iliyamo/conference-central/internal/service"
	"github.com/iliyamo/conference-central/internal/testutil"
	"github.com/iliyamo/conference-central/internal/utils"
)

const secret = "test-secret"

type api struct {
	e     *echo.Echo
	store *testutil.MemStore
	svc   *service.Service
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := testutil.NewMemStore()
	clk := testutil.NewStepClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := service.New(store, cache.NewMemory(), &testutil.RecordingQueue{}, auth.ContextProvider{}, service.WithClock(clk))

	e := echo.New()
	router.RegisterAPI(e, handler.New(svc, zerolog.Nop()), secret)
	return &api{e: e, store: store, svc: svc}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, auth.Identity{UserID: userID, Email: userID + "@example.com"}, 5)
	require.NoError(t, err)
	return tok.Token
}

// do sends a request as userID ("" for anonymous) and decodes the JSON body
// into out when out is non-nil.
func (a *api) do(t *testing.T, method, path, userID string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, userID))
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

type errBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) errBody {
	t.Helper()
	var b errBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func TestConferenceEndpoints(t *testing.T) {
	a := newAPI(t)

	var created handler.ConferenceForm
	rec := a.do(t, http.MethodPost, "/v1/conference", "alice", map[string]any{
		"name":         "GopherCon",
		"city":         "London",
		"maxAttendees": 2,
		"startDate":    "2025-06-01T00:00:00Z",
	}, &created)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, created.WebsafeKey)
	assert.Equal(t, 6, created.Month)
	assert.Equal(t, 2, created.SeatsAvailable)
	assert.Equal(t, "2025-06-01", created.StartDate)
	assert.Equal(t, "alice", created.OrganizerDisplayName)
	key := created.WebsafeKey

	t.Run("create requires auth", func(t *testing.T) {
		rec := a.do(t, http.MethodPost, "/v1/conference", "", map[string]any{"name": "X"}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", decodeErr(t, rec).Error)
	})

	t.Run("create validates", func(t *testing.T) {
		rec := a.do(t, http.MethodPost, "/v1/conference", "alice", map[string]any{"city": "X"}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation_failed", decodeErr(t, rec).Error)
	})

	t.Run("get", func(t *testing.T) {
		var got handler.ConferenceForm
		rec := a.do(t, http.MethodGet, "/v1/conference/"+key, "", nil, &got)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "GopherCon", got.Name)

		rec = a.do(t, http.MethodGet, "/v1/conference/missing", "", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No conference found with key: missing", decodeErr(t, rec).Message)
	})

	t.Run("update by owner only", func(t *testing.T) {
		var got handler.ConferenceForm
		rec := a.do(t, http.MethodPut, "/v1/conference/"+key, "alice", map[string]any{"city": "Berlin"}, &got)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Berlin", got.City)

		rec = a.do(t, http.MethodPut, "/v1/conference/"+key, "bob", map[string]any{"city": "Oslo"}, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("register and unregister", func(t *testing.T) {
		var ok handler.BooleanMessage
		rec := a.do(t, http.MethodPost, "/v1/conference/"+key, "bob", nil, &ok)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, ok.Data)

		rec = a.do(t, http.MethodPost, "/v1/conference/"+key, "bob", nil, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		var attending handler.ConferenceForms
		rec = a.do(t, http.MethodGet, "/v1/conferences/attending", "bob", nil, &attending)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, attending.Items, 1)
		assert.Equal(t, key, attending.Items[0].WebsafeKey)

		rec = a.do(t, http.MethodDelete, "/v1/conference/"+key, "bob", nil, &ok)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, ok.Data)
	})

	t.Run("created list", func(t *testing.T) {
		var forms handler.ConferenceForms
		rec := a.do(t, http.MethodPost, "/v1/getConferencesCreated", "alice", nil, &forms)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, forms.Items, 1)
	})
}

func TestQueryConferencesEndpoint(t *testing.T) {
	a := newAPI(t)
	for _, body := range []map[string]any{
		{"name": "B", "city": "London", "startDate": "2025-03-01"},
		{"name": "A", "city": "Paris", "startDate": "2025-09-01"},
	} {
		rec := a.do(t, http.MethodPost, "/v1/conference", "alice", body, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	t.Run("empty body lists all by name", func(t *testing.T) {
		var forms handler.ConferenceForms
		rec := a.do(t, http.MethodPost, "/v1/queryConferences", "", nil, &forms)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, forms.Items, 2)
		assert.Equal(t, "A", forms.Items[0].Name)
	})

	t.Run("filters", func(t *testing.T) {
		var forms handler.ConferenceForms
		rec := a.do(t, http.MethodPost, "/v1/queryConferences", "", map[string]any{
			"filters": []map[string]string{{"field": "MONTH", "operator": "LT", "value": "6"}},
		}, &forms)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, forms.Items, 1)
		assert.Equal(t, "B", forms.Items[0].Name)
	})

	t.Run("bad filters", func(t *testing.T) {
		rec := a.do(t, http.MethodPost, "/v1/queryConferences", "", map[string]any{
			"filters": []map[string]string{{"field": "COLOR", "operator": "EQ", "value": "red"}},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_filter", decodeErr(t, rec).Error)

		rec = a.do(t, http.MethodPost, "/v1/queryConferences", "", map[string]any{
			"filters": []map[string]string{
				{"field": "MONTH", "operator": "GT", "value": "1"},
				{"field": "CITY", "operator": "NE", "value": "Rome"},
			},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "multiple_inequality_fields", decodeErr(t, rec).Error)
	})
}

func TestProfileEndpoints(t *testing.T) {
	a := newAPI(t)

	var p handler.ProfileForm
	rec := a.do(t, http.MethodGet, "/v1/profile", "ada", nil, &p)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", p.DisplayName)
	assert.Equal(t, "NOT_SPECIFIED", p.TeeShirtSize)
	assert.Equal(t, []string{}, p.ConferenceKeysToAttend)

	rec = a.do(t, http.MethodPost, "/v1/profile", "ada", map[string]string{"displayName": "Ada", "teeShirtSize": "M_W"}, &p)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", p.DisplayName)
	assert.Equal(t, "M_W", p.TeeShirtSize)

	rec = a.do(t, http.MethodPost, "/v1/profile", "ada", map[string]string{"teeShirtSize": "HUGE"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/v1/profile", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAndWishlistEndpoints(t *testing.T) {
	a := newAPI(t)

	var conf handler.ConferenceForm
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/v1/conference", "alice", map[string]any{"name": "GopherCon"}, &conf).Code)

	newSession := func(name, speaker, typ string) handler.SessionForm {
		var s handler.SessionForm
		rec := a.do(t, http.MethodPost, "/v1/createSession", "alice", handler.SessionForm{
			Name:                 name,
			Speaker:              speaker,
			Duration:             30,
			TypeOfSession:        typ,
			Date:                 "2025-06-01",
			StartTime:            "09:00",
			WebsafeConferenceKey: conf.WebsafeKey,
		}, &s)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return s
	}
	first := newSession("Intro", "Rob", "KEYNOTE")
	newSession("Deep", "Rob", "WORKSHOP")

	t.Run("create by non organizer", func(t *testing.T) {
		rec := a.do(t, http.MethodPost, "/v1/createSession", "bob", handler.SessionForm{
			Name: "X", Speaker: "Y", Duration: 10, TypeOfSession: "PANEL",
			Date: "2025-06-01", StartTime: "09:00", WebsafeConferenceKey: conf.WebsafeKey,
		}, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("listing", func(t *testing.T) {
		var forms handler.SessionForms
		rec := a.do(t, http.MethodGet, "/v1/getConferenceSessions?conferenceKey="+conf.WebsafeKey, "", nil, &forms)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, forms.Items, 2)
		assert.Equal(t, "Intro", forms.Items[0].Name)
		assert.Equal(t, "2025-06-01", forms.Items[0].Date)

		rec = a.do(t, http.MethodGet, "/v1/getConferenceSessionsByType?conferenceKey="+conf.WebsafeKey+"&typeOfSession=WORKSHOP", "", nil, &forms)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, forms.Items, 1)

		rec = a.do(t, http.MethodGet, "/v1/getSessionsBySpeaker?speaker=Rob", "", nil, &forms)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, forms.Items, 2)

		var speakers handler.StringMessages
		rec = a.do(t, http.MethodGet, "/v1/getConferenceSpeakers?conferenceKey="+conf.WebsafeKey, "", nil, &speakers)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"Rob"}, speakers.Items)
	})

	t.Run("featured speaker", func(t *testing.T) {
		var fs handler.FeaturedSpeakerForm
		rec := a.do(t, http.MethodGet, "/v1/getFeaturedSpeaker?conferenceKey="+conf.WebsafeKey, "", nil, &fs)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Rob", fs.Speaker)
		assert.Equal(t, []string{"Intro", "Deep"}, fs.SessionNames)
	})

	t.Run("wishlist", func(t *testing.T) {
		var ok handler.BooleanMessage
		rec := a.do(t, http.MethodPost, "/v1/addSessionToWishlist", "bob", handler.WishlistRequest{SessionKey: first.WebsafeKey}, &ok)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, ok.Data)

		rec = a.do(t, http.MethodPost, "/v1/addSessionToWishlist", "bob", handler.WishlistRequest{SessionKey: "missing"}, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var forms handler.SessionForms
		rec = a.do(t, http.MethodGet, "/v1/getSessionsInWishlist", "bob", nil, &forms)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, forms.Items, 1)

		var wl handler.WishlistedConferenceForms
		rec = a.do(t, http.MethodGet, "/v1/getConferencesWithWishlistedSessions", "bob", nil, &wl)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, wl.Items, 1)
		assert.Equal(t, 1, wl.Items[0].WishlistedSessions)
		assert.Equal(t, "GopherCon", wl.Items[0].Name)
	})
}

func TestAnnouncementEndpoint(t *testing.T) {
	a := newAPI(t)
	rec := a.do(t, http.MethodPost, "/v1/conference", "alice", map[string]any{"name": "Tiny", "maxAttendees": 3}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var msg handler.StringMessage
	rec = a.do(t, http.MethodGet, "/v1/conference/announcement/get", "", nil, &msg)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, msg.Data)

	_, err := a.svc.CacheAnnouncement(context.Background())
	require.NoError(t, err)

	rec = a.do(t, http.MethodGet, "/v1/conference/announcement/get", "", nil, &msg)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, msg.Data, "Tiny")
}

func TestInvalidToken(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInternalErrorsAreMasked(t *testing.T) {
	a := newAPI(t)
	a.store.FailOn("QueryConferences", errors.New("connection reset"))

	rec := a.do(t, http.MethodPost, "/v1/queryConferences", "", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	b := decodeErr(t, rec)
	assert.Equal(t, "internal", b.Error)
	assert.NotContains(t, b.Message, "connection reset")
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	cases := []struct {
		name string
		deps map[string]handler.Pinger
		want int
	}{
		{"all up", map[string]handler.Pinger{"mysql": pinger{}}, http.StatusOK},
		{"one down", map[string]handler.Pinger{"mysql": pinger{}, "redis": pinger{err: errors.New("down")}}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			router.RegisterRoutes(e, tc.deps)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
