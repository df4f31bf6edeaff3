package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CreateSession handles POST /v1/createSession.
func (h *Handler) CreateSession(c echo.Context) error {
	var form SessionForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c, "invalid request body")
	}
	s, err := h.Svc.CreateSession(c.Request().Context(), form.input())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionFormFrom(s))
}

// GetConferenceSessions handles GET /v1/getConferenceSessions?conferenceKey=.
func (h *Handler) GetConferenceSessions(c echo.Context) error {
	sessions, err := h.Svc.GetConferenceSessions(c.Request().Context(), c.QueryParam("conferenceKey"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionFormsFrom(sessions))
}

// GetConferenceSessionsByType handles
// GET /v1/getConferenceSessionsByType?conferenceKey=&typeOfSession=.
func (h *Handler) GetConferenceSessionsByType(c echo.Context) error {
	sessions, err := h.Svc.GetConferenceSessionsByType(c.Request().Context(),
		c.QueryParam("conferenceKey"), c.QueryParam("typeOfSession"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionFormsFrom(sessions))
}

// GetSessionsBySpeaker handles GET /v1/getSessionsBySpeaker?speaker=.
func (h *Handler) GetSessionsBySpeaker(c echo.Context) error {
	sessions, err := h.Svc.GetSessionsBySpeaker(c.Request().Context(), c.QueryParam("speaker"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionFormsFrom(sessions))
}

// AddSessionToWishlist handles POST /v1/addSessionToWishlist.
func (h *Handler) AddSessionToWishlist(c echo.Context) error {
	var req WishlistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.SessionKey == "" {
		req.SessionKey = c.QueryParam("sessionKey")
	}
	ok, err := h.Svc.AddSessionToWishlist(c.Request().Context(), req.SessionKey)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, BooleanMessage{Data: ok})
}

// GetSessionsInWishlist handles GET /v1/getSessionsInWishlist.
func (h *Handler) GetSessionsInWishlist(c echo.Context) error {
	sessions, err := h.Svc.GetSessionsInWishlist(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionFormsFrom(sessions))
}

// GetConferencesWithWishlistedSessions handles
// GET /v1/getConferencesWithWishlistedSessions.
func (h *Handler) GetConferencesWithWishlistedSessions(c echo.Context) error {
	items, err := h.Svc.GetConferencesWithWishlistedSessions(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	out := WishlistedConferenceForms{Items: make([]WishlistedConferenceForm, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, WishlistedConferenceForm{
			ConferenceForm:     conferenceFormFrom(it.ConferenceView),
			WishlistedSessions: it.WishlistedSessions,
		})
	}
	return c.JSON(http.StatusOK, out)
}
