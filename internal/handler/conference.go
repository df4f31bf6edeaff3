package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-central/internal/query"
)

// CreateConference handles POST /v1/conference.
func (h *Handler) CreateConference(c echo.Context) error {
	var form ConferenceForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c, "invalid request body")
	}
	view, err := h.Svc.CreateConference(c.Request().Context(), form.input())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, conferenceFormFrom(*view))
}

// UpdateConference handles PUT /v1/conference/:key.
func (h *Handler) UpdateConference(c echo.Context) error {
	var form ConferenceForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c, "invalid request body")
	}
	view, err := h.Svc.UpdateConference(c.Request().Context(), c.Param("key"), form.input())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, conferenceFormFrom(*view))
}

// GetConference handles GET /v1/conference/:key.
func (h *Handler) GetConference(c echo.Context) error {
	view, err := h.Svc.GetConference(c.Request().Context(), c.Param("key"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, conferenceFormFrom(*view))
}

// GetConferencesCreated handles POST /v1/getConferencesCreated.
func (h *Handler) GetConferencesCreated(c echo.Context) error {
	views, err := h.Svc.GetConferencesCreated(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, conferenceFormsFrom(views))
}

// QueryConferences handles POST /v1/queryConferences.  An empty body lists
// every conference ordered by name.
func (h *Handler) QueryConferences(c echo.Context) error {
	var form ConferenceQueryForms
	if err := c.Bind(&form); err != nil {
		return badRequest(c, "invalid request body")
	}
	filters := make([]query.Filter, 0, len(form.Filters))
	for _, f := range form.Filters {
		filters = append(filters, query.Filter{Field: f.Field, Operator: f.Operator, Value: f.Value})
	}
	views, err := h.Svc.QueryConferences(c.Request().Context(), filters)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, conferenceFormsFrom(views))
}

// GetConferencesToAttend handles GET /v1/conferences/attending.
func (h *Handler) GetConferencesToAttend(c echo.Context) error {
	views, err := h.Svc.GetConferencesToAttend(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, conferenceFormsFrom(views))
}

// RegisterForConference handles POST /v1/conference/:key.
func (h *Handler) RegisterForConference(c echo.Context) error {
	ok, err := h.Svc.RegisterForConference(c.Request().Context(), c.Param("key"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, BooleanMessage{Data: ok})
}

// UnregisterFromConference handles DELETE /v1/conference/:key.
func (h *Handler) UnregisterFromConference(c echo.Context) error {
	ok, err := h.Svc.UnregisterFromConference(c.Request().Context(), c.Param("key"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, BooleanMessage{Data: ok})
}

// GetAnnouncement handles GET /v1/conference/announcement/get.
func (h *Handler) GetAnnouncement(c echo.Context) error {
	text, err := h.Svc.GetAnnouncement(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, StringMessage{Data: text})
}
