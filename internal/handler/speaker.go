package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetFeaturedSpeaker handles GET /v1/getFeaturedSpeaker?conferenceKey=.
func (h *Handler) GetFeaturedSpeaker(c echo.Context) error {
	fs, ok, err := h.Svc.GetFeaturedSpeaker(c.Request().Context(), c.QueryParam("conferenceKey"))
	if err != nil {
		return h.fail(c, err)
	}
	form := FeaturedSpeakerForm{SessionNames: []string{}}
	if ok {
		form.Speaker = fs.Speaker
		form.SessionNames = append(form.SessionNames, fs.SessionNames...)
	}
	return c.JSON(http.StatusOK, form)
}

// GetConferenceSpeakers handles GET /v1/getConferenceSpeakers?conferenceKey=.
func (h *Handler) GetConferenceSpeakers(c echo.Context) error {
	speakers, err := h.Svc.GetConferenceSpeakers(c.Request().Context(), c.QueryParam("conferenceKey"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, StringMessages{Items: speakers})
}
