package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-central/internal/service"
)

// GetProfile handles GET /v1/profile.
func (h *Handler) GetProfile(c echo.Context) error {
	p, err := h.Svc.GetProfile(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, profileFormFrom(p))
}

// SaveProfile handles POST /v1/profile.
func (h *Handler) SaveProfile(c echo.Context) error {
	var form ProfileMiniForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c, "invalid request body")
	}
	p, err := h.Svc.SaveProfile(c.Request().Context(), service.ProfileInput{
		DisplayName:  form.DisplayName,
		TeeShirtSize: form.TeeShirtSize,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, profileFormFrom(p))
}
