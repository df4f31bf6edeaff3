package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-central/internal/query"
	"github.com/iliyamo/conference-central/internal/service"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errorKinds = []struct {
	kind   error
	status int
	code   string
}{
	{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrConflict, http.StatusConflict, "conflict"},
	{service.ErrValidation, http.StatusBadRequest, "validation_failed"},
	{query.ErrMultipleInequalityFields, http.StatusBadRequest, "multiple_inequality_fields"},
	{query.ErrInvalidFilter, http.StatusBadRequest, "invalid_filter"},
}

// fail writes err as a JSON error response.  Errors outside the service
// taxonomy are logged and reported as a generic 500.
func (h *Handler) fail(c echo.Context, err error) error {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			return c.JSON(k.status, errorResponse{Error: k.code, Message: err.Error()})
		}
	}
	h.Log.Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal server error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: "bad_request", Message: msg})
}
