package middleware

// identity.go holds helpers shared across middleware files.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-central/internal/auth"
)

// currentUserID returns the authenticated user id, or "anon" for anonymous
// requests.
func currentUserID(c echo.Context) string {
	if id, ok := auth.FromContext(c.Request().Context()); ok {
		return id.UserID
	}
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
