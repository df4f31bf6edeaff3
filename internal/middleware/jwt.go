package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-central/internal/auth"
	"github.com/iliyamo/conference-central/internal/utils"
)

// JWTAuth returns an Echo middleware that resolves the caller from an
// optional Bearer access token.  A valid token attaches an auth.Identity to
// the request context, where service operations look it up.  A request
// without a token continues anonymously; each operation decides whether it
// needs an identity.  A token that is present but invalid is rejected with
// 401 so a client never silently runs as anonymous.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "malformed authorization header"})
			}

			id, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid token"})
			}

			// Keep user_id on the echo context for the request logger and
			// rate limiter, and the full identity on the request context.
			c.Set("user_id", id.UserID)
			c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), id)))
			return next(c)
		}
	}
}
