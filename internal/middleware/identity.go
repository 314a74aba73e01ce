package middleware

// Helpers for handlers to read what JWTAuth stored on the context.

import (
	"github.com/labstack/echo/v4"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/utils"
)

// Claims returns the session claims, or nil on unauthenticated routes.
func Claims(c echo.Context) *utils.Claims {
	cl, _ := c.Get(ClaimsKey).(*utils.Claims)
	return cl
}

// Email returns the authenticated user's email, or "" when there is none.
func Email(c echo.Context) string {
	v, _ := c.Get(EmailKey).(string)
	return v
}

// userID identifies the caller in logs; "guest" when unauthenticated.
func userID(c echo.Context) string {
	if v, ok := c.Get(UserIDKey).(string); ok && v != "" {
		return v
	}
	return "guest"
}
