package middleware // reusable HTTP middleware for the complaint API

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	EmailKey  = "email"
	RoleKey   = "role"
)

// JWTAuth validates the Bearer session token and stores its claims in the
// echo context. Password-reset tokens are rejected here even though they are
// validly signed: only session tokens authenticate API calls.
func JWTAuth(tokens *utils.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No authorization token provided"})
			}

			claims, err := tokens.AuthenticateSession(raw)
			if err != nil {
				if errors.Is(err, utils.ErrExpiredToken) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token has expired"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
			}

			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, claims.UserID)
			c.Set(EmailKey, claims.Email)
			c.Set(RoleKey, claims.Role)
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return raw, raw != ""
}
