package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/logging"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/metrics"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/utils"
)

func newEcho(tokens *utils.TokenService) *echo.Echo {
	e := echo.New()
	g := e.Group("/api", JWTAuth(tokens))
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"email": Email(c), "role": Claims(c).Role})
	})
	a := e.Group("/api/admin", JWTAuth(tokens), RequireAdmin())
	a.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	return e
}

func do(e *echo.Echo, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	tokens := utils.NewTokenService("secret", "")
	e := newEcho(tokens)

	user := model.User{ID: "u1", Email: "rider@example.com", Role: model.RoleUser}
	tok, err := tokens.IssueSessionToken(user)
	require.NoError(t, err)

	rec := do(e, "/api/me", "Bearer "+tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"rider@example.com","role":"user"}`, rec.Body.String())

	rec = do(e, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No authorization token provided")

	rec = do(e, "/api/me", "Token "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "/api/me", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestJWTAuth_Expired(t *testing.T) {
	tokens := utils.NewTokenService("secret", "")
	tokens.Now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	tok, err := tokens.IssueSessionToken(model.User{ID: "u1", Email: "a@example.com", Role: model.RoleUser})
	require.NoError(t, err)
	tokens.Now = time.Now

	rec := do(newEcho(tokens), "/api/me", "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has expired")
}

func TestJWTAuth_RejectsResetToken(t *testing.T) {
	tokens := utils.NewTokenService("secret", "")
	reset, err := tokens.IssueResetToken("a@example.com")
	require.NoError(t, err)

	rec := do(newEcho(tokens), "/api/me", "Bearer "+reset.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	tokens := utils.NewTokenService("secret", "")
	e := newEcho(tokens)

	userTok, err := tokens.IssueSessionToken(model.User{ID: "u1", Email: "a@example.com", Role: model.RoleUser})
	require.NoError(t, err)
	adminTok, err := tokens.IssueSessionToken(model.User{ID: "a1", Email: "admin@example.com", Role: model.RoleAdmin})
	require.NoError(t, err)

	rec := do(e, "/api/admin/ping", "Bearer "+userTok.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin access required")

	rec = do(e, "/api/admin/ping", "Bearer "+adminTok.Token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, "/api/admin/ping", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLoggerAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.New("test")

	e := echo.New()
	e.Use(Metrics(m))
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "info")))
	e.GET("/items/:id", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside handler")
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	req := httptest.NewRequest(http.MethodGet, "/items/7", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	out := buf.String()
	assert.Contains(t, out, `"msg":"inside handler"`)
	assert.Contains(t, out, `"request_id":"rid-1"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"path":"/items/:id"`)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "404")))
}

func TestBearerToken(t *testing.T) {
	for header, want := range map[string]bool{
		"Bearer abc": true,
		"Bearer ":    false,
		"bearer abc": false,
		"":           false,
	} {
		_, ok := bearerToken(header)
		assert.Equal(t, want, ok, header)
	}
}
