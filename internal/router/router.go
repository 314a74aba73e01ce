package router // package router wires handlers and middleware onto the echo instance

import (
	"github.com/labstack/echo/v4"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/handler"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/metrics"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/middleware"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/utils"
)

// RegisterRoutes registers the unauthenticated service routes: the welcome
// document, the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, m *metrics.Metrics) {
	e.GET("/", handler.Index)
	e.GET("/healthz", handler.Health)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// RegisterAuth registers /api/auth. None of these routes needs a session;
// reset-password authenticates with the reset token in the body. limit is
// applied to login and forgot-password, the two endpoints worth guessing at.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit ...echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login, limit...)
	g.POST("/forgot-password", a.ForgotPassword, limit...)
	g.POST("/reset-password", a.ResetPassword)
}

// RegisterComplaints registers the rider endpoints. Tracking is public;
// submitting and listing one's own complaints need a session token.
// The static /user route takes precedence over /:tracking_id in echo's
// router.
func RegisterComplaints(e *echo.Echo, h *handler.ComplaintHandler, tokens *utils.TokenService) {
	auth := middleware.JWTAuth(tokens)

	g := e.Group("/api/complaints")
	g.POST("", h.Submit, auth)
	g.GET("/user", h.ListMine, auth)
	g.GET("/:tracking_id", h.Track)
}

// RegisterAdmin registers /api/admin behind JWTAuth and RequireAdmin.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, tokens *utils.TokenService) {
	g := e.Group("/api/admin", middleware.JWTAuth(tokens), middleware.RequireAdmin())
	g.GET("/complaints", h.List)
	g.GET("/complaints/stats", h.Stats)
	g.PUT("/complaints/:id/status", h.UpdateStatus)
}
