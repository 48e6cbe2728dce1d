package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/timeclock/internal/handler"
	"github.com/iliyamo/timeclock/internal/middleware"
	"github.com/iliyamo/timeclock/internal/model"
)

// RegisterAdmin registers the admin login, the admin-only listings and the
// subcontractor link endpoints.  Decoding a link is public because workers
// open it before registering; issuing one needs an admin token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, l *handler.LinkHandler, jwtSecret string, loginLimit, cache echo.MiddlewareFunc) {
	e.POST("/api/admin/login", a.Login, loginLimit)
	e.GET("/api/subcontractor-links", l.Decode)

	auth := middleware.JWTAuth(jwtSecret)
	admin := middleware.RequireRole(model.RoleAdmin)

	g := e.Group("/api/admin", auth, admin)
	g.GET("/worksites", a.Worksites, cache)
	g.GET("/open-sessions", a.OpenSessions)

	e.POST("/api/subcontractor-links", l.Issue, auth, admin)
}
