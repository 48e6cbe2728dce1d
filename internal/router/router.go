package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/timeclock/internal/handler"    // handlers for each endpoint
	"github.com/iliyamo/timeclock/internal/middleware" // device identity, rate limiting, auth
)

// deviceCookieAge is how long an issued device_id cookie lives.
const deviceCookieAge = 365 * 24 * time.Hour

// RegisterRoutes registers routes that need neither a device nor an admin.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterClock registers the device-facing API under /api.  The status
// check is the first call a page makes, so that is where a client without
// a device_id cookie is issued one; the other routes reject a missing
// token.  The rate limiter applies to the routes that write.
func RegisterClock(e *echo.Echo, loc *handler.LocationHandler, emp *handler.EmployeeHandler, clk *handler.ClockHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/api")

	g.POST("/verify-location", loc.VerifyLocation)
	g.GET("/user-status", emp.UserStatus, middleware.DeviceCookies(deviceCookieAge))
	g.POST("/register", emp.Register, limit)

	g.POST("/clock-in", clk.ClockIn, limit)
	g.POST("/clock-in-multipart", clk.ClockIn, limit)
	g.POST("/clock-out", clk.ClockOut, limit)
	g.POST("/clock-out-multipart", clk.ClockOut, limit)
}
