package middleware

// identity.go holds the request identity helpers shared across middleware
// and handlers.  A device is identified by an opaque token which clients
// send as the device_id cookie, the X-Device-Token header or the "cookie"
// query parameter.  Admin requests are identified by the JWT subject stored
// by JWTAuth.

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/timeclock/internal/utils"
)

const (
    // DeviceCookie is the cookie carrying the device token.
    DeviceCookie = "device_id"
    // DeviceHeader is the header alternative to the cookie.
    DeviceHeader = "X-Device-Token"

    deviceKey = "device_token"
)

// DeviceToken returns the device token for the request, or "" when the
// client sent none.  A token assigned by DeviceCookies earlier in the chain
// wins over everything else.
func DeviceToken(c echo.Context) string {
    if v, ok := c.Get(deviceKey).(string); ok && v != "" {
        return v
    }
    if ck, err := c.Cookie(DeviceCookie); err == nil {
        if v := strings.TrimSpace(ck.Value); v != "" {
            return v
        }
    }
    if v := strings.TrimSpace(c.Request().Header.Get(DeviceHeader)); v != "" {
        return v
    }
    return strings.TrimSpace(c.QueryParam("cookie"))
}

// DeviceCookies issues a long-lived device_id cookie to clients that do not
// have one yet, so a browser keeps the same identity across visits.
func DeviceCookies(maxAge time.Duration) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if DeviceToken(c) == "" {
                tok, err := utils.NewDeviceToken()
                if err != nil {
                    c.Logger().Errorf("device token: %v", err)
                    return next(c)
                }
                c.Set(deviceKey, tok)
                c.SetCookie(&http.Cookie{
                    Name:     DeviceCookie,
                    Value:    tok,
                    Path:     "/",
                    MaxAge:   int(maxAge / time.Second),
                    HttpOnly: false, // the page script posts it back as the "cookie" field
                    SameSite: http.SameSiteLaxMode,
                })
            }
            return next(c)
        }
    }
}

// subject returns the authenticated admin's subject claim, or "anon".
func subject(c echo.Context) string {
    if s, ok := c.Get("user_id").(string); ok && s != "" {
        return s
    }
    return "anon"
}
