package handler

import (
    "crypto/subtle"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/timeclock/internal/config"
    "github.com/iliyamo/timeclock/internal/model"
    "github.com/iliyamo/timeclock/internal/service"
    "github.com/iliyamo/timeclock/internal/utils"
)

// AdminHandler bundles dependencies for admin endpoints.
type AdminHandler struct {
    Cfg   config.Config
    Admin model.Admin
    Clock *service.ClockService
}

func NewAdminHandler(cfg config.Config, clock *service.ClockService) *AdminHandler {
    return &AdminHandler{
        Cfg:   cfg,
        Admin: model.Admin{Username: cfg.AdminUser, PasswordHash: cfg.AdminPasswordHash},
        Clock: clock,
    }
}

type loginReq struct {
    Username string `json:"username" form:"username"`
    Password string `json:"password" form:"password"`
}

// Login checks the admin credentials and returns an access token.
func (h *AdminHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    req.Username = strings.TrimSpace(req.Username)
    if req.Username == "" || req.Password == "" {
        return errorResponse(c, missing("username", "password"))
    }
    if h.Admin.PasswordHash == "" {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": "admin login is disabled"})
    }
    userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.Admin.Username)) == 1
    passOK := utils.VerifyPassword(h.Admin.PasswordHash, req.Password)
    if !userOK || !passOK {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid credentials"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, req.Username, model.RoleAdmin, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error", "message": "issue access failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"access": tokenPart{Token: access.Token, Expires: access.Exp}})
}

// Worksites lists every configured boundary.
func (h *AdminHandler) Worksites(c echo.Context) error {
    boundaries, err := h.Clock.Resolver().Boundaries(c.Request().Context())
    if err != nil {
        return errorResponse(c, err)
    }
    if boundaries == nil {
        boundaries = []model.WorksiteBoundary{}
    }
    return c.JSON(http.StatusOK, echo.Map{"worksites": boundaries})
}

// OpenSessions lists every device currently clocked in.
func (h *AdminHandler) OpenSessions(c echo.Context) error {
    recs, err := h.Clock.OpenSessions(c.Request().Context())
    if err != nil {
        return errorResponse(c, err)
    }
    out := make([]recordPart, 0, len(recs))
    for i := range recs {
        out = append(out, toRecordPart(&recs[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"open_sessions": out, "count": len(out)})
}

