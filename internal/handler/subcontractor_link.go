package handler

import (
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/timeclock/internal/config"
    "github.com/iliyamo/timeclock/internal/utils"
)

// LinkHandler issues and decodes subcontractor registration links.  A link
// carries a signed code naming the subcontractor so workers only type their
// own name on the registration form.
type LinkHandler struct {
    Cfg config.Config
}

func NewLinkHandler(cfg config.Config) *LinkHandler { return &LinkHandler{Cfg: cfg} }

type linkReq struct {
    SubContractor string `json:"subContractor" form:"subContractor"`
}

// Issue signs a link for a subcontractor.  Admin only.
func (h *LinkHandler) Issue(c echo.Context) error {
    var req linkReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    sub := strings.TrimSpace(req.SubContractor)
    if sub == "" {
        return errorResponse(c, missing("subContractor"))
    }
    code, err := utils.NewLinkCode(h.Cfg.JWTSecret, sub, time.Duration(h.Cfg.LinkTTLDays)*24*time.Hour)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error", "message": "issue link failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "subContractor": sub,
        "code":          code,
        "url":           linkURL(h.Cfg.LinkBaseURL, code),
    })
}

// Decode returns the subcontractor named by ?code=.
func (h *LinkHandler) Decode(c echo.Context) error {
    code := strings.TrimSpace(c.QueryParam("code"))
    if code == "" {
        return errorResponse(c, missing("code"))
    }
    sub, err := utils.ParseLinkCode(h.Cfg.JWTSecret, code)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_link", "message": "link is invalid or expired"})
    }
    return c.JSON(http.StatusOK, echo.Map{"subContractor": sub})
}

func linkURL(base, code string) string {
    sep := "?"
    if strings.Contains(base, "?") {
        sep = "&"
    }
    return base + sep + "code=" + url.QueryEscape(code)
}
