package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/timeclock/internal/model"
    "github.com/iliyamo/timeclock/internal/photo"
    "github.com/iliyamo/timeclock/internal/service"
)

// ClockHandler serves clock-in and clock-out.  The same handlers accept
// JSON, urlencoded and multipart bodies; the -multipart routes exist for
// clients that post the photo as a file part.
type ClockHandler struct {
    Clock  *service.ClockService
    Photos photo.Limits
}

func NewClockHandler(clock *service.ClockService, limits photo.Limits) *ClockHandler {
    return &ClockHandler{Clock: clock, Photos: limits}
}

type clockInReq struct {
    Cookie        string    `json:"cookie" form:"cookie"`
    Token         string    `json:"token" form:"token"`
    Lat           flexFloat `json:"lat" form:"lat"`
    Lon           flexFloat `json:"lon" form:"lon"`
    SubContractor string    `json:"subContractor" form:"subContractor"`
    Employee      string    `json:"employee" form:"employee"`
    Number        string    `json:"number" form:"number"`
    Notes         string    `json:"notes" form:"notes"`
    Photo         string    `json:"photo" form:"photo"`
}

type clockOutReq struct {
    Cookie string `json:"cookie" form:"cookie"`
    Token  string `json:"token" form:"token"`
    Notes  string `json:"notes" form:"notes"`
    Photo  string `json:"photo" form:"photo"`
}

// ClockIn opens a session.  Responds 201 with the new record.
func (h *ClockHandler) ClockIn(c echo.Context) error {
    var req clockInReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body: lat and lon must be numbers")
    }
    token := deviceToken(c, req.Cookie, req.Token)
    if token == "" {
        return errorResponse(c, service.ErrMissingToken)
    }
    if !req.Lat.Set || !req.Lon.Set {
        return errorResponse(c, missing("lat", "lon"))
    }
    pic, err := readPhoto(c, req.Photo, h.Photos)
    if err != nil {
        return errorResponse(c, err)
    }

    rec, err := h.Clock.ClockIn(c.Request().Context(), service.ClockInRequest{
        Token: token,
        Lat:   req.Lat.V,
        Lon:   req.Lon.V,
        Profile: model.EmployeeProfile{
            SubContractor: req.SubContractor,
            EmployeeName:  req.Employee,
            PhoneNumber:   req.Number,
        },
        Notes: req.Notes,
        Photo: pic,
    })
    if err != nil {
        return errorResponse(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "message": "Clocked in at " + rec.Worksite,
        "record":  toRecordPart(rec),
    })
}

// ClockOut closes the device's open session.
func (h *ClockHandler) ClockOut(c echo.Context) error {
    var req clockOutReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    token := deviceToken(c, req.Cookie, req.Token)
    if token == "" {
        return errorResponse(c, service.ErrMissingToken)
    }
    pic, err := readPhoto(c, req.Photo, h.Photos)
    if err != nil {
        return errorResponse(c, err)
    }

    res, err := h.Clock.ClockOut(c.Request().Context(), service.ClockOutRequest{
        Token: token,
        Notes: req.Notes,
        Photo: pic,
    })
    if err != nil {
        return errorResponse(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message":        "Clocked out",
        "photo_attached": res.PhotoAttached,
        "record":         toRecordPart(res.Record),
    })
}
