package handler

import (
    "fmt"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/timeclock/internal/model"
    "github.com/iliyamo/timeclock/internal/service"
)

// EmployeeHandler serves device registration and status.
type EmployeeHandler struct {
    Registration *service.RegistrationService
}

func NewEmployeeHandler(r *service.RegistrationService) *EmployeeHandler {
    return &EmployeeHandler{Registration: r}
}

type registerReq struct {
    Cookie        string `json:"cookie" form:"cookie"`
    Token         string `json:"token" form:"token"`
    SubContractor string `json:"subContractor" form:"subContractor"`
    Employee      string `json:"employee" form:"employee"`
    Number        string `json:"number" form:"number"`
}

type statusResp struct {
    Cookie      string       `json:"cookie"`
    Registered  bool         `json:"registered"`
    Profile     *profilePart `json:"profile"`
    ClockedIn   bool         `json:"clocked_in"`
    ClockInTime any          `json:"clock_in_time"`
    Worksite    string       `json:"worksite,omitempty"`
}

// UserStatus reports whether the device is registered and clocked in.
func (h *EmployeeHandler) UserStatus(c echo.Context) error {
    token := deviceToken(c)
    st, err := h.Registration.Status(c.Request().Context(), token)
    if err != nil {
        return errorResponse(c, err)
    }
    resp := statusResp{
        Cookie:     token,
        Registered: st.Registered,
        Profile:    toProfilePart(st.Profile),
        ClockedIn:  st.ClockedIn(),
    }
    if st.Open != nil {
        resp.ClockInTime = st.Open.ClockInTime
        resp.Worksite = st.Open.Worksite
    }
    return c.JSON(http.StatusOK, resp)
}

// Register binds the device to an employee profile, creating the profile on
// first use.  201 when a profile was created, 200 when an existing one was
// reused.
func (h *EmployeeHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    token := deviceToken(c, req.Cookie, req.Token)
    res, err := h.Registration.Register(c.Request().Context(), token, model.EmployeeProfile{
        SubContractor: req.SubContractor,
        EmployeeName:  req.Employee,
        PhoneNumber:   req.Number,
    })
    if err != nil {
        return errorResponse(c, err)
    }
    status := http.StatusOK
    if res.Created {
        status = http.StatusCreated
    }
    return c.JSON(status, echo.Map{
        "cookie":  token,
        "created": res.Created,
        "profile": toProfilePart(&res.Profile),
    })
}

func missing(fields ...string) error {
    return fmt.Errorf("%w: %s", service.ErrMissingFields, strings.Join(fields, ", "))
}
