package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/timeclock/internal/photo"
    "github.com/iliyamo/timeclock/internal/service"
)

// errorResponse writes the JSON error body for err.  Every handler funnels
// service and decoding errors through here so codes and statuses stay
// consistent: {"error": "<code>", "message": "<text>"}.
func errorResponse(c echo.Context, err error) error {
    status, code, msg := http.StatusInternalServerError, "internal_error", "internal error"
    switch {
    case errors.Is(err, service.ErrMissingToken): // before ErrMissingFields, which it wraps
        status, code, msg = http.StatusBadRequest, "missing_token", "device token (cookie) is required"
    case errors.Is(err, service.ErrMissingFields):
        status, code, msg = http.StatusBadRequest, "missing_fields", err.Error()
    case errors.Is(err, service.ErrInvalidLocation):
        status, code, msg = http.StatusUnprocessableEntity, "invalid_location", "you are not inside an authorized worksite"
    case errors.Is(err, service.ErrAlreadyOpen):
        status, code, msg = http.StatusConflict, "already_open", "already clocked in; clock out first"
    case errors.Is(err, service.ErrNoOpenSession):
        status, code, msg = http.StatusConflict, "no_open_session", "not clocked in"
    case errors.Is(err, photo.ErrInvalidImage):
        status, code, msg = http.StatusBadRequest, "invalid_image", err.Error()
    case errors.Is(err, service.ErrStorageTimeout):
        status, code, msg = http.StatusGatewayTimeout, "storage_timeout", "storage did not respond in time; try again"
    case errors.Is(err, service.ErrStorageFailure):
        status, code, msg = http.StatusInternalServerError, "storage_failure", "storage failure"
    }
    if status >= http.StatusInternalServerError {
        c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
    }
    return c.JSON(status, echo.Map{"error": code, "message": msg})
}

// badRequest reports a malformed request body.
func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": msg})
}
