package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/timeclock/internal/service"
)

// LocationHandler answers "which worksite am I at?".
type LocationHandler struct {
    Resolver *service.WorksiteResolver
}

func NewLocationHandler(r *service.WorksiteResolver) *LocationHandler {
    return &LocationHandler{Resolver: r}
}

type locationReq struct {
    Lat flexFloat `json:"lat" form:"lat"`
    Lon flexFloat `json:"lon" form:"lon"`
}

// VerifyLocation resolves a coordinate to a worksite name.  A coordinate
// outside every worksite is 404 with code invalid_location.
func (h *LocationHandler) VerifyLocation(c echo.Context) error {
    var req locationReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "lat and lon must be numbers")
    }
    if !req.Lat.Set || !req.Lon.Set {
        return errorResponse(c, missing("lat", "lon"))
    }
    if !service.ValidCoordinate(req.Lat.V, req.Lon.V) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_location", "message": "coordinates are out of range"})
    }
    name, ok, err := h.Resolver.Resolve(c.Request().Context(), req.Lat.V, req.Lon.V)
    if err != nil {
        return errorResponse(c, err)
    }
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_location", "message": "you are not inside an authorized worksite"})
    }
    return c.JSON(http.StatusOK, echo.Map{"worksite": name})
}
