package handler

import (
    "bytes"
    "encoding/json"
    "fmt"
    "io"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/timeclock/internal/middleware"
    "github.com/iliyamo/timeclock/internal/model"
    "github.com/iliyamo/timeclock/internal/photo"
)

// flexFloat accepts a JSON number, a numeric JSON string or a form value.
// Set records whether the field was present and non-blank.
type flexFloat struct {
    V   float64
    Set bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if bytes.Equal(b, []byte("null")) {
        return nil
    }
    if len(b) > 0 && b[0] == '"' {
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        return f.UnmarshalParam(s)
    }
    var v float64
    if err := json.Unmarshal(b, &v); err != nil {
        return err
    }
    f.V, f.Set = v, true
    return nil
}

// UnmarshalParam implements echo.BindUnmarshaler for form and query values.
func (f *flexFloat) UnmarshalParam(s string) error {
    s = strings.TrimSpace(s)
    if s == "" {
        return nil
    }
    v, err := strconv.ParseFloat(s, 64)
    if err != nil {
        return fmt.Errorf("not a number: %q", s)
    }
    f.V, f.Set = v, true
    return nil
}

// deviceToken picks the token from the body fields, falling back to the
// cookie, header or query parameter.
func deviceToken(c echo.Context, fields ...string) string {
    for _, f := range fields {
        if f = strings.TrimSpace(f); f != "" {
            return f
        }
    }
    return middleware.DeviceToken(c)
}

func isMultipart(c echo.Context) bool {
    return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// readPhoto decodes the photo attached to a request: a multipart file part
// named "photo" or, failing that, the text field (data URI or raw base64).
// It returns nil, nil when no photo was sent.
func readPhoto(c echo.Context, text string, lim photo.Limits) (*model.Photo, error) {
    if isMultipart(c) {
        if fh, err := c.FormFile("photo"); err == nil {
            f, err := fh.Open()
            if err != nil {
                return nil, fmt.Errorf("%w: %v", photo.ErrInvalidImage, err)
            }
            defer f.Close()
            r := io.Reader(f)
            if lim.MaxBytes > 0 {
                r = io.LimitReader(f, int64(lim.MaxBytes)+1)
            }
            raw, err := io.ReadAll(r)
            if err != nil {
                return nil, fmt.Errorf("%w: %v", photo.ErrInvalidImage, err)
            }
            return photo.Decode(photo.FromUpload(raw), lim)
        }
    }
    p, ok := photo.FromString(text)
    if !ok {
        return nil, nil
    }
    return photo.Decode(p, lim)
}
