// Package photo decodes the image payloads that accompany clock-in and
// clock-out requests.  Clients send photos in three transport encodings:
// a base64 data URI inside JSON or a form field, bare base64 text, or a
// binary multipart file part.  All of them are normalized here, once, into
// a model.Photo before the request reaches the clock engine.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/image/webp"

	"github.com/iliyamo/timeclock/internal/model"
)

// Kind identifies the transport encoding of a Payload.
type Kind int

const (
	// Base64Inline is a data URI such as "data:image/jpeg;base64,/9j/4AAQ...".
	Base64Inline Kind = iota + 1
	// Base64Raw is bare base64 text without a data URI prefix.
	Base64Raw
	// BinaryUpload is the raw bytes of a multipart file part.
	BinaryUpload
)

func (k Kind) String() string {
	switch k {
	case Base64Inline:
		return "base64_inline"
	case Base64Raw:
		return "base64_raw"
	case BinaryUpload:
		return "binary_upload"
	}
	return "unknown"
}

// ErrInvalidImage is returned for any payload that was provided but cannot
// be turned into a plausible image.
var ErrInvalidImage = errors.New("invalid image")

// Payload is an undecoded photo as received from the client.
type Payload struct {
	Kind Kind
	Text string // Base64Inline and Base64Raw
	Data []byte // BinaryUpload
}

// Limits bounds the decoded size of a photo.  MinBytes guards against empty
// or truncated camera captures.
type Limits struct {
	MinBytes int
	MaxBytes int
}

// DefaultLimits is used when the caller has no configured limits.
var DefaultLimits = Limits{MinBytes: 100, MaxBytes: 10 << 20}

// FromString classifies a text field.  It returns false when the field is
// blank, meaning no photo was provided.
func FromString(s string) (Payload, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Payload{}, false
	}
	if strings.HasPrefix(strings.ToLower(s), "data:") {
		return Payload{Kind: Base64Inline, Text: s}, true
	}
	return Payload{Kind: Base64Raw, Text: s}, true
}

// FromUpload wraps the bytes of an uploaded file.
func FromUpload(raw []byte) Payload {
	return Payload{Kind: BinaryUpload, Data: raw}
}

// Decode turns a payload into raw image bytes with a sniffed MIME type.
func Decode(p Payload, lim Limits) (*model.Photo, error) {
	var raw []byte
	switch p.Kind {
	case Base64Inline:
		body, err := stripDataURI(p.Text)
		if err != nil {
			return nil, err
		}
		if raw, err = decodeBase64(body); err != nil {
			return nil, err
		}
	case Base64Raw:
		var err error
		if raw, err = decodeBase64(p.Text); err != nil {
			return nil, err
		}
	case BinaryUpload:
		raw = p.Data
	default:
		return nil, fmt.Errorf("%w: unknown payload kind %d", ErrInvalidImage, p.Kind)
	}

	if len(raw) < lim.MinBytes {
		return nil, fmt.Errorf("%w: %d bytes is too small", ErrInvalidImage, len(raw))
	}
	if lim.MaxBytes > 0 && len(raw) > lim.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInvalidImage, len(raw), lim.MaxBytes)
	}
	mime, ok := sniff(raw)
	if !ok {
		return nil, fmt.Errorf("%w: content is not a jpeg, png, gif or webp image", ErrInvalidImage)
	}
	return &model.Photo{Data: raw, MIME: mime}, nil
}

// stripDataURI removes a "data:image/<type>;base64," prefix.
func stripDataURI(s string) (string, error) {
	s = strings.TrimSpace(s)
	comma := strings.Index(s, ",")
	if comma <= len("data:") {
		return "", fmt.Errorf("%w: malformed data uri", ErrInvalidImage)
	}
	meta := strings.ToLower(s[len("data:"):comma])
	if !strings.HasPrefix(meta, "image/") {
		return "", fmt.Errorf("%w: data uri is not an image", ErrInvalidImage)
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", fmt.Errorf("%w: data uri must be base64", ErrInvalidImage)
	}
	return s[comma+1:], nil
}

// sanitizeBase64 is a best-effort repair pass.  Line breaks are dropped,
// spaces are assumed to be '+' characters mangled by form encoding, the
// URL-safe alphabet is mapped onto the standard one and padding is
// recomputed.  Anything else outside the alphabet is left in place so the
// caller can reject it.
func sanitizeBase64(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\r', '\n', '\t':
			continue
		case '=':
			continue
		case ' ':
			b.WriteByte('+')
		case '-':
			b.WriteByte('+')
		case '_':
			b.WriteByte('/')
		default:
			b.WriteByte(c)
		}
	}
	out := b.String()
	if rem := len(out) % 4; rem != 0 {
		out += strings.Repeat("=", 4-rem)
	}
	return out
}

func isBase64Char(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '+' || c == '/' || c == '='
}

func decodeBase64(s string) ([]byte, error) {
	clean := sanitizeBase64(strings.TrimSpace(s))
	for i := 0; i < len(clean); i++ {
		if !isBase64Char(clean[i]) {
			return nil, fmt.Errorf("%w: unexpected character %q in base64 payload", ErrInvalidImage, clean[i])
		}
	}
	raw, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return raw, nil
}

func sniff(raw []byte) (string, bool) {
	mime := http.DetectContentType(raw)
	switch mime {
	case "image/jpeg", "image/png", "image/gif":
		return mime, true
	case "image/webp":
		if _, err := webp.DecodeConfig(bytes.NewReader(raw)); err == nil {
			return mime, true
		}
	}
	return "", false
}
