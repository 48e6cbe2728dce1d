package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"testing"
)

// testPNG renders a small noisy image so the encoded file is comfortably
// above the minimum size.
func testPNG(t *testing.T) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	img := image.NewRGBA(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			img.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func wrap(s string, width int) string {
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width])
		b.WriteString("\r\n")
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}

// truncatedToBadLength leaves a single dangling base64 character, which no
// amount of padding can make decodable.
func truncatedToBadLength(std string) string {
	s := strings.TrimRight(std, "=")
	return s[:len(s)-len(s)%4] + "A"
}

func TestDecodeAcceptedEncodings(t *testing.T) {
	raw := testPNG(t)
	std := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name string
		text string
		kind Kind
	}{
		{"data_uri", "data:image/png;base64," + std, Base64Inline},
		{"data_uri_upper_prefix", "DATA:IMAGE/PNG;BASE64," + std, Base64Inline},
		{"raw", std, Base64Raw},
		{"raw_wrapped_lines", wrap(std, 76), Base64Raw},
		{"raw_url_safe", base64.URLEncoding.EncodeToString(raw), Base64Raw},
		{"raw_without_padding", base64.RawStdEncoding.EncodeToString(raw), Base64Raw},
		{"form_mangled_plus", strings.ReplaceAll(std[:len(std)-8], "+", " ") + std[len(std)-8:], Base64Raw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := FromString(tt.text)
			if !ok {
				t.Fatalf("expected payload to be recognised")
			}
			if p.Kind != tt.kind {
				t.Fatalf("expected kind %v, got %v", tt.kind, p.Kind)
			}
			got, err := Decode(p, DefaultLimits)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !bytes.Equal(got.Data, raw) {
				t.Errorf("decoded bytes differ from original (%d vs %d)", len(got.Data), len(raw))
			}
			if got.MIME != "image/png" {
				t.Errorf("expected image/png, got %s", got.MIME)
			}
		})
	}
}

func TestDecodeBinaryUpload(t *testing.T) {
	raw := testPNG(t)
	got, err := Decode(FromUpload(raw), DefaultLimits)
	if err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if got.MIME != "image/png" || len(got.Data) != len(raw) {
		t.Errorf("unexpected photo: mime=%s len=%d", got.MIME, len(got.Data))
	}
}

func TestDecodeRejects(t *testing.T) {
	raw := testPNG(t)
	std := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		payload Payload
		limits  Limits
	}{
		{"foreign_characters", Payload{Kind: Base64Raw, Text: std[:40] + "*%$" + std[40:]}, DefaultLimits},
		{"single_stray_character", Payload{Kind: Base64Raw, Text: std[:40] + "*" + std[40:]}, DefaultLimits},
		{"too_small", Payload{Kind: Base64Raw, Text: base64.StdEncoding.EncodeToString(raw[:20])}, DefaultLimits},
		{"empty_upload", FromUpload(nil), DefaultLimits},
		{"not_an_image", FromUpload([]byte(strings.Repeat("plain text ", 40))), DefaultLimits},
		{"non_image_data_uri", Payload{Kind: Base64Inline, Text: "data:text/plain;base64," + std}, DefaultLimits},
		{"data_uri_not_base64", Payload{Kind: Base64Inline, Text: "data:image/png," + std}, DefaultLimits},
		{"data_uri_without_comma", Payload{Kind: Base64Inline, Text: "data:image/png;base64"}, DefaultLimits},
		{"over_limit", FromUpload(raw), Limits{MinBytes: 1, MaxBytes: 64}},
		{"impossible_length", Payload{Kind: Base64Raw, Text: truncatedToBadLength(std)}, DefaultLimits},
		{"unknown_kind", Payload{Text: std}, DefaultLimits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.payload, tt.limits)
			if !errors.Is(err, ErrInvalidImage) {
				t.Fatalf("expected ErrInvalidImage, got %v", err)
			}
		})
	}
}

func TestFromStringBlankMeansNoPhoto(t *testing.T) {
	for _, s := range []string{"", "   ", "\n"} {
		if _, ok := FromString(s); ok {
			t.Errorf("expected %q to mean no photo", s)
		}
	}
}
