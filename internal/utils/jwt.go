package utils // package utils provides helpers for signed tokens and hashing

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
    "github.com/google/uuid"
)

// Token purposes.  Admin access tokens and subcontractor link codes share a
// secret, so the purpose claim keeps one from being accepted as the other.
const (
    purposeAccess = "access"
    purposeLink   = "subcontractor_link"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived and sent in the Authorization header when
// calling admin endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// AccessClaims are the claims carried by an admin access token.
type AccessClaims struct {
    Role    string `json:"role"`
    Purpose string `json:"purpose"`
    jwt.RegisteredClaims
}

// LinkClaims are the claims carried by a subcontractor registration link.
type LinkClaims struct {
    SubContractor string `json:"sub_contractor"`
    Purpose       string `json:"purpose"`
    jwt.RegisteredClaims
}

// NewAccessToken builds and signs an HS256 JWT for an admin.  The token
// carries the subject, role, expiry and issued-at claims.
func NewAccessToken(secret, subject, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := AccessClaims{
        Role:    role,
        Purpose: purposeAccess,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   subject,
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw and returns its claims.
func ParseAccessToken(secret, raw string) (*AccessClaims, error) {
    var claims AccessClaims
    if err := parse(secret, raw, &claims); err != nil {
        return nil, err
    }
    if claims.Purpose != purposeAccess || claims.Subject == "" {
        return nil, ErrInvalidToken
    }
    return &claims, nil
}

// NewLinkCode signs a code naming a subcontractor.  Workers who open a link
// carrying the code get the subcontractor pre-filled on registration.  A
// non-positive ttl produces a code that never expires.
func NewLinkCode(secret, subContractor string, ttl time.Duration) (string, error) {
    subContractor = strings.TrimSpace(subContractor)
    if subContractor == "" {
        return "", errors.New("subcontractor is required")
    }
    now := time.Now().UTC()
    claims := LinkClaims{
        SubContractor: subContractor,
        Purpose:       purposeLink,
        RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now)},
    }
    if ttl > 0 {
        claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
    }
    return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseLinkCode verifies a link code and returns the subcontractor it names.
func ParseLinkCode(secret, code string) (string, error) {
    var claims LinkClaims
    if err := parse(secret, code, &claims); err != nil {
        return "", err
    }
    if claims.Purpose != purposeLink || claims.SubContractor == "" {
        return "", ErrInvalidToken
    }
    return claims.SubContractor, nil
}

func parse(secret, raw string, claims jwt.Claims) error {
    tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return fmt.Errorf("%w: %v", ErrInvalidToken, err)
    }
    return nil
}

// NewDeviceToken returns a random UUID for a device that has none yet.
func NewDeviceToken() (string, error) {
    id, err := uuid.NewRandom()
    if err != nil {
        return "", err
    }
    return id.String(), nil
}
