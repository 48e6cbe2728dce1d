package service

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/timeclock/internal/model"
)

// SessionStore is the read side of clock record and device binding storage.
type SessionStore interface {
	OpenSession(ctx context.Context, token string) (*model.ClockRecord, error)
	LatestRecord(ctx context.Context, token string) (*model.ClockRecord, error)
	LatestBinding(ctx context.Context, token string) (*model.DeviceBinding, error)
}

// SessionGuard answers whether a device is clocked in. It never writes.
type SessionGuard struct {
	store   SessionStore
	timeout time.Duration
}

// NewSessionGuard returns a guard whose store calls are bounded by timeout.
func NewSessionGuard(store SessionStore, timeout time.Duration) *SessionGuard {
	return &SessionGuard{store: store, timeout: timeout}
}

// OpenSession returns the open record for token or nil.
func (g *SessionGuard) OpenSession(ctx context.Context, token string) (*model.ClockRecord, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()
	rec, err := g.store.OpenSession(ctx, token)
	if err != nil {
		return nil, storageErr("find open session", err)
	}
	return rec, nil
}

// HasOpenSession reports whether token has an unterminated session.
func (g *SessionGuard) HasOpenSession(ctx context.Context, token string) (bool, error) {
	rec, err := g.OpenSession(ctx, token)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// MostRecentProfile returns the identity last used by token: the profile on
// its newest clock record or its newest registration, whichever is more
// recent. It returns nil for an unknown device.
func (g *SessionGuard) MostRecentProfile(ctx context.Context, token string) (*model.EmployeeProfile, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	rec, err := g.store.LatestRecord(ctx, token)
	if err != nil {
		return nil, storageErr("find latest clock record", err)
	}
	b, err := g.store.LatestBinding(ctx, token)
	if err != nil {
		return nil, storageErr("find device binding", err)
	}
	switch {
	case b != nil && (rec == nil || b.CreatedAt.After(rec.ClockInTime)):
		p := b.Profile
		return &p, nil
	case rec != nil:
		p := rec.Profile()
		return &p, nil
	}
	return nil, nil
}
