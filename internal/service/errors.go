// Package service holds the time clock's business rules: resolving a
// coordinate to a worksite, guarding the one-open-session-per-device rule
// and running the clock-in / clock-out transitions. Storage, locking and
// event publishing are injected as interfaces so the rules can be exercised
// against the in-memory store.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error kinds surfaced to the HTTP layer. Each is a sentinel so callers can
// test with errors.Is; the wrapped message carries the detail.
var (
	ErrInvalidLocation = errors.New("location is not inside an authorized worksite")
	ErrAlreadyOpen     = errors.New("device already has an open clock session")
	ErrNoOpenSession   = errors.New("device has no open clock session")
	ErrMissingFields   = errors.New("required fields are missing")
	ErrStorageFailure  = errors.New("storage failure")
	ErrStorageTimeout  = errors.New("storage timed out")
)

// ErrMissingToken is the MissingFields case for an absent device token.
var ErrMissingToken = fmt.Errorf("%w: device token is required", ErrMissingFields)

// storageErr classifies a store error as a timeout or a generic failure.
func storageErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrStorageTimeout, op)
	}
	return fmt.Errorf("%w: %s: %v", ErrStorageFailure, op, err)
}

// withTimeout bounds a storage call. A non-positive d leaves ctx untouched.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
