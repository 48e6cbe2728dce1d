package service

import (
	"context"
	"time"

	"github.com/iliyamo/timeclock/internal/model"
)

// WorksiteStore supplies worksite boundaries.
type WorksiteStore interface {
	ListBoundaries(ctx context.Context) ([]model.WorksiteBoundary, error)
}

// WorksiteResolver maps a coordinate to a worksite name.
type WorksiteResolver struct {
	store   WorksiteStore
	timeout time.Duration
}

// NewWorksiteResolver returns a resolver whose store calls are bounded by
// timeout.
func NewWorksiteResolver(store WorksiteStore, timeout time.Duration) *WorksiteResolver {
	return &WorksiteResolver{store: store, timeout: timeout}
}

// Resolve returns the name of the worksite containing (lat, lon). ok is
// false when no boundary matches.
func (r *WorksiteResolver) Resolve(ctx context.Context, lat, lon float64) (name string, ok bool, err error) {
	boundaries, err := r.Boundaries(ctx)
	if err != nil {
		return "", false, err
	}
	b, ok := MatchBoundary(boundaries, lat, lon)
	if !ok {
		return "", false, nil
	}
	return b.Name, true, nil
}

// Boundaries returns every configured boundary in store order.
func (r *WorksiteResolver) Boundaries(ctx context.Context) ([]model.WorksiteBoundary, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	boundaries, err := r.store.ListBoundaries(ctx)
	if err != nil {
		return nil, storageErr("list worksite boundaries", err)
	}
	return boundaries, nil
}

// MatchBoundary picks the boundary containing the point. When boundaries
// overlap the smallest one wins, being the most specific site; equal areas
// fall back to slice order.
func MatchBoundary(boundaries []model.WorksiteBoundary, lat, lon float64) (model.WorksiteBoundary, bool) {
	best := -1
	for i, b := range boundaries {
		if !b.Contains(lat, lon) {
			continue
		}
		if best < 0 || b.Area() < boundaries[best].Area() {
			best = i
		}
	}
	if best < 0 {
		return model.WorksiteBoundary{}, false
	}
	return boundaries[best], true
}
