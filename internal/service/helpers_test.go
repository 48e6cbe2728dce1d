package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/timeclock/internal/model"
	"github.com/iliyamo/timeclock/internal/queue"
	"github.com/iliyamo/timeclock/internal/repository/memory"
)

var (
	harborYard = model.WorksiteBoundary{Name: "Harbor Yard", MinLat: 40.0, MaxLat: 41.0, MinLon: -74.0, MaxLon: -73.0}
	// Stored with min/max longitude swapped, as older rows are.
	ridgeSite = model.WorksiteBoundary{Name: "Ridge Site", MinLat: 34.0, MaxLat: 35.0, MinLon: -117.0, MaxLon: -118.0}

	jo = model.EmployeeProfile{SubContractor: "Acme Framing", EmployeeName: "Jo Ruiz", PhoneNumber: "555-0100"}
)

// fixedClock returns a now func that advances one minute per call.
func fixedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func newTestService(t *testing.T, opts ClockOptions) (*ClockService, *memory.Store) {
	t.Helper()
	store := newTestStore()
	if opts.Now == nil {
		opts.Now = fixedClock()
	}
	store.SetNow(opts.Now)
	if opts.StorageTimeout == 0 {
		opts.StorageTimeout = time.Second
	}
	return NewClockService(store, store, opts), store
}

func newTestStore() *memory.Store {
	return memory.NewStore(harborYard, ridgeSite)
}

func clockInAtHarbor(token string) ClockInRequest {
	return ClockInRequest{Token: token, Lat: 40.5, Lon: -73.5, Profile: jo}
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	events chan queue.ClockEvent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan queue.ClockEvent, 16)}
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ClockEvent) error {
	p.events <- ev
	return nil
}

func (p *recordingPublisher) next(t *testing.T) queue.ClockEvent {
	t.Helper()
	select {
	case ev := <-p.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return queue.ClockEvent{}
}

// blockingStore waits for the context to expire on every boundary read.
type blockingStore struct {
	*memory.Store
}

func (s blockingStore) ListBoundaries(ctx context.Context) ([]model.WorksiteBoundary, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// failingStore fails every boundary read.
type failingStore struct {
	*memory.Store
}

func (s failingStore) ListBoundaries(context.Context) ([]model.WorksiteBoundary, error) {
	return nil, errors.New("connection refused")
}
