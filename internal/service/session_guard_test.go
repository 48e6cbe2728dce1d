package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/timeclock/internal/model"
)

func TestSessionGuard_MissingToken(t *testing.T) {
	g := NewSessionGuard(newTestStore(), time.Second)
	if _, err := g.HasOpenSession(context.Background(), ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("Expected ErrMissingToken, got %v", err)
	}
	if _, err := g.MostRecentProfile(context.Background(), " "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("Expected ErrMissingToken, got %v", err)
	}
}

func TestSessionGuard_UnknownDevice(t *testing.T) {
	g := NewSessionGuard(newTestStore(), time.Second)
	open, err := g.HasOpenSession(context.Background(), "nobody")
	if err != nil || open {
		t.Fatalf("Expected closed, got %v %v", open, err)
	}
	p, err := g.MostRecentProfile(context.Background(), "nobody")
	if err != nil || p != nil {
		t.Fatalf("Expected nil profile, got %+v %v", p, err)
	}
}

func TestSessionGuard_MostRecentProfile(t *testing.T) {
	svc, store := newTestService(t, ClockOptions{})
	reg := NewRegistrationService(store, svc.Guard(), time.Second, false)
	ctx := context.Background()
	sam := model.EmployeeProfile{SubContractor: "Acme Framing", EmployeeName: "Sam Ruiz"}

	if _, err := svc.ClockIn(ctx, clockInAtHarbor("dev-1")); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	p, err := svc.Guard().MostRecentProfile(ctx, "dev-1")
	if err != nil || p == nil || *p != jo {
		t.Fatalf("Expected profile from clock record, got %+v %v", p, err)
	}

	// A later registration on the same device takes over.
	if _, err := reg.Register(ctx, "dev-1", sam); err != nil {
		t.Fatalf("Register: %v", err)
	}
	p, err = svc.Guard().MostRecentProfile(ctx, "dev-1")
	if err != nil || p == nil || *p != sam {
		t.Fatalf("Expected registered profile, got %+v %v", p, err)
	}

	// And a later clock record takes over again.
	if _, err := svc.ClockOut(ctx, ClockOutRequest{Token: "dev-1"}); err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if _, err := svc.ClockIn(ctx, clockInAtHarbor("dev-1")); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	p, err = svc.Guard().MostRecentProfile(ctx, "dev-1")
	if err != nil || p == nil || *p != jo {
		t.Fatalf("Expected profile from newest clock record, got %+v %v", p, err)
	}
}

func TestSessionGuard_ReadsDoNotMutate(t *testing.T) {
	svc, store := newTestService(t, ClockOptions{})
	ctx := context.Background()
	if _, err := svc.ClockIn(ctx, clockInAtHarbor("dev-1")); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	for i := 0; i < 5; i++ {
		if open, err := svc.Guard().HasOpenSession(ctx, "dev-1"); err != nil || !open {
			t.Fatalf("Expected open, got %v %v", open, err)
		}
	}
	if recs := store.Records("dev-1"); len(recs) != 1 || !recs[0].IsOpen() {
		t.Fatalf("Expected one open record, got %+v", recs)
	}
}
