package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/timeclock/internal/model"
)

func newTestRegistration(t *testing.T, requirePhone bool) (*RegistrationService, *ClockService) {
	t.Helper()
	svc, store := newTestService(t, ClockOptions{})
	return NewRegistrationService(store, svc.Guard(), time.Second, requirePhone), svc
}

func TestRegister_CreatesThenBinds(t *testing.T) {
	reg, _ := newTestRegistration(t, false)
	ctx := context.Background()

	res, err := reg.Register(ctx, "dev-1", model.EmployeeProfile{SubContractor: " Acme Framing ", EmployeeName: "Jo Ruiz", PhoneNumber: "555-0100"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !res.Created || res.Profile != jo {
		t.Fatalf("Expected new profile %+v, got %+v", jo, res)
	}

	// Same person on a second phone: the profile is reused and not edited.
	res, err = reg.Register(ctx, "dev-2", model.EmployeeProfile{SubContractor: "Acme Framing", EmployeeName: "Jo Ruiz", PhoneNumber: "555-9999"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Created || res.Profile.PhoneNumber != "555-0100" {
		t.Fatalf("Expected existing profile unchanged, got %+v", res)
	}
}

func TestRegister_ByPhoneNumber(t *testing.T) {
	reg, _ := newTestRegistration(t, false)
	ctx := context.Background()

	if _, err := reg.Register(ctx, "dev-1", jo); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := reg.Register(ctx, "dev-new", model.EmployeeProfile{PhoneNumber: "555-0100"})
	if err != nil {
		t.Fatalf("Register by phone: %v", err)
	}
	if res.Created || res.Profile != jo {
		t.Fatalf("Expected binding to %+v, got %+v", jo, res)
	}
	st, err := reg.Status(ctx, "dev-new")
	if err != nil || !st.Registered || *st.Profile != jo {
		t.Fatalf("Expected dev-new registered as Jo, got %+v %v", st, err)
	}

	if _, err := reg.Register(ctx, "dev-x", model.EmployeeProfile{PhoneNumber: "555-0000"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("Expected ErrMissingFields for unknown phone, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name         string
		token        string
		profile      model.EmployeeProfile
		requirePhone bool
		wantErr      error
	}{
		{"missing_token", "", jo, false, ErrMissingToken},
		{"missing_subcontractor", "dev-1", model.EmployeeProfile{EmployeeName: "Jo Ruiz"}, false, ErrMissingFields},
		{"missing_employee", "dev-1", model.EmployeeProfile{SubContractor: "Acme Framing"}, false, ErrMissingFields},
		{"blank_everything", "dev-1", model.EmployeeProfile{SubContractor: "  "}, false, ErrMissingFields},
		{"phone_required", "dev-1", model.EmployeeProfile{SubContractor: "Acme Framing", EmployeeName: "Jo Ruiz"}, true, ErrMissingFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newTestRegistration(t, tt.requirePhone)
			if _, err := reg.Register(context.Background(), tt.token, tt.profile); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRegister_ConcurrentSameProfile(t *testing.T) {
	reg, _ := newTestRegistration(t, false)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := reg.Register(context.Background(), "dev-"+string(rune('a'+i)), jo)
			if err != nil {
				t.Errorf("Register: %v", err)
				return
			}
			if res.Created {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if created != 1 {
		t.Fatalf("Expected exactly one profile creation, got %d", created)
	}
}

func TestStatus(t *testing.T) {
	reg, svc := newTestRegistration(t, false)
	ctx := context.Background()

	st, err := reg.Status(ctx, "dev-1")
	if err != nil || st.Registered || st.ClockedIn() {
		t.Fatalf("Expected unregistered and clocked out, got %+v %v", st, err)
	}

	if _, err := reg.Register(ctx, "dev-1", jo); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.ClockIn(ctx, ClockInRequest{Token: "dev-1", Lat: 40.5, Lon: -73.5}); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	st, err = reg.Status(ctx, "dev-1")
	if err != nil || !st.Registered || !st.ClockedIn() || st.Open.Worksite != "Harbor Yard" {
		t.Fatalf("Expected registered and clocked in at Harbor Yard, got %+v %v", st, err)
	}

	if _, err := reg.Status(ctx, ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("Expected ErrMissingToken, got %v", err)
	}
}
