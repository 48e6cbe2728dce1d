package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/timeclock/internal/model"
	"github.com/iliyamo/timeclock/internal/repository"
)

// EmployeeStore persists profiles and device bindings.
type EmployeeStore interface {
	FindProfile(ctx context.Context, subContractor, employeeName string) (*model.EmployeeProfile, error)
	FindProfileByPhone(ctx context.Context, phone string) (*model.EmployeeProfile, error)
	CreateProfile(ctx context.Context, p model.EmployeeProfile) error
	BindDevice(ctx context.Context, token string, p model.EmployeeProfile) error
}

// RegistrationService registers devices and reports their status.
type RegistrationService struct {
	employees    EmployeeStore
	guard        *SessionGuard
	timeout      time.Duration
	requirePhone bool
}

// NewRegistrationService returns a RegistrationService. The guard is shared
// with the clock service so status reads use the same rules.
func NewRegistrationService(employees EmployeeStore, guard *SessionGuard, timeout time.Duration, requirePhone bool) *RegistrationService {
	return &RegistrationService{employees: employees, guard: guard, timeout: timeout, requirePhone: requirePhone}
}

// RegisterResult describes the outcome of Register.
type RegisterResult struct {
	Profile model.EmployeeProfile
	Created bool // a new profile was created, as opposed to an existing one being bound
}

// Register binds token to a profile. With subcontractor and name the profile
// is created when absent; an existing profile is never modified. With only
// a phone number the device is bound to the profile already registered with
// that number, which is how a worker moves to a new phone.
func (s *RegistrationService) Register(ctx context.Context, token string, p model.EmployeeProfile) (*RegisterResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	p = p.Normalize()
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if p.SubContractor == "" && p.EmployeeName == "" && p.PhoneNumber != "" {
		existing, err := s.employees.FindProfileByPhone(ctx, p.PhoneNumber)
		if err != nil {
			return nil, storageErr("find profile by phone", err)
		}
		if existing == nil {
			return nil, fmt.Errorf("%w: no employee is registered with that number; subContractor and employee are required", ErrMissingFields)
		}
		if err := s.bind(ctx, token, *existing); err != nil {
			return nil, err
		}
		return &RegisterResult{Profile: *existing}, nil
	}

	var missing []string
	if p.SubContractor == "" {
		missing = append(missing, "subContractor")
	}
	if p.EmployeeName == "" {
		missing = append(missing, "employee")
	}
	if s.requirePhone && p.PhoneNumber == "" {
		missing = append(missing, "number")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	existing, err := s.employees.FindProfile(ctx, p.SubContractor, p.EmployeeName)
	if err != nil {
		return nil, storageErr("find profile", err)
	}
	created := false
	if existing == nil {
		switch err := s.employees.CreateProfile(ctx, p); {
		case err == nil:
			created = true
			existing = &p
		case errors.Is(err, repository.ErrConflict):
			// Lost a race with a concurrent registration; use the winner.
			if existing, err = s.employees.FindProfile(ctx, p.SubContractor, p.EmployeeName); err != nil {
				return nil, storageErr("find profile", err)
			}
			if existing == nil {
				return nil, fmt.Errorf("%w: profile vanished after conflict", ErrStorageFailure)
			}
		default:
			return nil, storageErr("create profile", err)
		}
	}
	if err := s.bind(ctx, token, *existing); err != nil {
		return nil, err
	}
	return &RegisterResult{Profile: *existing, Created: created}, nil
}

func (s *RegistrationService) bind(ctx context.Context, token string, p model.EmployeeProfile) error {
	if err := s.employees.BindDevice(ctx, token, p); err != nil {
		return storageErr("bind device", err)
	}
	return nil
}

// UserStatus is the registration and session state of one device.
type UserStatus struct {
	Registered bool
	Profile    *model.EmployeeProfile
	Open       *model.ClockRecord
}

// ClockedIn reports whether the device has an open session.
func (u UserStatus) ClockedIn() bool { return u.Open != nil }

// Status reports whether token is registered and whether it is clocked in.
func (s *RegistrationService) Status(ctx context.Context, token string) (*UserStatus, error) {
	profile, err := s.guard.MostRecentProfile(ctx, token)
	if err != nil {
		return nil, err
	}
	open, err := s.guard.OpenSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return &UserStatus{Registered: profile != nil, Profile: profile, Open: open}, nil
}
