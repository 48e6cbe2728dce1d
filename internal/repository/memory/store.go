// Package memory provides an in-process implementation of every storage
// interface the clock service consumes. It backs STORAGE_DRIVER=memory for
// local development and is the fake used by the service and handler tests.
// It enforces the same invariants as the MySQL schema: one open session per
// token and unique (subcontractor, employee) profiles.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/timeclock/internal/model"
	"github.com/iliyamo/timeclock/internal/repository"
)

// Store holds all tables behind one mutex.
type Store struct {
	mu         sync.Mutex
	boundaries []model.WorksiteBoundary
	profiles   []model.EmployeeProfile
	bindings   []model.DeviceBinding
	records    []model.ClockRecord
	nextID     uint64
	now        func() time.Time
}

// NewStore creates a store seeded with the given boundaries. Boundaries
// without an ID are numbered in the order given.
func NewStore(boundaries ...model.WorksiteBoundary) *Store {
	s := &Store{now: time.Now}
	s.AddBoundaries(boundaries...)
	return s
}

// LoadWorksitesFile reads a JSON array of boundaries into a new store.
func LoadWorksitesFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read worksites: %w", err)
	}
	var boundaries []model.WorksiteBoundary
	if err := json.Unmarshal(raw, &boundaries); err != nil {
		return nil, fmt.Errorf("parse worksites: %w", err)
	}
	return NewStore(boundaries...), nil
}

// AddBoundaries appends reference boundaries.
func (s *Store) AddBoundaries(boundaries ...model.WorksiteBoundary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range boundaries {
		if b.ID == 0 {
			b.ID = uint64(len(s.boundaries) + 1)
		}
		s.boundaries = append(s.boundaries, b)
	}
	sort.SliceStable(s.boundaries, func(i, j int) bool { return s.boundaries[i].ID < s.boundaries[j].ID })
}

// SetNow replaces the clock used to stamp device bindings.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) id() uint64 {
	s.nextID++
	return s.nextID
}

// ListBoundaries returns a copy of the boundaries ordered by id.
func (s *Store) ListBoundaries(ctx context.Context) ([]model.WorksiteBoundary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.WorksiteBoundary, len(s.boundaries))
	copy(out, s.boundaries)
	return out, nil
}

// FindProfile looks a profile up by its natural key.
func (s *Store) FindProfile(ctx context.Context, subContractor, employeeName string) (*model.EmployeeProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.SubContractor == subContractor && p.EmployeeName == employeeName {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

// FindProfileByPhone returns the earliest profile registered with phone.
func (s *Store) FindProfileByPhone(ctx context.Context, phone string) (*model.EmployeeProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.PhoneNumber == phone {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

// CreateProfile appends a profile or returns repository.ErrConflict.
func (s *Store) CreateProfile(ctx context.Context, p model.EmployeeProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.profiles {
		if existing.SubContractor == p.SubContractor && existing.EmployeeName == p.EmployeeName {
			return repository.ErrConflict
		}
	}
	s.profiles = append(s.profiles, p)
	return nil
}

// BindDevice appends a device binding for an existing profile.
func (s *Store) BindDevice(ctx context.Context, token string, p model.EmployeeProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.profiles {
		if existing.SubContractor == p.SubContractor && existing.EmployeeName == p.EmployeeName {
			s.bindings = append(s.bindings, model.DeviceBinding{
				ID:        s.id(),
				Token:     token,
				Profile:   existing,
				CreatedAt: s.now().UTC(),
			})
			return nil
		}
	}
	return repository.ErrNotFound
}

// LatestBinding returns the newest binding for token.
func (s *Store) LatestBinding(ctx context.Context, token string) (*model.DeviceBinding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if s.bindings[i].Token == token {
			b := s.bindings[i]
			return &b, nil
		}
	}
	return nil, nil
}

// OpenSession returns the open record for token, if any.
func (s *Store) OpenSession(ctx context.Context, token string) (*model.ClockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.openIndex(token); i >= 0 {
		rec := s.records[i]
		return &rec, nil
	}
	return nil, nil
}

// LatestRecord returns the most recently created record for token.
func (s *Store) LatestRecord(ctx context.Context, token string) (*model.ClockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Token == token {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

// ListOpen returns all open records in insertion order.
func (s *Store) ListOpen(ctx context.Context) ([]model.ClockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ClockRecord
	for _, rec := range s.records {
		if rec.IsOpen() {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Records returns a copy of every record for token. Used by tests to check
// invariants.
func (s *Store) Records(token string) []model.ClockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ClockRecord
	for _, rec := range s.records {
		if rec.Token == token {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Store) openIndex(token string) int {
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Token == token && s.records[i].IsOpen() {
			return i
		}
	}
	return -1
}

// InsertOpen atomically checks for an open session and inserts rec.
func (s *Store) InsertOpen(ctx context.Context, rec *model.ClockRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openIndex(rec.Token) >= 0 {
		return repository.ErrConflict
	}
	rec.ID = s.id()
	cp := *rec
	cp.ClockOutTime = nil
	s.records = append(s.records, cp)
	return nil
}

// CloseOpen closes the open session for token.
func (s *Store) CloseOpen(ctx context.Context, token string, at time.Time, notes string, photo *model.Photo) (*model.ClockRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.openIndex(token)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	at = at.UTC()
	s.records[i].ClockOutTime = &at
	s.records[i].ClockOutNotes = notes
	s.records[i].ClockOutPhoto = photo
	rec := s.records[i]
	return &rec, nil
}
