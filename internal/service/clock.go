package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/timeclock/internal/model"
	"github.com/iliyamo/timeclock/internal/queue"
	"github.com/iliyamo/timeclock/internal/repository"
)

// ClockStore is everything the clock engine needs from storage. InsertOpen
// must be atomic with respect to the open-session check and report
// repository.ErrConflict when the token is already clocked in; CloseOpen
// reports repository.ErrNotFound when it is not.
type ClockStore interface {
	SessionStore
	InsertOpen(ctx context.Context, rec *model.ClockRecord) error
	CloseOpen(ctx context.Context, token string, at time.Time, notes string, photo *model.Photo) (*model.ClockRecord, error)
	ListOpen(ctx context.Context) ([]model.ClockRecord, error)
}

// Locker serializes work per key.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// EventPublisher receives accepted transitions.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ClockEvent) error
}

// ClockOptions tunes a ClockService. Zero values are usable.
type ClockOptions struct {
	StorageTimeout time.Duration
	RequirePhone   bool
	Locker         Locker
	Events         EventPublisher
	Now            func() time.Time
}

// ClockService runs the clock-in / clock-out state machine. A device is
// CLOCKED_IN while it has an open record and CLOCKED_OUT otherwise.
type ClockService struct {
	resolver     *WorksiteResolver
	guard        *SessionGuard
	store        ClockStore
	locker       Locker
	events       EventPublisher
	timeout      time.Duration
	requirePhone bool
	now          func() time.Time
}

// NewClockService wires a ClockService. worksites and store must be non-nil.
func NewClockService(worksites WorksiteStore, store ClockStore, opts ClockOptions) *ClockService {
	if worksites == nil || store == nil {
		panic("nil store passed to NewClockService")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ClockService{
		resolver:     NewWorksiteResolver(worksites, opts.StorageTimeout),
		guard:        NewSessionGuard(store, opts.StorageTimeout),
		store:        store,
		locker:       opts.Locker,
		events:       opts.Events,
		timeout:      opts.StorageTimeout,
		requirePhone: opts.RequirePhone,
		now:          now,
	}
}

// Resolver exposes the worksite resolver used by the service.
func (s *ClockService) Resolver() *WorksiteResolver { return s.resolver }

// Guard exposes the session guard used by the service.
func (s *ClockService) Guard() *SessionGuard { return s.guard }

// ClockInRequest carries a decoded clock-in. Photo is nil when none was sent.
type ClockInRequest struct {
	Token   string
	Lat     float64
	Lon     float64
	Profile model.EmployeeProfile
	Notes   string
	Photo   *model.Photo
}

// ClockOutRequest carries a decoded clock-out.
type ClockOutRequest struct {
	Token string
	Notes string
	Photo *model.Photo
}

// ClockOutResult is returned by a successful clock-out.
type ClockOutResult struct {
	Record        *model.ClockRecord
	PhotoAttached bool
}

// ValidCoordinate reports whether lat/lon are finite and within range.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ClockIn opens a session for the device.
func (s *ClockService) ClockIn(ctx context.Context, req ClockInRequest) (*model.ClockRecord, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, ErrMissingToken
	}

	profile := req.Profile.Normalize()
	if !s.profileComplete(profile) {
		known, err := s.guard.MostRecentProfile(ctx, token)
		if err != nil {
			return nil, err
		}
		if known != nil {
			profile = profile.FillFrom(*known)
		}
	}
	if missing := s.missingProfileFields(profile); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	if !ValidCoordinate(req.Lat, req.Lon) {
		return nil, fmt.Errorf("%w: coordinates (%v, %v) are out of range", ErrInvalidLocation, req.Lat, req.Lon)
	}
	worksite, ok, err := s.resolver.Resolve(ctx, req.Lat, req.Lon)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: (%.6f, %.6f)", ErrInvalidLocation, req.Lat, req.Lon)
	}

	unlock, err := s.lock(ctx, token)
	if err != nil {
		return nil, err
	}
	defer unlock()

	open, err := s.guard.HasOpenSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrAlreadyOpen
	}

	rec := &model.ClockRecord{
		Token:         token,
		SubContractor: profile.SubContractor,
		EmployeeName:  profile.EmployeeName,
		PhoneNumber:   profile.PhoneNumber,
		Worksite:      worksite,
		ClockInTime:   s.now().UTC(),
		Lat:           req.Lat,
		Lon:           req.Lon,
		Notes:         strings.TrimSpace(req.Notes),
		Photo:         req.Photo,
	}
	sctx, cancel := withTimeout(ctx, s.timeout)
	err = s.store.InsertOpen(sctx, rec)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyOpen
		}
		return nil, storageErr("insert clock record", err)
	}

	log.Printf("clock: in token=%s employee=%q worksite=%q record=%d", token, rec.EmployeeName, worksite, rec.ID)
	s.publish(ctx, queue.EventClockIn, rec)
	return rec, nil
}

// ClockOut closes the device's open session.
func (s *ClockService) ClockOut(ctx context.Context, req ClockOutRequest) (*ClockOutResult, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, ErrMissingToken
	}

	unlock, err := s.lock(ctx, token)
	if err != nil {
		return nil, err
	}
	defer unlock()

	open, err := s.guard.HasOpenSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrNoOpenSession
	}

	sctx, cancel := withTimeout(ctx, s.timeout)
	rec, err := s.store.CloseOpen(sctx, token, s.now().UTC(), strings.TrimSpace(req.Notes), req.Photo)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoOpenSession
		}
		return nil, storageErr("close clock record", err)
	}

	log.Printf("clock: out token=%s employee=%q record=%d", token, rec.EmployeeName, rec.ID)
	s.publish(ctx, queue.EventClockOut, rec)
	return &ClockOutResult{Record: rec, PhotoAttached: req.Photo != nil}, nil
}

// OpenSessions lists every device currently clocked in.
func (s *ClockService) OpenSessions(ctx context.Context) ([]model.ClockRecord, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	recs, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, storageErr("list open sessions", err)
	}
	return recs, nil
}

func (s *ClockService) profileComplete(p model.EmployeeProfile) bool {
	return len(s.missingProfileFields(p)) == 0 && p.PhoneNumber != ""
}

func (s *ClockService) missingProfileFields(p model.EmployeeProfile) []string {
	var missing []string
	if p.SubContractor == "" {
		missing = append(missing, "subContractor")
	}
	if p.EmployeeName == "" {
		missing = append(missing, "employeeName")
	}
	if s.requirePhone && p.PhoneNumber == "" {
		missing = append(missing, "phoneNumber")
	}
	return missing
}

func (s *ClockService) lock(ctx context.Context, token string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	lctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	unlock, err := s.locker.Lock(lctx, "clock:"+token)
	if err != nil {
		return nil, storageErr("acquire clock lock", err)
	}
	return unlock, nil
}

func (s *ClockService) publish(ctx context.Context, typ string, rec *model.ClockRecord) {
	if s.events == nil {
		return
	}
	ev := queue.ClockEvent{
		Type:          typ,
		RecordID:      rec.ID,
		Token:         rec.Token,
		SubContractor: rec.SubContractor,
		EmployeeName:  rec.EmployeeName,
		Worksite:      rec.Worksite,
		Lat:           rec.Lat,
		Lon:           rec.Lon,
		ClockInAt:     rec.ClockInTime.UTC().Format(time.RFC3339),
		HasPhoto:      rec.Photo != nil,
	}
	if rec.ClockOutTime != nil {
		ev.ClockOutAt = rec.ClockOutTime.UTC().Format(time.RFC3339)
		ev.HasPhoto = rec.ClockOutPhoto != nil
	}
	// Off the request path: the broker dial does not honour ctx.
	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.events.Publish(pctx, ev); err != nil {
			log.Printf("clock: publish %s for record %d failed: %v", typ, ev.RecordID, err)
		}
	}()
}
