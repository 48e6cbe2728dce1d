package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/timeclock/internal/model"
)

// EmployeeRepo persists employee profiles and the device bindings that map
// a device token to a profile. Both tables are append-only.
type EmployeeRepo struct{ DB *sql.DB }

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{DB: db} }

// FindProfile fetches a profile by its natural key. It returns nil, nil
// when no profile exists.
func (r *EmployeeRepo) FindProfile(ctx context.Context, subContractor, employeeName string) (*model.EmployeeProfile, error) {
	var p model.EmployeeProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT sub_contractor, employee_name, phone_number FROM employees WHERE sub_contractor=? AND employee_name=? LIMIT 1",
		subContractor, employeeName).Scan(&p.SubContractor, &p.EmployeeName, &p.PhoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindProfileByPhone returns the earliest profile registered with the
// given phone number, or nil, nil.
func (r *EmployeeRepo) FindProfileByPhone(ctx context.Context, phone string) (*model.EmployeeProfile, error) {
	var p model.EmployeeProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT sub_contractor, employee_name, phone_number FROM employees WHERE phone_number=? ORDER BY id LIMIT 1",
		phone).Scan(&p.SubContractor, &p.EmployeeName, &p.PhoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a new profile. ErrConflict is returned when a
// profile with the same subcontractor and name already exists.
func (r *EmployeeRepo) CreateProfile(ctx context.Context, p model.EmployeeProfile) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO employees (sub_contractor, employee_name, phone_number) VALUES (?,?,?)",
		p.SubContractor, p.EmployeeName, p.PhoneNumber)
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// BindDevice appends a binding between token and the profile identified by
// its natural key.  created_at is stamped here in UTC, like clock_in, so the
// two can be compared by MostRecentProfile.
func (r *EmployeeRepo) BindDevice(ctx context.Context, token string, p model.EmployeeProfile) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO employee_devices (token, employee_id, created_at)
		 SELECT ?, id, ? FROM employees WHERE sub_contractor=? AND employee_name=?`,
		token, time.Now().UTC(), p.SubContractor, p.EmployeeName)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LatestBinding returns the newest binding for token, or nil, nil when the
// device never registered.
func (r *EmployeeRepo) LatestBinding(ctx context.Context, token string) (*model.DeviceBinding, error) {
	var b model.DeviceBinding
	err := r.DB.QueryRowContext(ctx,
		`SELECT d.id, d.token, e.sub_contractor, e.employee_name, e.phone_number, d.created_at
		 FROM employee_devices d
		 JOIN employees e ON e.id = d.employee_id
		 WHERE d.token = ?
		 ORDER BY d.created_at DESC, d.id DESC
		 LIMIT 1`, token).Scan(
		&b.ID, &b.Token, &b.Profile.SubContractor, &b.Profile.EmployeeName, &b.Profile.PhoneNumber, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
