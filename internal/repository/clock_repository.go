package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/timeclock/internal/model"
)

// ClockRepo persists clock records. The clock_records table carries a
// generated column open_token = IF(clock_out IS NULL, token, NULL) with a
// unique index, so the database itself refuses a second open session for
// the same device token. The transactional methods below additionally lock
// the open row so concurrent clock-outs serialize cleanly.
type ClockRepo struct {
	db *sql.DB
}

// NewClockRepo returns a new ClockRepo bound to the given database.
func NewClockRepo(db *sql.DB) *ClockRepo { return &ClockRepo{db: db} }

const clockColumns = `id, token, sub_contractor, employee_name, phone_number, worksite,
	clock_in, clock_out, lat, lon, notes, clock_out_notes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClockRecord(s rowScanner) (*model.ClockRecord, error) {
	var (
		rec           model.ClockRecord
		phone         sql.NullString
		worksite      sql.NullString
		clockOut      sql.NullTime
		notes         sql.NullString
		clockOutNotes sql.NullString
	)
	err := s.Scan(&rec.ID, &rec.Token, &rec.SubContractor, &rec.EmployeeName, &phone, &worksite,
		&rec.ClockInTime, &clockOut, &rec.Lat, &rec.Lon, &notes, &clockOutNotes)
	if err != nil {
		return nil, err
	}
	rec.PhoneNumber = phone.String
	rec.Worksite = worksite.String
	rec.Notes = notes.String
	rec.ClockOutNotes = clockOutNotes.String
	if clockOut.Valid {
		t := clockOut.Time.UTC()
		rec.ClockOutTime = &t
	}
	rec.ClockInTime = rec.ClockInTime.UTC()
	return &rec, nil
}

// OpenSession returns the open record for token, newest clock-in first, or
// nil, nil when the device is clocked out.
func (r *ClockRepo) OpenSession(ctx context.Context, token string) (*model.ClockRecord, error) {
	rec, err := scanClockRecord(r.db.QueryRowContext(ctx,
		`SELECT `+clockColumns+` FROM clock_records
		 WHERE token = ? AND clock_out IS NULL
		 ORDER BY clock_in DESC LIMIT 1`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// LatestRecord returns the most recent record for token regardless of
// state, or nil, nil when the device never clocked in.
func (r *ClockRepo) LatestRecord(ctx context.Context, token string) (*model.ClockRecord, error) {
	rec, err := scanClockRecord(r.db.QueryRowContext(ctx,
		`SELECT `+clockColumns+` FROM clock_records
		 WHERE token = ?
		 ORDER BY clock_in DESC, id DESC LIMIT 1`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// ListOpen returns every open record, oldest clock-in first.
func (r *ClockRepo) ListOpen(ctx context.Context) ([]model.ClockRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clockColumns+` FROM clock_records WHERE clock_out IS NULL ORDER BY clock_in`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ClockRecord
	for rows.Next() {
		rec, err := scanClockRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// InsertOpen inserts rec as a new open session. The existence check and the
// insert run in one transaction; ErrConflict is returned when the token
// already has an open session, whether detected by the locked read or by
// the unique index. On success rec.ID is populated.
func (r *ClockRepo) InsertOpen(ctx context.Context, rec *model.ClockRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var existing uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM clock_records WHERE token = ? AND clock_out IS NULL LIMIT 1 FOR UPDATE`,
		rec.Token).Scan(&existing)
	switch {
	case err == nil:
		return ErrConflict
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}

	var photo []byte
	var photoMIME sql.NullString
	if rec.Photo != nil {
		photo = rec.Photo.Data
		photoMIME = sql.NullString{String: rec.Photo.MIME, Valid: true}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO clock_records
		 (token, sub_contractor, employee_name, phone_number, worksite, clock_in, lat, lon, notes, photo, photo_mime)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rec.Token, rec.SubContractor, rec.EmployeeName, rec.PhoneNumber, rec.Worksite,
		rec.ClockInTime.UTC(), rec.Lat, rec.Lon, rec.Notes, photo, photoMIME)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	rec.ID = uint64(id)
	return nil
}

// CloseOpen closes the open session for token at the given time, attaching
// clock-out notes and an optional photo. ErrNotFound is returned when the
// token has no open session.
func (r *ClockRepo) CloseOpen(ctx context.Context, token string, at time.Time, notes string, photo *model.Photo) (*model.ClockRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rec, err := scanClockRecord(tx.QueryRowContext(ctx,
		`SELECT `+clockColumns+` FROM clock_records
		 WHERE token = ? AND clock_out IS NULL
		 ORDER BY clock_in DESC LIMIT 1 FOR UPDATE`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var data []byte
	var mime sql.NullString
	if photo != nil {
		data = photo.Data
		mime = sql.NullString{String: photo.MIME, Valid: true}
	}
	at = at.UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE clock_records
		 SET clock_out = ?, clock_out_notes = ?, clock_out_photo = ?, clock_out_photo_mime = ?
		 WHERE id = ? AND clock_out IS NULL`,
		at, notes, data, mime, rec.ID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	rec.ClockOutTime = &at
	rec.ClockOutNotes = notes
	rec.ClockOutPhoto = photo
	return rec, nil
}
