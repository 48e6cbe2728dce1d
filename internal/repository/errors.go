// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// clock service to distinguish between different failure scenarios
// without depending on a particular storage driver. ErrConflict signals
// that a write collided with existing state (an open clock session for
// the same device, or an employee profile that already exists), while
// ErrNotFound signals that the row an update targets does not exist.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when an insert or update cannot be performed
// because of conflicting state, such as opening a second clock session
// for a device token. Callers translate this into a 409 response.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when the row targeted by an update is missing,
// for example closing a session that is not open.
var ErrNotFound = errors.New("not found")

// isDuplicateKey reports whether err is a MySQL unique key violation
// (error 1062).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
