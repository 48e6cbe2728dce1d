package repository

import "database/sql"

// Store groups the MySQL repositories into the single storage value the
// services consume: worksite boundaries, profiles with device bindings and
// clock records.
type Store struct {
	*WorksiteRepo
	*EmployeeRepo
	*ClockRepo
}

// NewStore returns a Store whose repositories share db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		WorksiteRepo: NewWorksiteRepo(db),
		EmployeeRepo: NewEmployeeRepo(db),
		ClockRepo:    NewClockRepo(db),
	}
}
