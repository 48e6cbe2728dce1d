package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/timeclock/internal/model"
)

// WorksiteRepo reads worksite boundaries. Boundaries are reference data
// maintained outside of this service, so the repository is read-only.
type WorksiteRepo struct{ DB *sql.DB }

func NewWorksiteRepo(db *sql.DB) *WorksiteRepo { return &WorksiteRepo{DB: db} }

// ListBoundaries returns every boundary ordered by id, which is the order
// used to break ties between equally sized overlapping worksites.
func (r *WorksiteRepo) ListBoundaries(ctx context.Context) ([]model.WorksiteBoundary, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, customer_name, min_latitude, max_latitude, min_longitude, max_longitude
		 FROM worksite_boundaries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WorksiteBoundary
	for rows.Next() {
		var b model.WorksiteBoundary
		if err := rows.Scan(&b.ID, &b.Name, &b.MinLat, &b.MaxLat, &b.MinLon, &b.MaxLon); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
