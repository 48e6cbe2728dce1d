package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the tables in dependency order. clock_records.open_token is
// the token while the record is open and NULL afterwards; its unique index
// is what guarantees one open session per device across instances.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS worksite_boundaries (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customer_name VARCHAR(255) NOT NULL,
		min_latitude  DOUBLE NOT NULL,
		max_latitude  DOUBLE NOT NULL,
		min_longitude DOUBLE NOT NULL,
		max_longitude DOUBLE NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS employees (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		sub_contractor VARCHAR(255) NOT NULL,
		employee_name  VARCHAR(255) NOT NULL,
		phone_number   VARCHAR(64)  NOT NULL DEFAULT '',
		created_at     DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		UNIQUE KEY uq_employees_identity (sub_contractor, employee_name),
		KEY idx_employees_phone (phone_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS employee_devices (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		token       VARCHAR(255)    NOT NULL,
		employee_id BIGINT UNSIGNED NOT NULL,
		created_at  DATETIME(3)     NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		KEY idx_employee_devices_token (token, created_at),
		CONSTRAINT fk_employee_devices_employee FOREIGN KEY (employee_id) REFERENCES employees (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS clock_records (
		id                   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		token                VARCHAR(255) NOT NULL,
		sub_contractor       VARCHAR(255) NOT NULL,
		employee_name        VARCHAR(255) NOT NULL,
		phone_number         VARCHAR(64)  NOT NULL DEFAULT '',
		worksite             VARCHAR(255) NOT NULL,
		clock_in             DATETIME(3)  NOT NULL,
		clock_out            DATETIME(3)  NULL,
		lat                  DOUBLE       NOT NULL,
		lon                  DOUBLE       NOT NULL,
		notes                TEXT         NULL,
		photo                MEDIUMBLOB   NULL,
		photo_mime           VARCHAR(32)  NULL,
		clock_out_notes      TEXT         NULL,
		clock_out_photo      MEDIUMBLOB   NULL,
		clock_out_photo_mime VARCHAR(32)  NULL,
		open_token           VARCHAR(255) AS (IF(clock_out IS NULL, token, NULL)) STORED,
		UNIQUE KEY uq_clock_records_open (open_token),
		KEY idx_clock_records_token (token, clock_in)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables. Existing tables are left alone.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
	}
	return nil
}
