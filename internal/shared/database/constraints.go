package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds database constraints and indexes that AutoMigrate
// does not express. The booking table is append-only and the sweeper scans it
// by status and age, so both get covering indexes.
func MigrateConstraints(db *gorm.DB) error {
	// Booking references must be unique: payment webhooks address bookings by ref.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_booking_ref
		ON bookings (booking_ref);
	`).Error
	if err != nil {
		return err
	}

	// Sweep query: pending bookings older than the hold TTL.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_status_created_at
		ON bookings (status, created_at);
	`).Error
	if err != nil {
		return err
	}

	// Dashboard rollups filter paid bookings per show.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_show_id_status
		ON bookings (show_id, status);
	`).Error
	if err != nil {
		return err
	}

	// Upcoming-show listings filter on start time.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_shows_start_time
		ON shows (start_time);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
