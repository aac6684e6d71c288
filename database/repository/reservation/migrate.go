package reservationRepo

import (
	"context"
	"fmt"

	"tuwi/models"
)

// Partial unique indexes back the reservation transaction: at most one
// non-cancelled booking per (braider, date, time) and per availability slot.
// Idempotency keys are unique per client email.
// Postgres and SQLite both accept this syntax.
var bookingIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_active_tuple
		ON bookings (braider_id, booking_date, booking_time)
		WHERE status <> 'cancelled'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_active_availability
		ON bookings (availability_id)
		WHERE availability_id IS NOT NULL AND status <> 'cancelled'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_client_idempotency_key
		ON bookings (client_email, idempotency_key)
		WHERE idempotency_key IS NOT NULL`,
}

// EnsureSchema migrates the tables and creates the reservation indexes.
func (r *GormReservationRepo) EnsureSchema(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&models.Service{}, &models.AvailabilitySlot{}, &models.Booking{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range bookingIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create booking index: %w", err)
		}
	}
	return nil
}
