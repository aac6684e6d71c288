package reservationRepo

import (
	"context"
	"errors"
	"fmt"

	"tuwi/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReservationRepo implements ReservationRepository on Postgres (and SQLite).
type GormReservationRepo struct {
	db *gorm.DB
}

func NewGormReservationRepo(db *gorm.DB) *GormReservationRepo {
	return &GormReservationRepo{db: db}
}

func (r *GormReservationRepo) Reserve(ctx context.Context, cmd ReserveCommand) (*ReserveResult, error) {
	booking := cmd.Booking
	var result *ReserveResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if booking.IdempotencyKey != nil {
			var existing models.Booking
			err := tx.Where("idempotency_key = ? AND client_email = ?", *booking.IdempotencyKey, booking.ClientEmail).
				Take(&existing).Error
			if err == nil {
				result = &ReserveResult{Booking: existing, Replayed: true}
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lookup idempotency key: %w", err)
			}
		}

		var svc models.Service
		if err := tx.Where("id = ? AND braider_id = ?", booking.ServiceID, booking.BraiderID).Take(&svc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("lookup service %s: %w", booking.ServiceID, err)
		}

		if booking.AvailabilityID != nil {
			var slot models.AvailabilitySlot
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", *booking.AvailabilityID).
				Take(&slot).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAvailabilityTaken
			}
			if err != nil {
				return fmt.Errorf("lock availability %s: %w", *booking.AvailabilityID, err)
			}
			if slot.IsBooked || !slotMatches(slot, booking) {
				return ErrAvailabilityTaken
			}

			res := tx.Model(&models.AvailabilitySlot{}).
				Where("id = ? AND is_booked = ?", slot.ID, false).
				Update("is_booked", true)
			if res.Error != nil {
				return fmt.Errorf("consume availability %s: %w", slot.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrAvailabilityTaken
			}
		}

		var active int64
		err := tx.Model(&models.Booking{}).
			Where("braider_id = ? AND booking_date = ? AND booking_time = ? AND status IN ?",
				booking.BraiderID, booking.Date, booking.Time, models.ActiveBookingStatuses).
			Count(&active).Error
		if err != nil {
			return fmt.Errorf("check existing bookings: %w", err)
		}
		if active > 0 {
			return ErrBookingConflict
		}

		booking.TotalAmount = cmd.Price(svc, booking.BookingType)
		if err := tx.Create(&booking).Error; err != nil {
			// The partial unique indexes catch inserts that raced past the count.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrBookingConflict
			}
			return fmt.Errorf("insert booking: %w", err)
		}

		result = &ReserveResult{Booking: booking}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *GormReservationRepo) GetBooking(ctx context.Context, id models.BookingID) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}
	return &b, nil
}

func (r *GormReservationRepo) GetAvailability(ctx context.Context, id models.AvailabilityID) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get availability %s: %w", id, err)
	}
	return &slot, nil
}

func (r *GormReservationRepo) ListAvailability(ctx context.Context, braiderID models.BraiderID, date string) ([]models.AvailabilitySlot, error) {
	q := r.db.WithContext(ctx).Where("braider_id = ?", braiderID)
	if date != "" {
		q = q.Where("date = ?", date)
	}

	var slots []models.AvailabilitySlot
	if err := q.Order("date ASC, start_time ASC").Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("list availability for %s: %w", braiderID, err)
	}
	return slots, nil
}

// OpenSlots inserts new, unbooked slots.
func (r *GormReservationRepo) OpenSlots(ctx context.Context, slots []models.AvailabilitySlot) error {
	if len(slots) == 0 {
		return nil
	}
	for i := range slots {
		slots[i].IsBooked = false
	}
	if err := r.db.WithContext(ctx).Create(&slots).Error; err != nil {
		return fmt.Errorf("open availability slots: %w", err)
	}
	return nil
}

func (r *GormReservationRepo) CreateService(ctx context.Context, svc *models.Service) error {
	if err := r.db.WithContext(ctx).Create(svc).Error; err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

func (r *GormReservationRepo) ListServices(ctx context.Context, braiderID models.BraiderID) ([]models.Service, error) {
	var services []models.Service
	if err := r.db.WithContext(ctx).Where("braider_id = ?", braiderID).Order("name ASC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("list services for %s: %w", braiderID, err)
	}
	return services, nil
}

func (r *GormReservationRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
