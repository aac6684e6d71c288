package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	reservationRepo "tuwi/database/repository/reservation"
	"tuwi/models"
	"tuwi/utils"
)

// DefaultReservationService implements ReservationService on top of a
// ReservationRepository.
type DefaultReservationService struct {
	Repo    reservationRepo.ReservationRepository
	Pricer  Pricer
	Timeout time.Duration
	Logger  *zap.Logger

	now          func() time.Time
	newReference func() string
}

func NewReservationService(repo reservationRepo.ReservationRepository, pricer Pricer, timeout time.Duration, logger *zap.Logger) *DefaultReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultReservationService{
		Repo:         repo,
		Pricer:       pricer,
		Timeout:      timeout,
		Logger:       logger,
		now:          time.Now,
		newReference: utils.NewBookingReference,
	}
}

func (s *DefaultReservationService) Reserve(ctx context.Context, req *models.BookingRequest) (*Outcome, error) {
	b := models.Booking{
		ID:             models.NewBookingID(),
		Reference:      s.newReference(),
		BraiderID:      req.BraiderID,
		ServiceID:      req.ServiceID,
		Date:           req.DateString(),
		Time:           req.Time,
		ClientName:     req.ClientName,
		ClientEmail:    req.ClientEmail,
		ClientPhone:    req.ClientPhone,
		ClientUserID:   req.ClientUserID,
		BookingType:    req.BookingType,
		ClientAddress:  req.ClientAddress,
		Notes:          req.Notes,
		Status:         models.BookingStatusPending,
		AvailabilityID: req.AvailabilityID,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      s.now().UTC(),
	}
	if b.Reference == "" {
		return nil, fmt.Errorf("generate booking reference")
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	res, err := s.Repo.Reserve(ctx, reservationRepo.ReserveCommand{Booking: b, Price: s.Pricer.Total})
	if err != nil {
		switch {
		case errors.Is(err, reservationRepo.ErrServiceNotFound):
			return nil, newReservationError(CodeServiceNotFound, msgServiceNotFound)
		case errors.Is(err, reservationRepo.ErrAvailabilityTaken):
			return nil, newReservationError(CodeAvailabilityTaken, msgAvailabilityTaken)
		case errors.Is(err, reservationRepo.ErrBookingConflict):
			return nil, newReservationError(CodeBookingConflict, msgBookingConflict)
		case errors.Is(err, context.DeadlineExceeded):
			s.Logger.Error("Reservation timed out",
				zap.String("braiderId", b.BraiderID.String()),
				zap.Duration("timeout", s.Timeout))
			return nil, fmt.Errorf("reservation timed out: %w", err)
		default:
			return nil, fmt.Errorf("reserve booking: %w", err)
		}
	}

	if res.Replayed {
		s.Logger.Info("Idempotent booking replayed", zap.String("bookingId", res.Booking.ID.String()))
	}
	return &Outcome{Booking: res.Booking, Replayed: res.Replayed}, nil
}
