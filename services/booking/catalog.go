package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	reservationRepo "tuwi/database/repository/reservation"
	"tuwi/models"
)

// DefaultCatalogService implements CatalogService.
type DefaultCatalogService struct {
	Repo reservationRepo.ReservationRepository
	now  func() time.Time
}

func NewCatalogService(repo reservationRepo.ReservationRepository) *DefaultCatalogService {
	return &DefaultCatalogService{Repo: repo, now: time.Now}
}

func (s *DefaultCatalogService) GetBooking(ctx context.Context, id models.BookingID) (*models.Booking, error) {
	b, err := s.Repo.GetBooking(ctx, id)
	if errors.Is(err, reservationRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *DefaultCatalogService) GetAvailability(ctx context.Context, id models.AvailabilityID) (*models.AvailabilitySlot, error) {
	slot, err := s.Repo.GetAvailability(ctx, id)
	if errors.Is(err, reservationRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return slot, err
}

func (s *DefaultCatalogService) ListAvailability(ctx context.Context, braiderID models.BraiderID, date string) ([]models.AvailabilitySlot, error) {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, &ValidationError{Field: "date", Message: fieldMessages["date.datetime"]}
		}
	}
	return s.Repo.ListAvailability(ctx, braiderID, date)
}

// OpenSlots publishes new slots for a braider. New slots are always open.
func (s *DefaultCatalogService) OpenSlots(ctx context.Context, braiderID models.BraiderID, req models.OpenSlotsRequest) ([]models.AvailabilitySlot, error) {
	now := s.now().UTC()
	slots := make([]models.AvailabilitySlot, 0, len(req.Slots))
	for i, in := range req.Slots {
		// HH:MM strings compare in time order.
		if in.EndTime <= in.StartTime {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("slots[%d].endTime", i),
				Message: "Hora de fim deve ser posterior à hora de início",
			}
		}
		slots = append(slots, models.AvailabilitySlot{
			ID:        models.NewAvailabilityID(),
			BraiderID: braiderID,
			Date:      in.Date,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			IsBooked:  false,
			CreatedAt: now,
		})
	}
	if err := s.Repo.OpenSlots(ctx, slots); err != nil {
		return nil, fmt.Errorf("open slots: %w", err)
	}
	return slots, nil
}

func (s *DefaultCatalogService) CreateService(ctx context.Context, braiderID models.BraiderID, req models.CreateServiceRequest) (*models.Service, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "Nome do serviço é obrigatório"}
	}
	svc := &models.Service{
		ID:              models.NewServiceID(),
		BraiderID:       braiderID,
		Name:            name,
		Price:           roundCents(req.Price),
		HomeServiceFee:  req.HomeServiceFee,
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.Repo.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

func (s *DefaultCatalogService) ListServices(ctx context.Context, braiderID models.BraiderID) ([]models.Service, error) {
	return s.Repo.ListServices(ctx, braiderID)
}
