package reservationRepo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tuwi/models"
)

func newTestRepo(t *testing.T) (*GormReservationRepo, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	// One connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := NewGormReservationRepo(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return repo, db
}

func seedService(t *testing.T, repo *GormReservationRepo, braider models.BraiderID, price float64) models.Service {
	t.Helper()
	svc := models.Service{
		ID:        models.NewServiceID(),
		BraiderID: braider,
		Name:      "Box braids",
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateService(context.Background(), &svc); err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return svc
}

func seedSlot(t *testing.T, repo *GormReservationRepo, braider models.BraiderID, date, start string) models.AvailabilitySlot {
	t.Helper()
	slot := models.AvailabilitySlot{
		ID:        models.NewAvailabilityID(),
		BraiderID: braider,
		Date:      date,
		StartTime: start,
		EndTime:   "16:00",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.OpenSlots(context.Background(), []models.AvailabilitySlot{slot}); err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	return slot
}

func newBooking(braider models.BraiderID, svc models.ServiceID, date, at string) models.Booking {
	return models.Booking{
		ID:          models.NewBookingID(),
		Reference:   "TW-TEST",
		BraiderID:   braider,
		ServiceID:   svc,
		Date:        date,
		Time:        at,
		ClientName:  "Maria",
		ClientEmail: "maria@example.com",
		ClientPhone: "+351912345678",
		BookingType: models.BookingTypeTrancista,
		Status:      models.BookingStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
}

func flatPrice(svc models.Service, _ models.BookingType) float64 { return svc.Price }

func countBookings(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Booking{}).Count(&n).Error; err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	return n
}

func TestReserve_CreatesBookingWithPrice(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := seedService(t, repo, "P1", 80)

	res, err := repo.Reserve(context.Background(), ReserveCommand{
		Booking: newBooking("P1", svc.ID, "2025-03-10", "14:00"),
		Price:   func(s models.Service, _ models.BookingType) float64 { return s.Price + 5 },
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.Replayed {
		t.Fatalf("fresh booking reported as replayed")
	}
	if res.Booking.TotalAmount != 85 {
		t.Fatalf("expected total 85, got %v", res.Booking.TotalAmount)
	}

	stored, err := repo.GetBooking(context.Background(), res.Booking.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if stored.TotalAmount != 85 || stored.Status != models.BookingStatusPending {
		t.Fatalf("unexpected stored booking %+v", stored)
	}
	if n := countBookings(t, db); n != 1 {
		t.Fatalf("expected 1 booking, got %d", n)
	}
}

func TestReserve_ServiceNotFound(t *testing.T) {
	repo, db := newTestRepo(t)

	_, err := repo.Reserve(context.Background(), ReserveCommand{
		Booking: newBooking("P1", "missing", "2025-03-10", "14:00"),
		Price:   flatPrice,
	})
	if !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
	if n := countBookings(t, db); n != 0 {
		t.Fatalf("expected no bookings, got %d", n)
	}
}

func TestReserve_SequentialSameTupleConflicts(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := seedService(t, repo, "P1", 50)

	if _, err := repo.Reserve(context.Background(), ReserveCommand{
		Booking: newBooking("P1", svc.ID, "2025-03-10", "14:00"),
		Price:   flatPrice,
	}); err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	_, err := repo.Reserve(context.Background(), ReserveCommand{
		Booking: newBooking("P1", svc.ID, "2025-03-10", "14:00"),
		Price:   flatPrice,
	})
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("expected ErrBookingConflict, got %v", err)
	}

	// A different time for the same braider is fine.
	if _, err := repo.Reserve(context.Background(), ReserveCommand{
		Booking: newBooking("P1", svc.ID, "2025-03-10", "15:00"),
		Price:   flatPrice,
	}); err != nil {
		t.Fatalf("reserve other time: %v", err)
	}
}

func TestReserve_CancelledBookingDoesNotHoldTuple(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := seedService(t, repo, "P1", 50)

	cancelled := newBooking("P1", svc.ID, "2025-03-10", "14:00")
	cancelled.Status = models.BookingStatusCancelled
	if err := db.Create(&cancelled).Error; err != nil {
		t.Fatalf("seed cancelled booking: %v", err)
	}

	if _, err := repo.Reserve(context.Background(), ReserveCommand{
		Booking: newBooking("P1", svc.ID, "2025-03-10", "14:00"),
		Price:   flatPrice,
	}); err != nil {
		t.Fatalf("reserve over cancelled booking: %v", err)
	}
}

func TestReserve_ConsumesAvailabilityOnce(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := seedService(t, repo, "P1", 50)
	slot := seedSlot(t, repo, "P1", "2025-03-10", "14:00")

	first := newBooking("P1", svc.ID, "2025-03-10", "14:00")
	first.AvailabilityID = &slot.ID
	if _, err := repo.Reserve(context.Background(), ReserveCommand{Booking: first, Price: flatPrice}); err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	got, err := repo.GetAvailability(context.Background(), slot.ID)
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if !got.IsBooked {
		t.Fatalf("expected slot to be booked")
	}

	second := newBooking("P1", svc.ID, "2025-03-10", "14:00")
	second.AvailabilityID = &slot.ID
	_, err = repo.Reserve(context.Background(), ReserveCommand{Booking: second, Price: flatPrice})
	if !errors.Is(err, ErrAvailabilityTaken) {
		t.Fatalf("expected ErrAvailabilityTaken, got %v", err)
	}
}

func TestReserve_AvailabilityMismatchOrUnknown(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := seedService(t, repo, "P1", 50)
	slot := seedSlot(t, repo, "P1", "2025-03-10", "14:00")

	wrongTime := newBooking("P1", svc.ID, "2025-03-10", "15:00")
	wrongTime.AvailabilityID = &slot.ID
	if _, err := repo.Reserve(context.Background(), ReserveCommand{Booking: wrongTime, Price: flatPrice}); !errors.Is(err, ErrAvailabilityTaken) {
		t.Fatalf("expected ErrAvailabilityTaken for mismatched slot, got %v", err)
	}

	unknown := models.AvailabilityID("nope")
	b := newBooking("P1", svc.ID, "2025-03-10", "14:00")
	b.AvailabilityID = &unknown
	if _, err := repo.Reserve(context.Background(), ReserveCommand{Booking: b, Price: flatPrice}); !errors.Is(err, ErrAvailabilityTaken) {
		t.Fatalf("expected ErrAvailabilityTaken for unknown slot, got %v", err)
	}
}

func TestReserve_ConflictRollsBackSlotConsumption(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := seedService(t, repo, "P1", 50)
	slot := seedSlot(t, repo, "P1", "2025-03-10", "14:00")

	if _, err := repo.Reserve(context.Background(), ReserveCommand{
		Booking: newBooking("P1", svc.ID, "2025-03-10", "14:00"),
		Price:   flatPrice,
	}); err != nil {
		t.Fatalf("reserve without slot: %v", err)
	}

	withSlot := newBooking("P1", svc.ID, "2025-03-10", "14:00")
	withSlot.AvailabilityID = &slot.ID
	_, err := repo.Reserve(context.Background(), ReserveCommand{Booking: withSlot, Price: flatPrice})
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("expected ErrBookingConflict, got %v", err)
	}

	got, err := repo.GetAvailability(context.Background(), slot.ID)
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if got.IsBooked {
		t.Fatalf("slot flip must roll back with the failed reservation")
	}
}

func TestReserve_ConcurrentRequestsHaveOneWinner(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := seedService(t, repo, "P1", 50)
	slot := seedSlot(t, repo, "P1", "2025-03-10", "14:00")

	const n = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := newBooking("P1", svc.ID, "2025-03-10", "14:00")
			if i%2 == 0 {
				b.AvailabilityID = &slot.ID
			}
			_, err := repo.Reserve(context.Background(), ReserveCommand{Booking: b, Price: flatPrice})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrBookingConflict), errors.Is(err, ErrAvailabilityTaken):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if successes != 1 || conflicts != n-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", n-1, successes, conflicts)
	}
	if got := countBookings(t, db); got != 1 {
		t.Fatalf("expected exactly 1 booking row, got %d", got)
	}
}

func TestReserve_IdempotencyKeyReplaysBooking(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := seedService(t, repo, "P1", 50)
	key := "retry-123"

	first := newBooking("P1", svc.ID, "2025-03-10", "14:00")
	first.IdempotencyKey = &key
	res1, err := repo.Reserve(context.Background(), ReserveCommand{Booking: first, Price: flatPrice})
	if err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	retry := newBooking("P1", svc.ID, "2025-03-10", "14:00")
	retry.IdempotencyKey = &key
	res2, err := repo.Reserve(context.Background(), ReserveCommand{Booking: retry, Price: flatPrice})
	if err != nil {
		t.Fatalf("retry reserve: %v", err)
	}
	if !res2.Replayed || res2.Booking.ID != res1.Booking.ID {
		t.Fatalf("expected replay of %s, got %+v", res1.Booking.ID, res2)
	}
	if n := countBookings(t, db); n != 1 {
		t.Fatalf("expected 1 booking, got %d", n)
	}
}

func TestListAvailabilityAndServices(t *testing.T) {
	repo, _ := newTestRepo(t)
	seedService(t, repo, "P1", 50)
	seedService(t, repo, "P2", 70)
	seedSlot(t, repo, "P1", "2025-03-11", "09:00")
	seedSlot(t, repo, "P1", "2025-03-10", "14:00")
	seedSlot(t, repo, "P1", "2025-03-10", "10:00")

	all, err := repo.ListAvailability(context.Background(), "P1", "")
	if err != nil {
		t.Fatalf("list availability: %v", err)
	}
	if len(all) != 3 || all[0].StartTime != "10:00" || all[2].Date != "2025-03-11" {
		t.Fatalf("unexpected ordering %+v", all)
	}

	day, err := repo.ListAvailability(context.Background(), "P1", "2025-03-10")
	if err != nil {
		t.Fatalf("list availability by date: %v", err)
	}
	if len(day) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(day))
	}

	services, err := repo.ListServices(context.Background(), "P2")
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	if len(services) != 1 || services[0].Price != 70 {
		t.Fatalf("unexpected services %+v", services)
	}

	if _, err := repo.GetBooking(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReserve_ServiceOfAnotherBraiderIsNotFound(t *testing.T) {
	repo, db := newTestRepo(t)
	other := seedService(t, repo, "P2", 20)

	_, err := repo.Reserve(context.Background(), ReserveCommand{
		Booking: newBooking("P1", other.ID, "2025-03-10", "14:00"),
		Price:   flatPrice,
	})
	if !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
	if n := countBookings(t, db); n != 0 {
		t.Fatalf("expected no bookings, got %d", n)
	}
}

func TestReserve_CompletedBookingHoldsTuple(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := seedService(t, repo, "P1", 50)

	done := newBooking("P1", svc.ID, "2025-03-10", "14:00")
	done.Status = models.BookingStatusCompleted
	if err := db.Create(&done).Error; err != nil {
		t.Fatalf("seed completed booking: %v", err)
	}

	_, err := repo.Reserve(context.Background(), ReserveCommand{
		Booking: newBooking("P1", svc.ID, "2025-03-10", "14:00"),
		Price:   flatPrice,
	})
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("expected ErrBookingConflict, got %v", err)
	}
}

func TestReserve_IdempotencyKeyIsScopedToClient(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := seedService(t, repo, "P1", 50)
	key := "retry-123"

	first := newBooking("P1", svc.ID, "2025-03-10", "14:00")
	first.IdempotencyKey = &key
	res1, err := repo.Reserve(context.Background(), ReserveCommand{Booking: first, Price: flatPrice})
	if err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	stranger := newBooking("P1", svc.ID, "2025-03-10", "15:00")
	stranger.ClientEmail = "joana@example.com"
	stranger.IdempotencyKey = &key
	res2, err := repo.Reserve(context.Background(), ReserveCommand{Booking: stranger, Price: flatPrice})
	if err != nil {
		t.Fatalf("reserve with another client's key: %v", err)
	}
	if res2.Replayed || res2.Booking.ID == res1.Booking.ID {
		t.Fatalf("another client must not receive booking %s", res1.Booking.ID)
	}
	if n := countBookings(t, db); n != 2 {
		t.Fatalf("expected 2 bookings, got %d", n)
	}
}

// insertBeforeBooking registers a create callback that writes rival inside the
// reservation transaction right before the booking row is inserted, after the
// conflict count has already run.
func insertBeforeBooking(t *testing.T, db *gorm.DB, rival models.Booking) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:rival_booking", func(tx *gorm.DB) {
		if fired || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "bookings" {
			return
		}
		fired = true
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(&rival).Error; err != nil {
			t.Errorf("insert rival booking: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func TestReserve_TupleIndexCatchesInsertThatPassedTheCount(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := seedService(t, repo, "P1", 50)

	insertBeforeBooking(t, db, newBooking("P1", svc.ID, "2025-03-10", "14:00"))

	_, err := repo.Reserve(context.Background(), ReserveCommand{
		Booking: newBooking("P1", svc.ID, "2025-03-10", "14:00"),
		Price:   flatPrice,
	})
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("expected ErrBookingConflict, got %v", err)
	}
	// The rival shared the failed transaction, so nothing is committed.
	if n := countBookings(t, db); n != 0 {
		t.Fatalf("expected the whole unit to roll back, got %d bookings", n)
	}
}

func TestReserve_AvailabilityIndexCatchesInsertThatPassedTheCount(t *testing.T) {
	repo, db := newTestRepo(t)
	svc := seedService(t, repo, "P1", 50)
	slot := seedSlot(t, repo, "P1", "2025-03-10", "14:00")

	// Different time, same slot: only ux_bookings_active_availability can reject it.
	rival := newBooking("P1", svc.ID, "2025-03-10", "15:00")
	rival.AvailabilityID = &slot.ID
	insertBeforeBooking(t, db, rival)

	b := newBooking("P1", svc.ID, "2025-03-10", "14:00")
	b.AvailabilityID = &slot.ID
	_, err := repo.Reserve(context.Background(), ReserveCommand{Booking: b, Price: flatPrice})
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("expected ErrBookingConflict, got %v", err)
	}
	if n := countBookings(t, db); n != 0 {
		t.Fatalf("expected the whole unit to roll back, got %d bookings", n)
	}

	got, err := repo.GetAvailability(context.Background(), slot.ID)
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if got.IsBooked {
		t.Fatalf("slot flip must roll back with the failed insert")
	}
}
