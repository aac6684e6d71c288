package reservationRepo

import (
	"context"
	"errors"
	"fmt"

	"tuwi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// bookingDocument adds the field the partial unique index keys on.
// holds_slot is true while the booking is not cancelled.
type bookingDocument struct {
	models.Booking `bson:",inline"`

	HoldsSlot bool `bson:"holds_slot"`
}

// MongoReservationRepo implements ReservationRepository using MongoDB
// multi-document transactions.
type MongoReservationRepo struct {
	client           *mongo.Client
	serviceColl      *mongo.Collection
	availabilityColl *mongo.Collection
	bookingColl      *mongo.Collection
}

// NewMongoReservationRepo constructs a new instance of MongoReservationRepo.
func NewMongoReservationRepo(client *mongo.Client, dbName string) *MongoReservationRepo {
	db := client.Database(dbName)
	return &MongoReservationRepo{
		client:           client,
		serviceColl:      db.Collection("services"),
		availabilityColl: db.Collection("braider_availability"),
		bookingColl:      db.Collection("bookings"),
	}
}

func (repo *MongoReservationRepo) Reserve(ctx context.Context, cmd ReserveCommand) (*ReserveResult, error) {
	sess, err := repo.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	// WithTransaction retries on TransientTransactionError (write conflicts), so
	// a racing loser re-runs the checks and sees the winner's writes.
	out, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return repo.reserveTxn(sc, cmd)
	}, txnOpts)
	if err != nil {
		return nil, err
	}
	return out.(*ReserveResult), nil
}

func (repo *MongoReservationRepo) reserveTxn(sc mongo.SessionContext, cmd ReserveCommand) (*ReserveResult, error) {
	booking := cmd.Booking

	if booking.IdempotencyKey != nil {
		var existing bookingDocument
		filter := bson.M{"idempotency_key": *booking.IdempotencyKey, "client_email": booking.ClientEmail}
		err := repo.bookingColl.FindOne(sc, filter).Decode(&existing)
		if err == nil {
			return &ReserveResult{Booking: existing.Booking, Replayed: true}, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("lookup idempotency key: %w", err)
		}
	}

	var svc models.Service
	if err := repo.serviceColl.FindOne(sc, bson.M{"id": booking.ServiceID, "braider_id": booking.BraiderID}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("lookup service %s: %w", booking.ServiceID, err)
	}

	if booking.AvailabilityID != nil {
		filter := bson.M{
			"id":         *booking.AvailabilityID,
			"braider_id": booking.BraiderID,
			"date":       booking.Date,
			"start_time": booking.Time,
			"is_booked":  false,
		}
		res, err := repo.availabilityColl.UpdateOne(sc, filter, bson.M{"$set": bson.M{"is_booked": true}})
		if err != nil {
			return nil, fmt.Errorf("consume availability %s: %w", *booking.AvailabilityID, err)
		}
		if res.MatchedCount == 0 {
			return nil, ErrAvailabilityTaken
		}
	}

	active, err := repo.bookingColl.CountDocuments(sc, bson.M{
		"braider_id": booking.BraiderID,
		"date":       booking.Date,
		"time":       booking.Time,
		"holds_slot": true,
	})
	if err != nil {
		return nil, fmt.Errorf("check existing bookings: %w", err)
	}
	if active > 0 {
		return nil, ErrBookingConflict
	}

	booking.TotalAmount = cmd.Price(svc, booking.BookingType)
	doc := bookingDocument{Booking: booking, HoldsSlot: booking.Status != models.BookingStatusCancelled}
	if _, err := repo.bookingColl.InsertOne(sc, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrBookingConflict
		}
		return nil, fmt.Errorf("insert booking failed: %w", err)
	}

	return &ReserveResult{Booking: booking}, nil
}

func (repo *MongoReservationRepo) GetBooking(ctx context.Context, id models.BookingID) (*models.Booking, error) {
	var doc bookingDocument
	if err := repo.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking with id %s: %w", id, err)
	}
	return &doc.Booking, nil
}

func (repo *MongoReservationRepo) GetAvailability(ctx context.Context, id models.AvailabilityID) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	if err := repo.availabilityColl.FindOne(ctx, bson.M{"id": id}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching availability with id %s: %w", id, err)
	}
	return &slot, nil
}

func (repo *MongoReservationRepo) ListAvailability(ctx context.Context, braiderID models.BraiderID, date string) ([]models.AvailabilitySlot, error) {
	filter := bson.M{"braider_id": braiderID}
	if date != "" {
		filter["date"] = date
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}})

	cursor, err := repo.availabilityColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching availability: %w", err)
	}
	defer cursor.Close(ctx)

	slots := []models.AvailabilitySlot{}
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding availability: %w", err)
	}
	return slots, nil
}

func (repo *MongoReservationRepo) OpenSlots(ctx context.Context, slots []models.AvailabilitySlot) error {
	if len(slots) == 0 {
		return nil
	}
	docs := make([]interface{}, len(slots))
	for i, slot := range slots {
		slot.IsBooked = false
		docs[i] = slot
	}
	if _, err := repo.availabilityColl.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("error opening availability slots: %w", err)
	}
	return nil
}

func (repo *MongoReservationRepo) CreateService(ctx context.Context, svc *models.Service) error {
	if _, err := repo.serviceColl.InsertOne(ctx, svc); err != nil {
		return fmt.Errorf("error creating service: %w", err)
	}
	return nil
}

func (repo *MongoReservationRepo) ListServices(ctx context.Context, braiderID models.BraiderID) ([]models.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := repo.serviceColl.Find(ctx, bson.M{"braider_id": braiderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching services: %w", err)
	}
	defer cursor.Close(ctx)

	services := []models.Service{}
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("error decoding services: %w", err)
	}
	return services, nil
}

func (repo *MongoReservationRepo) Ping(ctx context.Context) error {
	return repo.client.Ping(ctx, nil)
}
