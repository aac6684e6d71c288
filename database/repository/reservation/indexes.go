// FILE: database/repository/reservation/indexes.go
package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureSchema creates the indexes the reservation transaction relies on.
func (repo *MongoReservationRepo) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	bookingIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// One active booking per braider/date/time.
		{
			Keys: bson.D{{Key: "braider_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_active_tuple").
				SetPartialFilterExpression(bson.M{"holds_slot": true}),
		},
		// Idempotency keys are scoped to the client that sent them.
		{
			Keys:    bson.D{{Key: "client_email", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_client_idempotency_key").
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
	}
	if _, err := repo.bookingColl.Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	availabilityIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "braider_id", Value: 1}, {Key: "date", Value: 1}, {Key: "start_time", Value: 1}},
			Options: options.Index().SetName("braider_date_start_idx"),
		},
	}
	if _, err := repo.availabilityColl.Indexes().CreateMany(ctx, availabilityIndexes); err != nil {
		return fmt.Errorf("failed to create availability indexes: %w", err)
	}

	serviceIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "braider_id", Value: 1}},
			Options: options.Index().SetName("braider_idx"),
		},
	}
	if _, err := repo.serviceColl.Indexes().CreateMany(ctx, serviceIndexes); err != nil {
		return fmt.Errorf("failed to create service indexes: %w", err)
	}
	return nil
}
