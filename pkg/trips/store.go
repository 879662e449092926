package trips

import (
	"context"

	"github.com/tripdeck/tripdeck/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists trips in the trips collection, keyed by offer uuid.
type Store struct{}

// Upsert writes the trip with merge semantics - a second write for the same
// offer uuid overwrites matching fields and leaves the rest in place.
func (Store) Upsert(ctx context.Context, trip *Trip) error {
	tripsCollection := database.GetCollection("trips")

	bsonRep, err := bson.Marshal(bson.M{"$set": trip})
	if err != nil {
		return err
	}

	opts := options.Update().SetUpsert(true)
	_, err = tripsCollection.UpdateOne(ctx, bson.M{"offer_uuid": trip.OfferUUID}, bsonRep, opts)

	return err
}

// Recent returns the most recently created trips, newest first.
func (Store) Recent(ctx context.Context, limit int64) ([]Trip, error) {
	tripsCollection := database.GetCollection("trips")

	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}}).SetLimit(limit)
	cursor, err := tripsCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recentTrips []Trip
	for cursor.Next(ctx) {
		var trip Trip
		if err := cursor.Decode(&trip); err != nil {
			return nil, err
		}

		recentTrips = append(recentTrips, trip)
	}

	return recentTrips, cursor.Err()
}
