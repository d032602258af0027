// internal/interface/repository/mongo_flight_store.go
package repository

import (
	"context"

	"flightdeck-service/internal/domain/entity"
	"flightdeck-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pageOrder is the fixed total order pages are served in
var pageOrder = bson.D{
	{Key: "departureDate", Value: 1},
	{Key: "origin", Value: 1},
	{Key: "_id", Value: 1},
}

// MongoFlightStore implements the FlightStore interface
type MongoFlightStore struct {
	collection *mongo.Collection
}

// NewMongoFlightStore creates a new MongoDB flight store
func NewMongoFlightStore(db *mongo.Database) repository.FlightStore {
	collection := db.Collection("flights")

	// Compound index backing the page order, plus airline for ad-hoc queries
	ctx := context.Background()
	pageOrderIndex := mongo.IndexModel{
		Keys: pageOrder,
	}
	airlineIndex := mongo.IndexModel{
		Keys: bson.M{"airline": 1},
	}
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		pageOrderIndex,
		airlineIndex,
	})

	return &MongoFlightStore{
		collection: collection,
	}
}

// PageIDs returns one page of identifiers in the store's page order
func (s *MongoFlightStore) PageIDs(ctx context.Context, offset, limit int) ([]int64, error) {
	opts := options.Find().
		SetSort(pageOrder).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 1})

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID int64 `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

// Count returns the total number of records in the store
func (s *MongoFlightStore) Count(ctx context.Context) (int64, error) {
	return s.collection.CountDocuments(ctx, bson.M{})
}

// FindByIDs fetches the given records in no particular order
func (s *MongoFlightStore) FindByIDs(ctx context.Context, ids []int64) ([]entity.Flight, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}}
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var flights []entity.Flight
	if err := cursor.All(ctx, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}
