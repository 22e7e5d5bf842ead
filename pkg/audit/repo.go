package audit

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "login_events"

type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		collection: db.Collection(collectionName),
	}
}

// EnsureIndexes creates the index backing Recent.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create login_events index: %w", err)
	}
	return nil
}

func (r *MongoRepo) Record(ctx context.Context, e *LoginEvent) error {
	if e == nil {
		return errors.New("nil login event")
	}

	result, err := r.collection.InsertOne(ctx, e)
	if err != nil {
		return fmt.Errorf("failed to record login event: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		e.MongoID = oid
		e.ID = oid.Hex()
	}
	return nil
}

// Recent returns the newest events first. limit is clamped with ClampLimit.
func (r *MongoRepo) Recent(ctx context.Context, limit int) ([]*LoginEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(int64(ClampLimit(limit)))

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch login events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]*LoginEvent, 0)
	for cursor.Next(ctx) {
		var e LoginEvent
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode login event: %w", err)
		}
		e.ID = e.MongoID.Hex()
		events = append(events, &e)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate login events: %w", err)
	}
	return events, nil
}
