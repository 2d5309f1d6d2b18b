package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portal_dashboard/backend/internal/dashboard"
)

// bundleDocument is one persisted slot.
type bundleDocument struct {
	ID      string             `bson:"_id"`
	UserID  string             `bson:"user_id"`
	Role    string             `bson:"role"`
	Payload []byte             `bson:"payload"`
	SavedAt primitive.DateTime `bson:"saved_at"`
}

// MongoStore keeps bundles in a MongoDB collection keyed by slot.
type MongoStore struct {
	col     *mongo.Collection
	timeout time.Duration
}

// NewMongoStore returns a store over db.collection.
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{col: db.Collection(collection), timeout: 5 * time.Second}
}

// EnsureIndexes creates the indexes used by Forget and Purge.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.col.Indexes().CreateMany(queryCtx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "saved_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create bundle indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, key dashboard.SlotKey) (dashboard.Bundle, bool, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc bundleDocument
	err := s.col.FindOne(queryCtx, bson.M{"_id": key.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return dashboard.Bundle{}, false, nil
	}
	if err != nil {
		return dashboard.Bundle{}, false, fmt.Errorf("load bundle %s: %w", key, err)
	}

	b, err := decodeBundle(doc.Payload)
	if err != nil {
		return dashboard.Bundle{}, false, err
	}
	return b, true, nil
}

func (s *MongoStore) Save(ctx context.Context, key dashboard.SlotKey, b dashboard.Bundle) error {
	payload, err := encodeBundle(b)
	if err != nil {
		return err
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"user_id":  key.UserID,
			"role":     string(key.Role),
			"payload":  payload,
			"saved_at": primitive.NewDateTimeFromTime(time.Now()),
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.col.UpdateOne(queryCtx, bson.M{"_id": key.String()}, update, opts); err != nil {
		return fmt.Errorf("save bundle %s: %w", key, err)
	}
	return nil
}

func (s *MongoStore) Forget(ctx context.Context, userID string) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.col.DeleteMany(queryCtx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("forget bundles of %s: %w", userID, err)
	}
	return nil
}

func (s *MongoStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.col.DeleteMany(queryCtx, bson.M{"saved_at": bson.M{"$lt": primitive.NewDateTimeFromTime(olderThan)}})
	if err != nil {
		return 0, fmt.Errorf("purge bundles: %w", err)
	}
	return res.DeletedCount, nil
}
