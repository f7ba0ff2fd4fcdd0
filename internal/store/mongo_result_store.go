package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
)

// MongoResultStore implements ResultStore on a capped mongo collection.
// The collection is bounded; the archive service migrates acted records to
// postgres before they age out.
type MongoResultStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoResultStore connects to mongo and ensures the capped collection
// and its indexes exist.
func NewMongoResultStore(uri, dbName, collectionName string, cappedSize int64, logger *zap.Logger) (ResultStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(dbName)

	names, err := db.ListCollectionNames(ctx, bson.M{"name": collectionName})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	if len(names) == 0 {
		opts := options.CreateCollection().SetCapped(true).SetSizeInBytes(cappedSize)
		if err := db.CreateCollection(ctx, collectionName, opts); err != nil {
			return nil, fmt.Errorf("failed to create collection: %w", err)
		}
	}

	coll := db.Collection(collectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "item_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ready", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "acted", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "text_hash", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "partition", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return &MongoResultStore{
		client:     client,
		collection: coll,
		logger:     logger,
	}, nil
}

// InsertReady inserts a ready record unless one already exists for the item
// id. A duplicate-key race is reported as "already present", not an error.
func (s *MongoResultStore) InsertReady(ctx context.Context, rec *model.CandidateRecord) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"item_id": rec.ItemID})
	if err != nil {
		return false, fmt.Errorf("failed to check record existence: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	rec.Ready = true
	if _, err := s.collection.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert record: %w", err)
	}

	return true, nil
}

// MarkActed flips the record to acted, creating one if it was evicted from
// the capped collection in the meantime.
func (s *MongoResultStore) MarkActed(ctx context.Context, itemID, actor, textHash string) error {
	update := bson.M{"$set": bson.M{
		"acted":     true,
		"actor":     actor,
		"text_hash": textHash,
		"acted_at":  time.Now().UTC(),
	}, "$setOnInsert": bson.M{
		"item_id": itemID,
	}}

	opts := options.Update().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, bson.M{"item_id": itemID}, update, opts); err != nil {
		return fmt.Errorf("failed to mark acted: %w", err)
	}

	return nil
}

// CanAct reports whether the actor has neither acted on this item id nor
// reused this text hash.
func (s *MongoResultStore) CanAct(ctx context.Context, actor, itemID, textHash string) (bool, error) {
	q := bson.M{
		"actor": actor,
		"acted": true,
		"$or": bson.A{
			bson.M{"item_id": itemID},
			bson.M{"text_hash": textHash},
		},
	}

	err := s.collection.FindOne(ctx, q).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query acted records: %w", err)
	}

	return false, nil
}

// Record returns the record for an item id, or ErrNotFound.
func (s *MongoResultStore) Record(ctx context.Context, itemID string) (*model.CandidateRecord, error) {
	var rec model.CandidateRecord
	err := s.collection.FindOne(ctx, bson.M{"item_id": itemID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &rec, nil
}

// UnactedRecords lists ready, not-yet-acted records, optionally filtered by
// partition.
func (s *MongoResultStore) UnactedRecords(ctx context.Context, partition string) ([]*model.CandidateRecord, error) {
	q := bson.M{"ready": true, "acted": bson.M{"$ne": true}}
	if partition != "" {
		q["partition"] = partition
	}

	return s.findRecords(ctx, q)
}

// ActedRecords lists acted records with acted_at >= since.
func (s *MongoResultStore) ActedRecords(ctx context.Context, since time.Time) ([]*model.CandidateRecord, error) {
	q := bson.M{"acted": true, "acted_at": bson.M{"$gte": since}}
	return s.findRecords(ctx, q)
}

func (s *MongoResultStore) findRecords(ctx context.Context, q bson.M) ([]*model.CandidateRecord, error) {
	cursor, err := s.collection.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer cursor.Close(ctx)

	recs := make([]*model.CandidateRecord, 0)
	for cursor.Next(ctx) {
		var rec model.CandidateRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		recs = append(recs, &rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return recs, nil
}

// Ping checks the mongo connection
func (s *MongoResultStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the mongo client
func (s *MongoResultStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
