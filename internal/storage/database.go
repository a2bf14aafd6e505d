package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps the destination set in a MongoDB collection, one
// document per destination keyed by _id.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoStore creates a MongoDB-backed store.
func NewMongoStore(uri, database, collection string, logger *slog.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_store"),
	}, nil
}

func (s *MongoStore) Name() string { return "mongodb" }

type destinationDoc struct {
	ID string `bson:"_id"`
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cursor, err := s.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	defer cursor.Close(ctx)

	var list []string
	for cursor.Next(ctx) {
		var doc destinationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongodb decode: %w", err)
		}
		list = append(list, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongodb cursor: %w", err)
	}
	return list, nil
}

func (s *MongoStore) Add(ctx context.Context, destination string) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: destination}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{{Key: "subscribed_at", Value: time.Now()}}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongodb upsert: %w", err)
	}
	s.logger.Info("destination subscribed", "destination", destination)
	return nil
}

func (s *MongoStore) Remove(ctx context.Context, destination string) error {
	_, err := s.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: destination}})
	if err != nil {
		return fmt.Errorf("mongodb delete: %w", err)
	}
	s.logger.Info("destination unsubscribed", "destination", destination)
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
