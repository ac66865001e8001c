package scenario

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fleetlab/dispatch-live/internal/models"
)

// ConnectMongo connects to MongoDB at the given URI and verifies the
// connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoStore persists scenario documents in a MongoDB collection.
type MongoStore struct {
	Collection *mongo.Collection
}

// NewMongoStore wraps the scenarios collection of the given database.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{Collection: client.Database(database).Collection("scenarios")}
}

// Insert adds a new scenario document.
func (s *MongoStore) Insert(ctx context.Context, scenario models.Scenario) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := s.Collection.InsertOne(ctx, scenario)
	return err
}

// Get returns the scenario with the given id or ErrNotFound.
func (s *MongoStore) Get(ctx context.Context, id string) (*models.Scenario, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var scenario models.Scenario
	err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&scenario)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &scenario, nil
}

// Update replaces the scenario document with the given id.
func (s *MongoStore) Update(ctx context.Context, scenario models.Scenario) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	result, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": scenario.ID}, scenario)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
