// File: internal/platform/database/mongo.go
package database

import (
	"context"
	"fmt"
	"log" // Standard log for critical connection errors
	"time"

	"life_lesson_backend/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names used across the application. Repositories receive the
// *mongo.Database and resolve their own collection by these constants.
const (
	UsersCollection   = "users"
	LessonsCollection = "lessons"
	ReportsCollection = "reports"
)

// NewMongo connects a single process-wide Mongo client and returns the
// application database handle. The client is established once at startup
// and shared by all request tasks.
func NewMongo(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	clientOpts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify the connection before the server starts accepting traffic.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)

	if err := ensureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to ensure MongoDB indexes: %w", err)
	}

	log.Println("Successfully connected to MongoDB.") // Use standard log for this one-time message
	return db, nil
}

// ensureIndexes creates the indexes the repositories rely on. Email is the
// natural unique key for users; lessons are listed newest-first and matched
// on author/category/tone.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	_, err = db.Collection(LessonsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "tone", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("lessons indexes: %w", err)
	}

	_, err = db.Collection(ReportsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "lessonId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("reports lessonId index: %w", err)
	}
	return nil
}

// CloseMongo disconnects the underlying client. Useful for the cleanup
// function in main.
func CloseMongo(db *mongo.Database) {
	if db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Println("Closing MongoDB connection...")
	if err := db.Client().Disconnect(ctx); err != nil {
		log.Printf("Error closing MongoDB connection: %v\n", err)
	} else {
		log.Println("MongoDB connection closed.")
	}
}
