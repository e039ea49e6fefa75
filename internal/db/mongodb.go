package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoDatabase is used when the connection URI names no database.
const DefaultMongoDatabase = "influencer_tracker"

// ConnectMongo connects to uri and pings the server so that a bad address
// fails at startup instead of on the first write.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}

	opts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return client.Database(database), nil
}
