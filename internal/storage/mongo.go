package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "slots"

type mongoSlot struct {
	Name      string    `bson:"name"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Mongo stores each slot as one document of the "slots" collection.
type Mongo struct {
	coll *mongo.Collection
}

func NewMongo(database *mongo.Database) *Mongo {
	return &Mongo{coll: database.Collection(mongoCollection)}
}

func (m *Mongo) Get(ctx context.Context, key string) ([]byte, error) {
	var doc mongoSlot
	err := m.coll.FindOne(ctx, bson.M{"name": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Value, nil
}

func (m *Mongo) Set(ctx context.Context, key string, value []byte) error {
	filter := bson.M{"name": key}
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}}

	_, err := m.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (m *Mongo) Remove(ctx context.Context, key string) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"name": key})
	return err
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.coll.Database().Client().Disconnect(ctx)
}
