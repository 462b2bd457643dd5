package store

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoCollection is the collection documents are kept in.
const DefaultMongoCollection = "documents"

// mongoDocument is how a document is stored in MongoDB, keyed by its key.
type mongoDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Mongo stores documents in a MongoDB collection.
type Mongo struct {
	collection *mongo.Collection
}

// NewMongo returns a store backed by the named collection.
func NewMongo(db *mongo.Database, collection string) *Mongo {
	if collection == "" {
		collection = DefaultMongoCollection
	}

	return &Mongo{collection: db.Collection(collection)}
}

// Collection returns the underlying collection, used to watch for changes.
func (m *Mongo) Collection() *mongo.Collection {
	return m.collection
}

func (m *Mongo) Exists(ctx context.Context, key string) (bool, error) {
	count, err := m.collection.CountDocuments(ctx, bson.D{
		primitive.E{Key: "_id", Value: key},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "could not count documents")
	}

	return count > 0, nil
}

func (m *Mongo) Read(ctx context.Context, key string) ([]byte, error) {
	var doc mongoDocument
	if err := m.collection.FindOne(ctx, bson.D{
		primitive.E{Key: "_id", Value: key},
	}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrap(err, "could not find document")
	}

	return doc.Data, nil
}

func (m *Mongo) Write(ctx context.Context, key string, data []byte) error {
	// Replacing the whole document keeps the write atomic.
	if _, err := m.collection.ReplaceOne(ctx, bson.D{
		primitive.E{Key: "_id", Value: key},
	}, mongoDocument{
		Key:       key,
		Data:      data,
		UpdatedAt: time.Now(),
	}, options.Replace().SetUpsert(true)); err != nil {
		return errors.Wrap(err, "could not replace document")
	}

	return nil
}

func (m *Mongo) List(ctx context.Context, prefix string) ([]string, error) {
	// Configure the projection to only get the key.
	projection := bson.D{
		primitive.E{Key: "_id", Value: 1},
	}

	cursor, err := m.collection.Find(ctx, bson.D{
		primitive.E{Key: "_id", Value: primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}},
	}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, errors.Wrap(err, "could not create the cursor")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		cursor.Close(ctx)
	}()

	keys := make([]string, 0)
	for cursor.Next(ctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "could not decode result")
		}

		keys = append(keys, doc.Key)
	}

	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "could not iterate on cursor")
	}

	sort.Strings(keys)

	return keys, nil
}
