package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on MongoDB. Document ids are stored as string _id values.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// NewMongoStore creates a MongoStore over the named database
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		db:     client.Database(database),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *MongoStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	filter := bson.M{}
	for _, f := range q.Filters {
		filter[f.Field] = f.Value
	}
	findOptions := options.Find()
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err = cursor.All(ctx, &raw); err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, fromBSON(m))
	}
	return docs, nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var m bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return Document{}, err
	}
	return fromBSON(m), nil
}

func (s *MongoStore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	id := primitive.NewObjectID().Hex()
	if _, err := s.db.Collection(collection).InsertOne(ctx, s.toBSON(id, fields)); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, s.toBSON(id, fields),
		options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Toggle relies on the unique _id index: a duplicate key on insert means the document
// already exists and is removed instead.
func (s *MongoStore) Toggle(ctx context.Context, collection, id string, fields Fields) (bool, error) {
	coll := s.db.Collection(collection)
	_, err := coll.InsertOne(ctx, s.toBSON(id, fields))
	if err == nil {
		return true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return false, err
	}
	if _, err := coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return false, err
	}
	return false, nil
}

// Close disconnects the client
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) toBSON(id string, fields Fields) bson.M {
	m := bson.M{"_id": id}
	for k, v := range resolve(fields, s.now()) {
		m[k] = v
	}
	return m
}

func fromBSON(m bson.M) Document {
	id, _ := m["_id"].(string)
	fields := make(Fields, len(m))
	for k, v := range m {
		if k == "_id" {
			continue
		}
		if dt, ok := v.(primitive.DateTime); ok {
			fields[k] = dt.Time().UTC()
			continue
		}
		fields[k] = v
	}
	return Document{ID: id, Fields: fields}
}
