// Package repository owns the records collection in MongoDB. It is the only
// package that talks to the document database; attachment bytes live in the
// storage package's backends.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/msurti/recordkeeper/internal/model"
)

// ErrNotFound is returned when an operation targets a record id that does
// not exist. Syntactically invalid ids map to it too: from the caller's
// point of view there is no such record.
var ErrNotFound = errors.New("record not found")

const collectionName = "records"

// Connect opens a Mongo client for the given connection URL and verifies the
// server is reachable before returning.
func Connect(ctx context.Context, url string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// RecordRepository wraps all queries against the records collection.
type RecordRepository struct {
	coll *mongo.Collection
}

// NewRecordRepository constructs a repository over the named database.
func NewRecordRepository(client *mongo.Client, database string) *RecordRepository {
	return &RecordRepository{coll: client.Database(database).Collection(collectionName)}
}

// List returns all records, most recent first. The ordering is part of the
// API contract, not an implementation detail.
func (r *RecordRepository) List(ctx context.Context) ([]model.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer cur.Close(ctx)
	records := []model.Record{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// Create assigns the id and creation time, then inserts the record.
func (r *RecordRepository) Create(ctx context.Context, rec *model.Record) error {
	rec.ID = primitive.NewObjectID()
	rec.CreatedAt = time.Now().UTC()
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Get returns a record by id.
func (r *RecordRepository) Get(ctx context.Context, id string) (*model.Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var rec model.Record
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &rec, nil
}

// Update applies the non-nil fields of the patch and returns the
// post-update document. An empty patch is answered with the current record
// without touching the database.
func (r *RecordRepository) Update(ctx context.Context, id string, patch model.RecordPatch) (*model.Record, error) {
	if patch.Empty() {
		return r.Get(ctx, id)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.FileURL != nil {
		set["fileUrl"] = *patch.FileURL
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rec model.Record
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update record: %w", err)
	}
	return &rec, nil
}

// Delete removes a record by id.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
