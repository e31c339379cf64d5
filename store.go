package pdfmailer

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// SubmissionStore persists accepted submissions. Write-only: the pipeline
// never reads a submission back.
type SubmissionStore interface {
	Save(ctx context.Context, sub *Submission) error
}

// Compile-time interface check.
var _ SubmissionStore = (*MongoStore)(nil)

// submissionsCollection is the collection accepted submissions land in.
const submissionsCollection = "submissions"

// MongoStore persists submissions to a MongoDB collection, one immutable
// document per accepted submission.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping
// before returning, so a bad connection string fails at startup rather than
// on the first submission.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreConnect, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", ErrStoreConnect, err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(submissionsCollection),
	}, nil
}

// Save inserts the submission as a new document.
func (s *MongoStore) Save(ctx context.Context, sub *Submission) error {
	if _, err := s.coll.InsertOne(ctx, sub); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
