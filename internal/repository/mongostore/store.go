// Package mongostore implements the user and complaint stores on MongoDB
// with mongo-go-driver v2. Documents keep the field names of the existing
// `users` and `complaints` collections; indexes are managed in ensureIndexes.
package mongostore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
)

// Collection names.
const (
	ColUsers      = "users"
	ColComplaints = "complaints"
)

// Store is a UserStore and ComplaintStore backed by one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var (
	_ repository.UserStore      = (*Store)(nil)
	_ repository.ComplaintStore = (*Store)(nil)
)

// NewStore connects to uri, verifies the connection and ensures indexes.
//
// uri: connection URI, e.g. "mongodb://localhost:27017"
// dbName: database name, e.g. "complaint_system"
func NewStore(uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName)}
	if err := s.ensureIndexes(ctx); err != nil {
		// legacy data may already violate the complaint key; keep serving
		slog.Warn("mongostore: ensure indexes failed", "err", err)
	}
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		// users
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},

		// complaints
		{ColComplaints, bson.D{
			{Key: "busNumber", Value: 1},
			{Key: "routeNumber", Value: 1},
			{Key: "complaintType", Value: 1},
			{Key: "date", Value: 1},
		}, true},
		{ColComplaints, bson.D{{Key: "created_at", Value: -1}}, false},
		{ColComplaints, bson.D{{Key: "user_email", Value: 1}}, false},
		{ColComplaints, bson.D{{Key: "status", Value: 1}}, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}
	return nil
}
