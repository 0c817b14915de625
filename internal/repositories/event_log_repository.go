package repositories

import (
	"context"
	"time"

	"github.com/openwaterlog/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventLogRepository defines the interface for the delivery-decision audit
// trail. Entries are append-only; the log records both delivered and
// suppressed events.
type EventLogRepository interface {
	RecordDecision(ctx context.Context, entry *models.EventLogEntry) error
	GetRecent(ctx context.Context, limit int64) ([]models.EventLogEntry, error)
}

// MongoEventLogRepository implements EventLogRepository for MongoDB
type MongoEventLogRepository struct {
	collection *mongo.Collection
}

// NewMongoEventLogRepository creates a new MongoEventLogRepository
func NewMongoEventLogRepository(db *mongo.Database) *MongoEventLogRepository {
	return &MongoEventLogRepository{collection: db.Collection("event_log")}
}

// RecordDecision appends one authorization decision to the log
func (r *MongoEventLogRepository) RecordDecision(ctx context.Context, entry *models.EventLogEntry) error {
	entry.ID = primitive.NewObjectID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// GetRecent returns the newest log entries, newest first
func (r *MongoEventLogRepository) GetRecent(ctx context.Context, limit int64) ([]models.EventLogEntry, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.EventLogEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
