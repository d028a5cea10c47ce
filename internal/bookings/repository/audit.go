package repository

import (
	"context"
	"fmt"
	"time"

	"maitre/pkg/config"
	"maitre/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	AuditCollection = "Booking_audit"
)

// AuditRepository is append-only. Entries are written inside the same
// transaction as the booking mutation they record.
type AuditRepository interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
}

type mongoAuditRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAuditRepository(cfg *config.Config) AuditRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAuditRepository{
		cfg:        cfg,
		collection: db.Collection(AuditCollection),
	}
}

func (r *mongoAuditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	entry.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}
