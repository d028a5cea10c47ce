package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "maitre/internal/bookings/errors"
	"maitre/pkg/config"
	"maitre/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SlotLocksCollection = "Slot_locks"
)

// SlotLockRepository provides the advisory-lock primitives backing the
// booking-creation exclusion scope. Lock identity lives in the document
// _id, so the collection's unique index is the mutual exclusion.
type SlotLockRepository interface {
	Acquire(ctx context.Context, lockID string, ttl time.Duration) error
	Release(ctx context.Context, lockID string) error
	ReleaseExpired(ctx context.Context) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLocksCollection),
	}
}

// Acquire inserts the lock document. A duplicate-key error maps to
// ErrLockHeld so callers can retry while another creator holds the bucket.
func (r *mongoSlotLockRepository) Acquire(ctx context.Context, lockID string, ttl time.Duration) error {
	now := time.Now().UTC()
	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire slot lock %s: %w", lockID, err)
	}

	return nil
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	if err != nil {
		return fmt.Errorf("failed to release slot lock %s: %w", lockID, err)
	}
	return nil
}

// ReleaseExpired sweeps locks abandoned by crashed holders. The TTL index
// on expires_at does the same eventually; this keeps retry loops from
// waiting out the Mongo TTL monitor's sweep interval.
func (r *mongoSlotLockRepository) ReleaseExpired(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to release expired slot locks: %w", err)
	}
	return nil
}
