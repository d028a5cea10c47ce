package repository

import (
	"context"
	"fmt"
	"time"

	"maitre/pkg/config"
	"maitre/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SittingsCollection = "Sittings"
)

type SittingRepository interface {
	Create(ctx context.Context, sitting *model.Sitting) error
	FindByRestaurant(ctx context.Context, restaurantID string) ([]*model.Sitting, error)
	FindEnabledByRestaurant(ctx context.Context, restaurantID string) ([]*model.Sitting, error)
}

type mongoSittingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSittingRepository(cfg *config.Config) SittingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSittingRepository{
		cfg:        cfg,
		collection: db.Collection(SittingsCollection),
	}
}

func (r *mongoSittingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	if remaining := time.Until(deadline); remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSittingRepository) Create(ctx context.Context, sitting *model.Sitting) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	sitting.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, sitting)
	if err != nil {
		return fmt.Errorf("failed to create sitting: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		sitting.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSittingRepository) FindByRestaurant(ctx context.Context, restaurantID string) ([]*model.Sitting, error) {
	return r.find(ctx, bson.M{"restaurant_id": restaurantID})
}

func (r *mongoSittingRepository) FindEnabledByRestaurant(ctx context.Context, restaurantID string) ([]*model.Sitting, error) {
	return r.find(ctx, bson.M{"restaurant_id": restaurantID, "enabled": true})
}

func (r *mongoSittingRepository) find(ctx context.Context, filter bson.M) ([]*model.Sitting, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sittings: %w", err)
	}
	defer cursor.Close(ctx)

	var sittings []*model.Sitting
	if err = cursor.All(ctx, &sittings); err != nil {
		return nil, fmt.Errorf("failed to decode sittings: %w", err)
	}

	return sittings, nil
}
