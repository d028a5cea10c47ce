package service

import (
	"context"
	"errors"
	"sync"

	restauranterrors "maitre/internal/restaurants/errors"
	"maitre/internal/restaurants/repository"
	"maitre/internal/restaurants/validator"
	"maitre/pkg/config"
	apperrors "maitre/pkg/errors"
	"maitre/pkg/model"
	"maitre/pkg/sanitizer"
)

type RestaurantService interface {
	Create(ctx context.Context, restaurant *model.Restaurant) error
	GetByID(ctx context.Context, id string) (*model.Restaurant, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Restaurant, int64, error)
	CreateSitting(ctx context.Context, sitting *model.Sitting) error
	GetSittings(ctx context.Context, restaurantID string) ([]*model.Sitting, error)
}

type restaurantService struct {
	repo        repository.RestaurantRepository
	sittingRepo repository.SittingRepository
	validator   *validator.RestaurantValidator
	cfg         *config.Config
}

func NewRestaurantService(
	repo repository.RestaurantRepository,
	sittingRepo repository.SittingRepository,
	validator *validator.RestaurantValidator,
	cfg *config.Config,
) RestaurantService {
	return &restaurantService{
		repo:        repo,
		sittingRepo: sittingRepo,
		validator:   validator,
		cfg:         cfg,
	}
}

func (s *restaurantService) Create(ctx context.Context, restaurant *model.Restaurant) error {
	restaurant.Name = sanitizer.TrimAndNormalize(restaurant.Name)
	s.applyDefaults(restaurant)

	if err := s.validator.Validate(restaurant); err != nil {
		s.cfg.Log.Warn("Restaurant validation failed", "name", restaurant.Name, "error", err)
		return apperrors.Validation("Restaurant validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, restaurant); err != nil {
		s.cfg.Log.Error("Failed to create restaurant", "name", restaurant.Name, "error", err)
		return apperrors.Internal("Failed to create restaurant", err)
	}

	s.cfg.Log.Info("Restaurant created successfully",
		"id", restaurant.ID,
		"name", restaurant.Name,
		"max_capacity", restaurant.MaxCapacity,
	)
	return nil
}

func (s *restaurantService) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Restaurant ID cannot be empty")
	}

	restaurant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, restauranterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Restaurant", id)
		}
		if errors.Is(err, restauranterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid restaurant ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve restaurant", err)
	}

	return restaurant, nil
}

func (s *restaurantService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Restaurant, int64, error) {
	var count int64
	var restaurants []*model.Restaurant
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count restaurants", "error", err)
			errCount = apperrors.Internal("Failed to count restaurants", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		restaurants, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list restaurants", "error", err)
			errFind = apperrors.Internal("Failed to retrieve restaurants", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return restaurants, count, nil
}

func (s *restaurantService) CreateSitting(ctx context.Context, sitting *model.Sitting) error {
	sitting.Name = sanitizer.TrimAndNormalize(sitting.Name)

	if _, err := s.GetByID(ctx, sitting.RestaurantID); err != nil {
		return err
	}

	if err := s.validator.ValidateSitting(sitting); err != nil {
		s.cfg.Log.Warn("Sitting validation failed",
			"restaurant_id", sitting.RestaurantID,
			"error", err,
		)
		return apperrors.Validation("Sitting validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.sittingRepo.Create(ctx, sitting); err != nil {
		s.cfg.Log.Error("Failed to create sitting", "restaurant_id", sitting.RestaurantID, "error", err)
		return apperrors.Internal("Failed to create sitting", err)
	}

	s.cfg.Log.Info("Sitting created successfully",
		"id", sitting.ID,
		"restaurant_id", sitting.RestaurantID,
		"start_time", sitting.StartTime,
	)
	return nil
}

func (s *restaurantService) GetSittings(ctx context.Context, restaurantID string) ([]*model.Sitting, error) {
	if _, err := s.GetByID(ctx, restaurantID); err != nil {
		return nil, err
	}

	sittings, err := s.sittingRepo.FindByRestaurant(ctx, restaurantID)
	if err != nil {
		s.cfg.Log.Error("Failed to list sittings", "restaurant_id", restaurantID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve sittings", err)
	}

	return sittings, nil
}

// applyDefaults fills in slot geometry for restaurants created without it.
func (s *restaurantService) applyDefaults(restaurant *model.Restaurant) {
	if restaurant.SlotIntervalMin <= 0 {
		restaurant.SlotIntervalMin = s.cfg.DefaultSlotIntervalMin
	}
	if restaurant.DefaultSessionLenMin <= 0 {
		restaurant.DefaultSessionLenMin = s.cfg.DefaultSessionLenMin
	}
	if restaurant.Timezone == "" {
		restaurant.Timezone = "UTC"
	}
}
