package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bookingrepo "maitre/internal/bookings/repository"
	restaurantrepo "maitre/internal/restaurants/repository"
	"maitre/pkg/config"
	apperrors "maitre/pkg/errors"
	"maitre/pkg/model"

	"github.com/redis/go-redis/v9"
)

type Service interface {
	Slots(ctx context.Context, restaurantID string, date time.Time, partySize int) ([]model.Slot, error)
	Invalidate(ctx context.Context, restaurantID string)
}

type service struct {
	restaurantRepo restaurantrepo.RestaurantRepository
	sittingRepo    restaurantrepo.SittingRepository
	bookingRepo    bookingrepo.BookingRepository
	redis          *redis.Client
	cfg            *config.Config
}

func NewService(
	restaurantRepo restaurantrepo.RestaurantRepository,
	sittingRepo restaurantrepo.SittingRepository,
	bookingRepo bookingrepo.BookingRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) Service {
	return &service{
		restaurantRepo: restaurantRepo,
		sittingRepo:    sittingRepo,
		bookingRepo:    bookingRepo,
		redis:          redisClient,
		cfg:            cfg,
	}
}

// Slots returns the bookable windows for a restaurant on one calendar day,
// each annotated with remaining seats and whether the requested party fits.
// Slot-level seat counts (independent of party size) are cached per
// restaurant and date; availability for the caller's party size is derived
// from the cached counts.
func (s *service) Slots(ctx context.Context, restaurantID string, date time.Time, partySize int) ([]model.Slot, error) {
	if restaurantID == "" {
		return nil, apperrors.InvalidInput("Restaurant ID cannot be empty")
	}
	if partySize <= 0 {
		return nil, apperrors.InvalidInput("Party size must be a positive integer")
	}

	if cached, ok := s.cacheGet(ctx, restaurantID, date); ok {
		return annotate(cached, partySize), nil
	}

	restaurant, err := s.restaurantRepo.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.NotFoundWithID("Restaurant", restaurantID)
	}

	sittings, err := s.sittingRepo.FindEnabledByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load sittings", err)
	}

	slots := GenerateSlots(restaurant, sittings, date)
	if len(slots) == 0 {
		s.cacheSet(ctx, restaurantID, date, slots)
		return []model.Slot{}, nil
	}

	// One range query for the whole day, folded per slot in memory.
	dayStart, dayEnd := dayBounds(slots)
	bookings, err := s.bookingRepo.FindActiveOverlapping(ctx, restaurantID, dayStart, dayEnd)
	if err != nil {
		return nil, apperrors.Internal("Failed to load bookings", err)
	}

	for i := range slots {
		occupied := OccupiedCovers(bookings, slots[i].Start, slots[i].End)
		slots[i].FreeSeats = max(0, restaurant.MaxCapacity-occupied)
	}

	s.cacheSet(ctx, restaurantID, date, slots)
	return annotate(slots, partySize), nil
}

// Invalidate bumps the restaurant's cache generation so every cached day
// for it is orphaned. Orphaned entries age out via TTL; no key scan needed.
func (s *service) Invalidate(ctx context.Context, restaurantID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Incr(ctx, genKey(restaurantID)).Err(); err != nil {
		s.cfg.Log.Warn("Failed to invalidate availability cache", "restaurant_id", restaurantID, "error", err)
	}
}

func (s *service) cacheGet(ctx context.Context, restaurantID string, date time.Time) ([]model.Slot, bool) {
	if s.redis == nil || s.cfg.AvailabilityCacheTTL <= 0 {
		return nil, false
	}

	raw, err := s.redis.Get(ctx, s.slotsKey(ctx, restaurantID, date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.cfg.Log.Warn("Availability cache read failed", "restaurant_id", restaurantID, "error", err)
		}
		return nil, false
	}

	var slots []model.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (s *service) cacheSet(ctx context.Context, restaurantID string, date time.Time, slots []model.Slot) {
	if s.redis == nil || s.cfg.AvailabilityCacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.slotsKey(ctx, restaurantID, date), raw, s.cfg.AvailabilityCacheTTL).Err(); err != nil {
		s.cfg.Log.Warn("Availability cache write failed", "restaurant_id", restaurantID, "error", err)
	}
}

func (s *service) slotsKey(ctx context.Context, restaurantID string, date time.Time) string {
	gen, err := s.redis.Get(ctx, genKey(restaurantID)).Int64()
	if err != nil && err != redis.Nil {
		gen = 0
	}
	return fmt.Sprintf("availability:%s:%d:%s", restaurantID, gen, date.Format("2006-01-02"))
}

func genKey(restaurantID string) string {
	return "availability:gen:" + restaurantID
}

func annotate(slots []model.Slot, partySize int) []model.Slot {
	out := make([]model.Slot, len(slots))
	for i, slot := range slots {
		slot.Available = slot.FreeSeats >= partySize
		out[i] = slot
	}
	return out
}

func dayBounds(slots []model.Slot) (time.Time, time.Time) {
	start, end := slots[0].Start, slots[0].End
	for _, slot := range slots[1:] {
		if slot.Start.Before(start) {
			start = slot.Start
		}
		if slot.End.After(end) {
			end = slot.End
		}
	}
	return start, end
}
