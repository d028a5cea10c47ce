package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "maitre/internal/bookings/errors"
	"maitre/internal/bookings/repository"
	"maitre/internal/bookings/validator"
	restaurantrepo "maitre/internal/restaurants/repository"
	"maitre/pkg/config"
	apperrors "maitre/pkg/errors"
	"maitre/pkg/model"
	"maitre/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking, actor string) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByRestaurant(ctx context.Context, restaurantID string, start, end *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	Occupancy(ctx context.Context, restaurantID string, start, end time.Time) (int, error)
	SetStatus(ctx context.Context, id string, status string, actor string) (*model.Booking, error)
	HardDelete(ctx context.Context, id string, actor string) error
}

// CacheInvalidator drops cached availability for a restaurant after a
// mutation. A nil invalidator is a no-op.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, restaurantID string)
}

type bookingService struct {
	repo           repository.BookingRepository
	lockRepo       repository.SlotLockRepository
	auditRepo      repository.AuditRepository
	restaurantRepo restaurantrepo.RestaurantRepository
	validator      *validator.BookingValidator
	publisher      EventPublisher
	invalidator    CacheInvalidator
	cfg            *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	auditRepo repository.AuditRepository,
	restaurantRepo restaurantrepo.RestaurantRepository,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	invalidator CacheInvalidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:           repo,
		lockRepo:       lockRepo,
		auditRepo:      auditRepo,
		restaurantRepo: restaurantRepo,
		validator:      validator,
		publisher:      publisher,
		invalidator:    invalidator,
		cfg:            cfg,
	}
}

// Create admits or rejects a booking against the restaurant's capacity.
// The check-then-insert sequence runs under advisory locks covering every
// time bucket the window touches, inside a transaction, so two concurrent
// creators for overlapping windows can never both pass the capacity check
// against the same committed state.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking, actor string) error {
	s.sanitize(booking)

	restaurant, err := s.loadRestaurant(ctx, booking.RestaurantID)
	if err != nil {
		return err
	}
	s.applyDefaults(booking, restaurant)

	if err := s.validate(booking); err != nil {
		return err
	}

	lockIDs := s.lockKeys(booking.RestaurantID, booking.StartTime, booking.EndTime)
	acquired, err := s.acquireSlotLocks(ctx, lockIDs)
	if err != nil {
		s.releaseSlotLocks(acquired)
		return err
	}
	defer s.releaseSlotLocks(acquired)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Re-read capacity and occupancy under the exclusion scope so the
		// decision is made against committed state only.
		current, err := s.restaurantRepo.FindByID(sessCtx, booking.RestaurantID)
		if err != nil {
			return apperrors.Internal("Failed to re-read restaurant", err)
		}

		occupied, err := s.repo.SumActiveCovers(sessCtx, booking.RestaurantID, booking.StartTime, booking.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to compute occupancy", err)
		}

		if occupied+booking.Covers > current.MaxCapacity {
			return apperrors.CapacityExceeded(
				fmt.Sprintf("Requested %d covers but only %d remain for this window", booking.Covers, max(0, current.MaxCapacity-occupied)),
				map[string]any{
					"max_capacity": current.MaxCapacity,
					"occupied":     occupied,
					"requested":    booking.Covers,
					"free":         max(0, current.MaxCapacity-occupied),
				},
			)
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}

		return s.appendAudit(sessCtx, booking.ID, model.AuditActionCreate, actor, map[string]any{
			"restaurant_id": booking.RestaurantID,
			"covers":        booking.Covers,
			"start_time":    booking.StartTime,
			"end_time":      booking.EndTime,
			"status":        booking.Status,
		})
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
			s.cfg.Log.Info("Booking rejected: capacity exceeded",
				"restaurant_id", booking.RestaurantID,
				"covers", booking.Covers,
				"start_time", booking.StartTime,
			)
		} else {
			s.cfg.Log.Error("Failed to create booking", "restaurant_id", booking.RestaurantID, "error", err)
		}
		return err
	}

	s.invalidateCache(ctx, booking.RestaurantID)
	s.publishEvent(ctx, EventBookingCreated, booking, actor)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"restaurant_id", booking.RestaurantID,
		"covers", booking.Covers,
		"start_time", booking.StartTime,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) ListByRestaurant(ctx context.Context, restaurantID string, start, end *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if restaurantID == "" {
		return nil, 0, apperrors.InvalidInput("Restaurant ID cannot be empty")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByRestaurant(ctx, restaurantID, start, end)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "restaurant_id", restaurantID, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByRestaurant(ctx, restaurantID, start, end, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings", "restaurant_id", restaurantID, "error", err)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Occupancy sums covers over active bookings overlapping [start, end).
func (s *bookingService) Occupancy(ctx context.Context, restaurantID string, start, end time.Time) (int, error) {
	if restaurantID == "" {
		return 0, apperrors.InvalidInput("Restaurant ID cannot be empty")
	}
	if !end.After(start) {
		return 0, apperrors.InvalidInput("Window end must be after window start")
	}

	occupied, err := s.repo.SumActiveCovers(ctx, restaurantID, start, end)
	if err != nil {
		return 0, apperrors.Internal("Failed to compute occupancy", err)
	}
	return occupied, nil
}

// SetStatus transitions a booking and records the transition in the audit
// log within one transaction. Setting the status a booking already has is
// a no-op returning the stored booking.
func (s *bookingService) SetStatus(ctx context.Context, id string, status string, actor string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateStatus(status); err != nil {
		return nil, apperrors.Validation("Invalid booking status", map[string]any{"error": err.Error()})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.Status == status {
		return existing, nil
	}

	var updated *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var err error
		updated, err = s.repo.UpdateStatus(sessCtx, id, status)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to update booking status", err)
		}

		return s.appendAudit(sessCtx, id, model.AuditActionStatusChange, actor, map[string]any{
			"old_status": existing.Status,
			"new_status": status,
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to change booking status", "id", id, "status", status, "error", err)
		return nil, err
	}

	s.invalidateCache(ctx, updated.RestaurantID)
	s.publishEvent(ctx, EventBookingStatusChanged, updated, actor)

	s.cfg.Log.Info("Booking status changed",
		"id", id,
		"old_status", existing.Status,
		"new_status", status,
	)
	return updated, nil
}

// HardDelete removes the booking row entirely, bypassing the soft
// cancel/no-show trail. The deletion itself is still audited.
func (s *bookingService) HardDelete(ctx context.Context, id string, actor string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to delete booking", err)
		}

		return s.appendAudit(sessCtx, id, model.AuditActionDelete, actor, map[string]any{
			"restaurant_id": existing.RestaurantID,
			"covers":        existing.Covers,
			"status":        existing.Status,
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete booking", "id", id, "error", err)
		return err
	}

	s.invalidateCache(ctx, existing.RestaurantID)
	s.publishEvent(ctx, EventBookingDeleted, existing, actor)

	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *bookingService) sanitize(b *model.Booking) {
	b.GuestName = sanitizer.NormalizeGuestName(b.GuestName)
	b.GuestEmail = sanitizer.NormalizeEmail(b.GuestEmail)
	b.GuestPhone = sanitizer.NormalizePhone(b.GuestPhone)
	b.Notes = sanitizer.NormalizeNotes(b.Notes)
}

func (s *bookingService) applyDefaults(b *model.Booking, restaurant *model.Restaurant) {
	if b.Status == "" {
		b.Status = model.StatusBooked
	}
	// A bare reserved-at start implies one default session of occupancy.
	if b.EndTime.IsZero() && !b.StartTime.IsZero() {
		sessionLen := restaurant.SessionLength()
		if sessionLen <= 0 {
			sessionLen = time.Duration(s.cfg.DefaultSessionLenMin) * time.Minute
		}
		b.EndTime = b.StartTime.Add(sessionLen)
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if booking.Covers <= 0 {
		return apperrors.Validation("Booking validation failed", map[string]any{
			"error": "Covers must be a positive integer",
		})
	}
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) loadRestaurant(ctx context.Context, restaurantID string) (*model.Restaurant, error) {
	if restaurantID == "" {
		return nil, apperrors.InvalidInput("Restaurant ID cannot be empty")
	}

	restaurant, err := s.restaurantRepo.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, apperrors.NotFoundWithID("Restaurant", restaurantID)
	}
	return restaurant, nil
}

// lockKeys returns one advisory-lock key per time bucket the window
// touches, in ascending order. Overlapping windows always share at least
// one bucket; acquiring in order prevents lock-ordering deadlocks.
func (s *bookingService) lockKeys(restaurantID string, start, end time.Time) []string {
	bucket := int64(s.cfg.LockBucketMin) * 60

	first := start.Unix() / bucket
	last := (end.Unix() - 1) / bucket

	keys := make([]string, 0, last-first+1)
	for b := first; b <= last; b++ {
		keys = append(keys, fmt.Sprintf("slot_lock_%s_%d", restaurantID, b*bucket))
	}
	return keys
}

// acquireSlotLocks blocks until every key is held or the context expires.
// Contending creators retry rather than fail so the loser of a race sees
// the winner's committed booking, not a spurious lock conflict.
func (s *bookingService) acquireSlotLocks(ctx context.Context, lockIDs []string) ([]string, error) {
	acquired := make([]string, 0, len(lockIDs))

	for _, lockID := range lockIDs {
		for {
			err := s.lockRepo.Acquire(ctx, lockID, s.cfg.LockTTL)
			if err == nil {
				acquired = append(acquired, lockID)
				break
			}
			if !errors.Is(err, bookingserrors.ErrLockHeld) {
				return acquired, apperrors.Internal("Failed to acquire slot lock", err)
			}

			// Held by a concurrent creator; sweep stale locks and retry
			// until our request deadline runs out.
			if sweepErr := s.lockRepo.ReleaseExpired(ctx); sweepErr != nil {
				s.cfg.Log.Warn("Failed to sweep expired slot locks", "error", sweepErr)
			}

			select {
			case <-ctx.Done():
				return acquired, apperrors.Timeout("Timed out waiting for booking slot lock")
			case <-time.After(s.cfg.LockRetryInterval):
			}
		}
	}

	return acquired, nil
}

// releaseSlotLocks uses a background context so locks are freed even when
// the request context is already cancelled.
func (s *bookingService) releaseSlotLocks(lockIDs []string) {
	if len(lockIDs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, lockID := range lockIDs {
		if err := s.lockRepo.Release(ctx, lockID); err != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", err)
		}
	}
}

func (s *bookingService) appendAudit(ctx context.Context, bookingID, action, actor string, payload map[string]any) error {
	if actor == "" {
		actor = "guest"
	}
	err := s.auditRepo.Append(ctx, &model.AuditEntry{
		BookingID: bookingID,
		Action:    action,
		Actor:     actor,
		Payload:   payload,
	})
	if err != nil {
		return apperrors.Internal("Failed to append audit entry", err)
	}
	return nil
}

func (s *bookingService) invalidateCache(ctx context.Context, restaurantID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, restaurantID)
	}
}
