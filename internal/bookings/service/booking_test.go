package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	bookingserrors "maitre/internal/bookings/errors"
	"maitre/internal/bookings/validator"
	"maitre/pkg/config"
	mongotx "maitre/pkg/db/mongo"
	apperrors "maitre/pkg/errors"
	"maitre/pkg/logger"
	"maitre/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testRestaurantID = "64b0a1b2c3d4e5f601234567"
	testCapacity     = 10
)

// --- In-memory fakes ---

type memBookingRepo struct {
	mu       sync.Mutex
	bookings []*model.Booking
	nextID   int
}

func (r *memBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	booking.ID = fmt.Sprintf("64b0a1b2c3d4e5f6012345%02x", r.nextID)
	booking.CreatedAt = time.Now().UTC()
	clone := *booking
	r.bookings = append(r.bookings, &clone)
	return nil
}

func (r *memBookingRepo) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			clone := *b
			return &clone, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (r *memBookingRepo) FindByRestaurant(_ context.Context, restaurantID string, start, end *time.Time, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.RestaurantID != restaurantID {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memBookingRepo) CountByRestaurant(ctx context.Context, restaurantID string, start, end *time.Time) (int64, error) {
	found, err := r.FindByRestaurant(ctx, restaurantID, start, end, 0, 0)
	return int64(len(found)), err
}

func (r *memBookingRepo) FindActiveOverlapping(_ context.Context, restaurantID string, start, end time.Time) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.RestaurantID == restaurantID && b.Active() && b.StartTime.Before(end) && b.EndTime.After(start) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memBookingRepo) SumActiveCovers(ctx context.Context, restaurantID string, start, end time.Time) (int, error) {
	overlapping, err := r.FindActiveOverlapping(ctx, restaurantID, start, end)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, b := range overlapping {
		total += b.Covers
	}
	return total, nil
}

func (r *memBookingRepo) UpdateStatus(_ context.Context, id string, status string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			b.Status = status
			clone := *b
			return &clone, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (r *memBookingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.bookings {
		if b.ID == id {
			r.bookings = append(r.bookings[:i], r.bookings[i+1:]...)
			return nil
		}
	}
	return bookingserrors.ErrNotFound
}

func (r *memBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type memLockRepo struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

func newMemLockRepo() *memLockRepo {
	return &memLockRepo{locks: make(map[string]time.Time)}
}

func (r *memLockRepo) Acquire(_ context.Context, lockID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if expires, held := r.locks[lockID]; held && expires.After(time.Now()) {
		return bookingserrors.ErrLockHeld
	}
	r.locks[lockID] = time.Now().Add(ttl)
	return nil
}

func (r *memLockRepo) Release(_ context.Context, lockID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, lockID)
	return nil
}

func (r *memLockRepo) ReleaseExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, expires := range r.locks {
		if !expires.After(now) {
			delete(r.locks, id)
		}
	}
	return nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*model.AuditEntry
}

func (r *memAuditRepo) Append(_ context.Context, entry *model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *memAuditRepo) byAction(action string) []*model.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AuditEntry
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type stubRestaurantRepo struct {
	restaurant *model.Restaurant
}

func (r *stubRestaurantRepo) Create(_ context.Context, _ *model.Restaurant) error { return nil }

func (r *stubRestaurantRepo) FindByID(_ context.Context, id string) (*model.Restaurant, error) {
	if r.restaurant == nil || r.restaurant.ID != id {
		return nil, fmt.Errorf("restaurant %s not found", id)
	}
	clone := *r.restaurant
	return &clone, nil
}

func (r *stubRestaurantRepo) FindAll(_ context.Context, _ int, _ int64) ([]*model.Restaurant, error) {
	return nil, nil
}

func (r *stubRestaurantRepo) Count(_ context.Context) (int64, error) { return 0, nil }

// --- Fixture ---

type fixture struct {
	service  BookingService
	bookings *memBookingRepo
	locks    *memLockRepo
	audit    *memAuditRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New(logger.Config{Output: io.Discard})
	cfg := &config.Config{
		Log:                  log,
		DefaultSessionLenMin: 150,
		LockBucketMin:        60,
		LockTTL:              5 * time.Second,
		LockRetryInterval:    time.Millisecond,
	}

	bookings := &memBookingRepo{}
	locks := newMemLockRepo()
	audit := &memAuditRepo{}
	restaurants := &stubRestaurantRepo{
		restaurant: &model.Restaurant{
			ID:                   testRestaurantID,
			Name:                 "Chez Test",
			MaxCapacity:          testCapacity,
			SlotIntervalMin:      15,
			DefaultSessionLenMin: 150,
		},
	}

	svc := NewBookingService(
		bookings,
		locks,
		audit,
		restaurants,
		validator.NewBookingValidator(log),
		nil,
		nil,
		cfg,
	)

	return &fixture{service: svc, bookings: bookings, locks: locks, audit: audit}
}

func validBooking(covers int, start, end time.Time) *model.Booking {
	return &model.Booking{
		RestaurantID: testRestaurantID,
		GuestName:    "Alice Example",
		Covers:       covers,
		StartTime:    start,
		EndTime:      end,
	}
}

func window() (time.Time, time.Time) {
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	return start, start.Add(2 * time.Hour)
}

// --- Tests ---

func TestCreateAdmitsWithinCapacity(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	booking := validBooking(4, start, end)
	if err := f.service.Create(context.Background(), booking, "host"); err != nil {
		t.Fatalf("expected booking to succeed, got %v", err)
	}

	if booking.ID == "" {
		t.Error("expected a generated booking ID")
	}
	if booking.Status != model.StatusBooked {
		t.Errorf("expected status %q, got %q", model.StatusBooked, booking.Status)
	}

	created := f.audit.byAction(model.AuditActionCreate)
	if len(created) != 1 {
		t.Fatalf("expected 1 create audit entry, got %d", len(created))
	}
	if created[0].Actor != "host" {
		t.Errorf("expected audit actor %q, got %q", "host", created[0].Actor)
	}
}

func TestCreateRejectsOverCapacity(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	if err := f.service.Create(context.Background(), validBooking(8, start, end), ""); err != nil {
		t.Fatalf("first booking should succeed, got %v", err)
	}

	err := f.service.Create(context.Background(), validBooking(4, start, end), "")
	if !apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}

	// The rejected booking must not be persisted or audited.
	if count, _ := f.bookings.CountByRestaurant(context.Background(), testRestaurantID, nil, nil); count != 1 {
		t.Errorf("expected 1 persisted booking, got %d", count)
	}
	if entries := f.audit.byAction(model.AuditActionCreate); len(entries) != 1 {
		t.Errorf("expected 1 create audit entry, got %d", len(entries))
	}
}

func TestCreateAllowsTouchingWindows(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	if err := f.service.Create(context.Background(), validBooking(testCapacity, start, end), ""); err != nil {
		t.Fatalf("first booking should succeed, got %v", err)
	}

	// [end, end+2h) touches [start, end) exactly; half-open windows do not
	// overlap so the full capacity is free again.
	err := f.service.Create(context.Background(), validBooking(testCapacity, end, end.Add(2*time.Hour)), "")
	if err != nil {
		t.Fatalf("touching window should not contend for capacity, got %v", err)
	}
}

func TestCreateCountsContainedWindows(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	if err := f.service.Create(context.Background(), validBooking(8, start, end), ""); err != nil {
		t.Fatalf("first booking should succeed, got %v", err)
	}

	// Fully contained window still overlaps.
	inner := validBooking(4, start.Add(30*time.Minute), start.Add(60*time.Minute))
	err := f.service.Create(context.Background(), inner, "")
	if !apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("expected capacity exceeded for contained window, got %v", err)
	}
}

func TestCreateRejectsNonPositiveCovers(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	for _, covers := range []int{0, -3} {
		err := f.service.Create(context.Background(), validBooking(covers, start, end), "")
		if !apperrors.IsCode(err, apperrors.CodeValidation) {
			t.Errorf("covers=%d: expected validation error, got %v", covers, err)
		}
	}

	if count, _ := f.bookings.CountByRestaurant(context.Background(), testRestaurantID, nil, nil); count != 0 {
		t.Errorf("expected no persisted bookings, got %d", count)
	}
}

func TestCreateDefaultsEndTimeFromSessionLength(t *testing.T) {
	f := newFixture(t)
	start, _ := window()

	booking := validBooking(2, start, time.Time{})
	if err := f.service.Create(context.Background(), booking, ""); err != nil {
		t.Fatalf("expected booking to succeed, got %v", err)
	}

	want := start.Add(150 * time.Minute)
	if !booking.EndTime.Equal(want) {
		t.Errorf("expected default end time %v, got %v", want, booking.EndTime)
	}
}

func TestConcurrentCreatesNeverOvercommit(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	// Two concurrent parties of 6 against capacity 10: exactly one must
	// win, the other must see a capacity rejection, never a lock error.
	const parties = 2
	errs := make([]error, parties)
	var wg sync.WaitGroup
	wg.Add(parties)
	for i := 0; i < parties; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = f.service.Create(context.Background(), validBooking(6, start, end), "")
		}(i)
	}
	wg.Wait()

	winners, losers := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case apperrors.IsCode(err, apperrors.CodeCapacityExceeded):
			losers++
		default:
			t.Fatalf("unexpected error from concurrent create: %v", err)
		}
	}
	if winners != 1 || losers != 1 {
		t.Fatalf("expected 1 winner and 1 loser, got %d winners, %d losers", winners, losers)
	}

	occupied, err := f.service.Occupancy(context.Background(), testRestaurantID, start, end)
	if err != nil {
		t.Fatalf("occupancy failed: %v", err)
	}
	if occupied > testCapacity {
		t.Fatalf("capacity invariant violated: %d occupied > %d capacity", occupied, testCapacity)
	}
}

func TestConcurrentSmallPartiesRespectCapacity(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	const parties = 8
	var wg sync.WaitGroup
	wg.Add(parties)
	for i := 0; i < parties; i++ {
		go func() {
			defer wg.Done()
			_ = f.service.Create(context.Background(), validBooking(3, start, end), "")
		}()
	}
	wg.Wait()

	occupied, err := f.service.Occupancy(context.Background(), testRestaurantID, start, end)
	if err != nil {
		t.Fatalf("occupancy failed: %v", err)
	}
	if occupied > testCapacity {
		t.Fatalf("capacity invariant violated: %d occupied > %d capacity", occupied, testCapacity)
	}
}

func TestCancelFreesCapacity(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	booking := validBooking(testCapacity, start, end)
	if err := f.service.Create(context.Background(), booking, ""); err != nil {
		t.Fatalf("booking should succeed, got %v", err)
	}

	if err := f.service.Create(context.Background(), validBooking(1, start, end), ""); !apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("restaurant should be full, got %v", err)
	}

	if _, err := f.service.SetStatus(context.Background(), booking.ID, model.StatusCancelled, "manager"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// Cancelled covers no longer count; the whole room is free again.
	if err := f.service.Create(context.Background(), validBooking(testCapacity, start, end), ""); err != nil {
		t.Fatalf("capacity should be free after cancel, got %v", err)
	}

	// The cancelled row is retained for audit, not deleted.
	if _, err := f.service.GetByID(context.Background(), booking.ID); err != nil {
		t.Errorf("cancelled booking should remain readable, got %v", err)
	}
}

func TestSetStatusIsIdempotent(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	booking := validBooking(2, start, end)
	if err := f.service.Create(context.Background(), booking, ""); err != nil {
		t.Fatalf("booking should succeed, got %v", err)
	}

	if _, err := f.service.SetStatus(context.Background(), booking.ID, model.StatusCancelled, ""); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if _, err := f.service.SetStatus(context.Background(), booking.ID, model.StatusCancelled, ""); err != nil {
		t.Fatalf("repeated cancel should be a no-op, got %v", err)
	}

	// Only the first transition is audited.
	if entries := f.audit.byAction(model.AuditActionStatusChange); len(entries) != 1 {
		t.Errorf("expected 1 status-change audit entry, got %d", len(entries))
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	booking := validBooking(2, start, end)
	if err := f.service.Create(context.Background(), booking, ""); err != nil {
		t.Fatalf("booking should succeed, got %v", err)
	}

	if _, err := f.service.SetStatus(context.Background(), booking.ID, "arrived", ""); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestSetStatusNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SetStatus(context.Background(), "64b0a1b2c3d4e5f6012345ff", model.StatusCancelled, "")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHardDeleteRemovesRowAndAudits(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	booking := validBooking(4, start, end)
	if err := f.service.Create(context.Background(), booking, ""); err != nil {
		t.Fatalf("booking should succeed, got %v", err)
	}

	if err := f.service.HardDelete(context.Background(), booking.ID, "admin"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := f.service.GetByID(context.Background(), booking.ID); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}

	deleted := f.audit.byAction(model.AuditActionDelete)
	if len(deleted) != 1 {
		t.Fatalf("expected 1 delete audit entry, got %d", len(deleted))
	}
	if deleted[0].Actor != "admin" {
		t.Errorf("expected audit actor %q, got %q", "admin", deleted[0].Actor)
	}

	occupied, err := f.service.Occupancy(context.Background(), testRestaurantID, start, end)
	if err != nil {
		t.Fatalf("occupancy failed: %v", err)
	}
	if occupied != 0 {
		t.Errorf("expected 0 occupied after delete, got %d", occupied)
	}
}

func TestOccupancyRejectsInvertedWindow(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	if _, err := f.service.Occupancy(context.Background(), testRestaurantID, end, start); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected invalid input for inverted window, got %v", err)
	}
}

func TestCreateSanitizesGuestFields(t *testing.T) {
	f := newFixture(t)
	start, end := window()

	booking := validBooking(2, start, end)
	booking.GuestName = "  Alice   Example\x00  "
	if err := f.service.Create(context.Background(), booking, ""); err != nil {
		t.Fatalf("booking should succeed, got %v", err)
	}

	if booking.GuestName != "Alice Example" {
		t.Errorf("expected normalized guest name, got %q", booking.GuestName)
	}
}

func TestLockKeysSpanWindowBuckets(t *testing.T) {
	f := newFixture(t)
	svc := f.service.(*bookingService)

	start := time.Date(2026, 9, 4, 19, 30, 0, 0, time.UTC)

	// Window inside one hour bucket.
	keys := svc.lockKeys(testRestaurantID, start, start.Add(20*time.Minute))
	if len(keys) != 1 {
		t.Fatalf("expected 1 bucket for 20 minute window, got %d", len(keys))
	}

	// Window spanning the 20:00 boundary touches two buckets.
	keys = svc.lockKeys(testRestaurantID, start, start.Add(time.Hour))
	if len(keys) != 2 {
		t.Fatalf("expected 2 buckets for window crossing the hour, got %d", len(keys))
	}

	// Window ending exactly on a bucket boundary stays in one bucket.
	keys = svc.lockKeys(testRestaurantID, start, start.Add(30*time.Minute))
	if len(keys) != 1 {
		t.Fatalf("expected 1 bucket for window ending on the boundary, got %d", len(keys))
	}
}
