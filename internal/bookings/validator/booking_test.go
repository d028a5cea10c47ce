package validator

import (
	"io"
	"strings"
	"testing"
	"time"

	"maitre/pkg/logger"
	"maitre/pkg/model"
)

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{Output: io.Discard}))
}

func validBooking() *model.Booking {
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	return &model.Booking{
		RestaurantID: "64b0a1b2c3d4e5f601234567",
		GuestName:    "Alice Example",
		GuestEmail:   "alice@example.com",
		GuestPhone:   "+31612345678",
		Covers:       4,
		StartTime:    start,
		EndTime:      start.Add(2 * time.Hour),
		Status:       model.StatusBooked,
	}
}

func TestValidateAcceptsValidBooking(t *testing.T) {
	v := newTestValidator()
	if err := v.Validate(validBooking()); err != nil {
		t.Fatalf("expected valid booking, got %v", err)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	v := newTestValidator()

	cases := []struct {
		name   string
		mutate func(*model.Booking)
		field  string
	}{
		{"missing restaurant", func(b *model.Booking) { b.RestaurantID = "" }, "RestaurantID"},
		{"bad restaurant id", func(b *model.Booking) { b.RestaurantID = "not-an-object-id" }, "RestaurantID"},
		{"missing guest name", func(b *model.Booking) { b.GuestName = "" }, "GuestName"},
		{"short guest name", func(b *model.Booking) { b.GuestName = "A" }, "GuestName"},
		{"bad email", func(b *model.Booking) { b.GuestEmail = "not-an-email" }, "GuestEmail"},
		{"bad phone", func(b *model.Booking) { b.GuestPhone = "phone" }, "GuestPhone"},
		{"zero covers", func(b *model.Booking) { b.Covers = 0 }, "Covers"},
		{"oversized covers", func(b *model.Booking) { b.Covers = 500 }, "Covers"},
		{"bad status", func(b *model.Booking) { b.Status = "waiting" }, "Status"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			booking := validBooking()
			tc.mutate(booking)
			err := v.Validate(booking)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("expected error mentioning %s, got %v", tc.field, err)
			}
		})
	}
}

func TestValidateRejectsInvertedWindow(t *testing.T) {
	v := newTestValidator()

	booking := validBooking()
	booking.EndTime = booking.StartTime.Add(-time.Hour)
	if err := v.Validate(booking); err == nil {
		t.Fatal("expected validation error for end before start")
	}

	// Zero-length windows are invalid too.
	booking = validBooking()
	booking.EndTime = booking.StartTime
	if err := v.Validate(booking); err == nil {
		t.Fatal("expected validation error for zero-length window")
	}
}

func TestValidateStatus(t *testing.T) {
	v := newTestValidator()

	for _, status := range []string{model.StatusBooked, model.StatusConfirmed, model.StatusCancelled, model.StatusNoShow} {
		if err := v.ValidateStatus(status); err != nil {
			t.Errorf("status %q should be valid, got %v", status, err)
		}
	}

	for _, status := range []string{"", "pending", "BOOKED"} {
		if err := v.ValidateStatus(status); err == nil {
			t.Errorf("status %q should be invalid", status)
		}
	}
}
