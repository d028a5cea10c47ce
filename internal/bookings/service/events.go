package service

import (
	"context"
	"time"

	"maitre/pkg/kafka"
	"maitre/pkg/model"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingDeleted       = "booking.deleted"
)

// EventPublisher is the outbound booking event stream. Publishing is
// best-effort and happens after commit; a nil publisher disables it.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type bookingEvent struct {
	BookingID    string    `json:"booking_id"`
	RestaurantID string    `json:"restaurant_id"`
	Status       string    `json:"status"`
	Covers       int       `json:"covers"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Actor        string    `json:"actor,omitempty"`
}

func (s *bookingService) publishEvent(ctx context.Context, eventType string, booking *model.Booking, actor string) {
	if s.publisher == nil {
		return
	}

	msg, err := kafka.NewEvent(eventType, booking.ID, bookingEvent{
		BookingID:    booking.ID,
		RestaurantID: booking.RestaurantID,
		Status:       booking.Status,
		Covers:       booking.Covers,
		StartTime:    booking.StartTime,
		EndTime:      booking.EndTime,
		Actor:        actor,
	})
	if err != nil {
		s.cfg.Log.Error("Failed to build booking event", "event_type", eventType, "booking_id", booking.ID, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking event", "event_type", eventType, "booking_id", booking.ID, "error", err)
	}
}
