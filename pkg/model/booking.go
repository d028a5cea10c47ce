package model

import "time"

const (
	StatusBooked    = "booked"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// ActiveStatuses are the statuses that count toward a restaurant's
// occupancy. Cancelled and no-show rows stay in the store for audit but
// never contribute covers.
var ActiveStatuses = []string{StatusBooked, StatusConfirmed}

type Booking struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RestaurantID string    `json:"restaurant_id" bson:"restaurant_id" validate:"required,mongodb"`
	SittingID    string    `json:"sitting_id,omitempty" bson:"sitting_id,omitempty" validate:"omitempty,mongodb"`
	GuestName    string    `json:"guest_name" bson:"guest_name" validate:"required,min=2,max=100"`
	GuestEmail   string    `json:"guest_email,omitempty" bson:"guest_email,omitempty" validate:"omitempty,email"`
	GuestPhone   string    `json:"guest_phone,omitempty" bson:"guest_phone,omitempty" validate:"omitempty,e164"`
	Covers       int       `json:"covers" bson:"covers" validate:"required,min=1,max=200"`
	StartTime    time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=booked confirmed cancelled no_show"`
	Source       string    `json:"source,omitempty" bson:"source,omitempty" validate:"omitempty,max=50"`
	Notes        string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Active reports whether the booking currently counts toward occupancy.
func (b *Booking) Active() bool {
	return b.Status == StatusBooked || b.Status == StatusConfirmed
}

func ValidStatus(status string) bool {
	switch status {
	case StatusBooked, StatusConfirmed, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
