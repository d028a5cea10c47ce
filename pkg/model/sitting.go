package model

import "time"

// Sitting is a recurring service window (e.g. "dinner from 18:00") that
// bookable slots are derived from. It recurs either on a weekday or within
// an explicit date range; sittings with neither match no dates.
type Sitting struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RestaurantID   string     `json:"restaurant_id" bson:"restaurant_id" validate:"required,mongodb"`
	Name           string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DayOfWeek      *int       `json:"day_of_week,omitempty" bson:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`
	StartDate      *time.Time `json:"start_date,omitempty" bson:"start_date,omitempty" validate:"omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty" bson:"end_date,omitempty" validate:"omitempty"`
	StartTime      string     `json:"start_time" bson:"start_time" validate:"required,time_of_day"`
	MaxDurationMin *int       `json:"max_duration_min,omitempty" bson:"max_duration_min,omitempty" validate:"omitempty,min=15,max=720"`
	Enabled        bool       `json:"enabled" bson:"enabled"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}
