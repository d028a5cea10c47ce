package model

import "time"

type Restaurant struct {
	ID                    string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name                  string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Timezone              string    `json:"timezone,omitempty" bson:"timezone" validate:"omitempty,timezone"`
	MaxCapacity           int       `json:"max_capacity" bson:"max_capacity" validate:"required,min=1,max=1000"`
	SlotIntervalMin       int       `json:"slot_interval_min" bson:"slot_interval_min" validate:"omitempty,min=5,max=120"`
	DefaultSessionLenMin  int       `json:"default_session_len_min" bson:"default_session_len_min" validate:"omitempty,min=15,max=480"`
	CreatedAt             time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Location resolves the restaurant's IANA timezone, falling back to UTC
// when the zone is empty or unknown. Instants are stored in UTC; the zone
// is only applied when expanding a calendar date into slot times.
func (r *Restaurant) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (r *Restaurant) SlotInterval() time.Duration {
	return time.Duration(r.SlotIntervalMin) * time.Minute
}

func (r *Restaurant) SessionLength() time.Duration {
	return time.Duration(r.DefaultSessionLenMin) * time.Minute
}
