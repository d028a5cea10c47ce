package model

import "time"

// Slot is a derived candidate reservation window. It is computed per
// request from the restaurant's sittings and never persisted.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	FreeSeats int       `json:"free_seats"`
	Available bool      `json:"available"`
}
