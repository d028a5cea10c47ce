package model

import "time"

// SlotLock is an advisory lock document serializing booking creation for
// one (restaurant, time bucket) pair. The _id is the lock key, so a
// duplicate-key error on insert means another request holds the bucket.
// ExpiresAt backs a TTL index that reaps locks left by crashed holders.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
