package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "maitre"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultLogLevel = "info"

	DefaultCORSAllowOrigin = "*"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Slot generation defaults applied when a restaurant row leaves the
	// field unset.
	DefaultDefaultSlotIntervalMin = 15
	DefaultDefaultSessionLenMin   = 150

	// Advisory-lock geometry for booking creation. A window locks every
	// bucket it touches, so overlapping windows always contend on at
	// least one lock document.
	DefaultLockBucketMin     = 60
	DefaultLockTTL           = 10 * time.Second
	DefaultLockRetryInterval = 50 * time.Millisecond

	DefaultAvailabilityCacheTTL = 15 * time.Second

	DefaultPaginationLimit = 100
)
