package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvKafkaBrokers       = "KAFKA_BROKERS"
	EnvKafkaBookingsTopic = "KAFKA_BOOKINGS_TOPIC"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvCORSAllowOrigin = "CORS_ALLOW_ORIGIN"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultSlotIntervalMin = "DEFAULT_SLOT_INTERVAL_MIN"
	EnvDefaultSessionLenMin   = "DEFAULT_SESSION_LEN_MIN"
	EnvLockBucketMin          = "LOCK_BUCKET_MIN"
	EnvLockTTL                = "LOCK_TTL"
	EnvLockRetryInterval      = "LOCK_RETRY_INTERVAL"
	EnvAvailabilityCacheTTL   = "AVAILABILITY_CACHE_TTL"
)
