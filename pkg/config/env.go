package config

const (
	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
	EnvTimezone  = "TIMEZONE"

	EnvBookingBufferMin           = "BOOKING_BUFFER_MIN"
	EnvOpenDayDurationMin         = "OPEN_DAY_DURATION_MIN"
	EnvMeetingDurationMin         = "MEETING_DURATION_MIN"
	EnvSpecialActivityDurationMin = "SPECIAL_ACTIVITY_DURATION_MIN"

	EnvCatalogSource   = "CATALOG_SOURCE"
	EnvCatalogPath     = "CATALOG_PATH"
	EnvCatalogBaseDate = "CATALOG_BASE_DATE"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvKafkaBookingsTopic = "KAFKA_BOOKINGS_TOPIC"

	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGeminiModel    = "GEMINI_MODEL"
	EnvSummaryTimeout = "SUMMARY_TIMEOUT"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
