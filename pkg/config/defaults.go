package config

import "time"

const (
	CatalogSourceBuiltin = "builtin"
	CatalogSourceYAML    = "yaml"
	CatalogSourceMongo   = "mongo"
)

const (
	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultTimezone  = "UTC"

	DefaultBookingBufferMin           = 45
	DefaultOpenDayDurationMin         = 60
	DefaultMeetingDurationMin         = 30
	DefaultSpecialActivityDurationMin = 30

	DefaultCatalogSource = CatalogSourceBuiltin

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "schoolbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultKafkaBookingsTopic = "school.bookings"

	DefaultGeminiModel    = "models/gemini-1.5-flash"
	DefaultSummaryTimeout = 30 * time.Second

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = time.Minute

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 45 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
