package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	kafka_config "schoolbook/pkg/kafka/config"
	"schoolbook/pkg/logger"
	"schoolbook/pkg/model"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string
	Timezone  string
	Location  *time.Location

	BookingBufferMin           int
	OpenDayDurationMin         int
	MeetingDurationMin         int
	SpecialActivityDurationMin int

	CatalogSource   string
	CatalogPath     string
	CatalogBaseDate string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Kafka              *kafka_config.Config
	KafkaBookingsTopic string

	GeminiAPIKey   string
	GeminiModel    string
	SummaryTimeout time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	// RateLimitRequests per user per RateLimitWindow; 0 disables the limiter.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

// Load reads an optional .env file, then the environment, and exits the
// process if the result does not validate.
func Load(serviceName string) *Config {
	envFileErr := godotenv.Load()

	cfg := FromEnv()
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})
	if envFileErr != nil {
		cfg.Log.Debug("No .env file loaded, using process environment", "error", envFileErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds a Config from environment variables without validating it.
func FromEnv() *Config {
	return &Config{
		Port:      getEnvStr(EnvPort, DefaultPort),
		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),
		Timezone:  getEnvStr(EnvTimezone, DefaultTimezone),

		BookingBufferMin:           getEnvNum(EnvBookingBufferMin, DefaultBookingBufferMin),
		OpenDayDurationMin:         getEnvNum(EnvOpenDayDurationMin, DefaultOpenDayDurationMin),
		MeetingDurationMin:         getEnvNum(EnvMeetingDurationMin, DefaultMeetingDurationMin),
		SpecialActivityDurationMin: getEnvNum(EnvSpecialActivityDurationMin, DefaultSpecialActivityDurationMin),

		CatalogSource:   getEnvStr(EnvCatalogSource, DefaultCatalogSource),
		CatalogPath:     getEnvStr(EnvCatalogPath, ""),
		CatalogBaseDate: getEnvStr(EnvCatalogBaseDate, ""),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Kafka:              kafka_config.Load(),
		KafkaBookingsTopic: getEnvStr(EnvKafkaBookingsTopic, DefaultKafkaBookingsTopic),

		GeminiAPIKey:   getEnvStr(EnvGeminiAPIKey, ""),
		GeminiModel:    getEnvStr(EnvGeminiModel, DefaultGeminiModel),
		SummaryTimeout: getEnvDuration(EnvSummaryTimeout, DefaultSummaryTimeout),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),
	}
}

// Validate collects every problem before failing and resolves Location.
func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		errors = append(errors, fmt.Sprintf("Timezone must be a valid IANA zone, got: %s", cfg.Timezone))
	} else {
		cfg.Location = loc
	}

	if cfg.BookingBufferMin < 0 {
		errors = append(errors, fmt.Sprintf("BookingBufferMin cannot be negative, got: %d", cfg.BookingBufferMin))
	}
	for name, minutes := range map[string]int{
		"OpenDayDurationMin":         cfg.OpenDayDurationMin,
		"MeetingDurationMin":         cfg.MeetingDurationMin,
		"SpecialActivityDurationMin": cfg.SpecialActivityDurationMin,
	} {
		if minutes <= 0 || minutes > 480 {
			errors = append(errors, fmt.Sprintf("%s must be between 1 and 480, got: %d", name, minutes))
		}
	}

	switch cfg.CatalogSource {
	case CatalogSourceBuiltin:
	case CatalogSourceYAML:
		if cfg.CatalogPath == "" {
			errors = append(errors, "CatalogPath is required when CatalogSource is yaml")
		}
	case CatalogSourceMongo:
		if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	default:
		errors = append(errors, fmt.Sprintf("CatalogSource must be one of [builtin, yaml, mongo], got: %s", cfg.CatalogSource))
	}

	if cfg.CatalogBaseDate != "" {
		if _, err := time.Parse(time.DateOnly, cfg.CatalogBaseDate); err != nil {
			errors = append(errors, fmt.Sprintf("CatalogBaseDate must be YYYY-MM-DD, got: %s", cfg.CatalogBaseDate))
		}
	}

	if cfg.Kafka != nil && cfg.Kafka.Enabled() {
		if err := cfg.Kafka.Validate(); err != nil {
			errors = append(errors, err.Error())
		}
		if cfg.KafkaBookingsTopic == "" {
			errors = append(errors, "KafkaBookingsTopic cannot be empty when Kafka is enabled")
		}
	}

	for name, d := range map[string]time.Duration{
		"SummaryTimeout":  cfg.SummaryTimeout,
		"RequestTimeout":  cfg.RequestTimeout,
		"IdempotencyTTL":  cfg.IdempotencyTTL,
		"ReadTimeout":     cfg.ReadTimeout,
		"WriteTimeout":    cfg.WriteTimeout,
		"IdleTimeout":     cfg.IdleTimeout,
		"ShutdownTimeout": cfg.ShutdownTimeout,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.RateLimitRequests < 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests cannot be negative, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive when rate limiting is on, got: %s", cfg.RateLimitWindow))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) DurationTable() model.DurationTable {
	return model.DurationTable{
		model.EventTypeOpenDay:              cfg.OpenDayDurationMin,
		model.EventTypeParentTeacherMeeting: cfg.MeetingDurationMin,
		model.EventTypeSpecialActivity:      cfg.SpecialActivityDurationMin,
	}
}

func (cfg *Config) BookingBuffer() time.Duration {
	return time.Duration(cfg.BookingBufferMin) * time.Minute
}

// TimeLocation returns the validated zone, or UTC before Validate ran.
func (cfg *Config) TimeLocation() *time.Location {
	if cfg.Location == nil {
		return time.UTC
	}
	return cfg.Location
}

func (cfg *Config) LogConfiguration() {
	kafkaBrokers := []string{}
	if cfg.Kafka != nil {
		kafkaBrokers = cfg.Kafka.Brokers
	}

	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"log_level", cfg.LogLevel,
		"timezone", cfg.Timezone,
		"booking_buffer_min", cfg.BookingBufferMin,
		"open_day_duration_min", cfg.OpenDayDurationMin,
		"meeting_duration_min", cfg.MeetingDurationMin,
		"special_activity_duration_min", cfg.SpecialActivityDurationMin,
		"catalog_source", cfg.CatalogSource,
		"catalog_path", cfg.CatalogPath,
		"catalog_base_date", cfg.CatalogBaseDate,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"kafka_brokers", kafkaBrokers,
		"kafka_bookings_topic", cfg.KafkaBookingsTopic,
		"gemini_key_set", cfg.GeminiAPIKey != "",
		"gemini_model", cfg.GeminiModel,
		"summary_timeout", cfg.SummaryTimeout,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 20
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
