package main

import (
	"context"
	"time"

	"schoolbook/internal/bookings/handler"
	"schoolbook/internal/bookings/ledger"
	"schoolbook/internal/bookings/publisher"
	"schoolbook/internal/bookings/service"
	"schoolbook/internal/bookings/validator"
	"schoolbook/internal/catalog"
	"schoolbook/internal/summary"
	"schoolbook/pkg/app"
	"schoolbook/pkg/client"
	"schoolbook/pkg/config"
	"schoolbook/pkg/kafka"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Bookings service")

	clients := client.NewClient()
	if cfg.CatalogSource == config.CatalogSourceMongo {
		clients.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
	}

	ref := loadCatalog(cfg, clients)
	bookingLedger := initLedger(cfg, ref)
	bookingPublisher := initPublisher(cfg, ref)
	generator := initGenerator(cfg)

	bookingService := service.NewBookingService(
		bookingLedger,
		ref,
		validator.NewBookingValidator(cfg.Log, nil),
		bookingPublisher,
		cfg,
	)
	var summaryGenerator summary.Generator
	if generator != nil {
		summaryGenerator = generator
	}
	summaryService := summary.NewService(summaryGenerator, ref, bookingLedger, cfg.SummaryTimeout, cfg.TimeLocation(), cfg.Log)

	var pinger handler.Pinger
	if clients.Mongo != nil {
		pinger = clients
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, summaryService, cfg.TimeLocation(), cfg.Log),
		handler.NewHealthHandler(pinger, cfg.Log),
		ref,
	)
	serverApp.OnShutdown("kafka", func(context.Context) error { return bookingPublisher.Close() })
	if generator != nil {
		serverApp.OnShutdown("gemini", func(context.Context) error { return generator.Close() })
	}
	serverApp.OnShutdown("mongo", clients.Close)
	serverApp.Run()
}

func loadCatalog(cfg *config.Config, clients *client.Client) *catalog.Catalog {
	var base time.Time
	if cfg.CatalogBaseDate != "" {
		base, _ = time.ParseInLocation(time.DateOnly, cfg.CatalogBaseDate, cfg.TimeLocation())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	ref, err := catalog.Load(ctx, catalog.Options{
		Source:   cfg.CatalogSource,
		Path:     cfg.CatalogPath,
		BaseDate: base,
		Location: cfg.TimeLocation(),
		Mongo:    clients.Database(cfg.MongoDatabaseName),
	})
	if err != nil {
		cfg.Log.Fatal("Failed to load catalog", "source", cfg.CatalogSource, "error", err)
	}

	cfg.Log.Info("Catalog loaded",
		"source", cfg.CatalogSource,
		"users", len(ref.Users()),
		"children", len(ref.Children()),
		"events", len(ref.Events()),
		"seed_bookings", len(ref.SeedBookings()),
	)
	return ref
}

func initLedger(cfg *config.Config, ref *catalog.Catalog) *ledger.Ledger {
	bookingLedger := ledger.New(ref, ledger.Policy{
		Buffer:    cfg.BookingBuffer(),
		Durations: cfg.DurationTable(),
		Location:  cfg.TimeLocation(),
	}, nil, nil)

	if err := bookingLedger.Load(ref.SeedBookings()); err != nil {
		cfg.Log.Fatal("Failed to load seed bookings", "error", err)
	}

	cfg.Log.Info("Booking ledger initialized",
		"bookings", bookingLedger.Len(),
		"buffer", cfg.BookingBuffer(),
	)
	return bookingLedger
}

func initPublisher(cfg *config.Config, ref *catalog.Catalog) publisher.BookingPublisher {
	if cfg.Kafka == nil || !cfg.Kafka.Enabled() {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return publisher.NewNoop()
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.KafkaBookingsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	return publisher.NewKafkaPublisher(producer, func(eventID string) string {
		if e, ok := ref.Event(eventID); ok {
			return e.Title
		}
		return ""
	})
}

func initGenerator(cfg *config.Config) *summary.GeminiGenerator {
	if cfg.GeminiAPIKey == "" {
		cfg.Log.Info("Gemini API key not set, summaries are disabled")
		return nil
	}

	generator, err := summary.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		cfg.Log.Fatal("Failed to create Gemini client", "error", err)
	}
	cfg.Log.Info("Gemini summary generator initialized", "model", cfg.GeminiModel)
	return generator
}
