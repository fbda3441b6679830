package main

import (
	"context"
	"flag"
	"time"

	"schoolbook/internal/catalog"
	mongoMigration "schoolbook/internal/migrations/mongo"
	"schoolbook/pkg/client"
	"schoolbook/pkg/config"
)

const JobName = "catalog-seed"

func main() {
	source := flag.String("source", catalog.SourceBuiltin, "catalog to write: builtin or yaml")
	path := flag.String("path", "", "YAML catalog file when -source=yaml")
	migrate := flag.Bool("migrate", true, "create collections and indexes before seeding")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.Log.Info("Starting catalog seed job", "source", *source, "path", *path)

	if *source == catalog.SourceMongo {
		cfg.Log.Fatal("Seeding from the mongo source would copy the database onto itself")
	}

	var base time.Time
	if cfg.CatalogBaseDate != "" {
		base, _ = time.ParseInLocation(time.DateOnly, cfg.CatalogBaseDate, cfg.TimeLocation())
	}
	ref, err := catalog.Load(ctx, catalog.Options{
		Source:   *source,
		Path:     *path,
		BaseDate: base,
		Location: cfg.TimeLocation(),
	})
	if err != nil {
		cfg.Log.Fatal("Failed to load catalog", "source", *source, "error", err)
	}

	clients := client.NewClient()
	clients.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
	defer func() {
		if err := clients.Close(context.Background()); err != nil {
			cfg.Log.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()
	db := clients.Database(cfg.MongoDatabaseName)

	if *migrate {
		if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
			cfg.Log.Fatal("Migration failed", "error", err)
		}
	}

	res, err := catalog.SeedMongo(ctx, db, ref)
	if err != nil {
		cfg.Log.Fatal("Seeding failed", "error", err, "written", res)
	}

	cfg.Log.Info("Catalog seeded",
		"database", cfg.MongoDatabaseName,
		"users", res.Users,
		"children", res.Children,
		"events", res.Events,
		"bookings", res.Bookings,
	)
}
