package main

import (
	"context"
	"time"

	mongoMigration "schoolbook/internal/migrations/mongo"
	"schoolbook/pkg/client"
	"schoolbook/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.Log.Info("Starting Mongo migration job")

	clients := client.NewClient()
	clients.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
	defer func() {
		if err := clients.Close(context.Background()); err != nil {
			cfg.Log.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	if err := mongoMigration.RunMigration(ctx, clients.Database(cfg.MongoDatabaseName), cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}
