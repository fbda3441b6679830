package catalog

import (
	"context"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Runs against a real server when MONGO_TEST_URI is set.
func TestMongo_SeedAndLoad(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("schoolbook_catalog_test")
	defer db.Drop(ctx)

	src, err := Builtin(testBase, nil)
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}
	res, err := SeedMongo(ctx, db, src)
	if err != nil {
		t.Fatalf("SeedMongo() error = %v", err)
	}
	if res.Users != 6 || res.Children != 3 || res.Events != 3 || res.Bookings != 2 {
		t.Errorf("SeedMongo() = %+v", res)
	}

	// Seeding twice must not duplicate.
	if _, err := SeedMongo(ctx, db, src); err != nil {
		t.Fatalf("second SeedMongo() error = %v", err)
	}

	got, err := LoadMongo(ctx, db)
	if err != nil {
		t.Fatalf("LoadMongo() error = %v", err)
	}
	if len(got.Events()) != 3 || len(got.SeedBookings()) != 2 {
		t.Errorf("LoadMongo() events=%d seeds=%d", len(got.Events()), len(got.SeedBookings()))
	}
	e, _ := got.Event("event1")
	if len(e.Slots) != 48 {
		t.Errorf("event1 slots = %d, want 48", len(e.Slots))
	}
}
