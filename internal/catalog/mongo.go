package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"schoolbook/pkg/model"
)

const (
	UsersCollection    = "Users"
	ChildrenCollection = "Children"
	EventsCollection   = "Events"
	BookingsCollection = "Bookings"
)

// LoadMongo reads the whole catalog from db once.
func LoadMongo(ctx context.Context, db *mongo.Database) (*Catalog, error) {
	var users []model.User
	if err := findAll(ctx, db.Collection(UsersCollection), bson.D{{Key: "_id", Value: 1}}, &users); err != nil {
		return nil, err
	}

	var children []model.Child
	if err := findAll(ctx, db.Collection(ChildrenCollection), bson.D{{Key: "_id", Value: 1}}, &children); err != nil {
		return nil, err
	}

	var events []model.Event
	if err := findAll(ctx, db.Collection(EventsCollection), bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}, &events); err != nil {
		return nil, err
	}

	var bookings []model.Booking
	if err := findAll(ctx, db.Collection(BookingsCollection), bson.D{{Key: "start_time", Value: 1}}, &bookings); err != nil {
		return nil, err
	}

	return New(users, children, events, bookings)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, sort bson.D, out *[]T) error {
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(sort))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return nil
}

// SeedResult counts the documents written per collection.
type SeedResult struct {
	Users    int
	Children int
	Events   int
	Bookings int
}

// SeedMongo upserts every document of c into db, keyed by id.
func SeedMongo(ctx context.Context, db *mongo.Database, c *Catalog) (SeedResult, error) {
	var res SeedResult
	var err error

	if res.Children, err = upsertAll(ctx, db.Collection(ChildrenCollection), c.Children(), func(ch model.Child) string { return ch.ID }); err != nil {
		return res, err
	}
	if res.Users, err = upsertAll(ctx, db.Collection(UsersCollection), c.Users(), func(u model.User) string { return u.ID }); err != nil {
		return res, err
	}
	if res.Events, err = upsertAll(ctx, db.Collection(EventsCollection), c.Events(), func(e model.Event) string { return e.ID }); err != nil {
		return res, err
	}
	if res.Bookings, err = upsertAll(ctx, db.Collection(BookingsCollection), c.SeedBookings(), func(b model.Booking) string { return b.ID }); err != nil {
		return res, err
	}
	return res, nil
}

func upsertAll[T any](ctx context.Context, coll *mongo.Collection, docs []T, id func(T) string) (int, error) {
	opts := options.Replace().SetUpsert(true)
	for i, doc := range docs {
		if _, err := coll.ReplaceOne(ctx, bson.M{"_id": id(doc)}, doc, opts); err != nil {
			return i, fmt.Errorf("failed to upsert into %s: %w", coll.Name(), err)
		}
	}
	return len(docs), nil
}
