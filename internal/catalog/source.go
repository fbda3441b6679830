package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SourceBuiltin = "builtin"
	SourceYAML    = "yaml"
	SourceMongo   = "mongo"
)

// Options selects where the catalog is read from.
type Options struct {
	Source   string
	Path     string
	BaseDate time.Time
	Location *time.Location
	Mongo    *mongo.Database
}

func Load(ctx context.Context, opts Options) (*Catalog, error) {
	switch opts.Source {
	case SourceBuiltin, "":
		base := opts.BaseDate
		if base.IsZero() {
			base = time.Now()
		}
		return Builtin(base, opts.Location)
	case SourceYAML:
		return LoadYAML(opts.Path, opts.Location)
	case SourceMongo:
		if opts.Mongo == nil {
			return nil, errors.New("mongo catalog source requires a database")
		}
		return LoadMongo(ctx, opts.Mongo)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", opts.Source)
	}
}
