package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// ShutdownFunc releases one resource while the application stops.
type ShutdownFunc func(ctx context.Context) error
