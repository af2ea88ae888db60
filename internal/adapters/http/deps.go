package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/mabteam/poimap/internal/core/usecases"
)

// Pinger is a backing service the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
// DB and Cache are nil when the service runs without them.
type Dependencies struct {
	Map      *usecases.MapService
	Sessions *usecases.Sessions
	POIs     *usecases.POIService
	NATS     *nats.Conn
	DB       Pinger
	Cache    Pinger
}
