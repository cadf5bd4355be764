package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/kulturapass/kulturapass/internal/core/usecases"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Routes    *usecases.RouteService
	PlanStats *usecases.PlanStatsService
	NATS      *nats.Conn
	Cache     Pinger
}
