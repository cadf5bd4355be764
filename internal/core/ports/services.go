package ports

import (
	"context"

	"github.com/kulturapass/kulturapass/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRoutePlanned(ctx context.Context, event *domain.RoutePlanned) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeRoutePlanned(ctx context.Context, handler func(ctx context.Context, event *domain.RoutePlanned) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// RoadRoute is a routing backend answer for an ordered set of waypoints.
// Geometry is an encoded polyline at 1e5 precision.
type RoadRoute struct {
	Geometry    string
	DistanceM   float64
	DurationSec float64
}

// RoutingBackend computes road routes through waypoints in the given order.
type RoutingBackend interface {
	Route(ctx context.Context, profile string, waypoints []domain.RoutePoint) (*RoadRoute, error)
	Ping(ctx context.Context) error
}
