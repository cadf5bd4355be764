package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kulturapass/kulturapass/internal/core/domain"
	"github.com/kulturapass/kulturapass/internal/core/ports"
	"github.com/kulturapass/kulturapass/internal/pkg/geospatial"
	"github.com/kulturapass/kulturapass/internal/pkg/logging"
	"github.com/kulturapass/kulturapass/internal/pkg/metrics"
	"github.com/kulturapass/kulturapass/internal/pkg/polyline"
	"github.com/kulturapass/kulturapass/internal/pkg/routeorder"
	"github.com/kulturapass/kulturapass/internal/pkg/telemetry"
)

// MaxPoints caps the venues accepted in one request.
const MaxPoints = 100

var (
	ErrTooManyPoints  = fmt.Errorf("at most %d points are allowed", MaxPoints)
	ErrUnknownProfile = errors.New("profile must be foot, bike or car")
)

// RouteServiceConfig tunes RouteService.
type RouteServiceConfig struct {
	DefaultProfile string
	PlanCacheTTL   int // seconds; 0 disables plan caching
}

// RouteService orders venues into tours and resolves road geometry.
type RouteService struct {
	routing   ports.RoutingBackend
	cache     ports.CacheService
	publisher ports.EventPublisher
	cfg       RouteServiceConfig

	now   func() time.Time
	newID func() string
}

// NewRouteService creates a new RouteService. routing, cache and publisher
// may be nil; the matching feature is then skipped.
func NewRouteService(routing ports.RoutingBackend, cache ports.CacheService, publisher ports.EventPublisher, cfg RouteServiceConfig) *RouteService {
	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = domain.ProfileFoot
	}
	return &RouteService{
		routing:   routing,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// HasRoutingBackend reports whether plans include road geometry.
func (s *RouteService) HasRoutingBackend() bool {
	return s.routing != nil
}

// PingRoutingBackend checks the routing backend, if any.
func (s *RouteService) PingRoutingBackend(ctx context.Context) error {
	if s.routing == nil {
		return nil
	}
	return s.routing.Ping(ctx)
}

// Optimize orders points into a nearest-neighbor tour starting at points[0].
func (s *RouteService) Optimize(ctx context.Context, points []domain.RoutePoint) (*domain.RoutePlan, error) {
	if len(points) > MaxPoints {
		return nil, ErrTooManyPoints
	}
	_, span := telemetry.Tracer().Start(ctx, "RouteService.Optimize",
		trace.WithAttributes(attribute.Int("route.points", len(points))))
	defer span.End()

	start := time.Now()
	ordered := routeorder.Optimize(points)
	metrics.RouteOptimizeDuration.Observe(time.Since(start).Seconds())
	metrics.RoutePoints.Observe(float64(len(points)))

	return &domain.RoutePlan{
		Points:   ordered,
		LengthKm: geospatial.TourLengthKm(ordered),
		Bounds:   geospatial.Bounds(ordered),
	}, nil
}

// Decode decodes an encoded polyline, logging decoder failures with the
// request logger. It never fails; check Result.OK.
func (s *RouteService) Decode(ctx context.Context, encoded string) polyline.Result {
	res := polyline.NewDecoder(logging.FromContext(ctx)).Decode(ctx, encoded)
	metrics.PolylineDecodes.WithLabelValues(string(res.Source)).Inc()
	return res
}

// Encode encodes points as a polyline.
func (s *RouteService) Encode(points []domain.RoutePoint) (string, error) {
	if len(points) > MaxPoints {
		return "", ErrTooManyPoints
	}
	return polyline.Encode(points), nil
}

// Plan optimizes points and, when a routing backend is configured, attaches
// the road geometry through the ordered venues. A backend failure is reported
// in GeometryError rather than as an error.
func (s *RouteService) Plan(ctx context.Context, points []domain.RoutePoint, profile string) (*domain.RoutePlan, error) {
	profile, err := s.resolveProfile(profile)
	if err != nil {
		return nil, err
	}
	if len(points) > MaxPoints {
		return nil, ErrTooManyPoints
	}

	ctx, span := telemetry.Tracer().Start(ctx, "RouteService.Plan", trace.WithAttributes(
		attribute.Int("route.points", len(points)),
		attribute.String("route.profile", profile),
	))
	defer span.End()

	key := planCacheKey(profile, points)
	if plan := s.cachedPlan(ctx, key); plan != nil {
		span.SetAttributes(attribute.Bool("route.cached", true))
		return plan, nil
	}

	plan, err := s.Optimize(ctx, points)
	if err != nil {
		return nil, err
	}
	plan.ID = s.newID()
	plan.Profile = profile
	plan.CreatedAt = s.now().UTC()

	if s.routing != nil && len(plan.Points) >= 2 {
		if err := s.attachGeometry(ctx, plan); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "routing backend")
			logging.FromContext(ctx).Warn("road geometry unavailable", "plan_id", plan.ID, "error", err)
			plan.GeometryError = "no route available"
		} else {
			s.storePlan(ctx, key, plan)
		}
	}

	s.publish(ctx, plan)
	return plan, nil
}

func (s *RouteService) resolveProfile(profile string) (string, error) {
	switch profile {
	case "":
		return s.cfg.DefaultProfile, nil
	case domain.ProfileFoot, domain.ProfileBike, domain.ProfileCar:
		return profile, nil
	default:
		return "", ErrUnknownProfile
	}
}

func (s *RouteService) attachGeometry(ctx context.Context, plan *domain.RoutePlan) error {
	ctx, span := telemetry.Tracer().Start(ctx, "RoutingBackend.Route")
	defer span.End()

	start := time.Now()
	road, err := s.routing.Route(ctx, plan.Profile, plan.Points)
	metrics.RoutingBackendDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RoutingBackendRequests.WithLabelValues("error").Inc()
		return err
	}
	metrics.RoutingBackendRequests.WithLabelValues("ok").Inc()

	res := s.Decode(ctx, road.Geometry)
	if !res.OK() {
		return fmt.Errorf("decode road geometry: %w", res.FallbackErr)
	}

	plan.Geometry = res.Points
	plan.GeometrySource = string(res.Source)
	plan.RoadDistanceM = road.DistanceM
	plan.RoadDurationSec = road.DurationSec
	return nil
}

func (s *RouteService) cachedPlan(ctx context.Context, key string) *domain.RoutePlan {
	if s.cache == nil || s.cfg.PlanCacheTTL <= 0 {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("route_plan").Inc()
		return nil
	}
	var plan domain.RoutePlan
	if err := json.Unmarshal(data, &plan); err != nil {
		metrics.CacheMisses.WithLabelValues("route_plan").Inc()
		return nil
	}
	metrics.CacheHits.WithLabelValues("route_plan").Inc()
	return &plan
}

func (s *RouteService) storePlan(ctx context.Context, key string, plan *domain.RoutePlan) {
	if s.cache == nil || s.cfg.PlanCacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.PlanCacheTTL); err != nil {
		logging.FromContext(ctx).Warn("cache route plan", "plan_id", plan.ID, "error", err)
	}
}

func (s *RouteService) publish(ctx context.Context, plan *domain.RoutePlan) {
	if s.publisher == nil {
		return
	}
	event := &domain.RoutePlanned{
		PlanID:     plan.ID,
		Profile:    plan.Profile,
		PointCount: len(plan.Points),
		LengthKm:   plan.LengthKm,
		HasRoad:    len(plan.Geometry) > 0,
		PlannedAt:  plan.CreatedAt,
	}
	if err := s.publisher.PublishRoutePlanned(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("publish route planned", "plan_id", plan.ID, "error", err)
	}
}

// planCacheKey hashes the profile and the input order of points. Coordinates
// are written in their shortest exact form so distinct inputs never collide.
func planCacheKey(profile string, points []domain.RoutePoint) string {
	h := sha256.New()
	h.Write([]byte(profile))
	for _, p := range points {
		h.Write([]byte{'|'})
		h.Write(strconv.AppendFloat(nil, p.Lat, 'g', -1, 64))
		h.Write([]byte{','})
		h.Write(strconv.AppendFloat(nil, p.Lng, 'g', -1, 64))
	}
	return "routes:plan:" + hex.EncodeToString(h.Sum(nil)[:12])
}
