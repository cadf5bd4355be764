package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kulturapass/kulturapass/internal/core/domain"
	"github.com/kulturapass/kulturapass/internal/core/ports"
	"github.com/kulturapass/kulturapass/internal/core/usecases"
	"github.com/kulturapass/kulturapass/internal/pkg/polyline"
)

// --- Mock RoutingBackend ---

type mockRouting struct {
	routeFn func(ctx context.Context, profile string, waypoints []domain.RoutePoint) (*ports.RoadRoute, error)
	calls   int
}

func (m *mockRouting) Route(ctx context.Context, profile string, waypoints []domain.RoutePoint) (*ports.RoadRoute, error) {
	m.calls++
	if m.routeFn != nil {
		return m.routeFn(ctx, profile, waypoints)
	}
	return &ports.RoadRoute{}, nil
}

func (m *mockRouting) Ping(ctx context.Context) error { return nil }

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []*domain.RoutePlanned
	err    error
}

func (m *mockPublisher) PublishRoutePlanned(ctx context.Context, event *domain.RoutePlanned) error {
	m.events = append(m.events, event)
	return m.err
}

var venues = []domain.RoutePoint{
	{Lat: 43.2687, Lng: -2.9340}, // Guggenheim
	{Lat: 43.2572, Lng: -2.9236}, // Arriaga
	{Lat: 43.2660, Lng: -2.9383}, // Bellas Artes
}

func TestRouteService_Optimize(t *testing.T) {
	svc := usecases.NewRouteService(nil, nil, nil, usecases.RouteServiceConfig{})

	plan, err := svc.Optimize(context.Background(), venues)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(plan.Points))
	}
	order := []int{*plan.Points[0].OriginalIndex, *plan.Points[1].OriginalIndex, *plan.Points[2].OriginalIndex}
	if order[0] != 0 || order[1] != 2 || order[2] != 1 {
		t.Errorf("expected order [0 2 1], got %v", order)
	}
	if plan.LengthKm <= 0 {
		t.Errorf("expected positive length, got %f", plan.LengthKm)
	}
	if plan.Bounds.MinLat != 43.2572 || plan.Bounds.MaxLat != 43.2687 {
		t.Errorf("unexpected bounds %+v", plan.Bounds)
	}
}

func TestRouteService_Optimize_TooManyPoints(t *testing.T) {
	svc := usecases.NewRouteService(nil, nil, nil, usecases.RouteServiceConfig{})
	points := make([]domain.RoutePoint, usecases.MaxPoints+1)

	if _, err := svc.Optimize(context.Background(), points); !errors.Is(err, usecases.ErrTooManyPoints) {
		t.Fatalf("expected ErrTooManyPoints, got %v", err)
	}
}

func TestRouteService_Decode(t *testing.T) {
	svc := usecases.NewRouteService(nil, nil, nil, usecases.RouteServiceConfig{})

	res := svc.Decode(context.Background(), "_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	if res.Source != polyline.SourcePrimary || len(res.Points) != 3 {
		t.Fatalf("expected 3 points from primary, got %d from %s", len(res.Points), res.Source)
	}

	res = svc.Decode(context.Background(), "_p~iF~ps|U_")
	if res.OK() || len(res.Points) != 0 {
		t.Fatalf("expected empty failed result, got %+v", res)
	}
}

func TestRouteService_Plan_WithGeometry(t *testing.T) {
	routing := &mockRouting{
		routeFn: func(ctx context.Context, profile string, waypoints []domain.RoutePoint) (*ports.RoadRoute, error) {
			if profile != "foot" {
				t.Errorf("expected default foot profile, got %s", profile)
			}
			if len(waypoints) != 3 || waypoints[1].Lat != venues[2].Lat {
				t.Errorf("backend must receive the optimized order, got %v", waypoints)
			}
			return &ports.RoadRoute{Geometry: "_p~iF~ps|U_ulLnnqC", DistanceM: 1500, DurationSec: 1100}, nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewRouteService(routing, nil, pub, usecases.RouteServiceConfig{})

	plan, err := svc.Plan(context.Background(), venues, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.ID == "" {
		t.Error("expected a plan ID")
	}
	if plan.Profile != "foot" {
		t.Errorf("expected foot, got %s", plan.Profile)
	}
	if len(plan.Geometry) != 2 || plan.GeometrySource != "primary" {
		t.Errorf("expected 2 geometry points from primary, got %d from %q", len(plan.Geometry), plan.GeometrySource)
	}
	if plan.RoadDistanceM != 1500 || plan.RoadDurationSec != 1100 {
		t.Errorf("unexpected road stats %+v", plan)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	if ev := pub.events[0]; ev.PlanID != plan.ID || !ev.HasRoad || ev.PointCount != 3 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestRouteService_Plan_BackendFailureStillReturnsPlan(t *testing.T) {
	routing := &mockRouting{
		routeFn: func(ctx context.Context, profile string, waypoints []domain.RoutePoint) (*ports.RoadRoute, error) {
			return nil, errors.New("connection refused")
		},
	}
	cache := newMockCache()
	pub := &mockPublisher{err: errors.New("nats down")}
	svc := usecases.NewRouteService(routing, cache, pub, usecases.RouteServiceConfig{PlanCacheTTL: 600})

	plan, err := svc.Plan(context.Background(), venues, "bike")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.GeometryError == "" || len(plan.Geometry) != 0 {
		t.Errorf("expected geometry error and no geometry, got %+v", plan)
	}
	if len(plan.Points) != 3 {
		t.Errorf("expected optimized points, got %d", len(plan.Points))
	}
	if cache.sets != 0 {
		t.Errorf("failed plans must not be cached, got %d sets", cache.sets)
	}
	if len(pub.events) != 1 || pub.events[0].HasRoad {
		t.Errorf("expected one event without road, got %+v", pub.events)
	}
}

func TestRouteService_Plan_UndecodableGeometry(t *testing.T) {
	routing := &mockRouting{
		routeFn: func(ctx context.Context, profile string, waypoints []domain.RoutePoint) (*ports.RoadRoute, error) {
			return &ports.RoadRoute{Geometry: "_p~iF~ps|U_"}, nil
		},
	}
	svc := usecases.NewRouteService(routing, nil, nil, usecases.RouteServiceConfig{})

	plan, err := svc.Plan(context.Background(), venues, "car")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.GeometryError != "no route available" {
		t.Errorf("expected no route available, got %q", plan.GeometryError)
	}
}

func TestRouteService_Plan_CacheHitSkipsBackend(t *testing.T) {
	routing := &mockRouting{
		routeFn: func(ctx context.Context, profile string, waypoints []domain.RoutePoint) (*ports.RoadRoute, error) {
			return &ports.RoadRoute{Geometry: "_p~iF~ps|U"}, nil
		},
	}
	cache := newMockCache()
	pub := &mockPublisher{}
	svc := usecases.NewRouteService(routing, cache, pub, usecases.RouteServiceConfig{PlanCacheTTL: 600})

	first, err := svc.Plan(context.Background(), venues, "foot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Plan(context.Background(), venues, "foot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if routing.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", routing.calls)
	}
	if second.ID != first.ID {
		t.Errorf("expected cached plan %s, got %s", first.ID, second.ID)
	}
	if len(pub.events) != 1 {
		t.Errorf("cache hits must not publish, got %d events", len(pub.events))
	}

	// A different profile is a different plan.
	if _, err := svc.Plan(context.Background(), venues, "bike"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if routing.calls != 2 {
		t.Errorf("expected 2 backend calls, got %d", routing.calls)
	}
}

func TestRouteService_Plan_SubMicrodegreeInputsAreDistinctPlans(t *testing.T) {
	routing := &mockRouting{}
	svc := usecases.NewRouteService(routing, newMockCache(), &mockPublisher{}, usecases.RouteServiceConfig{PlanCacheTTL: 600})

	near := []domain.RoutePoint{
		{Lat: 43.26870001, Lng: -2.9340},
		{Lat: 43.2572, Lng: -2.9236},
	}
	nearer := []domain.RoutePoint{
		{Lat: 43.26870004, Lng: -2.9340},
		{Lat: 43.2572, Lng: -2.9236},
	}

	if _, err := svc.Plan(context.Background(), near, "foot"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Plan(context.Background(), nearer, "foot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if routing.calls != 2 {
		t.Errorf("expected 2 backend calls, got %d", routing.calls)
	}
	found := false
	for _, p := range second.Points {
		if p.Lat == 43.26870004 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the second plan to carry its own points, got %v", second.Points)
	}
}

func TestRouteService_Plan_UnknownProfile(t *testing.T) {
	svc := usecases.NewRouteService(nil, nil, nil, usecases.RouteServiceConfig{})
	if _, err := svc.Plan(context.Background(), venues, "boat"); !errors.Is(err, usecases.ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestRouteService_Plan_SinglePointSkipsBackend(t *testing.T) {
	routing := &mockRouting{}
	svc := usecases.NewRouteService(routing, nil, nil, usecases.RouteServiceConfig{})

	plan, err := svc.Plan(context.Background(), venues[:1], "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if routing.calls != 0 {
		t.Errorf("expected no backend call, got %d", routing.calls)
	}
	if len(plan.Points) != 1 || plan.Points[0].OriginalIndex != nil {
		t.Errorf("single point must be returned unchanged, got %+v", plan.Points)
	}
}

func TestPlanStatsService(t *testing.T) {
	stats := usecases.NewPlanStatsService()
	ctx := context.Background()

	_ = stats.Record(ctx, &domain.RoutePlanned{Profile: "foot", LengthKm: 2, HasRoad: true})
	_ = stats.Record(ctx, &domain.RoutePlanned{Profile: "foot", LengthKm: 4})
	_ = stats.Record(ctx, &domain.RoutePlanned{Profile: "bike", LengthKm: 10, HasRoad: true})

	snap := stats.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(snap))
	}
	if snap[0].Profile != "bike" || snap[1].Profile != "foot" {
		t.Errorf("expected sorted profiles, got %v", snap)
	}
	foot := snap[1]
	if foot.Plans != 2 || foot.WithRoad != 1 || foot.TotalKm != 6 || foot.AvgKm != 3 {
		t.Errorf("unexpected foot stats %+v", foot)
	}
}
