package geospatial

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/kulturapass/kulturapass/internal/core/domain"
)

func TestPlanFeatureCollection_Tour(t *testing.T) {
	plan := &domain.RoutePlan{
		Points: []domain.RoutePoint{
			domain.RoutePoint{Lat: 43.26, Lng: -2.93}.WithOriginalIndex(0),
			domain.RoutePoint{Lat: 43.25, Lng: -2.92}.WithOriginalIndex(2),
			domain.RoutePoint{Lat: 43.27, Lng: -2.94}.WithOriginalIndex(1),
		},
		LengthKm: 3.1,
	}

	fc := PlanFeatureCollection(plan)
	if len(fc.Features) != 4 {
		t.Fatalf("expected 3 points and 1 line, got %d features", len(fc.Features))
	}

	first, ok := fc.Features[0].Geometry.(orb.Point)
	if !ok {
		t.Fatalf("expected a point, got %T", fc.Features[0].Geometry)
	}
	if first.Lon() != -2.93 || first.Lat() != 43.26 {
		t.Errorf("expected lng,lat order, got %v", first)
	}
	if fc.Features[1].Properties["originalIndex"] != 2 {
		t.Errorf("expected originalIndex 2, got %v", fc.Features[1].Properties["originalIndex"])
	}

	line := fc.Features[3]
	if _, ok := line.Geometry.(orb.LineString); !ok {
		t.Fatalf("expected a line string, got %T", line.Geometry)
	}
	if line.Properties["kind"] != "tour" {
		t.Errorf("expected tour line, got %v", line.Properties["kind"])
	}
	if _, ok := line.Properties["plan_id"]; ok {
		t.Error("optimize-only plans have no plan_id")
	}
}

func TestPlanFeatureCollection_Road(t *testing.T) {
	plan := &domain.RoutePlan{
		ID:     "abc",
		Points: []domain.RoutePoint{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}},
		Geometry: []domain.RoutePoint{
			{Lat: 1, Lng: 2}, {Lat: 2, Lng: 3}, {Lat: 3, Lng: 4},
		},
		RoadDistanceM: 1200,
	}

	fc := PlanFeatureCollection(plan)
	line := fc.Features[len(fc.Features)-1]
	ls := line.Geometry.(orb.LineString)
	if len(ls) != 3 {
		t.Errorf("expected 3 road vertices, got %d", len(ls))
	}
	if line.Properties["kind"] != "road" || line.Properties["plan_id"] != "abc" {
		t.Errorf("unexpected properties %v", line.Properties)
	}
}

func TestPlanFeatureCollection_SinglePoint(t *testing.T) {
	plan := &domain.RoutePlan{Points: []domain.RoutePoint{{Lat: 1, Lng: 2}}}
	if n := len(PlanFeatureCollection(plan).Features); n != 1 {
		t.Errorf("expected only the point feature, got %d", n)
	}
}
