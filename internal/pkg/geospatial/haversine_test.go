package geospatial_test

import (
	"math"
	"testing"

	"github.com/kulturapass/kulturapass/internal/core/domain"
	"github.com/kulturapass/kulturapass/internal/pkg/geospatial"
)

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Guggenheim Bilbao to Museo de Bellas Artes, roughly 0.5 km.
	d := geospatial.HaversineKm(43.2687, -2.9340, 43.2660, -2.9383)
	if d < 0.3 || d > 0.7 {
		t.Fatalf("expected ~0.45 km, got %f", d)
	}

	// One degree of latitude on a 6371 km sphere.
	d = geospatial.HaversineKm(0, 0, 1, 0)
	want := 6371.0 * math.Pi / 180
	if math.Abs(d-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, d)
	}
}

func TestHaversineKm_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{43.2630, -2.9350, 40.4168, -3.7038},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{0, 179.9, 0, -179.9},
		{95, 200, -95, -200}, // out of range is accepted
	}
	for _, p := range pairs {
		ab := geospatial.HaversineKm(p[0], p[1], p[2], p[3])
		ba := geospatial.HaversineKm(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("asymmetric distance for %v: %f vs %f", p, ab, ba)
		}
	}
}

func TestHaversineKm_SamePoint(t *testing.T) {
	if d := geospatial.HaversineKm(43.26, -2.93, 43.26, -2.93); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestTourLengthKm(t *testing.T) {
	pts := []domain.RoutePoint{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 0}, {Lat: 2, Lng: 0}}
	want := 2 * 6371.0 * math.Pi / 180
	if got := geospatial.TourLengthKm(pts); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, got)
	}
	if got := geospatial.TourLengthKm(pts[:1]); got != 0 {
		t.Errorf("single point tour should be 0, got %f", got)
	}
}

func TestBounds(t *testing.T) {
	b := geospatial.Bounds([]domain.RoutePoint{
		{Lat: 43.26, Lng: -2.93},
		{Lat: 43.30, Lng: -2.99},
		{Lat: 43.21, Lng: -2.90},
	})
	want := domain.Bounds{MinLat: 43.21, MinLng: -2.99, MaxLat: 43.30, MaxLng: -2.90}
	if b != want {
		t.Errorf("expected %+v, got %+v", want, b)
	}
	if got := geospatial.Bounds(nil); got != (domain.Bounds{}) {
		t.Errorf("expected zero bounds, got %+v", got)
	}
}
