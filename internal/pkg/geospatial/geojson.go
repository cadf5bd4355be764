package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kulturapass/kulturapass/internal/core/domain"
)

// PlanFeatureCollection renders a plan as GeoJSON: one Point feature per
// venue in visiting order, then a LineString through the road geometry or,
// when there is none, through the venues themselves.
func PlanFeatureCollection(plan *domain.RoutePlan) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i, p := range plan.Points {
		f := geojson.NewFeature(toOrb(p))
		f.Properties["order"] = i
		if p.OriginalIndex != nil {
			f.Properties["originalIndex"] = *p.OriginalIndex
		}
		fc.Append(f)
	}

	line, kind := plan.Geometry, "road"
	if len(line) == 0 {
		line, kind = plan.Points, "tour"
	}
	if len(line) < 2 {
		return fc
	}

	ls := make(orb.LineString, len(line))
	for i, p := range line {
		ls[i] = toOrb(p)
	}
	f := geojson.NewFeature(ls)
	f.Properties["kind"] = kind
	f.Properties["length_km"] = plan.LengthKm
	if plan.ID != "" {
		f.Properties["plan_id"] = plan.ID
	}
	if plan.RoadDistanceM > 0 {
		f.Properties["road_distance_m"] = plan.RoadDistanceM
	}
	fc.Append(f)
	return fc
}

// GeoJSON uses lng,lat order.
func toOrb(p domain.RoutePoint) orb.Point {
	return orb.Point{p.Lng, p.Lat}
}
