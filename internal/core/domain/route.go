package domain

import "time"

// Travel profiles understood by the routing backend.
const (
	ProfileFoot = "foot"
	ProfileBike = "bike"
	ProfileCar  = "car"
)

// RoutePlan is an ordered visiting plan over a set of venues.
type RoutePlan struct {
	ID        string       `json:"id,omitempty"`
	Profile   string       `json:"profile,omitempty"`
	Points    []RoutePoint `json:"points"`
	LengthKm  float64      `json:"length_km"` // straight-line tour length
	Bounds    Bounds       `json:"bounds"`
	CreatedAt time.Time    `json:"created_at,omitempty"`

	// Road geometry from the routing backend, decoded from its polyline.
	Geometry        []RoutePoint `json:"geometry,omitempty"`
	GeometrySource  string       `json:"geometry_source,omitempty"`
	GeometryError   string       `json:"geometry_error,omitempty"`
	RoadDistanceM   float64      `json:"road_distance_m,omitempty"`
	RoadDurationSec float64      `json:"road_duration_s,omitempty"`
}

// RoutePlanned is published after a fresh plan has been computed.
type RoutePlanned struct {
	PlanID     string    `json:"plan_id"`
	Profile    string    `json:"profile"`
	PointCount int       `json:"point_count"`
	LengthKm   float64   `json:"length_km"`
	HasRoad    bool      `json:"has_road"`
	PlannedAt  time.Time `json:"planned_at"`
}

// PlanStats aggregates route-planned events for one travel profile.
type PlanStats struct {
	Profile  string  `json:"profile"`
	Plans    int     `json:"plans"`
	WithRoad int     `json:"with_road"`
	TotalKm  float64 `json:"total_km"`
	AvgKm    float64 `json:"avg_km"`
}
