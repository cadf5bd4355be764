package domain

// RoutePoint is a geographic coordinate (WGS 84) on a visitor's route.
// OriginalIndex is set only by the route optimizer and records the point's
// position in the input sequence before reordering.
type RoutePoint struct {
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	OriginalIndex *int    `json:"originalIndex,omitempty"`
}

// WithOriginalIndex returns a copy of p annotated with index i.
func (p RoutePoint) WithOriginalIndex(i int) RoutePoint {
	idx := i
	p.OriginalIndex = &idx
	return p
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}
