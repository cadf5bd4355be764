// Package routeorder orders venue waypoints into a short visiting tour.
package routeorder

import (
	"github.com/kulturapass/kulturapass/internal/core/domain"
	"github.com/kulturapass/kulturapass/internal/pkg/geospatial"
)

// Optimize returns a greedy nearest-neighbor tour over points, starting at
// points[0]. Inputs of up to two points are returned unchanged and without
// OriginalIndex annotations. Otherwise every returned point is a copy
// carrying its position in points.
//
// Ties are broken in favor of the candidate seen first.
func Optimize(points []domain.RoutePoint) []domain.RoutePoint {
	if len(points) <= 2 {
		return points
	}

	pool := make([]domain.RoutePoint, len(points))
	for i, p := range points {
		pool[i] = p.WithOriginalIndex(i)
	}

	tour := make([]domain.RoutePoint, 0, len(points))
	current := pool[0]
	tour = append(tour, current)
	pool = pool[1:]

	for len(pool) > 0 {
		best := 0
		bestDist := geospatial.DistanceKm(current, pool[0])
		for i := 1; i < len(pool); i++ {
			if d := geospatial.DistanceKm(current, pool[i]); d < bestDist {
				best, bestDist = i, d
			}
		}

		current = pool[best]
		tour = append(tour, current)
		// Preserve pool order so later ties still resolve by input position.
		pool = append(pool[:best], pool[best+1:]...)
	}

	return tour
}
