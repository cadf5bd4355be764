package usecases

import (
	"context"
	"sort"
	"sync"

	"github.com/kulturapass/kulturapass/internal/core/domain"
)

// PlanStatsService aggregates route-planned events in memory.
type PlanStatsService struct {
	mu        sync.RWMutex
	byProfile map[string]*domain.PlanStats
}

// NewPlanStatsService creates an empty PlanStatsService.
func NewPlanStatsService() *PlanStatsService {
	return &PlanStatsService{byProfile: make(map[string]*domain.PlanStats)}
}

// Record adds one event. Its signature matches ports.EventSubscriber handlers.
func (s *PlanStatsService) Record(_ context.Context, event *domain.RoutePlanned) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byProfile[event.Profile]
	if !ok {
		st = &domain.PlanStats{Profile: event.Profile}
		s.byProfile[event.Profile] = st
	}
	st.Plans++
	if event.HasRoad {
		st.WithRoad++
	}
	st.TotalKm += event.LengthKm
	st.AvgKm = st.TotalKm / float64(st.Plans)
	return nil
}

// Snapshot returns a copy of the aggregates sorted by profile.
func (s *PlanStatsService) Snapshot() []domain.PlanStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PlanStats, 0, len(s.byProfile))
	for _, st := range s.byProfile {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile < out[j].Profile })
	return out
}
