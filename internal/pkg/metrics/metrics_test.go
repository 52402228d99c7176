package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManager_Counters(t *testing.T) {
	m := New()

	m.RoadmapToggle(ResultCompleted)
	m.RoadmapToggle(ResultCompleted)
	m.RoadmapToggle(ResultRolledBack)
	m.PersistenceFailed()
	m.RankCache(true)
	m.RankCache(false)
	m.RankCache(false)

	if got := testutil.ToFloat64(m.roadmapToggles.WithLabelValues(ResultCompleted)); got != 2 {
		t.Fatalf("expected 2 completed toggles, got %v", got)
	}
	if got := testutil.ToFloat64(m.roadmapToggles.WithLabelValues(ResultRolledBack)); got != 1 {
		t.Fatalf("expected 1 rollback, got %v", got)
	}
	if got := testutil.ToFloat64(m.persistFailures); got != 1 {
		t.Fatalf("expected 1 persistence failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.rankCache.WithLabelValues("miss")); got != 2 {
		t.Fatalf("expected 2 misses, got %v", got)
	}
}

func TestManager_NilSafe(t *testing.T) {
	var m *Manager
	m.RoadmapToggle(ResultCompleted)
	m.PersistenceFailed()
	m.ObserveReadiness(50)
	if m.Registry() != nil {
		t.Fatalf("expected nil registry")
	}
}
