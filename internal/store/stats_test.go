package store

import (
	"math"
	"testing"
)

func TestGraphStatsEmpty(t *testing.T) {
	db := testDB(t)

	s, err := db.GraphStats()
	if err != nil {
		t.Fatalf("GraphStats: %v", err)
	}
	if s.Nodes != 0 || s.Synapses != 0 || s.Density != 0 {
		t.Errorf("empty stats = %+v, want zeros", s)
	}
}

func TestGraphStats(t *testing.T) {
	db := testDB(t)

	db.Connect("perro", "animal", 0.8, "association")
	db.Connect("animal", "perro", 0.4, "association")
	node, _ := db.GetNode("perro")
	db.MarkFired(node.ID, 1.0)

	s, err := db.GraphStats()
	if err != nil {
		t.Fatalf("GraphStats: %v", err)
	}
	if s.Nodes != 2 || s.Synapses != 2 {
		t.Errorf("counts = %d nodes / %d synapses, want 2/2", s.Nodes, s.Synapses)
	}
	if math.Abs(s.AvgWeight-0.6) > 1e-9 {
		t.Errorf("avg weight = %f, want 0.6", s.AvgWeight)
	}
	if s.MostFiredLabel != "perro" || s.MostFiredCount != 1 {
		t.Errorf("most fired = %s/%d, want perro/1", s.MostFiredLabel, s.MostFiredCount)
	}
	// 2 synapses over 2·1 possible ordered pairs.
	if s.Density != 1.0 {
		t.Errorf("density = %f, want 1.0", s.Density)
	}
}
