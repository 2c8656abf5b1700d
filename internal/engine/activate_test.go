package engine

import (
	"math"
	"testing"

	"synaptic/internal/chem"
	"synaptic/internal/store"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, chem.New())
}

func defaultParams() chem.Params {
	return chem.Params{
		ActivationThreshold: 0.15,
		DecayFactor:         0.6,
		MaxDepth:            4,
		Plasticity:          1.0,
	}
}

func TestActivateEmptyGraphCreatesSeed(t *testing.T) {
	eng := testEngine(t)

	result, err := eng.Activate([]string{"perro"}, "perro", defaultParams())
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if result.TotalFired != 1 {
		t.Fatalf("TotalFired = %d, want 1", result.TotalFired)
	}
	if result.Fired[0].Node.Label != "perro" {
		t.Errorf("fired label = %q, want perro", result.Fired[0].Node.Label)
	}
	if result.Fired[0].Energy != 1.0 {
		t.Errorf("seed energy = %f, want 1.0", result.Fired[0].Energy)
	}
	if result.PeakEnergy != 1.0 {
		t.Errorf("peak energy = %f, want 1.0", result.PeakEnergy)
	}

	// The seed now exists in the graph with one fire on record.
	node, err := eng.DB.GetNode("perro")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if node == nil {
		t.Fatal("seed node was not created")
	}
	if node.FireCount != 1 {
		t.Errorf("fire_count = %d, want 1", node.FireCount)
	}
}

func TestActivateThresholdCutoff(t *testing.T) {
	eng := testEngine(t)

	eng.DB.Connect("perro", "animal", 0.7, "association")
	eng.DB.Connect("animal", "vivo", 0.5, "association")

	params := chem.Params{ActivationThreshold: 0.2, DecayFactor: 0.6, MaxDepth: 4}
	result, err := eng.Activate([]string{"perro"}, "perro", params)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	// animal fires at 1.0·0.7·0.6 = 0.42; vivo would arrive at
	// 0.42·0.5·0.6 = 0.126 < 0.2 and must not fire.
	if result.TotalFired != 2 {
		t.Fatalf("TotalFired = %d, want 2 (got %+v)", result.TotalFired, result.Fired)
	}
	if result.Fired[0].Node.Label != "perro" || result.Fired[1].Node.Label != "animal" {
		t.Errorf("fired order = %q, %q; want perro, animal",
			result.Fired[0].Node.Label, result.Fired[1].Node.Label)
	}
	if math.Abs(result.Fired[1].Energy-0.42) > 1e-9 {
		t.Errorf("animal energy = %f, want 0.42", result.Fired[1].Energy)
	}

	vivo, _ := eng.DB.GetNode("vivo")
	if vivo.FireCount != 0 {
		t.Errorf("vivo fire_count = %d, want 0 (below threshold)", vivo.FireCount)
	}
}

func TestActivateDepthLimit(t *testing.T) {
	eng := testEngine(t)

	eng.DB.Connect("a", "b", 1.0, "association")
	eng.DB.Connect("b", "c", 1.0, "association")
	eng.DB.Connect("c", "d", 1.0, "association")

	params := chem.Params{ActivationThreshold: 0.06, DecayFactor: 0.9, MaxDepth: 2}
	result, err := eng.Activate([]string{"a"}, "a", params)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	// a (0), b (1), c (2); d sits at depth 3, past the limit.
	if result.TotalFired != 3 {
		t.Errorf("TotalFired = %d, want 3", result.TotalFired)
	}
	for _, f := range result.Fired {
		if f.Node.Label == "d" {
			t.Error("node beyond max depth fired")
		}
	}
}

func TestActivateCycleFiresOnce(t *testing.T) {
	eng := testEngine(t)

	eng.DB.Connect("a", "b", 0.9, "association")
	eng.DB.Connect("b", "a", 0.9, "association")

	params := chem.Params{ActivationThreshold: 0.06, DecayFactor: 0.9, MaxDepth: 6}
	result, err := eng.Activate([]string{"a"}, "a", params)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if result.TotalFired != 2 {
		t.Fatalf("TotalFired = %d, want 2", result.TotalFired)
	}

	for _, label := range []string{"a", "b"} {
		node, _ := eng.DB.GetNode(label)
		if node.FireCount != 1 {
			t.Errorf("%s fire_count = %d, want 1 (single fire per run)", label, node.FireCount)
		}
	}
}

func TestActivateDeterministic(t *testing.T) {
	eng := testEngine(t)

	eng.DB.Connect("x", "y", 0.8, "association")
	eng.DB.Connect("x", "z", 0.6, "association")
	eng.DB.Connect("y", "z", 0.5, "association")

	params := defaultParams()
	first, err := eng.Activate([]string{"x"}, "x", params)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	second, err := eng.Activate([]string{"x"}, "x", params)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if first.TotalFired != second.TotalFired {
		t.Fatalf("fired counts differ: %d vs %d", first.TotalFired, second.TotalFired)
	}
	for i := range first.Fired {
		if first.Fired[i].Node.Label != second.Fired[i].Node.Label {
			t.Errorf("order differs at %d: %q vs %q",
				i, first.Fired[i].Node.Label, second.Fired[i].Node.Label)
		}
		if first.Fired[i].Energy != second.Fired[i].Energy {
			t.Errorf("energy differs at %d: %f vs %f",
				i, first.Fired[i].Energy, second.Fired[i].Energy)
		}
	}
}

func TestActivateMultipleSeedsShareVisitedSet(t *testing.T) {
	eng := testEngine(t)

	eng.DB.Connect("a", "c", 0.9, "association")
	eng.DB.Connect("b", "c", 0.5, "association")

	params := chem.Params{ActivationThreshold: 0.1, DecayFactor: 0.9, MaxDepth: 3}
	result, err := eng.Activate([]string{"a", "b"}, "a, b", params)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if result.TotalFired != 3 {
		t.Fatalf("TotalFired = %d, want 3", result.TotalFired)
	}

	// c is reachable from both seeds but fires once, keeping the
	// stronger path's energy.
	c, _ := eng.DB.GetNode("c")
	if c.FireCount != 1 {
		t.Errorf("c fire_count = %d, want 1", c.FireCount)
	}
	for _, f := range result.Fired {
		if f.Node.Label == "c" && math.Abs(f.Energy-0.81) > 1e-9 {
			t.Errorf("c energy = %f, want 0.81 (stronger path)", f.Energy)
		}
	}
}

func TestActivateAppendsAuditEntry(t *testing.T) {
	eng := testEngine(t)

	result, err := eng.Activate([]string{"perro"}, "el perro ladra", defaultParams())
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if result.RunID == "" {
		t.Error("expected a run id")
	}

	entries, err := eng.DB.RecentActivations(5)
	if err != nil {
		t.Fatalf("RecentActivations: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Trigger != "el perro ladra" {
		t.Errorf("trigger = %q, want caller text", e.Trigger)
	}
	if e.NodesFired != 1 || e.PeakNode != "perro" || e.PeakEnergy != 1.0 {
		t.Errorf("entry = %+v, want 1 fired, peak perro at 1.0", e)
	}
}

func TestActivateResetsEnergiesBetweenRuns(t *testing.T) {
	eng := testEngine(t)

	eng.DB.Connect("sol", "calor", 0.9, "association")

	if _, err := eng.Activate([]string{"sol"}, "sol", defaultParams()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if _, err := eng.Activate([]string{"luna"}, "luna", defaultParams()); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	// sol took no part in the second run; its energy is back at resting.
	sol, _ := eng.DB.GetNode("sol")
	if sol.Energy != sol.Resting {
		t.Errorf("sol energy = %f, want resting %f after unrelated run", sol.Energy, sol.Resting)
	}
}
