package engine

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"synaptic/internal/chem"
	"synaptic/internal/store"
)

func testWanderer(t *testing.T) (*Wanderer, *Engine) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wander.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	chemistry := chem.New()
	w := NewWanderer(path, chemistry, time.Second, time.Minute)
	return w, New(db, chemistry)
}

func TestWanderStepEmptyGraphIsQuiet(t *testing.T) {
	w, eng := testWanderer(t)

	if err := w.step(eng, 0); err != nil {
		t.Fatalf("step: %v", err)
	}
	if got := w.Thoughts(0); len(got) != 0 {
		t.Errorf("thoughts = %d, want 0 on an empty graph", len(got))
	}
}

func TestWanderStepRecordsThought(t *testing.T) {
	w, eng := testWanderer(t)

	eng.DB.Connect("mar", "agua", 0.8, "association")
	eng.DB.Connect("agua", "vida", 0.7, "association")

	if err := w.step(eng, 0); err != nil {
		t.Fatalf("step: %v", err)
	}

	thoughts := w.Thoughts(0)
	if len(thoughts) != 1 {
		t.Fatalf("thoughts = %d, want 1", len(thoughts))
	}
	th := thoughts[0]
	if th.Seed == "" {
		t.Error("thought has no seed")
	}
	if th.Energy <= 0 {
		t.Errorf("thought energy = %f, want > 0", th.Energy)
	}

	// The recent window is persisted for restart continuity.
	if _, ok, err := eng.DB.LoadState("wander_recent"); err != nil || !ok {
		t.Errorf("wander_recent not persisted (ok=%v, err=%v)", ok, err)
	}
}

func TestWanderThoughtsLimit(t *testing.T) {
	w, eng := testWanderer(t)

	eng.DB.Connect("a", "b", 0.9, "association")
	for i := 0; i < 4; i++ {
		if err := w.step(eng, 0); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if got := w.Thoughts(2); len(got) != 2 {
		t.Errorf("Thoughts(2) = %d entries, want 2", len(got))
	}
	if got := w.Thoughts(0); len(got) != 4 {
		t.Errorf("Thoughts(0) = %d entries, want all 4", len(got))
	}
}

func TestSignalSilenceFiresOncePerIdleSpan(t *testing.T) {
	w, _ := testWanderer(t)
	base := w.chem.Snapshot()

	w.signalSilence(5 * time.Minute)
	first := w.chem.Snapshot()
	if first.Serotonin <= base.Serotonin {
		t.Errorf("serotonin = %f, want raised by prolonged silence", first.Serotonin)
	}

	w.signalSilence(6 * time.Minute)
	if w.chem.Snapshot() != first {
		t.Error("second silence signal in one idle span moved chemistry")
	}

	// Activity resets the span; the next long silence signals again.
	w.Touch()
	w.signalSilence(5 * time.Minute)
	if w.chem.Snapshot() == first {
		t.Error("silence after activity did not signal")
	}
}

func TestSignalSilenceBelowThreshold(t *testing.T) {
	w, _ := testWanderer(t)
	base := w.chem.Snapshot()

	w.signalSilence(2 * time.Minute) // under 4×minIdle
	if w.chem.Snapshot() != base {
		t.Error("short idle moved chemistry")
	}
}

func TestSurpriseHeuristic(t *testing.T) {
	w, eng := testWanderer(t)

	eng.DB.GetOrCreateNode("isla", "concept")
	s, err := w.surpriseFor(eng.DB, "isla")
	if err != nil {
		t.Fatalf("surpriseFor: %v", err)
	}
	if s != 0.8 {
		t.Errorf("surprise for isolated node = %f, want 0.8", s)
	}

	eng.DB.Connect("isla", "mar", 0.5, "association")
	s, err = w.surpriseFor(eng.DB, "isla")
	if err != nil {
		t.Fatalf("surpriseFor: %v", err)
	}
	if math.Abs(s-0.3) > 1e-9 {
		t.Errorf("surprise with 0.5 connection = %f, want 0.3", s)
	}

	eng.DB.Connect("isla", "playa", 1.0, "association")
	s, err = w.surpriseFor(eng.DB, "isla")
	if err != nil {
		t.Fatalf("surpriseFor: %v", err)
	}
	if s != 0.1 {
		t.Errorf("surprise with strong connection = %f, want 0.1 floor", s)
	}
}

func TestWandererStopIsIdempotent(t *testing.T) {
	w, _ := testWanderer(t)

	w.Stop()
	w.Stop() // must not panic on the closed channel

	if w.Running() {
		t.Error("Running() = true after Stop without Start")
	}
}

func TestWandererStartAfterStopStaysDown(t *testing.T) {
	w, _ := testWanderer(t)
	w.Stop()

	w.Start()
	// The loop exits immediately on the already-closed stop channel.
	deadline := time.Now().Add(time.Second)
	for w.Running() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if w.Running() {
		t.Error("loop still running after stop")
	}
}
