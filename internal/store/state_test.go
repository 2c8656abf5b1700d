package store

import (
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	db := testDB(t)

	if err := db.SaveState("chem_dopamine", "0.6234567891234"); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	v, ok, err := db.LoadState("chem_dopamine")
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if !ok {
		t.Fatal("key not found after save")
	}
	if v != "0.6234567891234" {
		t.Errorf("value = %q, want exact round-trip", v)
	}
}

func TestStateOverwrite(t *testing.T) {
	db := testDB(t)

	db.SaveState("k", "uno")
	db.SaveState("k", "dos")

	v, _, _ := db.LoadState("k")
	if v != "dos" {
		t.Errorf("value = %q, want %q", v, "dos")
	}
}

func TestStateMissingKey(t *testing.T) {
	db := testDB(t)

	_, ok, err := db.LoadState("nunca")
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if ok {
		t.Error("expected ok=false for missing key")
	}
}

func TestActivationLogAppendOnly(t *testing.T) {
	db := testDB(t)

	runID, err := db.AppendActivation("perro, animal", 3, "perro", 1.0)
	if err != nil {
		t.Fatalf("AppendActivation: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}
	db.AppendActivation("sol", 1, "sol", 1.0)

	entries, err := db.RecentActivations(10)
	if err != nil {
		t.Fatalf("RecentActivations: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Trigger != "sol" {
		t.Errorf("entries[0].Trigger = %q, want %q", entries[0].Trigger, "sol")
	}
	if entries[1].PeakNode != "perro" || entries[1].NodesFired != 3 {
		t.Errorf("oldest entry = %+v, want peak perro / 3 fired", entries[1])
	}
}
