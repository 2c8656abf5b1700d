package weaver

import (
	"math/rand"
	"strings"
	"testing"

	"synaptic/internal/chem"
	"synaptic/internal/store"
)

func testWeaver(t *testing.T) (*Weaver, *store.DB) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithRand(db, rand.New(rand.NewSource(1))), db
}

func fired(label, nodeType string, energy float64) store.FiredNode {
	return store.FiredNode{
		Node:   store.Node{Label: label, NodeType: nodeType},
		Energy: energy,
	}
}

func result(peak float64, nodes ...store.FiredNode) *store.ActivationResult {
	return &store.ActivationResult{
		Fired:      nodes,
		TotalFired: len(nodes),
		PeakEnergy: peak,
	}
}

func TestWeaveDeclinesSparseResults(t *testing.T) {
	w, _ := testWeaver(t)

	tones := []string{chem.ToneNeutral, chem.ToneWarm, chem.ToneFocused, chem.ToneDefensive, chem.ToneReflective}
	for _, tone := range tones {
		if text, ok := w.Weave(nil, "x", tone); ok || text != "" {
			t.Errorf("Weave(nil, %s) = %q, %v; want decline", tone, text, ok)
		}

		single := result(1.0, fired("perro", "concept", 1.0))
		if text, ok := w.Weave(single, "x", tone); ok || text != "" {
			t.Errorf("Weave(single node, %s) = %q, %v; want decline", tone, text, ok)
		}
	}
}

func TestWeaveDeclinesWeakPeak(t *testing.T) {
	w, _ := testWeaver(t)

	r := result(0.19,
		fired("perro", "concept", 0.19),
		fired("animal", "concept", 0.15),
	)
	if text, ok := w.Weave(r, "x", chem.ToneNeutral); ok || text != "" {
		t.Errorf("Weave below gate = %q, %v; want decline", text, ok)
	}
}

func TestWeaveResponseNodeVerbatim(t *testing.T) {
	w, _ := testWeaver(t)

	r := result(1.0,
		fired("perro", "concept", 1.0),
		fired("los perros son leales", "response", 0.5),
	)
	text, ok := w.Weave(r, "perro", chem.ToneNeutral)
	if !ok {
		t.Fatal("expected an answer")
	}
	if text != "los perros son leales" {
		t.Errorf("text = %q, want the response node verbatim", text)
	}
}

func TestWeaveWeakResponseNodeIgnored(t *testing.T) {
	w, db := testWeaver(t)
	db.Connect("perro", "animal", 0.8, "association")

	r := result(1.0,
		fired("perro", "concept", 1.0),
		fired("animal", "concept", 0.5),
		fired("una frase guardada", "response", 0.25),
	)
	text, ok := w.Weave(r, "perro", chem.ToneNeutral)
	if !ok {
		t.Fatal("expected an answer")
	}
	if text == "una frase guardada" {
		t.Error("weak response node was used verbatim")
	}
}

func TestWeaveAssociationWhenConnected(t *testing.T) {
	w, db := testWeaver(t)
	db.Connect("perro", "animal", 0.8, "association")

	r := result(1.0,
		fired("perro", "concept", 1.0),
		fired("animal", "concept", 0.5),
	)
	text, ok := w.Weave(r, "perro", chem.ToneNeutral)
	if !ok {
		t.Fatal("expected an answer")
	}
	if !strings.Contains(text, "perro") || !strings.Contains(text, "animal") {
		t.Errorf("text %q does not mention both concepts", text)
	}
	for _, curious := range []string{"wonder", "explore"} {
		if strings.Contains(text, curious) {
			t.Errorf("connected concepts rendered a curiosity form: %q", text)
		}
	}
}

func TestWeaveCuriosityWhenUnconnected(t *testing.T) {
	w, db := testWeaver(t)
	// Both nodes exist but share no synapse.
	db.GetOrCreateNode("perro", "concept")
	db.GetOrCreateNode("luna", "concept")

	r := result(1.0,
		fired("perro", "concept", 1.0),
		fired("luna", "concept", 0.5),
	)
	text, ok := w.Weave(r, "perro", chem.ToneNeutral)
	if !ok {
		t.Fatal("expected an answer")
	}
	if !strings.Contains(text, "wonder") && !strings.Contains(text, "explore") {
		t.Errorf("unconnected concepts rendered a non-curiosity form: %q", text)
	}
}

func TestWeaveSingleConceptUncertainty(t *testing.T) {
	w, db := testWeaver(t)
	db.GetOrCreateNode("estrella", "concept")

	// Second fired node is an emotion, so only one usable concept.
	r := result(1.0,
		fired("estrella", "concept", 1.0),
		fired("asombro", "emotion", 0.4),
	)
	text, ok := w.Weave(r, "estrella", chem.ToneNeutral)
	if !ok {
		t.Fatal("expected an answer")
	}
	if !strings.Contains(text, "estrella") {
		t.Errorf("text %q does not mention the concept", text)
	}
}

func TestWeaveSingleConceptWithNeighbors(t *testing.T) {
	w, db := testWeaver(t)
	db.Connect("sol", "calor", 0.9, "association")
	db.Connect("sol", "luz", 0.7, "association")

	r := result(1.0,
		fired("sol", "concept", 1.0),
		fired("alegria", "emotion", 0.4),
	)
	text, ok := w.Weave(r, "sol", chem.ToneNeutral)
	if !ok {
		t.Fatal("expected an answer")
	}
	if !strings.Contains(text, "calor") {
		t.Errorf("text %q does not surface the strongest neighbor", text)
	}
}

func TestWeaveTonePrefix(t *testing.T) {
	w, db := testWeaver(t)
	db.Connect("perro", "animal", 0.8, "association")

	r := result(1.0,
		fired("perro", "concept", 1.0),
		fired("animal", "concept", 0.5),
	)

	neutral, ok := w.Weave(r, "perro", chem.ToneNeutral)
	if !ok {
		t.Fatal("expected an answer")
	}
	for _, pool := range tonePrefixes {
		for _, prefix := range pool {
			if strings.HasPrefix(neutral, prefix) {
				t.Errorf("neutral text %q carries tone framing", neutral)
			}
		}
	}

	warm, ok := w.Weave(r, "perro", chem.ToneWarm)
	if !ok {
		t.Fatal("expected an answer")
	}
	found := false
	for _, prefix := range tonePrefixes[chem.ToneWarm] {
		if strings.HasPrefix(warm, prefix) {
			found = true
		}
	}
	if !found {
		t.Errorf("warm text %q carries no warm framing", warm)
	}
}

func TestPickNeverRepeatsImmediately(t *testing.T) {
	w, _ := testWeaver(t)

	prev := w.pick("association", associationTemplates)
	for i := 0; i < 50; i++ {
		cur := w.pick("association", associationTemplates)
		if cur == prev {
			t.Fatalf("template repeated back to back at draw %d: %q", i, cur)
		}
		prev = cur
	}
}

func TestPickSingletonPool(t *testing.T) {
	w, _ := testWeaver(t)

	pool := []string{"only"}
	for i := 0; i < 3; i++ {
		if got := w.pick("solo", pool); got != "only" {
			t.Fatalf("pick = %q", got)
		}
	}
}
