// Package weaver turns a spreading-activation result into a short
// utterance. It is a templated narration of a graph traversal, nothing
// more: when the activation is too weak to say anything honest, it
// declines and the caller falls back externally.
package weaver

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"synaptic/internal/chem"
	"synaptic/internal/store"
)

// MinPeakEnergy is the rendering quality gate: below this peak energy
// the activation is considered too weak to narrate.
const MinPeakEnergy = 0.2

// Energy floors for using a node in a rendered sentence.
const (
	responseNodeEnergy = 0.3
	conceptNodeEnergy  = 0.2
)

// Template families. {a}/{b} are the two strongest concepts, {concept}
// the single subject, {detail} a connection summary.
var associationTemplates = []string{
	"When I think of %[1]s, %[2]s comes to mind.",
	"%[1]s reminds me of %[2]s.",
	"I think %[1]s is connected to %[2]s.",
	"I know %[1]s has something to do with %[2]s.",
}

var curiosityTemplates = []string{
	"Does %[1]s connect with %[2]s? I'd like to explore that.",
	"I wonder how %[1]s and %[2]s relate.",
}

var explanationTemplates = []string{
	"%[1]s is something I've learned about. %[2]s",
	"About %[1]s: %[2]s",
	"%[1]s... %[2]s",
}

var uncertaintyTemplates = []string{
	"%[1]s rings a bell, but I don't have it clear yet.",
	"I know a little about %[1]s, but I need to learn more.",
	"I've heard about %[1]s. Can you tell me more?",
}

// Per-tone framing pools. Neutral has no framing.
var tonePrefixes = map[string][]string{
	chem.ToneWarm:       {"I like this connection: ", "This feels right: "},
	chem.ToneFocused:    {"Key point: ", "Concretely: "},
	chem.ToneDefensive:  {"Cautiously: ", "One step at a time: "},
	chem.ToneReflective: {"Looking at it calmly: ", "Thinking it over: "},
}

// Weaver renders activation results as text.
type Weaver struct {
	db  *store.DB
	rng *rand.Rand

	mu       sync.Mutex
	lastPick map[string]int // per-pool last template index, no immediate repeats
}

// New returns a Weaver with a time-seeded random source.
func New(db *store.DB) *Weaver {
	return NewWithRand(db, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand returns a Weaver over an explicit random source, so tests
// can pin template selection.
func NewWithRand(db *store.DB, rng *rand.Rand) *Weaver {
	return &Weaver{
		db:       db,
		rng:      rng,
		lastPick: make(map[string]int),
	}
}

// Weave produces an utterance from one activation result and a tone tag.
// Returns ok=false, the explicit "no answer", when fewer than two
// distinct nodes fired or the peak energy is below the rendering gate.
func (w *Weaver) Weave(result *store.ActivationResult, trigger, tone string) (string, bool) {
	if result == nil || len(result.Fired) < 2 {
		return "", false
	}
	if result.PeakEnergy < MinPeakEnergy {
		return "", false
	}

	// A strongly-activated response fragment is used verbatim.
	for _, f := range result.Fired {
		if f.Node.NodeType == "response" && f.Energy > responseNodeEnergy {
			return f.Node.Label, true
		}
	}

	var concepts []store.FiredNode
	for _, f := range result.Fired {
		if f.Node.NodeType == "concept" && f.Energy > conceptNodeEnergy {
			concepts = append(concepts, f)
		}
	}

	var body string
	switch {
	case len(concepts) >= 2:
		body = w.associationBody(concepts[0].Node.Label, concepts[1].Node.Label)
	case len(concepts) == 1:
		body = w.singleConceptBody(concepts[0].Node.Label)
	default:
		return "", false
	}
	if body == "" {
		return "", false
	}

	return w.applyTone(body, tone), true
}

// associationBody narrates the two strongest concepts: an association
// form when they are directly connected, a curiosity form when not.
func (w *Weaver) associationBody(a, b string) string {
	conns, err := w.db.StrongestConnections(a, 5)
	if err != nil {
		log.Printf("weave: connections for %q: %v", a, err)
		return ""
	}

	connected := false
	for _, c := range conns {
		if c.Label == b {
			connected = true
			break
		}
	}

	if connected {
		return fmt.Sprintf(w.pick("association", associationTemplates), a, b)
	}
	return fmt.Sprintf(w.pick("curiosity", curiosityTemplates), a, b)
}

// singleConceptBody narrates one concept using its strongest neighbors,
// or admits uncertainty when it has none.
func (w *Weaver) singleConceptBody(label string) string {
	conns, err := w.db.StrongestConnections(label, 3)
	if err != nil {
		log.Printf("weave: connections for %q: %v", label, err)
		return ""
	}

	if len(conns) == 0 {
		return fmt.Sprintf(w.pick("uncertainty", uncertaintyTemplates), label)
	}

	n := len(conns)
	if n > 2 {
		n = 2
	}
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = conns[i].Label
	}
	detail := fmt.Sprintf("It connects with %s.", strings.Join(labels, ", "))
	return fmt.Sprintf(w.pick("explanation", explanationTemplates), label, detail)
}

func (w *Weaver) applyTone(body, tone string) string {
	pool, ok := tonePrefixes[tone]
	if !ok {
		return body
	}
	return w.pick("tone:"+tone, pool) + body
}

// pick selects a template from a pool, never repeating the previous
// selection for the same pool within a session.
func (w *Weaver) pick(key string, pool []string) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(pool) == 1 {
		return pool[0]
	}

	idx := w.rng.Intn(len(pool))
	if last, seen := w.lastPick[key]; seen && idx == last {
		idx = (idx + 1) % len(pool)
	}
	w.lastPick[key] = idx
	return pool[idx]
}
