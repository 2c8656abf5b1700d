// Package engine owns the graph algorithms: spreading activation,
// Hebbian reinforcement, and decay. It is stateless over the store:
// all durable state lives in store, all modulation state in chem.
package engine

import (
	"fmt"
	"log"
	"strings"
	"time"

	"synaptic/internal/chem"
	"synaptic/internal/store"
	"synaptic/internal/weaver"
)

// HebbianIncrement is the base weight gain per co-occurrence, before the
// plasticity multiplier.
const HebbianIncrement = 0.05

// DefaultDecayRate is the per-cycle multiplicative weight loss used by
// the background decay timer.
const DefaultDecayRate = 0.01

// homeostasisSpeed is applied after every learning turn so chemistry
// excursions fade unless re-triggered.
const homeostasisSpeed = 0.02

// Engine runs the graph algorithms over one store handle. The wander
// loop builds its own Engine over its own handle; Engines share nothing
// in memory except the chemistry, which they only read (and mutate
// solely through its own entry points).
type Engine struct {
	DB     *store.DB
	Chem   *chem.Chemistry
	Weaver *weaver.Weaver
	stopCh chan struct{}
}

// New creates an Engine over the given store and chemistry.
func New(db *store.DB, chemistry *chem.Chemistry) *Engine {
	return &Engine{
		DB:     db,
		Chem:   chemistry,
		Weaver: weaver.New(db),
		stopCh: make(chan struct{}),
	}
}

// HebbianLearn strengthens pairwise associations among co-occurring
// labels: every unordered pair of distinct normalized labels gains a
// bidirectional pair of synapses, each by HebbianIncrement × plasticity.
// Returns the number of synapses created or strengthened.
func (e *Engine) HebbianLearn(labels []string, plasticity float64) (int, error) {
	var clean []string
	seen := make(map[string]bool)
	for _, l := range labels {
		norm := store.NormalizeLabel(l)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		clean = append(clean, norm)
	}
	if len(clean) < 2 {
		return 0, nil
	}

	delta := HebbianIncrement * plasticity
	touched := 0
	for i, src := range clean {
		for _, dst := range clean[i+1:] {
			if _, err := e.DB.Connect(src, dst, delta, "association"); err != nil {
				return touched, fmt.Errorf("hebbian %s→%s: %w", src, dst, err)
			}
			if _, err := e.DB.Connect(dst, src, delta, "association"); err != nil {
				return touched, fmt.Errorf("hebbian %s→%s: %w", dst, src, err)
			}
			touched += 2
		}
	}
	return touched, nil
}

// Decay weakens every synapse and prunes those that fall below the
// floor. Returns the number pruned.
func (e *Engine) Decay(rate float64) (int, error) {
	pruned, err := e.DB.DecayAll(rate)
	if err != nil {
		return 0, fmt.Errorf("decay: %w", err)
	}
	if pruned > 0 {
		log.Printf("decay: pruned %d synapses", pruned)
	}
	return pruned, nil
}

// Respond runs one full interactive turn: derive parameters from the
// chemistry, activate from the key terms, reinforce their co-occurrence,
// and weave the result. ok=false means the caller should fall back to
// an external responder. The terms must already be filtered key terms;
// the engine does not tokenize.
func (e *Engine) Respond(terms []string, trigger string) (string, bool, error) {
	params := e.Chem.GraphParams()

	result, err := e.Activate(terms, trigger, params)
	if err != nil {
		return "", false, err
	}

	if _, err := e.HebbianLearn(terms, params.Plasticity); err != nil {
		return "", false, err
	}

	text, ok := e.Weaver.Weave(result, trigger, e.Chem.Tone())

	e.Chem.Homeostasis(homeostasisSpeed)
	if err := e.Chem.Save(e.DB); err != nil {
		log.Printf("respond: persist chemistry: %v", err)
	}

	return text, ok, nil
}

// Feedback routes a turn-quality scalar in [−1,1] into the chemistry.
func (e *Engine) Feedback(score float64) {
	switch {
	case score > 0:
		e.Chem.Modulate(chem.EventPositiveFeedback)
	case score < 0:
		e.Chem.Modulate(chem.EventNegativeFeedback)
	}
}

// StartDecayTimer runs decay once now and then on each interval until
// Stop is called.
func (e *Engine) StartDecayTimer(rate float64, interval time.Duration) {
	if _, err := e.Decay(rate); err != nil {
		log.Printf("decay error: %v", err)
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := e.Decay(rate); err != nil {
					log.Printf("decay error: %v", err)
				}
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the engine's background goroutines.
func (e *Engine) Stop() {
	close(e.stopCh)
}

// TriggerText joins key terms into the audit-log trigger form.
func TriggerText(terms []string) string {
	return strings.Join(terms, ", ")
}
