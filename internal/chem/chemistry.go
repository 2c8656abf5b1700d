// Package chem holds the five bounded neuromodulator scalars that
// reparameterize the graph engine at runtime. The engine only ever reads
// derived parameters; all mutation funnels through Modulate/Homeostasis
// behind a single lock.
package chem

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"synaptic/internal/store"
)

// Event is one discrete occurrence the chemistry reacts to. The
// vocabulary is closed: each event carries a fixed delta vector.
type Event string

const (
	EventPositiveFeedback Event = "positive-feedback"
	EventNegativeFeedback Event = "negative-feedback"
	EventDiscovery        Event = "discovery"
	EventUnansweredInput  Event = "unanswered-input"
	EventProlongedSilence Event = "prolonged-silence"
	EventHighSurprise     Event = "high-surprise"
)

// Tone labels derived from the scalar state, consumed only by the weaver.
const (
	ToneWarm       = "warm"
	ToneFocused    = "focused"
	ToneDefensive  = "defensive"
	ToneReflective = "reflective"
	ToneNeutral    = "neutral"
)

// Baselines the scalars relax toward. Norepinephrine and cortisol sit
// below the midpoint: the resting state is calm, not vigilant.
const (
	baselineDopamine       = 0.5
	baselineSerotonin      = 0.5
	baselineNorepinephrine = 0.3
	baselineCortisol       = 0.1
	baselineOxytocin       = 0.3
)

// oppositionFraction is the dopamine/serotonin antagonism: an event that
// raises one by Δ pulls the other down by this fraction of Δ.
const oppositionFraction = 0.3

// delta is one event's fixed adjustment vector.
type delta struct {
	dopamine       float64
	serotonin      float64
	norepinephrine float64
	cortisol       float64
	oxytocin       float64
}

var eventDeltas = map[Event]delta{
	// Reward plus social warmth, stress relief.
	EventPositiveFeedback: {dopamine: 0.15, oxytocin: 0.10, cortisol: -0.05},
	// Reward drop, stress and alertness spike.
	EventNegativeFeedback: {dopamine: -0.10, cortisol: 0.15, norepinephrine: 0.10},
	// Novelty reward with a calm afterglow.
	EventDiscovery: {dopamine: 0.20, serotonin: 0.10},
	// Input we could not answer: mild stress, sharpened attention.
	EventUnansweredInput: {cortisol: 0.10, norepinephrine: 0.15},
	// Long idle: settle into a waiting state.
	EventProlongedSilence: {serotonin: 0.06, dopamine: -0.04, norepinephrine: -0.02},
	// Unexpected structure in the graph: vigilance with a reward edge.
	EventHighSurprise: {norepinephrine: 0.15, dopamine: 0.05, cortisol: 0.05},
}

// Params is the parameter bundle the graph engine consumes. A pure
// function of the scalar state: same state, same params.
type Params struct {
	ActivationThreshold float64 `json:"activation_threshold"`
	DecayFactor         float64 `json:"decay_factor"`
	MaxDepth            int     `json:"max_propagation_depth"`
	Plasticity          float64 `json:"plasticity"`
}

// Snapshot is the rounded display view of the scalars plus derived tone.
type Snapshot struct {
	Dopamine       float64 `json:"dopamine"`
	Serotonin      float64 `json:"serotonin"`
	Norepinephrine float64 `json:"norepinephrine"`
	Cortisol       float64 `json:"cortisol"`
	Oxytocin       float64 `json:"oxytocin"`
	Tone           string  `json:"tone"`
}

// Chemistry is the session-scoped neuromodulation state.
type Chemistry struct {
	mu sync.Mutex

	dopamine       float64
	serotonin      float64
	norepinephrine float64
	cortisol       float64
	oxytocin       float64
}

// New returns a Chemistry at baseline.
func New() *Chemistry {
	return &Chemistry{
		dopamine:       baselineDopamine,
		serotonin:      baselineSerotonin,
		norepinephrine: baselineNorepinephrine,
		cortisol:       baselineCortisol,
		oxytocin:       baselineOxytocin,
	}
}

// Modulate applies one event's delta vector, then the dopamine/serotonin
// opposition, then clamps every scalar to [0,1]. Unknown events are a
// no-op: the vocabulary is closed and callers hold typed constants.
func (c *Chemistry) Modulate(event Event) {
	d, ok := eventDeltas[event]
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Go-vs-wait antagonism: a rise in either drive suppresses the other.
	dDop, dSer := d.dopamine, d.serotonin
	if d.dopamine > 0 {
		dSer -= oppositionFraction * d.dopamine
	}
	if d.serotonin > 0 {
		dDop -= oppositionFraction * d.serotonin
	}

	c.dopamine = clamp01(c.dopamine + dDop)
	c.serotonin = clamp01(c.serotonin + dSer)
	c.norepinephrine = clamp01(c.norepinephrine + d.norepinephrine)
	c.cortisol = clamp01(c.cortisol + d.cortisol)
	c.oxytocin = clamp01(c.oxytocin + d.oxytocin)
}

// Homeostasis moves each scalar a speed-fraction of the distance toward
// its baseline, so un-reinforced excursions fade over time.
func (c *Chemistry) Homeostasis(speed float64) {
	speed = clamp01(speed)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.dopamine = clamp01(c.dopamine + (baselineDopamine-c.dopamine)*speed)
	c.serotonin = clamp01(c.serotonin + (baselineSerotonin-c.serotonin)*speed)
	c.norepinephrine = clamp01(c.norepinephrine + (baselineNorepinephrine-c.norepinephrine)*speed)
	c.cortisol = clamp01(c.cortisol + (baselineCortisol-c.cortisol)*speed)
	c.oxytocin = clamp01(c.oxytocin + (baselineOxytocin-c.oxytocin)*speed)
}

// GraphParams derives the engine's parameter bundle from the scalars.
// Directional contract: norepinephrine lowers the threshold, cortisol
// raises it; serotonin deepens and widens propagation, cortisol narrows
// it; dopamine raises plasticity.
func (c *Chemistry) GraphParams() Params {
	c.mu.Lock()
	defer c.mu.Unlock()

	depth := int(math.Round(4 + c.serotonin*2 - c.cortisol*2))
	if depth < 2 {
		depth = 2
	}
	if depth > 7 {
		depth = 7
	}

	threshold := 0.15 * (1.0 - c.norepinephrine*0.25 + c.cortisol*0.35)
	threshold = clampRange(threshold, 0.06, 0.4)

	decay := 0.6 * (1.0 + c.serotonin*0.2 - c.cortisol*0.25)
	decay = clampRange(decay, 0.35, 0.9)

	plasticity := 1.0 + c.dopamine*0.5 - c.cortisol*0.3
	plasticity = clampRange(plasticity, 0.6, 1.8)

	return Params{
		ActivationThreshold: threshold,
		DecayFactor:         decay,
		MaxDepth:            depth,
		Plasticity:          plasticity,
	}
}

// Tone classifies the scalar state into a discrete label for the weaver.
// Checked in priority order: stress dominates, then warmth, alertness,
// calm reflection, and finally neutral.
func (c *Chemistry) Tone() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.cortisol > 0.6:
		return ToneDefensive
	case c.dopamine > 0.65 && c.oxytocin > 0.45:
		return ToneWarm
	case c.norepinephrine > 0.6:
		return ToneFocused
	case c.serotonin > 0.65:
		return ToneReflective
	default:
		return ToneNeutral
	}
}

// Snapshot returns rounded scalar values plus the derived tone.
func (c *Chemistry) Snapshot() Snapshot {
	tone := c.Tone()

	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Dopamine:       round2(c.dopamine),
		Serotonin:      round2(c.serotonin),
		Norepinephrine: round2(c.norepinephrine),
		Cortisol:       round2(c.cortisol),
		Oxytocin:       round2(c.oxytocin),
		Tone:           tone,
	}
}

// State table keys for persistence.
const (
	keyDopamine       = "chem_dopamine"
	keySerotonin      = "chem_serotonin"
	keyNorepinephrine = "chem_norepinephrine"
	keyCortisol       = "chem_cortisol"
	keyOxytocin       = "chem_oxytocin"
)

// Save writes the five scalars to the store's state table at full
// precision, so a reload round-trips exactly.
func (c *Chemistry) Save(db *store.DB) error {
	c.mu.Lock()
	values := map[string]float64{
		keyDopamine:       c.dopamine,
		keySerotonin:      c.serotonin,
		keyNorepinephrine: c.norepinephrine,
		keyCortisol:       c.cortisol,
		keyOxytocin:       c.oxytocin,
	}
	c.mu.Unlock()

	for key, v := range values {
		if err := db.SaveState(key, strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Load returns a Chemistry restored from the state table. Missing keys
// keep their baseline defaults; malformed values are an error.
func Load(db *store.DB) (*Chemistry, error) {
	c := New()

	load := func(key string, target *float64) error {
		raw, ok, err := db.LoadState(key)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parse %s=%q: %w", key, raw, err)
		}
		*target = clamp01(v)
		return nil
	}

	for key, target := range map[string]*float64{
		keyDopamine:       &c.dopamine,
		keySerotonin:      &c.serotonin,
		keyNorepinephrine: &c.norepinephrine,
		keyCortisol:       &c.cortisol,
		keyOxytocin:       &c.oxytocin,
	} {
		if err := load(key, target); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
