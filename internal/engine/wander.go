package engine

import (
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"synaptic/internal/chem"
	"synaptic/internal/store"
)

// Thought is one wander-loop result kept for the observability surface.
type Thought struct {
	Seed      string  `json:"seed"`
	Text      string  `json:"text"`
	Energy    float64 `json:"energy"`
	Surprise  float64 `json:"surprise"`
	Timestamp int64   `json:"timestamp"`
}

const (
	maxThoughtLog      = 200
	thoughtLogTrim     = 120
	persistedThoughts  = 20
	surpriseThreshold  = 0.6
	leastFiredSeedOdds = 0.6
)

// Wanderer is the background free-thought loop. It opens its own store
// handle on the same database path, never sharing the primary path's
// handle, then seeds spontaneous activations and records what it
// "thought."
// Every iteration error is logged and swallowed: the loop must never
// take down the interactive path.
type Wanderer struct {
	dbPath   string
	chem     *chem.Chemistry
	interval time.Duration
	minIdle  time.Duration

	rng      *rand.Rand
	stopCh   chan struct{}
	running  atomic.Bool
	lastSeen atomic.Int64 // unix millis of last interactive activity

	mu       sync.Mutex
	thoughts []Thought
	silenced bool // prolonged-silence already signaled for this idle span
}

// NewWanderer creates a stopped Wanderer. interval is the pause between
// steps; minIdle is how long the interactive path must be quiet before
// the loop thinks at all.
func NewWanderer(dbPath string, chemistry *chem.Chemistry, interval, minIdle time.Duration) *Wanderer {
	w := &Wanderer{
		dbPath:   dbPath,
		chem:     chemistry,
		interval: interval,
		minIdle:  minIdle,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		stopCh:   make(chan struct{}),
	}
	w.Touch()
	return w
}

// Touch records interactive activity, pushing the idle window back.
func (w *Wanderer) Touch() {
	w.lastSeen.Store(time.Now().UnixMilli())
	w.mu.Lock()
	w.silenced = false
	w.mu.Unlock()
}

// Running reports whether the loop is active.
func (w *Wanderer) Running() bool {
	return w.running.Load()
}

// Start launches the loop. No-op if already running.
func (w *Wanderer) Start() {
	if !w.running.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer w.running.Store(false)

		db, err := store.Open(w.dbPath)
		if err != nil {
			log.Printf("wander: open store: %v", err)
			return
		}
		defer db.Close()

		eng := New(db, w.chem)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.stopCh:
				return
			case <-ticker.C:
				idle := time.Since(time.UnixMilli(w.lastSeen.Load()))
				if idle < w.minIdle {
					continue
				}
				if err := w.step(eng, idle); err != nil {
					log.Printf("wander: %v", err)
				}
			}
		}
	}()
}

// Stop asks the loop to exit after its current iteration.
func (w *Wanderer) Stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
}

// Thoughts returns up to limit recent thoughts, newest last.
func (w *Wanderer) Thoughts(limit int) []Thought {
	w.mu.Lock()
	defer w.mu.Unlock()
	if limit <= 0 || limit > len(w.thoughts) {
		limit = len(w.thoughts)
	}
	out := make([]Thought, limit)
	copy(out, w.thoughts[len(w.thoughts)-limit:])
	return out
}

// step runs one free-thought cycle: pick a seed, activate, weave, and
// apply the chemistry consequences.
func (w *Wanderer) step(eng *Engine, idle time.Duration) error {
	w.signalSilence(idle)

	seed, err := w.pickSeed(eng.DB)
	if err == store.ErrEmptyGraph {
		// Nothing to think about yet.
		return nil
	}
	if err != nil {
		return err
	}

	params := w.chem.GraphParams()
	result, err := eng.Activate([]string{seed}, seed, params)
	if err != nil {
		return err
	}

	text, ok := eng.Weaver.Weave(result, seed, w.chem.Tone())
	if !ok {
		text = ""
	}

	surprise, err := w.surpriseFor(eng.DB, seed)
	if err != nil {
		return err
	}
	if surprise > surpriseThreshold {
		w.chem.Modulate(chem.EventHighSurprise)
	}

	w.record(eng.DB, Thought{
		Seed:      seed,
		Text:      text,
		Energy:    result.PeakEnergy,
		Surprise:  surprise,
		Timestamp: time.Now().UnixMilli(),
	})

	w.chem.Homeostasis(homeostasisSpeed)
	if err := w.chem.Save(eng.DB); err != nil {
		return err
	}

	if _, err := eng.DB.PruneOrphans(); err != nil {
		return err
	}
	return nil
}

// signalSilence fires the prolonged-silence event once per idle span.
func (w *Wanderer) signalSilence(idle time.Duration) {
	if idle < 4*w.minIdle {
		return
	}
	w.mu.Lock()
	already := w.silenced
	w.silenced = true
	w.mu.Unlock()
	if !already {
		w.chem.Modulate(chem.EventProlongedSilence)
	}
}

// pickSeed prefers a quiet, rarely-fired concept most of the time
// (wandering into unexplored corners) and otherwise takes any node.
func (w *Wanderer) pickSeed(db *store.DB) (string, error) {
	if w.rng.Float64() < leastFiredSeedOdds {
		node, err := db.LeastFiredConcept()
		if err == nil {
			return node.Label, nil
		}
		if err != store.ErrEmptyGraph {
			return "", err
		}
	}
	node, err := db.RandomNode()
	if err != nil {
		return "", err
	}
	return node.Label, nil
}

// surpriseFor estimates how unexpected a seed's neighborhood is: no
// outgoing connections is maximally surprising, a strong first
// connection barely at all.
func (w *Wanderer) surpriseFor(db *store.DB, seed string) (float64, error) {
	conns, err := db.StrongestConnections(seed, 3)
	if err != nil {
		return 0, err
	}
	if len(conns) == 0 {
		return 0.8, nil
	}
	s := 0.5 - conns[0].Weight*0.4
	if s < 0.1 {
		s = 0.1
	}
	return s, nil
}

// record appends to the bounded in-memory log and persists a recent
// window to the state table.
func (w *Wanderer) record(db *store.DB, t Thought) {
	w.mu.Lock()
	w.thoughts = append(w.thoughts, t)
	if len(w.thoughts) > maxThoughtLog {
		w.thoughts = w.thoughts[len(w.thoughts)-thoughtLogTrim:]
	}
	recent := w.thoughts
	if len(recent) > persistedThoughts {
		recent = recent[len(recent)-persistedThoughts:]
	}
	payload, err := json.Marshal(recent)
	w.mu.Unlock()

	if err != nil {
		log.Printf("wander: marshal thoughts: %v", err)
		return
	}
	if err := db.SaveState("wander_recent", string(payload)); err != nil {
		log.Printf("wander: persist thoughts: %v", err)
	}
}
