package engine

import (
	"fmt"
	"sort"

	"synaptic/internal/chem"
	"synaptic/internal/store"
)

// seedEnergy is the energy a seed node fires with at depth 0.
const seedEnergy = 1.0

type queueItem struct {
	node   store.Node
	energy float64
	depth  int
}

// Activate fires the seed labels and spreads their energy breadth-first
// through the graph, attenuated by synapse weight and the decay factor,
// cut off by the activation threshold and depth limit.
//
// Rules, in order, for each dequeued (node, energy, depth):
//   - below threshold or past max depth: skipped entirely
//   - already fired this run: energy raised to max(existing, incoming),
//     no second fire, no re-propagation (cycle safety)
//   - otherwise: fires once (fire_count++), children enqueued at
//     energy·weight·decay, skipping children already fired
//
// Seeds missing from the graph are created on the fly, so a brand-new
// concept is a valid, if inert, seed. All seeds share one visited set.
// One audit entry is appended per run with the caller's trigger text.
func (e *Engine) Activate(labels []string, trigger string, params chem.Params) (*store.ActivationResult, error) {
	if err := e.DB.ResetEnergies(); err != nil {
		return nil, fmt.Errorf("reset energies: %w", err)
	}

	var queue []queueItem
	for _, label := range labels {
		if store.NormalizeLabel(label) == "" {
			continue
		}
		node, err := e.DB.GetOrCreateNode(label, "concept")
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", label, err)
		}
		queue = append(queue, queueItem{node: *node, energy: seedEnergy, depth: 0})
	}

	fired := make(map[int64]*store.FiredNode)

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.energy < params.ActivationThreshold || item.depth > params.MaxDepth {
			continue
		}

		if existing, ok := fired[item.node.ID]; ok {
			// Re-activation within a run is idempotent: keep the higher
			// energy, never fire or propagate a second time.
			if item.energy > existing.Energy {
				existing.Energy = item.energy
				if err := e.DB.SetEnergy(item.node.ID, item.energy); err != nil {
					return nil, err
				}
			}
			continue
		}

		if err := e.DB.MarkFired(item.node.ID, item.energy); err != nil {
			return nil, err
		}
		node := item.node
		node.Energy = item.energy
		node.FireCount++
		fired[node.ID] = &store.FiredNode{Node: node, Energy: item.energy}

		outgoing, err := e.DB.Outgoing(node.ID)
		if err != nil {
			return nil, err
		}
		for _, edge := range outgoing {
			if _, alreadyFired := fired[edge.DstID]; alreadyFired {
				continue
			}
			child := store.Node{ID: edge.DstID, Label: edge.DstLabel, NodeType: edge.DstType}
			queue = append(queue, queueItem{
				node:   child,
				energy: item.energy * edge.Weight * params.DecayFactor,
				depth:  item.depth + 1,
			})
		}
	}

	result := &store.ActivationResult{}
	for _, f := range fired {
		result.Fired = append(result.Fired, *f)
	}
	sort.Slice(result.Fired, func(i, j int) bool {
		if result.Fired[i].Energy != result.Fired[j].Energy {
			return result.Fired[i].Energy > result.Fired[j].Energy
		}
		return result.Fired[i].Node.Label < result.Fired[j].Node.Label
	})
	result.TotalFired = len(result.Fired)

	peakLabel := ""
	if peak := result.Peak(); peak != nil {
		result.PeakEnergy = peak.Energy
		peakLabel = peak.Node.Label
	}

	runID, err := e.DB.AppendActivation(trigger, result.TotalFired, peakLabel, result.PeakEnergy)
	if err != nil {
		return nil, err
	}
	result.RunID = runID

	return result, nil
}
