package store

// FiredNode pairs a node with the energy it carried when it fired.
type FiredNode struct {
	Node   Node    `json:"node"`
	Energy float64 `json:"energy"`
}

// ActivationResult is the transient output of one spreading-activation
// run: fired nodes in descending energy order, the peak, and the total
// count. Built fresh per run and never mutated after construction.
type ActivationResult struct {
	Fired      []FiredNode `json:"fired"`
	TotalFired int         `json:"total_fired"`
	PeakEnergy float64     `json:"peak_energy"`
	RunID      string      `json:"run_id"`
}

// Peak returns the highest-energy fired node, or nil when nothing fired.
func (r *ActivationResult) Peak() *FiredNode {
	if r == nil || len(r.Fired) == 0 {
		return nil
	}
	return &r.Fired[0]
}
