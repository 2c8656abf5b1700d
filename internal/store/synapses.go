package store

import (
	"database/sql"
	"fmt"
	"time"
)

// PruneFloor is the weight below which a synapse is deleted during decay.
const PruneFloor = 0.02

// Synapse is a directed weighted edge between two nodes.
type Synapse struct {
	ID        int64
	SrcID     int64
	DstID     int64
	Weight    float64
	SynType   string // association, causal, emotional, response
	FireCount int
	CreatedAt int64
	LastFired *int64
}

// Connection is one entry in a strongest-connections listing.
type Connection struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// OutEdge is one outgoing synapse as seen by the activation engine.
type OutEdge struct {
	DstID    int64
	DstLabel string
	DstType  string
	Weight   float64
}

// Connect creates or strengthens the directed edge src → dst. This is the
// sole mutation path for synapse weights: a new edge starts at the given
// delta, an existing edge gains it, clamped to [0,1] either way. Both
// endpoint nodes are created if absent.
func (db *DB) Connect(srcLabel, dstLabel string, delta float64, synType string) (*Synapse, error) {
	src, err := db.GetOrCreateNode(srcLabel, "concept")
	if err != nil {
		return nil, err
	}
	dst, err := db.GetOrCreateNode(dstLabel, "concept")
	if err != nil {
		return nil, err
	}
	if src.ID == dst.ID {
		return nil, fmt.Errorf("cannot connect node %q to itself", src.Label)
	}

	now := time.Now().UnixMilli()

	var id int64
	var weight float64
	var fireCount int
	err = db.QueryRow(
		"SELECT id, weight, fire_count FROM synapses WHERE src_id = ? AND dst_id = ?",
		src.ID, dst.ID,
	).Scan(&id, &weight, &fireCount)

	if err == nil {
		newWeight := clamp01(weight + delta)
		updateErr := withRetry(func() error {
			_, execErr := db.Exec(`
				UPDATE synapses SET weight = ?, fire_count = fire_count + 1, last_fired = ?
				WHERE id = ?
			`, newWeight, now, id)
			return execErr
		})
		if updateErr != nil {
			return nil, fmt.Errorf("strengthen synapse %s→%s: %w", src.Label, dst.Label, updateErr)
		}
		return &Synapse{
			ID: id, SrcID: src.ID, DstID: dst.ID,
			Weight: newWeight, SynType: synType,
			FireCount: fireCount + 1, LastFired: &now,
		}, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("lookup synapse %s→%s: %w", src.Label, dst.Label, err)
	}

	initial := clamp01(delta)
	var result sql.Result
	err = withRetry(func() error {
		var execErr error
		result, execErr = db.Exec(`
			INSERT INTO synapses (src_id, dst_id, weight, syn_type, fire_count, created_at, last_fired)
			VALUES (?, ?, ?, ?, 1, ?, ?)
		`, src.ID, dst.ID, initial, synType, now, now)
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("create synapse %s→%s: %w", src.Label, dst.Label, err)
	}

	id, _ = result.LastInsertId()
	return &Synapse{
		ID: id, SrcID: src.ID, DstID: dst.ID,
		Weight: initial, SynType: synType,
		FireCount: 1, CreatedAt: now, LastFired: &now,
	}, nil
}

// GetSynapse returns the edge src → dst, or nil if absent.
func (db *DB) GetSynapse(srcLabel, dstLabel string) (*Synapse, error) {
	var s Synapse
	var lastFired sql.NullInt64
	err := db.QueryRow(`
		SELECT s.id, s.src_id, s.dst_id, s.weight, s.syn_type, s.fire_count, s.created_at, s.last_fired
		FROM synapses s
		JOIN nodes src ON src.id = s.src_id
		JOIN nodes dst ON dst.id = s.dst_id
		WHERE src.label = ? AND dst.label = ?
	`, NormalizeLabel(srcLabel), NormalizeLabel(dstLabel)).Scan(
		&s.ID, &s.SrcID, &s.DstID, &s.Weight, &s.SynType, &s.FireCount, &s.CreatedAt, &lastFired)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get synapse %s→%s: %w", srcLabel, dstLabel, err)
	}
	if lastFired.Valid {
		s.LastFired = &lastFired.Int64
	}
	return &s, nil
}

// SynapseCount returns the total number of synapses in the graph.
func (db *DB) SynapseCount() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM synapses").Scan(&count)
	return count, err
}

// StrongestConnections returns up to limit outgoing connections from the
// labeled node, ordered by weight desc, then fire_count desc, then label.
// The ordering is total, so repeated calls on an unchanged graph agree.
func (db *DB) StrongestConnections(label string, limit int) ([]Connection, error) {
	node, err := db.GetNode(label)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}

	rows, err := db.Query(`
		SELECT n.label, s.weight
		FROM synapses s
		JOIN nodes n ON n.id = s.dst_id
		WHERE s.src_id = ?
		ORDER BY s.weight DESC, s.fire_count DESC, n.label ASC
		LIMIT ?
	`, node.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("strongest connections for %q: %w", label, err)
	}
	defer rows.Close()

	var conns []Connection
	for rows.Next() {
		var c Connection
		if err := rows.Scan(&c.Label, &c.Weight); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

// Outgoing returns all outgoing synapses from a node in the same
// deterministic order StrongestConnections uses. The activation engine
// walks children in this order, which makes runs reproducible.
func (db *DB) Outgoing(nodeID int64) ([]OutEdge, error) {
	rows, err := db.Query(`
		SELECT s.dst_id, n.label, n.node_type, s.weight
		FROM synapses s
		JOIN nodes n ON n.id = s.dst_id
		WHERE s.src_id = ?
		ORDER BY s.weight DESC, s.fire_count DESC, n.label ASC
	`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("outgoing for node %d: %w", nodeID, err)
	}
	defer rows.Close()

	var edges []OutEdge
	for rows.Next() {
		var e OutEdge
		if err := rows.Scan(&e.DstID, &e.DstLabel, &e.DstType, &e.Weight); err != nil {
			return nil, fmt.Errorf("scan outgoing: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// DecayAll multiplies every synapse weight by (1 − rate) and deletes any
// that fall below the pruning floor. Returns the number pruned. This is
// the only mechanism by which the graph forgets.
func (db *DB) DecayAll(rate float64) (int, error) {
	rate = clamp01(rate)

	err := withRetry(func() error {
		_, execErr := db.Exec("UPDATE synapses SET weight = weight * ?", 1.0-rate)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("decay synapses: %w", err)
	}

	var result sql.Result
	err = withRetry(func() error {
		var execErr error
		result, execErr = db.Exec("DELETE FROM synapses WHERE weight < ?", PruneFloor)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("prune synapses: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}
