package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Node is one concept, emotion tag, or response fragment in the graph.
type Node struct {
	ID        int64
	Label     string
	NodeType  string // concept, emotion, response, question
	Energy    float64
	Resting   float64
	FireCount int
	CreatedAt int64
	LastFired *int64
}

const nodeColumns = "id, label, node_type, energy, resting, fire_count, created_at, last_fired"

// NormalizeLabel lowercases and trims a label. All store lookups go
// through this, which is what makes labels case-insensitively unique.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GetOrCreateNode looks a node up by normalized label, creating it with
// zero energy and zero resting potential when absent.
func (db *DB) GetOrCreateNode(label, nodeType string) (*Node, error) {
	clean := NormalizeLabel(label)
	if clean == "" {
		return nil, fmt.Errorf("node label cannot be empty")
	}

	existing, err := db.GetNode(clean)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UnixMilli()
	var result sql.Result
	err = withRetry(func() error {
		var execErr error
		result, execErr = db.Exec(`
			INSERT INTO nodes (label, node_type, energy, resting, fire_count, created_at)
			VALUES (?, ?, 0.0, 0.0, 0, ?)
		`, clean, nodeType, now)
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("create node %q: %w", clean, err)
	}

	id, _ := result.LastInsertId()
	return &Node{
		ID:        id,
		Label:     clean,
		NodeType:  nodeType,
		CreatedAt: now,
	}, nil
}

// GetNode returns a node by label, or nil if not found.
func (db *DB) GetNode(label string) (*Node, error) {
	row := db.QueryRow(
		"SELECT "+nodeColumns+" FROM nodes WHERE label = ?",
		NormalizeLabel(label),
	)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get node %q: %w", label, err)
	}
	return &n, nil
}

// RandomNode returns a uniformly random node. Used to seed wander-path
// activation when no better seed exists.
func (db *DB) RandomNode() (*Node, error) {
	row := db.QueryRow("SELECT " + nodeColumns + " FROM nodes ORDER BY RANDOM() LIMIT 1")
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, ErrEmptyGraph
	}
	if err != nil {
		return nil, fmt.Errorf("random node: %w", err)
	}
	return &n, nil
}

// NodeCount returns the total number of nodes in the graph.
func (db *DB) NodeCount() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&count)
	return count, err
}

// ResetEnergies returns every node's transient energy to its resting
// potential. Called at the start of each activation run.
func (db *DB) ResetEnergies() error {
	return withRetry(func() error {
		_, err := db.Exec("UPDATE nodes SET energy = resting")
		return err
	})
}

// MarkFired records that a node fired during the current activation run:
// sets its energy, bumps fire_count, and stamps last_fired.
func (db *DB) MarkFired(id int64, energy float64) error {
	now := time.Now().UnixMilli()
	return withRetry(func() error {
		_, err := db.Exec(`
			UPDATE nodes SET energy = ?, fire_count = fire_count + 1, last_fired = ?
			WHERE id = ?
		`, clamp01(energy), now, id)
		return err
	})
}

// SetEnergy overwrites a node's transient energy, clamped to [0,1].
func (db *DB) SetEnergy(id int64, energy float64) error {
	return withRetry(func() error {
		_, err := db.Exec("UPDATE nodes SET energy = ? WHERE id = ?", clamp01(energy), id)
		return err
	})
}

// LeastFiredConcept returns the concept node with the lowest energy and
// fire count, the wander loop's "unexplored corner" seed heuristic.
func (db *DB) LeastFiredConcept() (*Node, error) {
	row := db.QueryRow(
		"SELECT " + nodeColumns + " FROM nodes WHERE node_type = 'concept' " +
			"ORDER BY energy ASC, fire_count ASC, label ASC LIMIT 1",
	)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, ErrEmptyGraph
	}
	if err != nil {
		return nil, fmt.Errorf("least fired concept: %w", err)
	}
	return &n, nil
}

// MostFiredConcepts returns up to limit concept nodes by descending fire
// count, ties broken by label for determinism.
func (db *DB) MostFiredConcepts(limit int) ([]Node, error) {
	rows, err := db.Query(
		"SELECT "+nodeColumns+" FROM nodes WHERE node_type = 'concept' "+
			"ORDER BY fire_count DESC, label ASC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("most fired concepts: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// PruneOrphans deletes nodes that have never fired and have no synapses
// in either direction. Returns the number removed.
func (db *DB) PruneOrphans() (int, error) {
	var result sql.Result
	err := withRetry(func() error {
		var execErr error
		result, execErr = db.Exec(`
			DELETE FROM nodes WHERE fire_count = 0 AND id NOT IN (
				SELECT src_id FROM synapses UNION SELECT dst_id FROM synapses
			)
		`)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("prune orphans: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

func scanNode(scanner interface{ Scan(dest ...any) error }) (Node, error) {
	var n Node
	var lastFired sql.NullInt64
	err := scanner.Scan(&n.ID, &n.Label, &n.NodeType, &n.Energy, &n.Resting,
		&n.FireCount, &n.CreatedAt, &lastFired)
	if err != nil {
		return n, err
	}
	if lastFired.Valid {
		n.LastFired = &lastFired.Int64
	}
	return n, nil
}

func scanNodes(rows *sql.Rows) ([]Node, error) {
	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}
