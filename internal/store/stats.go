package store

import (
	"database/sql"
	"fmt"
	"math"
)

// Stats is the observability snapshot for a human-facing status display.
type Stats struct {
	Nodes          int     `json:"nodes"`
	Synapses       int     `json:"synapses"`
	AvgWeight      float64 `json:"avg_weight"`
	MostFiredLabel string  `json:"most_fired_label"`
	MostFiredCount int     `json:"most_fired_count"`
	Density        float64 `json:"density"`
}

// GraphStats gathers node/synapse counts, average weight, the most-fired
// node, and density (synapses over possible ordered pairs).
func (db *DB) GraphStats() (*Stats, error) {
	s := &Stats{}

	var err error
	if s.Nodes, err = db.NodeCount(); err != nil {
		return nil, fmt.Errorf("node count: %w", err)
	}
	if s.Synapses, err = db.SynapseCount(); err != nil {
		return nil, fmt.Errorf("synapse count: %w", err)
	}

	var avg sql.NullFloat64
	if err := db.QueryRow("SELECT AVG(weight) FROM synapses").Scan(&avg); err != nil {
		return nil, fmt.Errorf("avg weight: %w", err)
	}
	if avg.Valid {
		s.AvgWeight = round3(avg.Float64)
	}

	var label sql.NullString
	var count sql.NullInt64
	err = db.QueryRow(
		"SELECT label, fire_count FROM nodes ORDER BY fire_count DESC, label ASC LIMIT 1",
	).Scan(&label, &count)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("most fired: %w", err)
	}
	s.MostFiredLabel = label.String
	s.MostFiredCount = int(count.Int64)

	if s.Nodes > 1 {
		s.Density = round4(float64(s.Synapses) / float64(s.Nodes*(s.Nodes-1)))
	}
	return s, nil
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
