package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivationLogEntry is one append-only audit record of a spreading-
// activation run. The engine writes these and never reads them back;
// they exist for observability.
type ActivationLogEntry struct {
	ID         int64   `json:"id"`
	RunID      string  `json:"run_id"`
	Trigger    string  `json:"trigger"`
	NodesFired int     `json:"nodes_fired"`
	PeakNode   string  `json:"peak_node"`
	PeakEnergy float64 `json:"peak_energy"`
	CreatedAt  int64   `json:"created_at"`
}

// AppendActivation records one activation run and returns its run id.
func (db *DB) AppendActivation(trigger string, nodesFired int, peakNode string, peakEnergy float64) (string, error) {
	runID := uuid.NewString()
	now := time.Now().UnixMilli()
	err := withRetry(func() error {
		_, execErr := db.Exec(`
			INSERT INTO activation_log (run_id, trigger_text, nodes_fired, peak_node, peak_energy, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, runID, trigger, nodesFired, peakNode, peakEnergy, now)
		return execErr
	})
	if err != nil {
		return "", fmt.Errorf("append activation log: %w", err)
	}
	return runID, nil
}

// RecentActivations returns up to limit log entries, newest first.
func (db *DB) RecentActivations(limit int) ([]ActivationLogEntry, error) {
	rows, err := db.Query(`
		SELECT id, run_id, trigger_text, nodes_fired, peak_node, peak_energy, created_at
		FROM activation_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activations: %w", err)
	}
	defer rows.Close()

	var entries []ActivationLogEntry
	for rows.Next() {
		var e ActivationLogEntry
		var peak sql.NullString
		if err := rows.Scan(&e.ID, &e.RunID, &e.Trigger, &e.NodesFired, &peak, &e.PeakEnergy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activation log: %w", err)
		}
		e.PeakNode = peak.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
