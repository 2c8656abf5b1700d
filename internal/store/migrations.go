package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "nodes: concepts, emotions, and response fragments",
		SQL: `
CREATE TABLE nodes (
    id          INTEGER PRIMARY KEY,
    label       TEXT NOT NULL UNIQUE,
    node_type   TEXT NOT NULL DEFAULT 'concept' CHECK (node_type IN ('concept', 'emotion', 'response', 'question')),

    -- Transient activation state (reset between runs)
    energy      REAL NOT NULL DEFAULT 0.0,
    resting     REAL NOT NULL DEFAULT 0.0,

    fire_count  INTEGER NOT NULL DEFAULT 0,
    created_at  INTEGER NOT NULL,
    last_fired  INTEGER
);

CREATE INDEX idx_nodes_energy     ON nodes(energy DESC);
CREATE INDEX idx_nodes_fire_count ON nodes(fire_count DESC);
`,
	},
	{
		Version:     2,
		Description: "synapses: directed weighted edges between nodes",
		SQL: `
CREATE TABLE synapses (
    id          INTEGER PRIMARY KEY,
    src_id      INTEGER NOT NULL,
    dst_id      INTEGER NOT NULL,
    weight      REAL NOT NULL DEFAULT 0.1,
    syn_type    TEXT NOT NULL DEFAULT 'association' CHECK (syn_type IN ('association', 'causal', 'emotional', 'response')),
    fire_count  INTEGER NOT NULL DEFAULT 0,
    created_at  INTEGER NOT NULL,
    last_fired  INTEGER,

    UNIQUE (src_id, dst_id),
    FOREIGN KEY (src_id) REFERENCES nodes(id) ON DELETE CASCADE,
    FOREIGN KEY (dst_id) REFERENCES nodes(id) ON DELETE CASCADE
);

CREATE INDEX idx_synapses_src    ON synapses(src_id);
CREATE INDEX idx_synapses_dst    ON synapses(dst_id);
CREATE INDEX idx_synapses_weight ON synapses(weight DESC);
`,
	},
	{
		Version:     3,
		Description: "activation_log: append-only audit of spreading-activation runs",
		SQL: `
CREATE TABLE activation_log (
    id           INTEGER PRIMARY KEY,
    run_id       TEXT NOT NULL,
    trigger_text TEXT NOT NULL,
    nodes_fired  INTEGER NOT NULL,
    peak_node    TEXT,
    peak_energy  REAL NOT NULL DEFAULT 0.0,
    created_at   INTEGER NOT NULL
);

CREATE INDEX idx_activation_log_created ON activation_log(created_at DESC);
`,
	},
	{
		Version:     4,
		Description: "state: flat key-value store for neurochemistry and session state",
		SQL: `
CREATE TABLE state (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    updated_at  INTEGER NOT NULL
);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
