package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveState upserts one key into the flat key-value state table.
// Neurochemistry scalars and other session state live here.
func (db *DB) SaveState(key, value string) error {
	now := time.Now().UnixMilli()
	return withRetry(func() error {
		_, err := db.Exec(`
			INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value, now)
		return err
	})
}

// LoadState returns the value for a key, or "" and false when absent.
func (db *DB) LoadState(key string) (string, bool, error) {
	var value string
	err := db.QueryRow("SELECT value FROM state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load state %q: %w", key, err)
	}
	return value, true, nil
}
