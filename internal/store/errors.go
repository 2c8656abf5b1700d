package store

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyGraph is returned when an operation needs at least one node and
// the graph has none. Expected early in a fresh session; callers treat it
// as "nothing to think about," not as a failure.
var ErrEmptyGraph = errors.New("graph is empty")

// ErrBusy is returned when the database stayed locked past the bounded
// retry budget. Transient; callers may retry the whole operation.
var ErrBusy = errors.New("database busy")

const busyAttempts = 5

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// withRetry runs fn, retrying with backoff while SQLite reports lock
// contention. The busy_timeout pragma absorbs most contention; this is
// the bounded second line before the error surfaces.
func withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < busyAttempts; attempt++ {
		err = fn()
		if !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	return fmt.Errorf("%w: %v", ErrBusy, err)
}
