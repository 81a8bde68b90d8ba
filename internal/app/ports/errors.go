package ports

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrAuth is a fatal provider failure. The loop halts rather than
	// operate on a stale or absent snapshot.
	ErrAuth = errors.New("authentication failed")

	// ErrRejected is a game-side business-rule rejection (no slots, not
	// enough fuel). The issuing state machine stays put and retries next
	// cycle with recomputed parameters.
	ErrRejected = errors.New("command rejected")
)
