package core

import (
	"errors"
	"fmt"
)

// ErrInvalidScope is returned when a userID or characterID is missing.
// Scope validation happens before any store or embedding call.
var ErrInvalidScope = errors.New("invalid scope")

// EmbeddingUnavailableError reports that the embedding service failed for
// every attempt. It is fatal for the consolidation call that raised it but
// must not block the sibling relationship update.
type EmbeddingUnavailableError struct {
	Attempts int
	Err      error // last attempt's error
}

func (e *EmbeddingUnavailableError) Error() string {
	return fmt.Sprintf("embedding unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *EmbeddingUnavailableError) Unwrap() error { return e.Err }

// PersistenceError reports a store read or write failure. The failed
// operation leaves no partial state behind.
type PersistenceError struct {
	Op  string // e.g. "memory.insert", "relationship.upsert"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
