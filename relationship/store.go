package relationship

import (
	"context"
	"errors"

	"github.com/becomeliminal/companion-go-sdk/core"
)

// ErrNotFound is returned by Get when the pair has no state yet.
// Callers create the lazy default with NewState.
var ErrNotFound = errors.New("relationship state not found")

// ErrVersionConflict is returned by Upsert when the stored version no
// longer matches the snapshot's version: another writer got there first.
// Callers re-read and re-apply.
var ErrVersionConflict = errors.New("relationship version conflict")

// Store persists relationship state, one row per (user, character) pair.
// Implementations must enforce compare-and-swap on State.Version so
// concurrent read-modify-write cycles cannot lose updates.
type Store interface {
	// Get returns the pair's state, or ErrNotFound.
	Get(ctx context.Context, scope core.Scope) (*State, error)

	// Upsert writes the state. A Version of 0 inserts; otherwise the
	// update only applies when the stored version equals Version, and
	// ErrVersionConflict is returned when it does not. The returned
	// state carries the new version.
	Upsert(ctx context.Context, state *State) (*State, error)

	// Close releases resources.
	Close() error
}
