// Package core defines the shared leaf types of the companion SDK:
// the (user, character) scope every operation is keyed by, and the
// error taxonomy surfaced to callers.
package core

import "fmt"

// Scope identifies one user/character pair. All relationship state and
// all memories live inside exactly one scope; operations never cross it.
type Scope struct {
	UserID      string
	CharacterID string
}

// NewScope builds a scope from raw identifiers.
func NewScope(userID, characterID string) Scope {
	return Scope{UserID: userID, CharacterID: characterID}
}

// Validate rejects scopes with a missing identifier before any side effect.
func (s Scope) Validate() error {
	if s.UserID == "" || s.CharacterID == "" {
		return fmt.Errorf("%w: userID=%q characterID=%q", ErrInvalidScope, s.UserID, s.CharacterID)
	}
	return nil
}

// Key returns a stable string form usable as a map or cache key.
func (s Scope) Key() string {
	return s.UserID + "/" + s.CharacterID
}

func (s Scope) String() string {
	return s.Key()
}
