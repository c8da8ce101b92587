package core_test

import (
	"errors"
	"testing"

	"github.com/becomeliminal/companion-go-sdk/core"
)

func TestScopeValidate(t *testing.T) {
	if err := core.NewScope("user1", "char1").Validate(); err != nil {
		t.Errorf("Valid scope rejected: %v", err)
	}

	for _, scope := range []core.Scope{
		core.NewScope("", "char1"),
		core.NewScope("user1", ""),
		core.NewScope("", ""),
	} {
		if err := scope.Validate(); !errors.Is(err, core.ErrInvalidScope) {
			t.Errorf("Expected ErrInvalidScope for %+v, got %v", scope, err)
		}
	}
}

func TestScopeKey(t *testing.T) {
	if got := core.NewScope("user1", "char1").Key(); got != "user1/char1" {
		t.Errorf("Key() = %q, want %q", got, "user1/char1")
	}
}
