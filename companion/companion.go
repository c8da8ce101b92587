package companion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/becomeliminal/companion-go-sdk/core"
	"github.com/becomeliminal/companion-go-sdk/memory"
	"github.com/becomeliminal/companion-go-sdk/relationship"
)

// maxUpsertRetries bounds the optimistic-concurrency retry loop for
// relationship updates.
const maxUpsertRetries = 3

// Engine ties the relationship state machine and the memory consolidation
// pipeline together behind one entry point per user message.
type Engine struct {
	relationships relationship.Store
	consolidator  *memory.Consolidator
	memories      memory.Store

	machine  *relationship.Machine
	analyzer relationship.Analyzer

	cache      *ristretto.Cache
	contextTTL time.Duration

	locks *pairLocks
	now   func() time.Time
}

// Option configures the engine.
type Option func(*Engine)

// WithAnalyzer replaces the default keyword analyzer.
func WithAnalyzer(a relationship.Analyzer) Option {
	return func(e *Engine) {
		e.analyzer = a
	}
}

// WithContextTTL sets how long rendered context snapshots stay cached.
func WithContextTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.contextTTL = ttl
	}
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
		e.machine = relationship.NewMachineWithClock(now)
	}
}

// New creates an engine over the given stores and consolidation pipeline.
// The memory store must be the same one the consolidator writes to; the
// engine reads it when rendering context.
func New(relationships relationship.Store, consolidator *memory.Consolidator, memories memory.Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		relationships: relationships,
		consolidator:  consolidator,
		memories:      memories,
		machine:       relationship.NewMachine(),
		analyzer:      relationship.NewKeywordAnalyzer(),
		contextTTL:    60 * time.Second,
		locks:         newPairLocks(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create context cache: %w", err)
	}
	e.cache = cache

	return e, nil
}

// Result is the outcome of processing one message. The relationship and
// memory halves degrade independently: a failure in one is reported in
// its Err field while the other half still lands.
type Result struct {
	// Relationship is the state after this message, nil when the
	// relationship update failed entirely.
	Relationship *relationship.State

	// LevelUp is set when this message raised the level.
	LevelUp *relationship.LevelUpEvent

	// Memory is the consolidation outcome, nil when consolidation failed
	// or the memory pipeline is not configured.
	Memory *memory.ConsolidationResult

	RelationshipErr error
	MemoryErr       error
}

// ProcessInteraction runs one user message through analysis, relationship
// progression and memory consolidation. Messages for the same pair are
// serialized; the two halves are siblings and never block each other.
func (e *Engine) ProcessInteraction(ctx context.Context, userID, characterID, text string) (*Result, error) {
	scope := core.NewScope(userID, characterID)
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	unlock := e.locks.acquire(scope.Key())
	defer unlock()

	result := &Result{}

	result.Relationship, result.LevelUp, result.RelationshipErr = e.updateRelationship(ctx, scope, text)
	if result.RelationshipErr != nil {
		log.Printf("[COMPANION] Relationship update failed (scope=%s): %v", scope, result.RelationshipErr)
	}

	if e.consolidator != nil {
		result.Memory, result.MemoryErr = e.consolidator.Consolidate(ctx, scope, text)
		if result.MemoryErr != nil {
			log.Printf("[COMPANION] Memory consolidation failed (scope=%s): %v", scope, result.MemoryErr)
		}
	}

	// Anything may have changed; drop the cached context snapshot.
	e.cache.Del(scope.Key())

	return result, nil
}

// updateRelationship runs the read-analyze-apply-upsert cycle, retrying
// on version conflicts with a fresh read each time.
func (e *Engine) updateRelationship(ctx context.Context, scope core.Scope, text string) (*relationship.State, *relationship.LevelUpEvent, error) {
	var lastErr error

	for attempt := 0; attempt < maxUpsertRetries; attempt++ {
		prior, err := e.relationships.Get(ctx, scope)
		if errors.Is(err, relationship.ErrNotFound) {
			prior = relationship.NewState(scope)
		} else if err != nil {
			return nil, nil, err
		}

		analysis := e.analyzer.Analyze(text, prior)
		next, event := e.machine.Apply(prior, analysis)

		stored, err := e.relationships.Upsert(ctx, next)
		if errors.Is(err, relationship.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return stored, event, nil
	}

	return nil, nil, fmt.Errorf("relationship update: %w", lastErr)
}

// Relationship returns the current state for a pair, or the lazy default
// when the pair has never interacted.
func (e *Engine) Relationship(ctx context.Context, userID, characterID string) (*relationship.State, error) {
	scope := core.NewScope(userID, characterID)
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	state, err := e.relationships.Get(ctx, scope)
	if errors.Is(err, relationship.ErrNotFound) {
		return relationship.NewState(scope), nil
	}
	return state, err
}

// Close releases the context cache. The stores are owned by the caller
// and stay open.
func (e *Engine) Close() error {
	e.cache.Close()
	return nil
}
