package memory

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/becomeliminal/companion-go-sdk/core"
)

// Action says what a consolidation call did to the store.
type Action string

const (
	// ActionCreated means a new record was inserted.
	ActionCreated Action = "created"

	// ActionMerged means a near-duplicate existed and was updated in place.
	ActionMerged Action = "merged"
)

// ConsolidationResult is the outcome of one Consolidate call.
type ConsolidationResult struct {
	Record *Record
	Action Action
}

// Consolidator runs the extract pipeline for one message:
// classify -> embed -> similarity search -> merge-or-insert.
//
// Within a scope no two records may reach cosine similarity >= the
// configured threshold; the similarity search before every insert is the
// dedup guard that maintains that invariant.
type Consolidator struct {
	store      Store
	embedder   Embedder
	classifier Classifier
	config     *Config
}

// NewConsolidator creates a consolidator. A nil classifier gets the
// keyword default, a nil config gets DefaultConfig.
func NewConsolidator(store Store, embedder Embedder, classifier Classifier, config *Config) *Consolidator {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	if config == nil {
		config = DefaultConfig
	}
	return &Consolidator{
		store:      store,
		embedder:   embedder,
		classifier: classifier,
		config:     config,
	}
}

// Consolidate extracts a durable memory from text and stores it, merging
// into an existing near-duplicate when one exists. Exactly one store
// write happens per call: an update on merge, an insert otherwise.
func (c *Consolidator) Consolidate(ctx context.Context, scope core.Scope, text string) (*ConsolidationResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	category := c.classifier.Classify(text)
	importance := c.classifier.ScoreImportance(text, category)

	embedding, err := c.embedWithRetry(ctx, text)
	if err != nil {
		return nil, err
	}

	matches, err := c.store.SimilaritySearch(ctx, scope, embedding, c.config.TopK, c.config.SimilarityThreshold)
	if err != nil {
		return nil, &core.PersistenceError{Op: "memory.search", Err: err}
	}

	if len(matches) > 0 {
		existing := matches[0].Record
		existing.Touch(importance)
		if err := c.store.Update(ctx, existing); err != nil {
			return nil, &core.PersistenceError{Op: "memory.update", Err: err}
		}
		log.Printf("[MEMORY] Merged memory %s (scope=%s, similarity=%.3f, accessCount=%d)",
			existing.ID, scope, matches[0].Similarity, existing.AccessCount)
		return &ConsolidationResult{Record: existing, Action: ActionMerged}, nil
	}

	rec := NewRecord(scope, category, text, embedding, importance)
	if err := c.store.Insert(ctx, rec); err != nil {
		return nil, &core.PersistenceError{Op: "memory.insert", Err: err}
	}
	log.Printf("[MEMORY] Created memory %s (scope=%s, category=%s, importance=%.2f)",
		rec.ID, scope, rec.Category, rec.Importance)
	return &ConsolidationResult{Record: rec, Action: ActionCreated}, nil
}

// embedWithRetry embeds the truncated text with bounded attempts and
// linear backoff. Once the surrounding request is cancelled no further
// attempts are made.
func (c *Consolidator) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	if len(text) > c.config.MaxEmbedBytes {
		text = text[:c.config.MaxEmbedBytes]
	}

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxEmbedAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.config.EmbedTimeout)
		embedding, err := c.embedder.Embed(attemptCtx, text)
		cancel()
		if err == nil {
			return embedding, nil
		}
		lastErr = err
		log.Printf("[MEMORY] Embed attempt %d/%d failed: %v", attempt, c.config.MaxEmbedAttempts, err)

		if attempt == c.config.MaxEmbedAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, &core.EmbeddingUnavailableError{
				Attempts: attempt,
				Err:      fmt.Errorf("%v (cancelled: %w)", lastErr, ctx.Err()),
			}
		case <-time.After(time.Duration(attempt) * c.config.RetryBackoff):
		}
	}

	return nil, &core.EmbeddingUnavailableError{Attempts: c.config.MaxEmbedAttempts, Err: lastErr}
}
