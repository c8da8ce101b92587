package memory

import (
	"context"
	"time"

	"github.com/becomeliminal/companion-go-sdk/core"
)

// Embedder converts text to vector embeddings.
// Implementations: MockEmbedder (testing/local), ONNXEmbedder (local,
// `onnx` build tag), or an API-backed embedder in production.
//
// Embedder is an implementation detail of the Consolidator; the engine
// never talks to it directly.
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// Match is a similarity-search hit: a stored record plus its cosine
// similarity to the query embedding.
type Match struct {
	Record     *Record
	Similarity float32
}

// Store is the vector storage backend interface.
// Implementations: ChromemStore (embedded, local), PostgresStore
// (pgvector, production).
type Store interface {
	// Insert persists a new record. The record must have its embedding set.
	Insert(ctx context.Context, rec *Record) error

	// Update persists mutated fields of an existing record
	// (access count, importance, last-accessed time).
	Update(ctx context.Context, rec *Record) error

	// SimilaritySearch returns up to topK records within scope whose
	// cosine similarity to embedding is >= minSimilarity, ordered by
	// similarity descending.
	SimilaritySearch(ctx context.Context, scope core.Scope, embedding []float32, topK int, minSimilarity float32) ([]Match, error)

	// TopByImportance returns up to limit records within scope ordered by
	// importance descending. Used by the read-only context path.
	TopByImportance(ctx context.Context, scope core.Scope, limit int) ([]*Record, error)

	// Close releases resources.
	Close() error
}

// Classifier maps raw message text to a memory category and a baseline
// importance score. It is a pluggable strategy: the default is keyword
// tables, and an LLM-backed implementation can be substituted without
// touching the consolidator.
type Classifier interface {
	// Classify returns exactly one category for the text, never "none".
	Classify(text string) Category

	// ScoreImportance scores how much the text is worth remembering,
	// always within [0.1, 1.0].
	ScoreImportance(text string, category Category) float64
}

// Config holds Consolidator tuning.
type Config struct {
	// SimilarityThreshold is the cosine similarity at or above which two
	// records count as duplicates and get merged instead of inserted.
	SimilarityThreshold float32

	// TopK is how many dedup candidates to fetch. One is enough: only the
	// best match can be merged into.
	TopK int

	// MaxEmbedAttempts bounds embedding retries.
	MaxEmbedAttempts int

	// RetryBackoff is the linear backoff unit between embedding attempts
	// (attempt n waits n * RetryBackoff).
	RetryBackoff time.Duration

	// EmbedTimeout bounds each individual embedding attempt.
	EmbedTimeout time.Duration

	// MaxEmbedBytes truncates text before embedding.
	MaxEmbedBytes int
}

// DefaultConfig returns the production defaults.
var DefaultConfig = &Config{
	SimilarityThreshold: 0.9,
	TopK:                1,
	MaxEmbedAttempts:    3,
	RetryBackoff:        time.Second,
	EmbedTimeout:        10 * time.Second,
	MaxEmbedBytes:       8000,
}
