// Package chromem wraps chromem-go, an embedded pure-Go vector database,
// as the local memory store.
package chromem

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/becomeliminal/companion-go-sdk/core"
	"github.com/becomeliminal/companion-go-sdk/memory"
)

// ChromemStore implements memory.Store on top of chromem-go.
// Each (user, character) scope gets its own collection for namespace
// isolation. A by-id mirror backs the importance-ordered read path,
// which chromem itself cannot serve.
type ChromemStore struct {
	db          *chromem.DB
	mu          sync.RWMutex
	collections map[string]*chromem.Collection
	records     map[string]map[string]*memory.Record // scope key -> record id -> record
}

// New creates an in-memory chromem store.
func New() (*ChromemStore, error) {
	return &ChromemStore{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
		records:     make(map[string]map[string]*memory.Record),
	}, nil
}

// getOrCreateCollection returns the collection for a scope.
func (s *ChromemStore) getOrCreateCollection(scope core.Scope) (*chromem.Collection, error) {
	key := scope.Key()

	s.mu.RLock()
	col, exists := s.collections[key]
	s.mu.RUnlock()
	if exists {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, exists := s.collections[key]; exists {
		return col, nil
	}

	col, err := s.db.CreateCollection(
		fmt.Sprintf("pair_%s_%s", scope.UserID, scope.CharacterID),
		nil, // no custom embedding func, we always provide embeddings
		nil, // default cosine distance
	)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	s.collections[key] = col
	s.records[key] = make(map[string]*memory.Record)
	return col, nil
}

// Insert stores a new record with its embedding.
func (s *ChromemStore) Insert(ctx context.Context, rec *memory.Record) error {
	col, err := s.getOrCreateCollection(rec.Scope)
	if err != nil {
		return err
	}

	if err := col.AddDocument(ctx, toDocument(rec)); err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	s.mu.Lock()
	s.records[rec.Scope.Key()][rec.ID] = cloneRecord(rec)
	s.mu.Unlock()
	return nil
}

// Update rewrites an existing record. chromem has no in-place update, so
// the document is deleted and re-added under the same id.
func (s *ChromemStore) Update(ctx context.Context, rec *memory.Record) error {
	col, err := s.getOrCreateCollection(rec.Scope)
	if err != nil {
		return err
	}

	s.mu.RLock()
	_, known := s.records[rec.Scope.Key()][rec.ID]
	s.mu.RUnlock()
	if !known {
		return fmt.Errorf("record %s not found in scope %s", rec.ID, rec.Scope)
	}

	if err := col.Delete(ctx, nil, nil, rec.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := col.AddDocument(ctx, toDocument(rec)); err != nil {
		return fmt.Errorf("re-add document: %w", err)
	}

	s.mu.Lock()
	s.records[rec.Scope.Key()][rec.ID] = cloneRecord(rec)
	s.mu.Unlock()
	return nil
}

// SimilaritySearch returns up to topK records at or above minSimilarity,
// ordered by similarity descending.
func (s *ChromemStore) SimilaritySearch(ctx context.Context, scope core.Scope, embedding []float32, topK int, minSimilarity float32) ([]memory.Match, error) {
	col, err := s.getOrCreateCollection(scope)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults above the collection size.
	n := topK
	if count := col.Count(); count < n {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	var matches []memory.Match
	for _, result := range results {
		if result.Similarity < minSimilarity {
			continue
		}
		rec, err := fromResult(scope, result)
		if err != nil {
			return nil, fmt.Errorf("deserialize result %s: %w", result.ID, err)
		}
		matches = append(matches, memory.Match{Record: rec, Similarity: result.Similarity})
	}
	return matches, nil
}

// TopByImportance returns up to limit records ordered by importance
// descending, ties broken by most recently accessed.
func (s *ChromemStore) TopByImportance(ctx context.Context, scope core.Scope, limit int) ([]*memory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID, ok := s.records[scope.Key()]
	if !ok {
		return nil, nil
	}

	records := make([]*memory.Record, 0, len(byID))
	for _, rec := range byID {
		records = append(records, cloneRecord(rec))
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Importance != records[j].Importance {
			return records[i].Importance > records[j].Importance
		}
		return records[i].LastAccessedAt.After(records[j].LastAccessedAt)
	})

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Close releases resources. chromem keeps everything in memory.
func (s *ChromemStore) Close() error {
	return nil
}

// toDocument serializes a record into a chromem document. All fields ride
// in the string metadata so a persistent DB could rehydrate them.
func toDocument(rec *memory.Record) chromem.Document {
	return chromem.Document{
		ID:        rec.ID,
		Content:   rec.Content,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			"user_id":          rec.Scope.UserID,
			"character_id":     rec.Scope.CharacterID,
			"category":         string(rec.Category),
			"confidence":       strconv.FormatFloat(rec.Confidence, 'f', -1, 64),
			"importance":       strconv.FormatFloat(rec.Importance, 'f', -1, 64),
			"access_count":     strconv.Itoa(rec.AccessCount),
			"created_at":       rec.CreatedAt.Format(time.RFC3339Nano),
			"last_accessed_at": rec.LastAccessedAt.Format(time.RFC3339Nano),
		},
	}
}

// fromResult rebuilds a record from a chromem query result.
func fromResult(scope core.Scope, result chromem.Result) (*memory.Record, error) {
	confidence, err := strconv.ParseFloat(result.Metadata["confidence"], 64)
	if err != nil {
		return nil, fmt.Errorf("parse confidence: %w", err)
	}
	importance, err := strconv.ParseFloat(result.Metadata["importance"], 64)
	if err != nil {
		return nil, fmt.Errorf("parse importance: %w", err)
	}
	accessCount, err := strconv.Atoi(result.Metadata["access_count"])
	if err != nil {
		return nil, fmt.Errorf("parse access_count: %w", err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, result.Metadata["created_at"])
	lastAccessedAt, _ := time.Parse(time.RFC3339Nano, result.Metadata["last_accessed_at"])

	return &memory.Record{
		ID:             result.ID,
		Scope:          scope,
		Category:       memory.Category(result.Metadata["category"]),
		Content:        result.Content,
		Embedding:      result.Embedding,
		Confidence:     confidence,
		Importance:     importance,
		AccessCount:    accessCount,
		CreatedAt:      createdAt,
		LastAccessedAt: lastAccessedAt,
	}, nil
}

func cloneRecord(rec *memory.Record) *memory.Record {
	clone := *rec
	clone.Embedding = append([]float32(nil), rec.Embedding...)
	return &clone
}
