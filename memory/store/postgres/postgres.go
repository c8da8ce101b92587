// Package postgres provides the production memory store backed by
// Postgres with the pgvector extension.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/becomeliminal/companion-go-sdk/core"
	"github.com/becomeliminal/companion-go-sdk/memory"
)

// PostgresStore implements memory.Store using Postgres + pgvector.
type PostgresStore struct {
	pool       *pgxpool.Pool
	dimensions int
}

// New connects to Postgres and ensures the schema exists.
func New(ctx context.Context, connStr string, dimensions int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &PostgresStore{pool: pool, dimensions: dimensions}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS companion_memories (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			character_id     TEXT NOT NULL,
			category         TEXT NOT NULL,
			content          TEXT NOT NULL,
			embedding        vector(%d) NOT NULL,
			confidence       DOUBLE PRECISION NOT NULL,
			importance       DOUBLE PRECISION NOT NULL,
			access_count     INTEGER NOT NULL DEFAULT 0,
			created_at       TIMESTAMPTZ NOT NULL,
			last_accessed_at TIMESTAMPTZ NOT NULL
		)`, s.dimensions),
		`CREATE INDEX IF NOT EXISTS idx_companion_memories_pair
			ON companion_memories (user_id, character_id)`,
		`CREATE INDEX IF NOT EXISTS idx_companion_memories_importance
			ON companion_memories (user_id, character_id, importance DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Insert persists a new record.
func (s *PostgresStore) Insert(ctx context.Context, rec *memory.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO companion_memories
			(id, user_id, character_id, category, content, embedding,
			 confidence, importance, access_count, created_at, last_accessed_at)
		VALUES ($1, $2, $3, $4, $5, $6::vector, $7, $8, $9, $10, $11)`,
		rec.ID, rec.Scope.UserID, rec.Scope.CharacterID, string(rec.Category),
		rec.Content, vectorLiteral(rec.Embedding),
		rec.Confidence, rec.Importance, rec.AccessCount, rec.CreatedAt, rec.LastAccessedAt)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

// Update persists the mutable fields of a merged record.
func (s *PostgresStore) Update(ctx context.Context, rec *memory.Record) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE companion_memories
		SET importance = $2, access_count = $3, last_accessed_at = $4
		WHERE id = $1`,
		rec.ID, rec.Importance, rec.AccessCount, rec.LastAccessedAt)
	if err != nil {
		return fmt.Errorf("update memory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("memory %s not found", rec.ID)
	}
	return nil
}

// SimilaritySearch returns the topK nearest records within the scope whose
// cosine similarity is at least minSimilarity, best match first.
func (s *PostgresStore) SimilaritySearch(ctx context.Context, scope core.Scope, embedding []float32, topK int, minSimilarity float32) ([]memory.Match, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, content, embedding::text, confidence, importance,
		       access_count, created_at, last_accessed_at,
		       1 - (embedding <=> $3::vector) AS similarity
		FROM companion_memories
		WHERE user_id = $1 AND character_id = $2
		  AND 1 - (embedding <=> $3::vector) >= $4
		ORDER BY embedding <=> $3::vector
		LIMIT $5`,
		scope.UserID, scope.CharacterID, vectorLiteral(embedding), minSimilarity, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var matches []memory.Match
	for rows.Next() {
		rec := &memory.Record{Scope: scope}
		var embeddingText string
		var similarity float64
		if err := rows.Scan(&rec.ID, &rec.Category, &rec.Content, &embeddingText,
			&rec.Confidence, &rec.Importance, &rec.AccessCount,
			&rec.CreatedAt, &rec.LastAccessedAt, &similarity); err != nil {
			return nil, err
		}
		rec.Embedding = parseVector(embeddingText)
		matches = append(matches, memory.Match{Record: rec, Similarity: float32(similarity)})
	}
	return matches, rows.Err()
}

// TopByImportance returns the limit most important records in the scope.
func (s *PostgresStore) TopByImportance(ctx context.Context, scope core.Scope, limit int) ([]*memory.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, content, embedding::text, confidence, importance,
		       access_count, created_at, last_accessed_at
		FROM companion_memories
		WHERE user_id = $1 AND character_id = $2
		ORDER BY importance DESC, last_accessed_at DESC
		LIMIT $3`,
		scope.UserID, scope.CharacterID, limit)
	if err != nil {
		return nil, fmt.Errorf("top by importance: %w", err)
	}
	defer rows.Close()

	var records []*memory.Record
	for rows.Next() {
		rec := &memory.Record{Scope: scope}
		var embeddingText string
		if err := rows.Scan(&rec.ID, &rec.Category, &rec.Content, &embeddingText,
			&rec.Confidence, &rec.Importance, &rec.AccessCount,
			&rec.CreatedAt, &rec.LastAccessedAt); err != nil {
			return nil, err
		}
		rec.Embedding = parseVector(embeddingText)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Get fetches one record by id, mostly for tests and tooling.
func (s *PostgresStore) Get(ctx context.Context, scope core.Scope, id string) (*memory.Record, error) {
	rec := &memory.Record{Scope: scope}
	var embeddingText string
	err := s.pool.QueryRow(ctx, `
		SELECT id, category, content, embedding::text, confidence, importance,
		       access_count, created_at, last_accessed_at
		FROM companion_memories
		WHERE user_id = $1 AND character_id = $2 AND id = $3`,
		scope.UserID, scope.CharacterID, id).
		Scan(&rec.ID, &rec.Category, &rec.Content, &embeddingText,
			&rec.Confidence, &rec.Importance, &rec.AccessCount,
			&rec.CreatedAt, &rec.LastAccessedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("memory %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	rec.Embedding = parseVector(embeddingText)
	return rec, nil
}

// vectorLiteral renders an embedding in pgvector's input format.
func vectorLiteral(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// parseVector parses pgvector's text output back into a float32 slice.
func parseVector(text string) []float32 {
	text = strings.Trim(text, "[]")
	if text == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	vec := make([]float32, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			continue
		}
		vec = append(vec, float32(f))
	}
	return vec
}
