// Package sqlite persists relationship state in SQLite via the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/becomeliminal/companion-go-sdk/core"
	"github.com/becomeliminal/companion-go-sdk/relationship"
)

// SQLiteStore implements relationship.Store with optimistic versioning:
// updates apply only when the stored version matches the snapshot's, so
// concurrent writers surface as relationship.ErrVersionConflict instead
// of silently losing updates.
type SQLiteStore struct {
	db *sql.DB
}

// New opens or creates a SQLite database at the given path.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS relationships (
		user_id               TEXT NOT NULL,
		character_id          TEXT NOT NULL,
		level                 INTEGER NOT NULL DEFAULT 1,
		points                INTEGER NOT NULL DEFAULT 0,
		total_interactions    INTEGER NOT NULL DEFAULT 0,
		positive_interactions INTEGER NOT NULL DEFAULT 0,
		negative_interactions INTEGER NOT NULL DEFAULT 0,
		trust_level           REAL NOT NULL DEFAULT 0,
		emotional_bond        REAL NOT NULL DEFAULT 0,
		last_interaction_at   TEXT,
		version               INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (user_id, character_id)
	);

	CREATE TABLE IF NOT EXISTS relationship_milestones (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		character_id TEXT NOT NULL,
		name         TEXT NOT NULL,
		reached_at   TEXT NOT NULL,
		UNIQUE (user_id, character_id, name)
	);
	CREATE INDEX IF NOT EXISTS idx_milestones_pair
		ON relationship_milestones(user_id, character_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the pair's state, or relationship.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, scope core.Scope) (*relationship.State, error) {
	state := &relationship.State{Scope: scope}
	var lastInteraction sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT level, points, total_interactions, positive_interactions,
		       negative_interactions, trust_level, emotional_bond,
		       last_interaction_at, version
		FROM relationships
		WHERE user_id = ? AND character_id = ?`,
		scope.UserID, scope.CharacterID).
		Scan(&state.Level, &state.Points, &state.TotalInteractions,
			&state.PositiveInteractions, &state.NegativeInteractions,
			&state.TrustLevel, &state.EmotionalBond, &lastInteraction, &state.Version)
	if err == sql.ErrNoRows {
		return nil, relationship.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get relationship: %w", err)
	}

	if lastInteraction.Valid {
		state.LastInteractionAt, _ = time.Parse(time.RFC3339Nano, lastInteraction.String)
	}

	if err := s.loadMilestones(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *SQLiteStore) loadMilestones(ctx context.Context, state *relationship.State) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, reached_at FROM relationship_milestones
		WHERE user_id = ? AND character_id = ?
		ORDER BY reached_at ASC, id ASC`,
		state.Scope.UserID, state.Scope.CharacterID)
	if err != nil {
		return fmt.Errorf("load milestones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, reachedAt string
		if err := rows.Scan(&name, &reachedAt); err != nil {
			return err
		}
		rec := relationship.MilestoneRecord{Name: relationship.Milestone(name)}
		rec.ReachedAt, _ = time.Parse(time.RFC3339Nano, reachedAt)
		state.Milestones = append(state.Milestones, rec)
	}
	return rows.Err()
}

// Upsert writes the state with compare-and-swap on the version column.
func (s *SQLiteStore) Upsert(ctx context.Context, state *relationship.State) (*relationship.State, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var lastInteraction interface{}
	if !state.LastInteractionAt.IsZero() {
		lastInteraction = state.LastInteractionAt.UTC().Format(time.RFC3339Nano)
	}

	newVersion := state.Version + 1
	if state.Version == 0 {
		newVersion = 1
		_, err = tx.ExecContext(ctx, `
			INSERT INTO relationships
				(user_id, character_id, level, points, total_interactions,
				 positive_interactions, negative_interactions, trust_level,
				 emotional_bond, last_interaction_at, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			state.Scope.UserID, state.Scope.CharacterID, state.Level, state.Points,
			state.TotalInteractions, state.PositiveInteractions, state.NegativeInteractions,
			state.TrustLevel, state.EmotionalBond, lastInteraction, newVersion)
		if isPrimaryKeyViolation(err) {
			// Someone inserted this pair first.
			return nil, relationship.ErrVersionConflict
		}
		if err != nil {
			return nil, fmt.Errorf("insert relationship: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx, `
			UPDATE relationships
			SET level = ?, points = ?, total_interactions = ?,
			    positive_interactions = ?, negative_interactions = ?,
			    trust_level = ?, emotional_bond = ?, last_interaction_at = ?,
			    version = ?
			WHERE user_id = ? AND character_id = ? AND version = ?`,
			state.Level, state.Points, state.TotalInteractions,
			state.PositiveInteractions, state.NegativeInteractions,
			state.TrustLevel, state.EmotionalBond, lastInteraction,
			newVersion, state.Scope.UserID, state.Scope.CharacterID, state.Version)
		if err != nil {
			return nil, fmt.Errorf("update relationship: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, relationship.ErrVersionConflict
		}
	}

	// Milestones are append-only and unique per pair; re-inserting an
	// existing one is a no-op.
	for _, m := range state.Milestones {
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO relationship_milestones
				(id, user_id, character_id, name, reached_at)
			VALUES (?, ?, ?, ?, ?)`,
			ulid.Make().String(), state.Scope.UserID, state.Scope.CharacterID,
			string(m.Name), m.ReachedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return nil, fmt.Errorf("insert milestone: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	stored := state.Clone()
	stored.Version = newVersion
	return stored, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isPrimaryKeyViolation(err error) bool {
	var serr *sqlitedrv.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
