package memory

import (
	"time"

	"github.com/google/uuid"

	"github.com/becomeliminal/companion-go-sdk/core"
)

// Category classifies what kind of long-term memory a record holds.
type Category string

const (
	CategoryFact         Category = "fact"
	CategoryPreference   Category = "preference"
	CategoryGoal         Category = "goal"
	CategoryRelationship Category = "relationship"
	CategoryEmotion      Category = "emotion"
	CategoryEvent        Category = "event"
	CategoryConversation Category = "conversation"
)

// Categories lists every valid category. Classifiers must return a member
// of this set, never an empty category.
var Categories = []Category{
	CategoryFact,
	CategoryPreference,
	CategoryGoal,
	CategoryRelationship,
	CategoryEmotion,
	CategoryEvent,
	CategoryConversation,
}

// DefaultConfidence is assigned to freshly extracted records. Heuristic
// extraction is trusted but not certain.
const DefaultConfidence = 0.9

// Record is one durable, deduplicated memory inside a (user, character)
// scope. Records are created on first extraction and mutated on each
// semantically matching re-extraction; the engine never deletes them.
type Record struct {
	ID             string
	Scope          core.Scope
	Category       Category
	Content        string
	Embedding      []float32
	Confidence     float64 // [0,1]
	Importance     float64 // [0.1,1.0]
	AccessCount    int
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// NewRecord builds a record for first insertion.
func NewRecord(scope core.Scope, category Category, content string, embedding []float32, importance float64) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:             uuid.New().String(),
		Scope:          scope,
		Category:       category,
		Content:        content,
		Embedding:      embedding,
		Confidence:     DefaultConfidence,
		Importance:     ClampImportance(importance),
		AccessCount:    0,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// Touch records a semantically matching re-extraction: the record was
// "seen again", so its access count grows, its importance keeps the
// higher of the two scores, and its recency refreshes.
func (r *Record) Touch(importance float64) {
	r.AccessCount++
	if importance > r.Importance {
		r.Importance = ClampImportance(importance)
	}
	r.LastAccessedAt = time.Now().UTC()
}

// ClampImportance bounds an importance score to [0.1, 1.0].
func ClampImportance(v float64) float64 {
	if v < 0.1 {
		return 0.1
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
