package chromem_test

import (
	"context"
	"testing"

	"github.com/becomeliminal/companion-go-sdk/core"
	"github.com/becomeliminal/companion-go-sdk/memory"
	"github.com/becomeliminal/companion-go-sdk/memory/embedder/mock"
	"github.com/becomeliminal/companion-go-sdk/memory/store/chromem"
)

func embedText(t *testing.T, text string) []float32 {
	t.Helper()
	embedding, err := mock.New().Embed(context.Background(), text)
	if err != nil {
		t.Fatalf("Failed to embed: %v", err)
	}
	return embedding
}

func TestChromemStore_InsertAndSearch(t *testing.T) {
	ctx := context.Background()
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	scope := core.NewScope("user1", "char1")
	rec := memory.NewRecord(scope, memory.CategoryFact, "My birthday is March 3rd",
		embedText(t, "My birthday is March 3rd"), 0.9)

	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	matches, err := store.SimilaritySearch(ctx, scope, rec.Embedding, 1, 0.9)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Record.ID != rec.ID {
		t.Errorf("Expected match %s, got %s", rec.ID, matches[0].Record.ID)
	}
	if matches[0].Record.Category != memory.CategoryFact {
		t.Errorf("Category lost in roundtrip: got %s", matches[0].Record.Category)
	}
	if matches[0].Similarity < 0.99 {
		t.Errorf("Identical embedding should score ~1.0, got %.3f", matches[0].Similarity)
	}
}

func TestChromemStore_SearchEmptyScope(t *testing.T) {
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	matches, err := store.SimilaritySearch(context.Background(),
		core.NewScope("nobody", "char1"), embedText(t, "anything"), 1, 0.9)
	if err != nil {
		t.Fatalf("Search on empty scope failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected no matches, got %d", len(matches))
	}
}

func TestChromemStore_UpdateUnknownRecord(t *testing.T) {
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	rec := memory.NewRecord(core.NewScope("user1", "char1"), memory.CategoryFact,
		"never inserted", embedText(t, "never inserted"), 0.5)
	if err := store.Update(context.Background(), rec); err == nil {
		t.Fatal("Expected error updating unknown record")
	}
}

func TestChromemStore_UpdatePersistsMutations(t *testing.T) {
	ctx := context.Background()
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	scope := core.NewScope("user1", "char1")
	rec := memory.NewRecord(scope, memory.CategoryFact, "I work as a nurse",
		embedText(t, "I work as a nurse"), 0.5)
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	rec.Touch(0.95)
	if err := store.Update(ctx, rec); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}

	matches, err := store.SimilaritySearch(ctx, scope, rec.Embedding, 1, 0.9)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Record.AccessCount != 1 {
		t.Errorf("Expected access count 1 after update, got %d", matches[0].Record.AccessCount)
	}
	if matches[0].Record.Importance != 0.95 {
		t.Errorf("Expected importance 0.95 after update, got %.2f", matches[0].Record.Importance)
	}
}

func TestChromemStore_TopByImportance(t *testing.T) {
	ctx := context.Background()
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	scope := core.NewScope("user1", "char1")
	texts := map[string]float64{
		"casual chatter":           0.3,
		"My birthday is March 3rd": 0.9,
		"I like spicy food":        0.7,
	}
	for text, importance := range texts {
		rec := memory.NewRecord(scope, memory.CategoryFact, text, embedText(t, text), importance)
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}
	}

	top, err := store.TopByImportance(ctx, scope, 2)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(top))
	}
	if top[0].Content != "My birthday is March 3rd" {
		t.Errorf("Expected most important first, got %q", top[0].Content)
	}
	if top[1].Content != "I like spicy food" {
		t.Errorf("Expected second most important, got %q", top[1].Content)
	}
}

func TestChromemStore_ScopeIsolation(t *testing.T) {
	ctx := context.Background()
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	rec := memory.NewRecord(core.NewScope("user1", "char1"), memory.CategoryFact,
		"My birthday is March 3rd", embedText(t, "My birthday is March 3rd"), 0.9)
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	matches, err := store.SimilaritySearch(ctx, core.NewScope("user2", "char1"),
		rec.Embedding, 1, 0.0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Other scope must not see the record, got %d matches", len(matches))
	}
}
