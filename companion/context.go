package companion

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/becomeliminal/companion-go-sdk/core"
	"github.com/becomeliminal/companion-go-sdk/memory"
	"github.com/becomeliminal/companion-go-sdk/relationship"
)

const (
	contextMilestones = 3
	contextMemories   = 3
)

// Context renders a prompt-ready snapshot of the pair: relationship stage,
// counters, recent milestones and the most important memories. Snapshots
// are cached for the configured TTL and invalidated on every processed
// message, so a fresh read after an interaction always sees the update.
func (e *Engine) Context(ctx context.Context, userID, characterID string) (string, error) {
	scope := core.NewScope(userID, characterID)
	if err := scope.Validate(); err != nil {
		return "", err
	}

	// Render under the pair lock. An unlocked render racing a
	// ProcessInteraction could cache a pre-update snapshot right after the
	// write-through invalidation and serve it stale for a full TTL.
	unlock := e.locks.acquire(scope.Key())
	defer unlock()

	if cached, ok := e.cache.Get(scope.Key()); ok {
		if text, ok := cached.(string); ok {
			return text, nil
		}
	}

	state, err := e.Relationship(ctx, userID, characterID)
	if err != nil {
		return "", err
	}

	var memories []*memory.Record
	if e.memories != nil {
		memories, err = e.memories.TopByImportance(ctx, scope, contextMemories)
		if err != nil {
			// Context degrades to relationship-only rather than failing.
			log.Printf("[COMPANION] Memory lookup failed during context render (scope=%s): %v", scope, err)
			memories = nil
		}
	}

	text := renderContext(state, memories)
	e.cache.SetWithTTL(scope.Key(), text, int64(len(text)), e.contextTTL)

	return text, nil
}

func renderContext(state *relationship.State, records []*memory.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Relationship: %s (level %d/%d)\n",
		relationship.StageName(state.Level), state.Level, relationship.MaxLevel)
	fmt.Fprintf(&b, "%s\n", relationship.StageDescription(state.Level))
	fmt.Fprintf(&b, "Communication style: %s\n", relationship.StyleForLevel(state.Level))
	fmt.Fprintf(&b, "Trust: %.0f/100, emotional bond: %.0f/100\n", state.TrustLevel, state.EmotionalBond)
	fmt.Fprintf(&b, "Interactions: %d total (%d positive, %d negative)\n",
		state.TotalInteractions, state.PositiveInteractions, state.NegativeInteractions)

	if recent := state.RecentMilestones(contextMilestones); len(recent) > 0 {
		b.WriteString("Shared moments:\n")
		for _, m := range recent {
			fmt.Fprintf(&b, "- %s (%s)\n", m.Name, m.ReachedAt.Format("2006-01-02"))
		}
	}

	if len(records) > 0 {
		b.WriteString("What you remember about them:\n")
		for _, category := range groupedCategories(records) {
			for _, rec := range records {
				if rec.Category == category {
					fmt.Fprintf(&b, "- [%s] %s\n", rec.Category, rec.Content)
				}
			}
		}
	}

	return b.String()
}

// groupedCategories returns the categories present in the records, in the
// canonical category order, so the rendering is deterministic.
func groupedCategories(records []*memory.Record) []memory.Category {
	present := make(map[memory.Category]bool, len(records))
	for _, rec := range records {
		present[rec.Category] = true
	}

	var ordered []memory.Category
	for _, category := range memory.Categories {
		if present[category] {
			ordered = append(ordered, category)
		}
	}

	// Unknown categories sort after the canonical ones.
	var extra []memory.Category
	for category := range present {
		known := false
		for _, c := range memory.Categories {
			if c == category {
				known = true
				break
			}
		}
		if !known {
			extra = append(extra, category)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(ordered, extra...)
}
