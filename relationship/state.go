// Package relationship owns the per-(user, character) relationship state
// machine: points, levels, trust, emotional bond and milestones, driven by
// heuristically scored interactions.
package relationship

import (
	"sort"
	"time"

	"github.com/becomeliminal/companion-go-sdk/core"
)

// MaxLevel is the absorbing top of the level ladder. Points keep
// accumulating past it but the level never exceeds it.
const MaxLevel = 10

// Milestone is a one-time relationship event, recorded idempotently.
type Milestone string

const (
	MilestoneFirstMeeting    Milestone = "first_meeting"
	MilestoneFirstConfession Milestone = "first_confession"
	MilestoneSecretSharing   Milestone = "secret_sharing"
	MilestonePromise         Milestone = "promise"
)

// CommunicationStyle describes how the character should address the user.
// It is derived from the level, never stored independently.
type CommunicationStyle string

const (
	StylePolite       CommunicationStyle = "polite"
	StyleFriendly     CommunicationStyle = "friendly"
	StyleCasual       CommunicationStyle = "casual"
	StyleAffectionate CommunicationStyle = "affectionate"
	StyleIntimate     CommunicationStyle = "intimate"
)

// MilestoneRecord pairs a milestone with when it was first reached.
type MilestoneRecord struct {
	Name      Milestone
	ReachedAt time.Time
}

// State is the relationship record for one (user, character) pair.
// It mutates exactly once per processed message, through the Machine.
type State struct {
	Scope                core.Scope
	Level                int // [1, MaxLevel]
	Points               int // monotonically non-decreasing
	TotalInteractions    int
	PositiveInteractions int
	NegativeInteractions int
	TrustLevel           float64 // [0, 100]
	EmotionalBond        float64 // [0, 100]
	Milestones           []MilestoneRecord
	LastInteractionAt    time.Time

	// Version backs optimistic concurrency at the store layer.
	Version int64
}

// NewState returns the lazy default created on a pair's first interaction.
func NewState(scope core.Scope) *State {
	return &State{
		Scope:      scope,
		Level:      1,
		TrustLevel: 10,
	}
}

// levelThresholds maps each level above 1 to the points required for it.
var levelThresholds = []struct {
	level  int
	points int
}{
	{2, 50},
	{3, 150},
	{4, 300},
	{5, 500},
	{6, 800},
	{7, 1200},
	{8, 1800},
	{9, 2500},
	{10, 3500},
}

// LevelForPoints returns the highest level whose threshold is at or below
// points. Level 1 needs nothing; the result never exceeds MaxLevel.
func LevelForPoints(points int) int {
	level := 1
	for _, t := range levelThresholds {
		if points >= t.points {
			level = t.level
		}
	}
	return level
}

// stages gives each level a display name and description.
var stages = map[int]struct {
	name        string
	description string
}{
	1:  {"stranger", "You have just met and are still feeling each other out."},
	2:  {"acquaintance", "You recognize each other and small talk comes easily."},
	3:  {"friend", "You enjoy talking and share everyday moments."},
	4:  {"good friend", "You trust each other with more personal topics."},
	5:  {"close friend", "You confide in each other and miss each other between chats."},
	6:  {"confidant", "Few secrets remain between you."},
	7:  {"special someone", "There is clearly something more than friendship here."},
	8:  {"beloved", "Affection is open and warmly returned."},
	9:  {"partner", "You face everything together, as one."},
	10: {"soulmate", "Two hearts that beat as one."},
}

// StageName returns the display name for a level.
func StageName(level int) string {
	if s, ok := stages[clampLevel(level)]; ok {
		return s.name
	}
	return stages[1].name
}

// StageDescription returns the description for a level.
func StageDescription(level int) string {
	if s, ok := stages[clampLevel(level)]; ok {
		return s.description
	}
	return stages[1].description
}

// StyleForLevel derives the communication style from the level.
func StyleForLevel(level int) CommunicationStyle {
	switch {
	case level >= 9:
		return StyleIntimate
	case level >= 7:
		return StyleAffectionate
	case level >= 5:
		return StyleCasual
	case level >= 3:
		return StyleFriendly
	default:
		return StylePolite
	}
}

// HasMilestone reports whether the milestone was already recorded.
func (s *State) HasMilestone(m Milestone) bool {
	for _, rec := range s.Milestones {
		if rec.Name == m {
			return true
		}
	}
	return false
}

// AddMilestone records a milestone once; re-adding is a no-op.
// It reports whether the milestone was newly added.
func (s *State) AddMilestone(m Milestone, at time.Time) bool {
	if s.HasMilestone(m) {
		return false
	}
	s.Milestones = append(s.Milestones, MilestoneRecord{Name: m, ReachedAt: at})
	return true
}

// RecentMilestones returns up to n milestones, most recent first.
func (s *State) RecentMilestones(n int) []MilestoneRecord {
	recent := append([]MilestoneRecord(nil), s.Milestones...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].ReachedAt.After(recent[j].ReachedAt)
	})
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}

// Clone returns a deep copy, so analyzer and machine can work from a
// stable snapshot while the original stays untouched on failure paths.
func (s *State) Clone() *State {
	clone := *s
	clone.Milestones = append([]MilestoneRecord(nil), s.Milestones...)
	return &clone
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
