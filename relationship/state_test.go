package relationship_test

import (
	"testing"
	"time"

	"github.com/becomeliminal/companion-go-sdk/core"
	"github.com/becomeliminal/companion-go-sdk/relationship"
)

func TestLevelForPoints(t *testing.T) {
	tests := []struct {
		points int
		want   int
	}{
		{0, 1},
		{49, 1},
		{50, 2},
		{149, 2},
		{150, 3},
		{300, 4},
		{500, 5},
		{800, 6},
		{1200, 7},
		{1800, 8},
		{2500, 9},
		{3500, 10},
		{999999, 10},
	}

	for _, tt := range tests {
		if got := relationship.LevelForPoints(tt.points); got != tt.want {
			t.Errorf("LevelForPoints(%d) = %d, want %d", tt.points, got, tt.want)
		}
	}
}

func TestNewStateDefaults(t *testing.T) {
	state := relationship.NewState(core.NewScope("user1", "char1"))

	if state.Level != 1 {
		t.Errorf("New state should start at level 1, got %d", state.Level)
	}
	if state.Points != 0 {
		t.Errorf("New state should start at 0 points, got %d", state.Points)
	}
	if state.TrustLevel != 10 {
		t.Errorf("New state should start at trust 10, got %.1f", state.TrustLevel)
	}
}

func TestAddMilestoneIdempotent(t *testing.T) {
	state := relationship.NewState(core.NewScope("user1", "char1"))
	now := time.Now()

	if !state.AddMilestone(relationship.MilestoneFirstConfession, now) {
		t.Fatal("First add should report newly added")
	}
	if state.AddMilestone(relationship.MilestoneFirstConfession, now.Add(time.Hour)) {
		t.Fatal("Second add should be a no-op")
	}
	if len(state.Milestones) != 1 {
		t.Fatalf("Expected 1 milestone, got %d", len(state.Milestones))
	}
	if !state.HasMilestone(relationship.MilestoneFirstConfession) {
		t.Error("HasMilestone should report the recorded milestone")
	}
}

func TestRecentMilestones(t *testing.T) {
	state := relationship.NewState(core.NewScope("user1", "char1"))
	base := time.Now()

	state.AddMilestone(relationship.MilestoneFirstMeeting, base)
	state.AddMilestone(relationship.MilestoneSecretSharing, base.Add(time.Hour))
	state.AddMilestone(relationship.MilestoneFirstConfession, base.Add(2*time.Hour))

	recent := state.RecentMilestones(2)
	if len(recent) != 2 {
		t.Fatalf("Expected 2 milestones, got %d", len(recent))
	}
	if recent[0].Name != relationship.MilestoneFirstConfession {
		t.Errorf("Expected most recent first, got %s", recent[0].Name)
	}
	if recent[1].Name != relationship.MilestoneSecretSharing {
		t.Errorf("Expected second most recent, got %s", recent[1].Name)
	}
}

func TestStyleForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  relationship.CommunicationStyle
	}{
		{1, relationship.StylePolite},
		{2, relationship.StylePolite},
		{3, relationship.StyleFriendly},
		{5, relationship.StyleCasual},
		{7, relationship.StyleAffectionate},
		{9, relationship.StyleIntimate},
		{10, relationship.StyleIntimate},
	}

	for _, tt := range tests {
		if got := relationship.StyleForLevel(tt.level); got != tt.want {
			t.Errorf("StyleForLevel(%d) = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	state := relationship.NewState(core.NewScope("user1", "char1"))
	state.AddMilestone(relationship.MilestoneFirstMeeting, time.Now())

	clone := state.Clone()
	clone.AddMilestone(relationship.MilestonePromise, time.Now())
	clone.Points = 500

	if len(state.Milestones) != 1 {
		t.Errorf("Clone mutation leaked into original milestones: %d", len(state.Milestones))
	}
	if state.Points != 0 {
		t.Errorf("Clone mutation leaked into original points: %d", state.Points)
	}
}
