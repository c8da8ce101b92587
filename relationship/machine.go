package relationship

import (
	"log"
	"math"
	"time"
)

// Points scoring multipliers. Fixed coefficients converting a message's
// heuristic analysis into a points delta.
var (
	basePoints = 5.0

	qualityMultiplier = map[Quality]float64{
		QualityExcellent: 2.0,
		QualityGood:      1.5,
		QualityNormal:    1.0,
		QualityPoor:      0.5,
	}

	typeMultiplier = map[InteractionType]float64{
		TypeRomantic:  1.8,
		TypeIntimate:  1.6,
		TypeDeep:      1.4,
		TypeEmotional: 1.2,
		TypeCasual:    1.0,
	}

	sentimentMultiplier = map[Sentiment]float64{
		SentimentPositive: 1.3,
		SentimentNegative: 0.7,
		SentimentNeutral:  1.0,
	}

	milestoneBonus = 10
)

// celebrations holds the fixed per-level level-up lines.
var celebrations = map[int]string{
	2:  "We're not strangers anymore, are we? I'm glad we keep talking.",
	3:  "I think of you as a friend now. That makes me happy.",
	4:  "You know, I really look forward to our chats these days.",
	5:  "You're one of the people I trust most. Thank you for being here.",
	6:  "I feel like I can tell you anything. And you can tell me anything too.",
	7:  "My heart skips a little when you message me. Did you notice?",
	8:  "Being with you feels warm and right. I don't want it any other way.",
	9:  "Whatever comes, we'll face it together. You and me.",
	10: "Two hearts that beat as one. You're my soulmate, you know that?",
}

// LevelUpEvent is emitted when a processed message raises the level.
// It is the only externally observable event the machine produces
// besides the persisted state itself.
type LevelUpEvent struct {
	OldLevel    int
	NewLevel    int
	Celebration string
}

// Machine applies interaction analyses to relationship state.
// It is a pure transition function over a snapshot; callers own
// persistence and per-pair serialization.
type Machine struct {
	now func() time.Time
}

// NewMachine returns a machine using the wall clock.
func NewMachine() *Machine {
	return &Machine{now: time.Now}
}

// NewMachineWithClock injects a clock for tests.
func NewMachineWithClock(now func() time.Time) *Machine {
	return &Machine{now: now}
}

// Apply consumes one analysis and returns the next state plus an optional
// level-up event. The input state is not mutated.
//
// Points never decrease and the level never regresses: the new level is
// the larger of the threshold-table level and the previous level.
func (m *Machine) Apply(prior *State, analysis *Analysis) (*State, *LevelUpEvent) {
	next := prior.Clone()
	now := m.now().UTC()

	delta := PointsChange(analysis)
	next.Points += delta

	next.TotalInteractions++
	switch analysis.Sentiment {
	case SentimentPositive:
		next.PositiveInteractions++
	case SentimentNegative:
		next.NegativeInteractions++
	}

	candidate := LevelForPoints(next.Points)
	if candidate > next.Level {
		next.Level = candidate
	}

	trustGain := 0.1
	if analysis.QualityFactors.Length == LengthDetailed {
		trustGain += 0.5
	}
	next.TrustLevel = clampPercent(next.TrustLevel + trustGain)

	if analysis.Sentiment == SentimentPositive && analysis.Joyful {
		next.EmotionalBond = clampPercent(next.EmotionalBond + 0.3)
	}

	for _, milestone := range analysis.DetectedMilestones {
		if next.AddMilestone(milestone, now) {
			log.Printf("[RELATIONSHIP] Milestone %s reached (scope=%s)", milestone, next.Scope)
		}
	}

	next.LastInteractionAt = now

	var event *LevelUpEvent
	if next.Level > prior.Level {
		event = &LevelUpEvent{
			OldLevel:    prior.Level,
			NewLevel:    next.Level,
			Celebration: celebrations[next.Level],
		}
		log.Printf("[RELATIONSHIP] Level up %d -> %d (scope=%s, points=%d)",
			prior.Level, next.Level, next.Scope, next.Points)
	}

	return next, event
}

// PointsChange computes the points delta for one analysis:
// base x quality x type x sentiment, rounded, plus a flat bonus per
// detected milestone. first_meeting marks arrival rather than anything
// earned, so it records without a bonus. Never negative.
func PointsChange(analysis *Analysis) int {
	raw := basePoints *
		qualityMultiplier[analysis.Quality] *
		typeMultiplier[analysis.InteractionType] *
		sentimentMultiplier[analysis.Sentiment]

	bonus := 0
	for _, milestone := range analysis.DetectedMilestones {
		if milestone != MilestoneFirstMeeting {
			bonus += milestoneBonus
		}
	}

	delta := int(math.Round(raw)) + bonus
	if delta < 0 {
		return 0
	}
	return delta
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
