package relationship_test

import (
	"testing"

	"github.com/becomeliminal/companion-go-sdk/core"
	"github.com/becomeliminal/companion-go-sdk/relationship"
)

func establishedState() *relationship.State {
	state := relationship.NewState(core.NewScope("user1", "char1"))
	state.TotalInteractions = 5
	return state
}

func TestAnalyzer_Confession(t *testing.T) {
	analyzer := relationship.NewKeywordAnalyzer()

	analysis := analyzer.Analyze("我爱你", establishedState())

	if analysis.Sentiment != relationship.SentimentPositive {
		t.Errorf("Expected positive sentiment, got %s", analysis.Sentiment)
	}
	if analysis.InteractionType != relationship.TypeRomantic {
		t.Errorf("Expected romantic type, got %s", analysis.InteractionType)
	}
	if analysis.Quality != relationship.QualityNormal {
		t.Errorf("Expected normal quality, got %s (score %d)", analysis.Quality, analysis.QualityScore)
	}
	if len(analysis.DetectedMilestones) != 1 || analysis.DetectedMilestones[0] != relationship.MilestoneFirstConfession {
		t.Errorf("Expected exactly first_confession, got %v", analysis.DetectedMilestones)
	}
}

func TestAnalyzer_FirstMeetingOnlyOnFirstInteraction(t *testing.T) {
	analyzer := relationship.NewKeywordAnalyzer()

	fresh := analyzer.Analyze("hello there", nil)
	found := false
	for _, m := range fresh.DetectedMilestones {
		if m == relationship.MilestoneFirstMeeting {
			found = true
		}
	}
	if !found {
		t.Error("First message should detect first_meeting")
	}

	later := analyzer.Analyze("hello there", establishedState())
	for _, m := range later.DetectedMilestones {
		if m == relationship.MilestoneFirstMeeting {
			t.Error("first_meeting must not fire after the first interaction")
		}
	}
}

func TestAnalyzer_Sentiment(t *testing.T) {
	analyzer := relationship.NewKeywordAnalyzer()

	tests := []struct {
		text string
		want relationship.Sentiment
	}{
		{"I'm so happy, thanks!", relationship.SentimentPositive},
		{"this is terrible, I hate it", relationship.SentimentNegative},
		{"the meeting is at noon", relationship.SentimentNeutral},
		{"今天好开心哈哈", relationship.SentimentPositive},
		{"真的很烦很无聊", relationship.SentimentNegative},
	}

	for _, tt := range tests {
		analysis := analyzer.Analyze(tt.text, establishedState())
		if analysis.Sentiment != tt.want {
			t.Errorf("Analyze(%q).Sentiment = %s, want %s", tt.text, analysis.Sentiment, tt.want)
		}
	}
}

func TestAnalyzer_InteractionTypePriority(t *testing.T) {
	analyzer := relationship.NewKeywordAnalyzer()

	tests := []struct {
		text string
		want relationship.InteractionType
	}{
		{"love you darling", relationship.TypeRomantic},
		{"I have a secret, only you can know", relationship.TypeIntimate},
		{"what is the meaning of life", relationship.TypeDeep},
		{"I'm feeling lonely today", relationship.TypeEmotional},
		{"what's for dinner", relationship.TypeCasual},
	}

	for _, tt := range tests {
		analysis := analyzer.Analyze(tt.text, establishedState())
		if analysis.InteractionType != tt.want {
			t.Errorf("Analyze(%q).InteractionType = %s, want %s", tt.text, analysis.InteractionType, tt.want)
		}
	}
}

func TestAnalyzer_QualityFactors(t *testing.T) {
	analyzer := relationship.NewKeywordAnalyzer()

	rich := "I love you so much, my darling. I feel lonely when you are away from me every single day."
	analysis := analyzer.Analyze(rich, establishedState())

	if analysis.QualityFactors.Length != relationship.LengthDetailed {
		t.Errorf("Expected detailed length, got %s", analysis.QualityFactors.Length)
	}
	if analysis.QualityFactors.PersonalShare != relationship.SharingHigh {
		t.Errorf("Expected high sharing, got %s", analysis.QualityFactors.PersonalShare)
	}
	if analysis.QualityFactors.EmotionalDepth != relationship.DepthDeep {
		t.Errorf("Expected deep emotion, got %s", analysis.QualityFactors.EmotionalDepth)
	}
	if analysis.Quality != relationship.QualityExcellent {
		t.Errorf("Expected excellent quality, got %s (score %d)", analysis.Quality, analysis.QualityScore)
	}

	brief := analyzer.Analyze("ok", establishedState())
	if brief.Quality != relationship.QualityNormal {
		t.Errorf("Plain brief message should be normal quality, got %s (score %d)",
			brief.Quality, brief.QualityScore)
	}
}

func TestAnalyzer_SpecialContent(t *testing.T) {
	analyzer := relationship.NewKeywordAnalyzer()

	analysis := analyzer.Analyze("Today is my birthday!", establishedState())
	if !analysis.QualityFactors.SpecialContent {
		t.Error("Birthday mention should flag special content")
	}
}
