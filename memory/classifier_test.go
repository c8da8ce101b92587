package memory_test

import (
	"testing"

	"github.com/becomeliminal/companion-go-sdk/memory"
)

func TestKeywordClassifier_Categories(t *testing.T) {
	classifier := memory.NewKeywordClassifier()

	tests := []struct {
		text string
		want memory.Category
	}{
		{"I love sushi and ramen", memory.CategoryPreference},
		{"我喜欢吃辣的", memory.CategoryPreference},
		{"I feel so lonely today", memory.CategoryEmotion},
		{"My birthday is March 3rd", memory.CategoryFact},
		{"我的生日是三月三号", memory.CategoryFact},
		{"我的梦想是当画家", memory.CategoryGoal},
		{"My mother called me yesterday", memory.CategoryRelationship},
		{"we talked about this before", memory.CategoryConversation},
		{"Went to the park", memory.CategoryEvent},
	}

	for _, tt := range tests {
		if got := classifier.Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestKeywordClassifier_AlwaysReturnsValidCategory(t *testing.T) {
	classifier := memory.NewKeywordClassifier()

	for _, text := range []string{"", "asdf qwerty", "12345", "。。。"} {
		got := classifier.Classify(text)

		valid := false
		for _, c := range memory.Categories {
			if got == c {
				valid = true
				break
			}
		}
		if !valid {
			t.Errorf("Classify(%q) = %q, not a valid category", text, got)
		}
	}
}

func TestKeywordClassifier_ImportanceBounds(t *testing.T) {
	classifier := memory.NewKeywordClassifier()

	texts := []string{
		"",
		"My birthday is March 3rd, I work as a nurse, my family and my dream and my goal and my hobby",
		"random chatter",
		"我的生日和工作和家人和梦想",
	}
	for _, text := range texts {
		category := classifier.Classify(text)
		score := classifier.ScoreImportance(text, category)
		if score < 0.1 || score > 1.0 {
			t.Errorf("ScoreImportance(%q) = %.2f, out of [0.1, 1.0]", text, score)
		}
	}
}

func TestKeywordClassifier_HighValueKeywordsRaiseImportance(t *testing.T) {
	classifier := memory.NewKeywordClassifier()

	plain := classifier.ScoreImportance("I live in Tokyo", memory.CategoryFact)
	boosted := classifier.ScoreImportance("My birthday is March 3rd", memory.CategoryFact)

	if boosted <= plain {
		t.Errorf("Expected birthday fact (%.2f) to outrank plain fact (%.2f)", boosted, plain)
	}
}
