package memory

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// LLMClassifier classifies memories with Claude instead of keyword tables.
// It is the substitutable NLU strategy: same Classifier contract, so the
// consolidator does not change when it is injected.
//
// Any API failure falls back to the keyword classifier, so classification
// always succeeds and always returns a member of the category set.
type LLMClassifier struct {
	client   *anthropic.Client
	model    string
	timeout  time.Duration
	fallback *KeywordClassifier
}

// NewLLMClassifier creates a Claude-backed classifier.
func NewLLMClassifier(client *anthropic.Client, model string) *LLMClassifier {
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}
	return &LLMClassifier{
		client:   client,
		model:    model,
		timeout:  5 * time.Second,
		fallback: NewKeywordClassifier(),
	}
}

const classifyPrompt = `Classify the user message into exactly one memory category.
Categories: fact, preference, goal, relationship, emotion, event, conversation.
Reply with the single category word only.`

// Classify asks Claude for a category, falling back to keyword tables on
// any error or unrecognized answer.
func (c *LLMClassifier) Classify(text string) Category {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 8,
		System: []anthropic.TextBlockParam{
			{Text: classifyPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		log.Printf("[MEMORY] LLM classify failed, using keyword fallback: %v", err)
		return c.fallback.Classify(text)
	}

	var answer string
	for _, block := range resp.Content {
		if block.Type == "text" {
			answer += block.Text
		}
	}
	answer = strings.ToLower(strings.TrimSpace(answer))

	for _, cat := range Categories {
		if answer == string(cat) {
			return cat
		}
	}

	log.Printf("[MEMORY] LLM classify returned %q, using keyword fallback", answer)
	return c.fallback.Classify(text)
}

// ScoreImportance stays deterministic: the keyword baseline-plus-bonus
// scoring applies no matter which strategy picked the category.
func (c *LLMClassifier) ScoreImportance(text string, category Category) float64 {
	return c.fallback.ScoreImportance(text, category)
}
