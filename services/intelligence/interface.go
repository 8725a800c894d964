package intelligence

import (
	"context"

	"voyago/models"
)

// Service provides the auxiliary language intelligence around the dialogue
// engine: intent hints for routing, knowledge-base answers for FAQ turns and
// free-form replies for general chatter. Slot extraction never goes through
// here, so every method degrades gracefully when no LLM is configured.
type Service interface {
	// ClassifyIntent returns a routing hint for a turn. It never fails: the
	// keyword classifier decides alone when the LLM is unavailable.
	ClassifyIntent(ctx context.Context, text string) models.Intent
	// AnswerFAQ answers a visa/payment/cancellation/insurance/documents
	// question. The fixed knowledge text is the floor; a configured LLM only
	// rephrases it for the concrete question.
	AnswerFAQ(ctx context.Context, intent models.Intent, question string) string
	// SmallTalk answers a general question (weather, advice, comparisons)
	// with recent history as context. Returns "" when no LLM is configured
	// so the caller can fall back to re-asking its pending question.
	SmallTalk(ctx context.Context, text string, history []models.ChatMessage) string
}

// Generator is the LLM surface the service needs. *GeminiClient implements
// it; tests substitute a scripted fake.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DefaultIntelligenceService implements Service over an optional Generator
// and an optional Redis answer cache. Both may be nil.
type DefaultIntelligenceService struct {
	LLM   Generator
	Cache *AnswerCache
}

// NewIntelligenceService wires the service. Pass a nil generator to run in
// keyword-only mode.
func NewIntelligenceService(llm Generator, cache *AnswerCache) *DefaultIntelligenceService {
	return &DefaultIntelligenceService{LLM: llm, Cache: cache}
}
