package intelligence

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"voyago/models"
	"voyago/utils"
)

// historyContextWindow bounds how many recent messages feed the small-talk
// prompt. More adds cost without adding context.
const historyContextWindow = 4

func (s *DefaultIntelligenceService) ClassifyIntent(ctx context.Context, text string) models.Intent {
	local := classifyLocal(text)
	if s.LLM == nil {
		return local
	}
	// Keyword verdicts are reliable; the model only arbitrates the default
	// bucket, where "search" may really be chatter phrased unusually.
	if local != models.IntentSearch {
		return local
	}
	reply, err := s.LLM.Generate(ctx, fmt.Sprintf(intentPrompt, text))
	if err != nil {
		utils.GetLogger().Warn("llm intent classification failed", zap.Error(err))
		return local
	}
	if intent, ok := parseIntentLabel(reply); ok {
		return intent
	}
	return local
}

func (s *DefaultIntelligenceService) AnswerFAQ(ctx context.Context, intent models.Intent, question string) string {
	base, ok := faqAnswers[intent]
	if !ok {
		base = genericFAQAnswer
	}
	if s.LLM == nil {
		return base
	}

	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, intent, question); err == nil && cached != "" {
			return cached
		}
	}

	answer, err := s.LLM.Generate(ctx, fmt.Sprintf(faqPrompt, knowledgeBase, question))
	if err != nil {
		utils.GetLogger().Warn("llm faq answer failed",
			zap.String("intent", string(intent)),
			zap.Error(err))
		return base
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return base
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, intent, question, answer); err != nil {
			utils.GetLogger().Warn("faq answer cache write failed", zap.Error(err))
		}
	}
	return answer
}

func (s *DefaultIntelligenceService) SmallTalk(ctx context.Context, text string, history []models.ChatMessage) string {
	if s.LLM == nil {
		return ""
	}

	var b strings.Builder
	recent := history
	if len(recent) > historyContextWindow {
		recent = recent[len(recent)-historyContextWindow:]
	}
	if len(recent) > 0 {
		b.WriteString("История диалога:\n")
		for _, msg := range recent {
			role := "Клиент"
			if msg.Role == "assistant" {
				role = "Ассистент"
			}
			b.WriteString(role + ": " + msg.Text + "\n")
		}
		b.WriteString("\n")
	}

	answer, err := s.LLM.Generate(ctx, fmt.Sprintf(smallTalkPrompt, b.String(), text))
	if err != nil {
		utils.GetLogger().Warn("llm small talk failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(answer)
}
