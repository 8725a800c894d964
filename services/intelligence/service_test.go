package intelligence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voyago/models"
)

type fakeGenerator struct {
	reply string
	err   error
	calls int
	last  string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.last = prompt
	return f.reply, f.err
}

func TestClassifyLocal(t *testing.T) {
	cases := []struct {
		text string
		want models.Intent
	}{
		{"Хочу в Турцию на неделю", models.IntentSearch},
		{"Есть горящие туры в Египет?", models.IntentHotTours},
		{"Нужна ли виза в Турцию?", models.IntentFAQVisa},
		{"Как оплатить картой?", models.IntentFAQPayment},
		{"Можно ли отменить тур и вернуть деньги?", models.IntentFAQCancel},
		{"Нужна ли страховка?", models.IntentFAQInsurance},
		{"Какие документы нужны для ребёнка?", models.IntentFAQDocuments},
		{"Привет!", models.IntentGreeting},
		{"Какая погода в Турции в январе?", models.IntentGeneral},
		{"Посоветуй, что выбрать", models.IntentGeneral},
		{"Что посмотреть в Египте?", models.IntentGeneral},
		{"Забронируйте мне этот тур", models.IntentBooking},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyLocal(tc.text), "text: %s", tc.text)
	}
}

func TestClassifyIntentWithoutLLMUsesKeywords(t *testing.T) {
	svc := NewIntelligenceService(nil, nil)

	assert.Equal(t, models.IntentFAQVisa, svc.ClassifyIntent(context.Background(), "нужна виза?"))
	assert.Equal(t, models.IntentSearch, svc.ClassifyIntent(context.Background(), "хочу на море"))
}

func TestClassifyIntentAsksLLMOnlyForDefaultBucket(t *testing.T) {
	gen := &fakeGenerator{reply: "general_chat"}
	svc := NewIntelligenceService(gen, nil)

	got := svc.ClassifyIntent(context.Background(), "интересно, куда все ездят осенью")
	assert.Equal(t, models.IntentGeneral, got)
	assert.Equal(t, 1, gen.calls)

	got = svc.ClassifyIntent(context.Background(), "сколько стоит страховка?")
	assert.Equal(t, models.IntentFAQInsurance, got)
	assert.Equal(t, 1, gen.calls, "a confident keyword verdict must not consult the model")
}

func TestClassifyIntentFallsBackOnLLMError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	svc := NewIntelligenceService(gen, nil)

	got := svc.ClassifyIntent(context.Background(), "хочу на море")

	assert.Equal(t, models.IntentSearch, got)
}

func TestParseIntentLabelToleratesDecoration(t *testing.T) {
	intent, ok := parseIntentLabel("  General_Chat.\n")
	require.True(t, ok)
	assert.Equal(t, models.IntentGeneral, intent)

	_, ok = parseIntentLabel("что-то невнятное")
	assert.False(t, ok)
}

func TestAnswerFAQWithoutLLMReturnsKnowledgeText(t *testing.T) {
	svc := NewIntelligenceService(nil, nil)

	answer := svc.AnswerFAQ(context.Background(), models.IntentFAQVisa, "нужна ли виза в Турцию?")

	assert.Contains(t, answer, "без визы")
	assert.Contains(t, answer, "Загранпаспорт")
}

func TestAnswerFAQUsesLLMAndCachesExactRepeats(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	gen := &fakeGenerator{reply: "В Турцию виза не нужна, достаточно загранпаспорта."}
	svc := NewIntelligenceService(gen, NewAnswerCache(client, time.Hour))

	first := svc.AnswerFAQ(context.Background(), models.IntentFAQVisa, "Нужна ли виза в Турцию?")
	second := svc.AnswerFAQ(context.Background(), models.IntentFAQVisa, "Нужна ли виза в Турцию?")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls, "the repeated question must come from the cache")
	assert.Contains(t, gen.last, "База знаний")
}

func TestAnswerFAQFallsBackWhenGenerationFails(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("timeout")}
	svc := NewIntelligenceService(gen, nil)

	answer := svc.AnswerFAQ(context.Background(), models.IntentFAQPayment, "как платить?")

	assert.Contains(t, answer, "рассрочка")
}

func TestAnswerFAQUnknownTopicGetsGenericReply(t *testing.T) {
	svc := NewIntelligenceService(nil, nil)

	answer := svc.AnswerFAQ(context.Background(), models.IntentGeneral, "а?")

	assert.Equal(t, genericFAQAnswer, answer)
}

func TestSmallTalkFeedsRecentHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "В июне в Турции уже тепло. Когда планируете вылет?"}
	svc := NewIntelligenceService(gen, nil)

	history := []models.ChatMessage{
		{Role: "user", Text: "Хочу в Турцию"},
		{Role: "assistant", Text: "Из какого города планируете вылет?"},
	}
	answer := svc.SmallTalk(context.Background(), "А какая там погода в июне?", history)

	assert.NotEmpty(t, answer)
	assert.Contains(t, gen.last, "Клиент: Хочу в Турцию")
	assert.Contains(t, gen.last, "Ассистент: Из какого города")
}

func TestSmallTalkWithoutLLMStaysSilent(t *testing.T) {
	svc := NewIntelligenceService(nil, nil)

	assert.Empty(t, svc.SmallTalk(context.Background(), "какая погода?", nil))
}

func TestSmallTalkTrimsHistoryWindow(t *testing.T) {
	gen := &fakeGenerator{reply: "ответ"}
	svc := NewIntelligenceService(gen, nil)

	var history []models.ChatMessage
	for i := 0; i < 10; i++ {
		history = append(history, models.ChatMessage{Role: "user", Text: fmt.Sprintf("сообщение-%d", i)})
	}
	svc.SmallTalk(context.Background(), "вопрос", history)

	assert.NotContains(t, gen.last, "сообщение-0", "only the last few messages belong in the prompt")
	assert.Contains(t, gen.last, "сообщение-9")
}
