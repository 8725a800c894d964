package intelligence

import (
	"strings"

	"voyago/models"
)

// intentKeywords maps substring cues to intents, in match priority order.
// Booking and FAQ cues win over everything else: "нужна ли виза в Турцию"
// is a visa question even though it names a country.
var intentKeywords = []struct {
	intent models.Intent
	words  []string
}{
	{models.IntentBooking, []string{"заброниров", "забронируй", "оставь заявк", "оставить заявк", "хочу заказ"}},
	{models.IntentHotTours, []string{"горящ", "горячие", "скидк"}},
	{models.IntentFAQVisa, []string{"виза", "визу", "визы", "паспорт", "въезд"}},
	{models.IntentFAQPayment, []string{"оплат", "карт", "рассрочк"}},
	{models.IntentFAQCancel, []string{"возврат", "отмен"}},
	{models.IntentFAQInsurance, []string{"страхов", "полис"}},
	{models.IntentFAQDocuments, []string{"документ", "справк"}},
	{models.IntentGreeting, []string{"привет", "здравствуй", "добрый день", "добрый вечер", "доброе утро"}},
	{models.IntentGeneral, []string{
		"погода", "температур", "климат", "когда лучше",
		"посоветуй", "порекомендуй", "подскаж", "какой лучше", "что выбрать",
		"какой отель", "лучший отель", "отель для дет",
		"что посмотреть", "достопримечательн", "экскурси",
	}},
}

// classifyLocal is the deterministic keyword classifier. Anything without a
// recognizable cue counts as a tour search, which keeps the dialogue moving.
func classifyLocal(text string) models.Intent {
	lower := strings.ToLower(text)
	for _, group := range intentKeywords {
		for _, w := range group.words {
			if strings.Contains(lower, w) {
				return group.intent
			}
		}
	}
	return models.IntentSearch
}

// parseIntentLabel maps an LLM reply back onto the closed intent set.
func parseIntentLabel(label string) (models.Intent, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if i := strings.IndexAny(label, " \n\t.,"); i > 0 {
		label = label[:i]
	}
	switch intent := models.Intent(label); intent {
	case models.IntentSearch, models.IntentHotTours, models.IntentBooking,
		models.IntentGreeting, models.IntentGeneral,
		models.IntentFAQVisa, models.IntentFAQPayment, models.IntentFAQCancel,
		models.IntentFAQInsurance, models.IntentFAQDocuments:
		return intent, true
	}
	return models.IntentSearch, false
}
