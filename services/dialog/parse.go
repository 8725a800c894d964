package dialog

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"voyago/models"
)

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:\+7|8)[\s\-]?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}`),
	regexp.MustCompile(`(?:\+7|8)\d{10}`),
}

// detectPhone finds a Russian phone number anywhere in the message.
func detectPhone(text string) string {
	for _, p := range phonePatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// managerPhrases are explicit requests for a human, checked verbatim so that
// a knowledge-base answer mentioning a manager does not trigger a hand-off.
var managerPhrases = []string{
	"позовите менеджера",
	"позвать менеджера",
	"нужен менеджер",
	"хочу менеджера",
	"хочу поговорить с менеджером",
	"соедините с менеджером",
	"свяжите с менеджером",
	"свяжите меня с менеджером",
	"хочу к менеджеру",
	"с живым человеком",
	"поговорить с человеком",
}

func isManagerRequest(lower string) bool {
	return containsAny(lower, managerPhrases...)
}

var moreOffersWords = []string{
	"ещё", "еще", "больше вариантов", "больше туров", "другие вариант",
	"дальше", "показать больше", "следующие",
}

// wantsMoreOffers recognizes a request to extend the shown result set.
func wantsMoreOffers(lower string) bool {
	return containsAny(lower, moreOffersWords...)
}

// parseFallbackChoice reads the answer to the three-option fallback menu.
// Zero means no recognizable choice.
func parseFallbackChoice(lower string) int {
	for _, tok := range strings.Fields(lower) {
		switch strings.Trim(tok, ".,!?)️⃣") {
		case "1":
			return 1
		case "2":
			return 2
		case "3":
			return 3
		}
	}
	switch {
	case containsAny(lower, "перв", "сосед", "даты", "дату", "датам"):
		return 1
	case containsAny(lower, "втор", "город"):
		return 2
	case containsAny(lower, "трет", "фильтр", "звёзд", "звезд", "питан", "убрать"):
		return 3
	}
	return 0
}

// pickOffer resolves "второй вариант" style references against the shown
// cards. A lone shown offer is picked implicitly.
func pickOffer(lower string, offers []models.Offer) *models.Offer {
	if len(offers) == 0 {
		return nil
	}
	idx := -1
	for _, tok := range strings.Fields(lower) {
		switch strings.Trim(tok, ".,!?)№") {
		case "1":
			idx = 0
		case "2":
			idx = 1
		case "3":
			idx = 2
		case "4":
			idx = 3
		case "5":
			idx = 4
		}
	}
	if idx < 0 {
		switch {
		case strings.Contains(lower, "перв"):
			idx = 0
		case strings.Contains(lower, "втор"):
			idx = 1
		case strings.Contains(lower, "трет"):
			idx = 2
		case strings.Contains(lower, "четверт"):
			idx = 3
		case containsAny(lower, "пятый", "пятое", "пятую"):
			idx = 4
		case strings.Contains(lower, "послед"):
			idx = len(offers) - 1
		}
	}
	if idx < 0 && len(offers) == 1 {
		idx = 0
	}
	if idx < 0 || idx >= len(offers) {
		return nil
	}
	return &offers[idx]
}

// slotsEqual reports whether two slot records carry the same values. Used to
// tell an informative turn from chatter.
func slotsEqual(a, b models.TripSlots) bool {
	return a.Destination == b.Destination &&
		a.Departure == b.Departure &&
		a.DateStart.Equal(b.DateStart) &&
		a.DatePrecision == b.DatePrecision &&
		a.Nights == b.Nights &&
		a.Adults == b.Adults &&
		slices.Equal(a.ChildrenAges, b.ChildrenAges) &&
		a.ChildrenPending == b.ChildrenPending &&
		a.Stars == b.Stars &&
		a.Meal == b.Meal &&
		a.HotelName == b.HotelName &&
		a.MaxPrice == b.MaxPrice &&
		a.SkipQualityCheck == b.SkipQualityCheck &&
		a.HotTour == b.HotTour
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// clip bounds a string for history storage.
func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "…"
}
