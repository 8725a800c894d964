package search

import (
	"fmt"
	"time"

	"voyago/models"
)

// Paired fallback departure cities for the "fly from somewhere else"
// suggestion. Cities without a pair fall back to Moscow, the deepest market.
var alternativeDepartures = map[string]string{
	"Москва":          "Санкт-Петербург",
	"Санкт-Петербург": "Москва",
	"Сочи (Адлер)":    "Краснодар",
	"Екатеринбург":    "Казань",
}

// AlternativeDeparture returns the departure city to suggest when the
// original one yielded nothing.
func AlternativeDeparture(city string) string {
	if alt, ok := alternativeDepartures[city]; ok {
		return alt
	}
	return "Москва"
}

// Alternative is one concrete relaxation offered after an empty search,
// ready to re-search once the user picks it.
type Alternative struct {
	Option int
	Label  string
	Trip   models.TripSlots
}

// Alternatives builds the relaxations offered after a first empty search, in
// menu order: shifted dates, another departure city, dropped quality filters.
func Alternatives(trip models.TripSlots, now time.Time) []Alternative {
	shifted := trip
	if !shifted.DateStart.IsZero() {
		tomorrow := now.AddDate(0, 0, 1)
		moved := shifted.DateStart.AddDate(0, 0, -3)
		if moved.Before(tomorrow) {
			moved = shifted.DateStart.AddDate(0, 0, 3)
		}
		shifted.DateStart = moved
	}

	altCity := trip
	altCity.Departure = AlternativeDeparture(trip.Departure)

	relaxed := trip
	relaxed.Stars = 0
	relaxed.Meal = ""

	return []Alternative{
		{Option: 1, Label: "Посмотреть соседние даты (±3 дня)", Trip: shifted},
		{Option: 2, Label: fmt.Sprintf("Попробовать вылет из %s", altCity.Departure), Trip: altCity},
		{Option: 3, Label: "Убрать фильтр по звёздности/питанию", Trip: relaxed},
	}
}
