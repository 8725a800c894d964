package extractor

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"voyago/models"
)

var (
	hotelKeywords    = []string{"отел", "hotel", "резорт", "resort"}
	hotelNamePattern = regexp.MustCompile(`(?i)(?:отел[ьеи]\s+|hotel\s+|в\s+)([A-Za-zА-Яа-яёЁ][A-Za-zА-Яа-яёЁ0-9\s'-]{2,25})`)
	hotelStopWords   = map[string]bool{"этот": true, "этом": true, "какой": true, "хороший": true, "лучший": true, "любой": true}
	hotelTitleCaser  = cases.Title(language.Und)

	// knownHotelNames orders the table longest-first so "rixos premium"
	// wins over "rixos", keeping matches deterministic.
	knownHotelNames = sortedHotelNames()
)

func sortedHotelNames() []string {
	names := make([]string, 0, len(knownHotels))
	for name := range knownHotels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

// extractHotel looks for a specific hotel mention. A hit in the known-hotel
// table fills the star rating and suppresses the quality question, since the
// named hotel already answers it.
func extractHotel(text string, slots *models.TripSlots) {
	lower := strings.ToLower(text)

	for _, name := range knownHotelNames {
		if strings.Contains(lower, name) {
			slots.HotelName = hotelTitleCaser.String(name)
			if slots.Stars == 0 {
				slots.Stars = knownHotels[name]
				slots.SkipQualityCheck = true
			}
			return
		}
	}

	hasKeyword := false
	for _, kw := range hotelKeywords {
		if strings.Contains(lower, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return
	}

	if m := hotelNamePattern.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		if !hotelStopWords[strings.ToLower(name)] {
			slots.HotelName = name
		}
	}
}
