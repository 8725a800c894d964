package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"voyago/models"
)

var (
	nightsPattern = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:ноч[ьеиейям]|дн[яейи]|суток)`)
	// "3 недели"
	numWeeksPattern = regexp.MustCompile(`(?i)(\d)\s*недел[ьию]`)
	// "на неделю", "две недели" without a digit
	weekNightsPattern    = regexp.MustCompile(`(?i)(?:на\s+)?(две\s+)?недел[юия]х?`)
	adultsPattern        = regexp.MustCompile(`(?i)(\d)\s*(?:взросл[ыхойаяую]|человек[аи]?|чел\.?|персон[ыа]?)`)
	plusNotationPattern  = regexp.MustCompile(`(\d)\s*\+\s*(\d)`)
	adultsChildrenPattern = regexp.MustCompile(`(?i)(\d)\s*взросл[ыхойаяую]?\s*(?:и|плюс|\+)?\s*(\d)\s*(?:реб[её]нок|дет[ьеиейям])`)
	childAgePattern       = regexp.MustCompile(`(?i)(?:ребёнок|ребенок|дети|детей|дет[ьи])\s*[:\-]?\s*(?:возраст[ае]?)?\s*(\d{1,2})\s*(?:и\s*(\d{1,2}))?\s*(?:лет|год[ав]?)?`)
	childAgeListPattern   = regexp.MustCompile(`\(([0-9,\s]+)\s*(?:лет|год[ав]?)?\)`)
	digitsPattern         = regexp.MustCompile(`\d+`)
	// An answer that is nothing but ages: "5 и 8", "5, 8 лет", "ему 10".
	bareAgesPattern = regexp.MustCompile(`^(?:(?:ему|ей|им)\s*)?\d{1,2}(?:\s*(?:,|и)\s*\d{1,2})*\s*(?:лет|год[а-я]*)?\s*\.?$`)
)

// extractNights fills the night count from an explicit duration phrase.
// A bare "неделя" counts as 7 nights, "две недели" as 14. Phrases already
// consumed as relative dates ("через неделю", "на следующей неделе") are
// skipped.
func extractNights(lower string, slots *models.TripSlots) {
	if m := nightsPattern.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		if 1 <= n && n <= 30 {
			slots.Nights = n
		}
		return
	}
	if relativeWeekPattern.MatchString(lower) {
		return
	}
	if m := numWeeksPattern.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		if nights := n * 7; 1 <= nights && nights <= 30 {
			slots.Nights = nights
		}
		return
	}
	if m := weekNightsPattern.FindStringSubmatch(lower); m != nil {
		if m[1] != "" {
			slots.Nights = 14
		} else {
			slots.Nights = 7
		}
	}
}

// togetherWords is checked in a fixed order so extraction stays deterministic
// when a message somehow mentions several group words.
var togetherWords = []string{
	"вдвоём", "вдвоем", "втроём", "втроем", "вчетвером", "впятером",
	"на двоих", "для двоих", "на троих", "для троих", "на четверых",
	"двое", "трое", "четверо",
}

// extractParty fills the adult count from group phrases.
func extractParty(lower string, slots *models.TripSlots) {
	for _, word := range togetherWords {
		idx := strings.Index(lower, word)
		if idx < 0 {
			continue
		}
		// "двое детей" counts children, not adults.
		rest := strings.TrimLeft(lower[idx+len(word):], " ")
		if strings.HasPrefix(rest, "дет") || strings.HasPrefix(rest, "реб") {
			continue
		}
		slots.Adults = togetherMap[word]
		return
	}

	// "2+1": adults plus children, ages still unknown. The pending count
	// keeps the search blocked until the ages arrive.
	if m := plusNotationPattern.FindStringSubmatch(lower); m != nil {
		adults, _ := strconv.Atoi(m[1])
		children, _ := strconv.Atoi(m[2])
		if adults > 0 {
			slots.Adults = adults
		}
		declareChildren(slots, children)
		return
	}

	if m := adultsChildrenPattern.FindStringSubmatch(lower); m != nil {
		adults, _ := strconv.Atoi(m[1])
		children, _ := strconv.Atoi(m[2])
		if adults > 0 {
			slots.Adults = adults
		}
		declareChildren(slots, children)
		return
	}

	if m := adultsPattern.FindStringSubmatch(lower); m != nil {
		adults, _ := strconv.Atoi(m[1])
		if 1 <= adults && adults <= 10 {
			slots.Adults = adults
		}
	}
}

var (
	// "2 детей", "1 ребёнок" without adults around them
	childCountPattern = regexp.MustCompile(`(?i)(\d)\s*(?:реб[её]н|дет[ьеия])`)

	// child mentions with the count implied by the word form
	childWordCounts = []struct {
		word  string
		count int
	}{
		{"двое детей", 2},
		{"трое детей", 3},
		{"с ребёнком", 1},
		{"с ребенком", 1},
		{"с детьми", 1},
		{"с дочкой", 1},
		{"с сыном", 1},
	}
)

// declareMentionedChildren registers children referred to without ages, so
// the age question follows. Runs after age extraction: ages already learned
// count against the mentioned total.
func declareMentionedChildren(lower string, slots *models.TripSlots) {
	if m := childCountPattern.FindStringSubmatch(lower); m != nil {
		if n, _ := strconv.Atoi(m[1]); n > 0 {
			declareChildren(slots, n)
			return
		}
	}
	for _, wc := range childWordCounts {
		if strings.Contains(lower, wc.word) {
			declareChildren(slots, wc.count)
			return
		}
	}
}

// declareChildren registers children whose ages have not been given yet.
// Ages already known in this or an earlier message count against the total.
func declareChildren(slots *models.TripSlots, count int) {
	if count <= 0 {
		return
	}
	if pending := count - len(slots.ChildrenAges); pending > 0 {
		slots.ChildrenPending = pending
	}
}

// extractChildren collects child ages from bracket lists "(5, 8 лет)" and
// phrases like "дети 5 и 10 лет". Ages outside 0-17 are ignored. Every age
// learned settles one pending child.
func extractChildren(text string, slots *models.TripSlots) {
	before := len(slots.ChildrenAges)
	defer func() {
		settleChildren(slots, len(slots.ChildrenAges)-before)
	}()

	if m := childAgeListPattern.FindStringSubmatch(text); m != nil {
		found := false
		for _, s := range digitsPattern.FindAllString(m[1], -1) {
			age, _ := strconv.Atoi(s)
			appendChildAge(slots, age)
			found = true
		}
		if found && len(slots.ChildrenAges) > 0 {
			return
		}
	}

	if m := childAgePattern.FindStringSubmatch(strings.ToLower(text)); m != nil {
		age1, _ := strconv.Atoi(m[1])
		appendChildAge(slots, age1)
		if m[2] != "" {
			age2, _ := strconv.Atoi(m[2])
			appendChildAge(slots, age2)
		}
	}
}

func appendChildAge(slots *models.TripSlots, age int) {
	if age < 0 || age > 17 {
		return
	}
	for _, a := range slots.ChildrenAges {
		if a == age {
			return
		}
	}
	ages := make([]int, len(slots.ChildrenAges), len(slots.ChildrenAges)+1)
	copy(ages, slots.ChildrenAges)
	slots.ChildrenAges = append(ages, age)
}

func settleChildren(slots *models.TripSlots, learned int) {
	if learned <= 0 {
		return
	}
	slots.ChildrenPending -= learned
	if slots.ChildrenPending < 0 {
		slots.ChildrenPending = 0
	}
}

// extractBareAges reads an answer consisting only of ages and reports how
// many new ages it added.
func extractBareAges(lower string, slots *models.TripSlots) int {
	if !bareAgesPattern.MatchString(lower) {
		return 0
	}
	before := len(slots.ChildrenAges)
	for _, s := range digitsPattern.FindAllString(lower, -1) {
		age, _ := strconv.Atoi(s)
		appendChildAge(slots, age)
	}
	added := len(slots.ChildrenAges) - before
	settleChildren(slots, added)
	return added
}

// noChildrenAnswer recognizes a retraction of the declared children.
func noChildrenAnswer(lower string) bool {
	return strings.HasPrefix(lower, "нет") || strings.Contains(lower, "без дет")
}
