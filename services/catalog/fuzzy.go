package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	// fuzzyThreshold accepts "екатеринбург" for "екатеренбург".
	fuzzyThreshold = 80
	// partialThreshold is stricter: it accepts "сочи" against
	// "сочи (адлер)" but not loose overlaps.
	partialThreshold = 90
)

// translitMap renders Cyrillic hotel spellings in Latin: "Риксос" → "rixos".
var translitMap = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// hotelAliases maps common Russian spellings of hotel brands to the Latin
// names the vendor catalog uses. Checked before plain transliteration since
// brand spellings are not always phonetic.
var hotelAliases = []struct {
	rus, eng string
}{
	{"риксос", "rixos"}, {"рикос", "rixos"},
	{"калиста", "calista"}, {"калист", "calista"},
	{"регнум", "regnum"},
	{"титаник", "titanic"},
	{"дельфин", "delphin"}, {"делфин", "delphin"},
	{"барут", "barut"},
	{"вояж", "voyage"}, {"войаж", "voyage"},
	{"глория", "gloria"},
	{"хилтон", "hilton"},
	{"шератон", "sheraton"},
	{"мариотт", "marriott"}, {"марриотт", "marriott"},
	{"атлантис", "atlantis"},
	{"джумейра", "jumeirah"}, {"джумейр", "jumeirah"},
	{"санрайз", "sunrise"},
	{"штайгенбергер", "steigenberger"},
}

func transliterate(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if lat, ok := translitMap[r]; ok {
			b.WriteString(lat)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeHotelQuery expands a hotel query into the lookup variants: the raw
// text, alias replacements, and a transliteration when the text is Cyrillic.
func normalizeHotelQuery(query string) []string {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return nil
	}

	variants := []string{lower}
	seen := map[string]bool{lower: true}
	add := func(v string) {
		if v != "" && !seen[v] {
			variants = append(variants, v)
			seen[v] = true
		}
	}

	for _, a := range hotelAliases {
		if strings.Contains(lower, a.rus) {
			add(strings.ReplaceAll(lower, a.rus, a.eng))
		}
	}
	if hasCyrillic(lower) {
		add(transliterate(lower))
	}
	return variants
}

func hasCyrillic(s string) bool {
	for _, r := range s {
		if r >= 'а' && r <= 'я' || r == 'ё' {
			return true
		}
	}
	return false
}

// ratio is the Levenshtein similarity in percent over the longer input.
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (longest - dist) / longest
}

// partialRatio is the best ratio of the shorter string against every
// same-length window of the longer one.
func partialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}
	short := string(ra)
	best := 0
	for i := 0; i+len(ra) <= len(rb); i++ {
		if r := ratio(short, string(rb[i:i+len(ra)])); r > best {
			best = r
		}
	}
	return best
}

// sortedKeys orders table keys longest-first so substring and fuzzy scans
// prefer the most specific entry and stay deterministic.
func sortedKeys(table map[string]int) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func substringKey(lower string, table map[string]int) (string, bool) {
	for _, key := range sortedKeys(table) {
		if strings.Contains(lower, key) || strings.Contains(key, lower) {
			return key, true
		}
	}
	return "", false
}

// fuzzyKey picks the best-scoring key above the plain threshold, retrying
// with the stricter windowed match for inputs like "сочи" vs "сочи (адлер)".
func fuzzyKey(lower string, table map[string]int) (string, bool) {
	keys := sortedKeys(table)

	best, bestScore := "", 0
	for _, key := range keys {
		if r := ratio(lower, key); r > bestScore {
			best, bestScore = key, r
		}
	}
	if bestScore >= fuzzyThreshold {
		return best, true
	}

	best, bestScore = "", 0
	for _, key := range keys {
		if r := partialRatio(lower, key); r > bestScore {
			best, bestScore = key, r
		}
	}
	if bestScore >= partialThreshold {
		return best, true
	}
	return "", false
}
