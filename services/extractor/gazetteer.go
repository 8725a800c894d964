package extractor

import (
	"regexp"
	"sort"
)

// Gazetteers map free-text mentions, including declensions and nicknames, to
// the canonical names the vendor catalogs use.

// Word boundaries are spelled out as character classes: RE2's \b only knows
// ASCII word characters and never fires around Cyrillic.
var countriesPattern = regexp.MustCompile(
	`(?i)(?:^|[^а-яёa-z0-9])(турци[юяей]|египе?т[ае]?|тайланд[ае]?|таиланд[ае]?|оаэ|эмират[ыа]?|` +
		`мальдив[ыа]?|кипр[ае]?|грец[ияю]|испани[юяей]|итали[юяей]|` +
		`черногори[юяей]|тунис[ае]?|доминикан[ауы]?|куб[ауе]?|вьетнам[ае]?|` +
		`шри[- ]?ланк[ауе]?|индонези[юяей]|бали|сейшел[ыа]?|маврики[йя]?|` +
		`абхази[юяей]|грузи[юяей]|армени[юяей]|узбекистан[ае]?)(?:[^а-яёa-z0-9]|$)`)

var countryNormalize = map[string]string{
	"турцию": "Турция", "турции": "Турция", "турция": "Турция", "турцией": "Турция",
	"египет": "Египет", "египта": "Египет", "египте": "Египет",
	"тайланд": "Таиланд", "тайланда": "Таиланд", "тайланде": "Таиланд",
	"таиланд": "Таиланд", "таиланда": "Таиланд", "таиланде": "Таиланд",
	"оаэ": "ОАЭ", "эмираты": "ОАЭ", "эмирата": "ОАЭ",
	"мальдивы": "Мальдивы", "мальдива": "Мальдивы",
	"кипр": "Кипр", "кипра": "Кипр", "кипре": "Кипр",
	"грецию": "Греция", "греция": "Греция", "греции": "Греция",
	"испанию": "Испания", "испания": "Испания", "испании": "Испания",
	"италию": "Италия", "италия": "Италия", "италии": "Италия",
	"черногорию": "Черногория", "черногория": "Черногория",
	"тунис": "Тунис", "туниса": "Тунис", "тунисе": "Тунис",
	"доминикану": "Доминикана", "доминикана": "Доминикана",
	"кубу": "Куба", "куба": "Куба", "кубе": "Куба",
	"вьетнам": "Вьетнам", "вьетнама": "Вьетнам",
	"шри-ланку": "Шри-Ланка", "шри ланку": "Шри-Ланка", "шриланку": "Шри-Ланка",
	"шри-ланка": "Шри-Ланка", "шри ланка": "Шри-Ланка", "шриланка": "Шри-Ланка",
	"индонезию": "Индонезия", "индонезия": "Индонезия", "бали": "Индонезия",
	"сейшелы": "Сейшелы", "сейшела": "Сейшелы",
	"маврикий": "Маврикий", "маврикия": "Маврикий",
	"абхазию": "Абхазия", "абхазия": "Абхазия",
	"грузию": "Грузия", "грузия": "Грузия",
	"армению": "Армения", "армения": "Армения",
	"узбекистан": "Узбекистан", "узбекистана": "Узбекистан",
}

var departureCitiesPattern = regexp.MustCompile(
	`(?i)(?:^|[^а-яёa-z0-9])(?:из\s+)?(москв[ыа]?|питер[ае]?|спб|санкт[- ]?петербург[ае]?|` +
		`казан[ьи]|сочи|екатеринбург[ае]?|екб|новосибирск[ае]?|` +
		`краснодар[ае]?|ростов[ае]?|самар[ыа]?|уф[ыа]?|нижн[ийего]+\s*новгород[ае]?|` +
		`воронеж[ае]?|пермь|красноярск[ае]?|минск[ае]?)(?:[^а-яёa-z0-9]|$)`)

var cityNormalize = map[string]string{
	"москва": "Москва", "москвы": "Москва", "мск": "Москва",
	"питер": "Санкт-Петербург", "питера": "Санкт-Петербург",
	"спб":             "Санкт-Петербург",
	"санкт-петербург": "Санкт-Петербург", "санкт петербург": "Санкт-Петербург",
	"санкт-петербурга": "Санкт-Петербург", "санкт петербурга": "Санкт-Петербург",
	"казань": "Казань", "казани": "Казань",
	"сочи":          "Сочи (Адлер)",
	"екатеринбург":  "Екатеринбург",
	"екатеринбурга": "Екатеринбург", "екб": "Екатеринбург",
	"новосибирск": "Новосибирск", "новосибирска": "Новосибирск",
	"краснодар": "Краснодар", "краснодара": "Краснодар",
	"ростов": "Ростов-на-Дону", "ростова": "Ростов-на-Дону",
	"самара": "Самара", "самары": "Самара",
	"уфа": "Уфа", "уфы": "Уфа",
	"нижний новгород": "Нижний Новгород", "нижнего новгорода": "Нижний Новгород",
	"воронеж": "Воронеж", "воронежа": "Воронеж",
	"пермь":      "Пермь",
	"красноярск": "Красноярск", "красноярска": "Красноярск",
	"минск": "Минск", "минска": "Минск",
}

// knownHotels maps popular hotel names to their star rating. Naming one of
// these fills the star slot and suppresses the quality question.
var knownHotels = map[string]int{
	// Турция
	"rixos": 5, "rixos premium": 5, "rixos sungate": 5,
	"titanic": 5, "titanic deluxe": 5, "titanic mardan": 5,
	"regnum carya": 5, "regnum": 5,
	"calista": 5, "calista luxury": 5,
	"maxx royal": 5, "maxx royal kemer": 5, "maxx royal belek": 5,
	"gloria serenity": 5, "gloria verde": 5, "gloria golf": 5,
	"voyage belek": 5, "voyage sorgun": 5,
	"delphin imperial": 5, "delphin be grand": 5,
	"limak atlantis": 5, "limak lara": 5,
	"cornelia diamond": 5, "cornelia": 5,
	"susesi": 5, "susesi luxury": 5,
	"ela quality": 5, "ela": 5,
	"ic hotels": 5, "ic green palace": 5,
	"adalya elite":         5,
	"kaya palazzo":         5,
	"nirvana cosmopolitan": 5,
	"barut":                5, "barut lara": 5, "barut hemera": 5,
	"club marco polo": 4,
	"paloma oceana":   5,
	"orange county":   5,
	"crystal waterworld": 5, "crystal sunset": 5,
	"royal wings":          5,
	"royal holiday palace": 5,
	"akra":                 5, "akra barut": 5,
	// Египет
	"albatros": 5, "albatros palace": 5,
	"sunrise": 4, "sunrise royal": 5,
	"steigenberger": 5, "steigenberger aldau": 5,
	"jaz": 4, "jaz aquamarine": 5,
	"coral sea": 4, "coral sea sensatori": 5,
	"cleopatra luxury": 5,
	"siva":             4,
	"hilton":           5, "hilton hurghada": 5,
	"marriott": 5,
	"baron":    4, "baron palace": 5,
	// ОАЭ
	"atlantis": 5, "atlantis the palm": 5,
	"burj al arab":    5,
	"jumeirah":        5,
	"sofitel":         5,
	"fairmont":        5,
	"waldorf astoria": 5,
	"w dubai":         5,
	"one&only":        5,
	"armani":          5,
	"palazzo versace": 5,
	// Мальдивы
	"soneva": 5, "soneva fushi": 5,
	"velaa":       5,
	"cheval blanc": 5,
	"st regis":    5,
	"anantara":    5,
	"como":        5,
	"niyama":      5,
	"baros":       5,
	"gili lankanfushi": 5,
}

var monthNames = map[string]int{
	"января": 1, "февраля": 2, "марта": 3, "апреля": 4,
	"мая": 5, "июня": 6, "июля": 7, "августа": 8,
	"сентября": 9, "октября": 10, "ноября": 11, "декабря": 12,
}

// bareMonthNames covers nominative and prepositional forms used without a day
// ("июнь", "в июне"). Such dates resolve with month precision only.
var bareMonthNames = map[string]int{
	"январь": 1, "январе": 1,
	"февраль": 2, "феврале": 2,
	"март": 3, "марте": 3,
	"апрель": 4, "апреле": 4,
	"май": 5, "мае": 5,
	"июнь": 6, "июне": 6,
	"июль": 7, "июле": 7,
	"август": 8, "августе": 8,
	"сентябрь": 9, "сентябре": 9,
	"октябрь": 10, "октябре": 10,
	"ноябрь": 11, "ноябре": 11,
	"декабрь": 12, "декабре": 12,
}

var togetherMap = map[string]int{
	"вдвоём": 2, "вдвоем": 2,
	"втроём": 3, "втроем": 3,
	"вчетвером": 4,
	"впятером":  5,
	"на двоих": 2, "для двоих": 2, "двое": 2,
	"на троих": 3, "для троих": 3, "трое": 3,
	"на четверых": 4, "четверо": 4,
}

// cityKeysByLength supports partial matching with a stable preference for the
// most specific key.
var cityKeysByLength = sortedCityKeys()

func sortedCityKeys() []string {
	keys := make([]string, 0, len(cityNormalize))
	for k := range cityNormalize {
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
