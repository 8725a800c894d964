package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"voyago/models"
)

var (
	// "с 15 по 22 февраля"
	dateRangePattern = regexp.MustCompile(
		`(?i)с\s*(\d{1,2})\s*(?:по|до|-)\s*(\d{1,2})\s*(января|февраля|марта|апреля|мая|июня|июля|августа|сентября|октября|ноября|декабря)`)
	// "15 февраля"
	dayMonthPattern = regexp.MustCompile(
		`(?i)(\d{1,2})\s*(января|февраля|марта|апреля|мая|июня|июля|августа|сентября|октября|ноября|декабря)`)
	// "15.02", "15.02.2026"
	numericDatePattern = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{2,4}))?`)
	// "в начале марта", "в конце апреля"
	monthPartPattern = regexp.MustCompile(
		`(?i)(?:в\s+)?(начал[ое]|середин[ае]|конц[ае])\s*(января|февраля|марта|апреля|мая|июня|июля|августа|сентября|октября|ноября|декабря)`)
	// "майские праздники"
	mayHolidaysPattern = regexp.MustCompile(`(?i)майск(?:ие|их)\s*(?:праздник|выходн)?`)
	// "новый год", "новогодние"
	newYearPattern = regexp.MustCompile(`(?i)нов(?:ый|ого|ому)\s*год[ау]?|новогодн`)
	// "через неделю", "через 2 недели", "на следующей неделе"
	relativeWeekPattern = regexp.MustCompile(`(?i)через\s*(\d+)?\s*недел[юи]|(?:на\s*)?следующ(?:ей|ую)\s*недел[еию]`)
	// "на следующих выходных", "на выходных"
	weekendPattern = regexp.MustCompile(`(?i)(?:на\s*)?(?:следующ(?:ие|их)\s*)?выходн(?:ые|ых)`)
	// "в июне" without a day
	bareMonthPattern = regexp.MustCompile(
		`(?i)(?:^|\s)(январ[ье]|феврал[ье]|март[е]?|апрел[ье]|ма[йе]|июн[ье]|июл[ье]|август[е]?|сентябр[ье]|октябр[ье]|ноябр[ье]|декабр[ье])(?:$|[\s,.!?])`)
)

// resolveDate parses the most specific date expression in the text. It may
// also derive the night count from an explicit day range. A zero date means
// no date expression was found.
func resolveDate(text string, today time.Time) (start time.Time, precision models.DatePrecision, nights int) {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "послезавтра") {
		return dateOnly(today.AddDate(0, 0, 2)), models.PrecisionExact, 0
	}
	if strings.Contains(lower, "завтра") {
		return dateOnly(today.AddDate(0, 0, 1)), models.PrecisionExact, 0
	}

	if mayHolidaysPattern.MatchString(lower) {
		start = time.Date(today.Year(), time.May, 1, 0, 0, 0, 0, time.UTC)
		if start.Before(dateOnly(today)) {
			start = start.AddDate(1, 0, 0)
		}
		return start, models.PrecisionHoliday, 0
	}

	if newYearPattern.MatchString(lower) {
		start = time.Date(today.Year(), time.December, 28, 0, 0, 0, 0, time.UTC)
		if start.Before(dateOnly(today)) {
			start = start.AddDate(1, 0, 0)
		}
		return start, models.PrecisionHoliday, 0
	}

	if m := dateRangePattern.FindStringSubmatch(lower); m != nil {
		dayFrom, _ := strconv.Atoi(m[1])
		dayTo, _ := strconv.Atoi(m[2])
		month := monthNames[strings.ToLower(m[3])]
		if month > 0 {
			start = buildDate(today, month, dayFrom)
			if !start.IsZero() && dayTo > dayFrom {
				return start, models.PrecisionExact, dayTo - dayFrom
			}
			if !start.IsZero() {
				return start, models.PrecisionExact, 0
			}
		}
		return time.Time{}, models.PrecisionNone, 0
	}

	if m := dayMonthPattern.FindStringSubmatch(lower); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthNames[strings.ToLower(m[2])]
		if month > 0 {
			if start = buildDate(today, month, day); !start.IsZero() {
				return start, models.PrecisionExact, 0
			}
		}
		return time.Time{}, models.PrecisionNone, 0
	}

	if m := numericDatePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		if start = makeDate(year, month, day); !start.IsZero() {
			return start, models.PrecisionExact, 0
		}
		return time.Time{}, models.PrecisionNone, 0
	}

	if m := monthPartPattern.FindStringSubmatch(lower); m != nil {
		part := strings.ToLower(m[1])
		month := monthNames[strings.ToLower(m[2])]
		if month > 0 {
			day := 25
			switch {
			case strings.HasPrefix(part, "начал"):
				day = 1
			case strings.HasPrefix(part, "середин"):
				day = 15
			}
			if start = buildDate(today, month, day); !start.IsZero() {
				return start, models.PrecisionExact, 0
			}
		}
		return time.Time{}, models.PrecisionNone, 0
	}

	if m := relativeWeekPattern.FindStringSubmatch(lower); m != nil {
		weeks := 1
		if m[1] != "" {
			weeks, _ = strconv.Atoi(m[1])
		}
		return dateOnly(today.AddDate(0, 0, 7*weeks)), models.PrecisionExact, 0
	}

	if weekendPattern.MatchString(lower) {
		return nextSaturday(today), models.PrecisionWeekend, 0
	}

	if m := bareMonthPattern.FindStringSubmatch(lower); m != nil {
		month := bareMonthNames[strings.ToLower(m[1])]
		if month > 0 {
			year := today.Year()
			if month < int(today.Month()) {
				year++
			}
			start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			return start, models.PrecisionMonth, 0
		}
	}

	return time.Time{}, models.PrecisionNone, 0
}

// buildDate assembles a date in the given month, rolling the year forward
// when the day has already passed.
func buildDate(today time.Time, month, day int) time.Time {
	year := today.Year()
	if month < int(today.Month()) || (month == int(today.Month()) && day < today.Day()) {
		year++
	}
	return makeDate(year, month, day)
}

// makeDate validates the calendar day; zero time on nonsense like 31.02.
func makeDate(year, month, day int) time.Time {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}
	}
	return d
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nextSaturday(today time.Time) time.Time {
	d := dateOnly(today)
	for {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() == time.Saturday {
			return d
		}
	}
}
