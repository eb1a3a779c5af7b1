package dateutil

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"upset-backend/lib/timezone"

	"github.com/araddon/dateparse"
)

var referenceMonths = []string{
	"january",
	"february",
	"march",
	"april",
	"may",
	"june",
	"july",
	"august",
	"september",
	"october",
	"november",
	"december",
}

func parseMonth(token string) (time.Month, bool) {
	token = strings.ToLower(token)
	if len(token) < 3 {
		return 0, false
	}
	for i, month := range referenceMonths {
		if strings.HasPrefix(month, token) {
			return time.January + time.Month(i), true
		}
	}
	return 0, false
}

// Parse derives a timestamp from the free-text date strings upstream
// publishes. It attempts, in order: a full parse of the trimmed text,
// an ISO yyyy-mm-dd prefix, and a manual scan for a month name
// followed by a day and year. Returns false when no strategy can make
// sense of the input, it never errors. Results resolve to midnight in
// timezone.Location unless the text itself carries a time of day.
func Parse(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	if t, ok := tryLibrary(text); ok {
		return t, true
	}
	if t, ok := tryIsoPrefix(text); ok {
		return t, true
	}
	return tryMonthScan(text)
}

// dateparse panics on some pathological inputs, keep that contained
func tryLibrary(text string) (t time.Time, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t = time.Time{}
			ok = false
		}
	}()

	parsed, err := dateparse.ParseIn(text, timezone.Location)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

var isoPrefixRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

func tryIsoPrefix(text string) (time.Time, bool) {
	prefix := isoPrefixRegex.FindString(text)
	if prefix == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", prefix, timezone.Location)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var letterRunRegex = regexp.MustCompile(`[A-Za-z]+`)
var integerRunRegex = regexp.MustCompile(`\d+`)

// locates the first month name (or abbreviation) in the text and reads
// the first two integers after it as day and year
func tryMonthScan(text string) (time.Time, bool) {
	tokens := letterRunRegex.FindAllStringIndex(text, -1)
	for _, loc := range tokens {
		month, ok := parseMonth(text[loc[0]:loc[1]])
		if !ok {
			continue
		}

		ints := integerRunRegex.FindAllString(text[loc[1]:], -1)
		if len(ints) < 2 {
			return time.Time{}, false
		}
		day, err := strconv.Atoi(ints[0])
		if err != nil {
			return time.Time{}, false
		}
		year, err := strconv.Atoi(ints[1])
		if err != nil {
			return time.Time{}, false
		}
		if day < 1 || day > 31 || year < 2000 || year > 2100 {
			return time.Time{}, false
		}

		return time.Date(year, month, day, 0, 0, 0, 0, timezone.Location), true
	}
	return time.Time{}, false
}
