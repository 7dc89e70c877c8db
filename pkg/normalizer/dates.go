package normalizer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRegex   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDateRegex = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})\b`)
	monthDayRegex  = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayMonthRegex  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?,?\s+(\d{4})\b`)
)

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ExtractDates finds ISO, slash (M/D/Y) and month-name dates in text and
// returns them as a sorted, de-duplicated set of YYYY-MM-DD strings.
// Anything that is not a real calendar date is dropped silently.
func ExtractDates(text string) []string {
	if text == "" {
		return nil
	}
	found := make(map[string]struct{})

	for _, m := range isoDateRegex.FindAllStringSubmatch(text, -1) {
		addDate(found, atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	for _, m := range slashDateRegex.FindAllStringSubmatch(text, -1) {
		addDate(found, expandYear(m[3]), atoi(m[1]), atoi(m[2]))
	}
	for _, m := range monthDayRegex.FindAllStringSubmatch(text, -1) {
		addDate(found, atoi(m[3]), monthNumbers[strings.ToLower(m[1])], atoi(m[2]))
	}
	for _, m := range dayMonthRegex.FindAllStringSubmatch(text, -1) {
		addDate(found, atoi(m[3]), monthNumbers[strings.ToLower(m[2])], atoi(m[1]))
	}

	if len(found) == 0 {
		return nil
	}
	dates := make([]string, 0, len(found))
	for d := range found {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func addDate(found map[string]struct{}, year, month, day int) {
	if iso, ok := canonicalDate(year, month, day); ok {
		found[iso] = struct{}{}
	}
}

// canonicalDate validates against the real calendar: time.Date normalizes
// overflow (Feb 30 -> Mar 2), so a round trip mismatch means invalid.
func canonicalDate(year, month, day int) (string, bool) {
	if year < 1900 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// expandYear maps two-digit years onto 2000-2049 / 1950-1999.
func expandYear(s string) int {
	y := atoi(s)
	if len(s) == 2 {
		if y < 50 {
			return 2000 + y
		}
		return 1900 + y
	}
	return y
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
