package imports

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var dayMonYear = regexp.MustCompile(`(\d+)[-/](\w+)[-/](\d+)`)

var monthTable = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseDate reads a spreadsheet date cell. It tries common layouts, then the
// D-Mon-YY form, then an Excel serial number, and falls back to the date of
// now. The result is truncated to a UTC calendar date.
func ParseDate(value string, now time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return dateOnly(now)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return dateOnly(t)
		}
	}
	if m := dayMonYear.FindStringSubmatch(value); m != nil {
		if t, ok := parseDayMonYear(m[1], m[2], m[3]); ok {
			return t
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return dateOnly(t)
		}
	}
	return dateOnly(now)
}

// parseDayMonYear accepts month names or numbers. Unknown names map to
// January and two digit years to 20YY.
func parseDayMonYear(dayStr, monStr, yearStr string) (time.Time, bool) {
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	if len(yearStr) == 2 {
		year += 2000
	}
	key := strings.ToLower(monStr)
	if len(key) > 3 {
		key = key[:3]
	}
	month, ok := monthTable[key]
	if !ok {
		month = time.January
		if n, err := strconv.Atoi(monStr); err == nil && n >= 1 && n <= 12 {
			month = time.Month(n)
		}
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
