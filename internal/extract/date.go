package extract

import (
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the ISO 8601 calendar date written to purchase lines.
const DateLayout = "2006-01-02"

var reDate = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})\b`)

// ResolveDate returns the first valid d/m/y date in text as YYYY-MM-DD. Two-digit years
// belong to the 2000s. Impossible dates such as 31/02 are skipped. Without a date, now is used.
func ResolveDate(text string, now time.Time) string {
	for _, m := range reDate.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day || int(t.Month()) != month || t.Year() != year {
			continue
		}
		return t.Format(DateLayout)
	}
	return now.Format(DateLayout)
}
