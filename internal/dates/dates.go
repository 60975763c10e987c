// Package dates resolves vernacular and relative date expressions ("aaj",
// "kal", "next monday") to absolute IST dates. Pure and stateless: no
// network, no process state; callers inject the clock for tests.
package dates

import (
	"strings"
	"time"
)

// IST is the fixed Indian Standard Time offset. India has no DST.
var IST = time.FixedZone("IST", 5*3600+1800)

// Resolved is an absolute date resolved from a query expression.
type Resolved struct {
	Date    time.Time `json:"date"`
	Human   string    `json:"human"`
	Keyword string    `json:"keyword"`
}

// relative maps a date word to its day offset from today. "kal" is
// ambiguous in Hindi (yesterday or tomorrow); queries are overwhelmingly
// forward-looking, so it resolves to tomorrow.
var relative = map[string]int{
	"today":     0,
	"aaj":       0,
	"tonight":   0,
	"tomorrow":  1,
	"kal":       1,
	"yesterday": -1,
	"parso":     2,
	"day after tomorrow": 2,
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Normalize resolves the first date expression found in the query, relative
// to the current IST time. Returns nil when the query has none.
func Normalize(query string) *Resolved {
	return NormalizeAt(query, time.Now())
}

// NormalizeAt is Normalize with an injected clock.
func NormalizeAt(query string, now time.Time) *Resolved {
	q := strings.ToLower(query)
	today := now.In(IST)

	// Multi-word expressions first so "day after tomorrow" beats "tomorrow".
	if strings.Contains(q, "day after tomorrow") {
		return resolved(today.AddDate(0, 0, 2), "day after tomorrow")
	}

	for _, word := range strings.Fields(strings.Map(stripPunct, q)) {
		if off, ok := relative[word]; ok {
			return resolved(today.AddDate(0, 0, off), word)
		}
		if wd, ok := weekdays[word]; ok {
			return resolved(nextWeekday(today, wd), word)
		}
	}
	return nil
}

// nextWeekday returns the upcoming occurrence of wd, today included.
func nextWeekday(today time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(today.Weekday()) + 7) % 7
	return today.AddDate(0, 0, days)
}

func resolved(d time.Time, keyword string) *Resolved {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, IST)
	return &Resolved{
		Date:    day,
		Human:   day.Format("Monday, 2 January 2006"),
		Keyword: keyword,
	}
}

func stripPunct(r rune) rune {
	switch r {
	case '?', '!', ',', '.', ';':
		return ' '
	}
	return r
}
