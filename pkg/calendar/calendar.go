// Package calendar holds the date helpers shared by the weekly plans and the daily projections.
// Dates travel as YYYY-MM-DD strings and clock times as zero padded HH:MM strings.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Clock provides the current instant; tests swap it for a fixed time.
type Clock func() time.Time

// Today formats t as a calendar date in loc.
func Today(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// Now formats t as an HH:MM clock value in loc.
func Now(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimeLayout)
}

// MonthDay returns the MM-DD part of a YYYY-MM-DD date, or "" when malformed.
func MonthDay(date string) string {
	if len(date) != len(DateLayout) || date[4] != '-' {
		return ""
	}
	return date[5:]
}

// Week is a contiguous range of days starting on a Monday.
type Week struct {
	Monday time.Time
	Days   int
}

// WeekOf returns the week containing day, spanning the given number of days (7 for a full week, 5 for Mon-Fri).
func WeekOf(day time.Time, days int) Week {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	return Week{Monday: d.AddDate(0, 0, -offset), Days: days}
}

// ParseWeek resolves the optional ?week=YYYY-MM-DD parameter. An empty value selects the week of now in loc.
func ParseWeek(raw string, now time.Time, loc *time.Location, days int) (Week, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return WeekOf(now.In(loc), days), nil
	}
	day, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Week{}, fmt.Errorf("parse week %q: %w", raw, err)
	}
	return WeekOf(day, days), nil
}

// From returns the first date of the week.
func (w Week) From() string {
	return w.Monday.Format(DateLayout)
}

// To returns the last date of the week.
func (w Week) To() string {
	return w.Monday.AddDate(0, 0, w.Days-1).Format(DateLayout)
}

// Dates lists every date in the week.
func (w Week) Dates() []string {
	dates := make([]string, 0, w.Days)
	for i := 0; i < w.Days; i++ {
		dates = append(dates, w.Monday.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}

// Previous returns the Monday of the preceding week.
func (w Week) Previous() string {
	return w.Monday.AddDate(0, 0, -7).Format(DateLayout)
}

// Next returns the Monday of the following week.
func (w Week) Next() string {
	return w.Monday.AddDate(0, 0, 7).Format(DateLayout)
}
