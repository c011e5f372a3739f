// Package mealday computes the day-scoped keys and weekday labels the
// meal commands and the daily report share.
package mealday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key returns the canonical key for t's calendar day in loc: the unix
// timestamp of midnight. Every request within one calendar day resolves
// to the same key, so RSVP writes and count reads land in the same
// aggregate. Write and read paths must use this one convention.
func Key(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	y, m, d := t.Date()
	return strconv.FormatInt(time.Date(y, m, d, 0, 0, 0, 0, loc).Unix(), 10)
}

// NextWeekday returns the weekday name for the day after t in loc. The
// report sent on day D describes day D+1, so its label shifts by one.
func NextWeekday(t time.Time, loc *time.Location) string {
	return t.In(loc).AddDate(0, 0, 1).Weekday().String()
}

// SkipDays is the set of weekdays on which the daily report stays
// silent.
type SkipDays []time.Weekday

// Skip reports whether t falls on a skipped weekday in loc.
func (s SkipDays) Skip(t time.Time, loc *time.Location) bool {
	day := t.In(loc).Weekday()
	for _, d := range s {
		if d == day {
			return true
		}
	}
	return false
}

// ParseWeekday resolves an English weekday name, case-insensitively.
func ParseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(name, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
