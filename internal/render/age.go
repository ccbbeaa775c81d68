package render

import (
	"fmt"
	"math"
	"time"
)

// agingMonths is the age at which a release is fully "old".
const agingMonths = 36

// Age describes how long ago a browser version was released.
type Age struct {
	Months   float64
	Label    string
	Fraction float64
	Color    RGB
}

// AgeInfo computes the age of a release dated releaseDate as seen at now.
// Dates are "YYYY-MM-DD" or RFC 3339 timestamps.
func AgeInfo(releaseDate string, now time.Time, p Palette) (Age, error) {
	released, err := parseReleaseDate(releaseDate, now.Location())
	if err != nil {
		return Age{}, err
	}

	months := ElapsedMonths(released, now)
	var label string
	if math.Abs(months) < 12 {
		label = relativeLabel(int(math.Round(months)), "month")
	} else {
		label = relativeLabel(int(math.Round(ElapsedYears(released, now))), "year")
	}

	frac := clamp01(months / agingMonths)
	return Age{
		Months:   months,
		Label:    label,
		Fraction: frac,
		Color:    p.Recent.Lerp(p.Old, frac),
	}, nil
}

func parseReleaseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid release date %q", s)
	}
	return t.In(loc), nil
}

// ElapsedMonths returns the calendar months from "from" to "to" as a
// fraction. Whole months are counted on the calendar; the remainder is
// measured against the length of the month that follows. The result is
// negative when to is before from.
func ElapsedMonths(from, to time.Time) float64 {
	return elapsed(from, to, func(t time.Time, n int) time.Time { return addMonths(t, n) }, monthsBetween)
}

// ElapsedYears is ElapsedMonths for calendar years.
func ElapsedYears(from, to time.Time) float64 {
	return elapsed(from, to, func(t time.Time, n int) time.Time { return addMonths(t, 12*n) }, func(a, b time.Time) int {
		return monthsBetween(a, b) / 12
	})
}

func elapsed(from, to time.Time, add func(time.Time, int) time.Time, whole func(a, b time.Time) int) float64 {
	if to.Before(from) {
		return -elapsed(to, from, add, whole)
	}
	n := whole(from, to)
	anchor := add(from, n)
	for anchor.After(to) {
		n--
		anchor = add(from, n)
	}
	next := add(from, n+1)
	for !next.After(to) {
		n++
		anchor, next = next, add(from, n+1)
	}
	span := next.Sub(anchor)
	if span <= 0 {
		return float64(n)
	}
	return float64(n) + float64(to.Sub(anchor))/float64(span)
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// addMonths adds n calendar months, clamping the day to the end of a shorter
// target month instead of overflowing into the next one.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + n
	y += total / 12
	total %= 12
	if total < 0 {
		total += 12
		y--
	}
	month := time.Month(total + 1)
	if last := daysIn(y, month); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(y, month, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// relativeLabel phrases n units in the past (negative n is the future) the
// way English relative-time formatting with automatic wording does.
func relativeLabel(n int, unit string) string {
	switch {
	case n == 0:
		return "this " + unit
	case n == 1:
		return "last " + unit
	case n == -1:
		return "next " + unit
	case n > 1:
		return fmt.Sprintf("%d %ss ago", n, unit)
	default:
		return fmt.Sprintf("in %d %ss", -n, unit)
	}
}
