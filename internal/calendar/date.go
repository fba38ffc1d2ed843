package calendar

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day in YYYY-MM-DD form with no time zone attached.
// Values obtained from ParseDate or DateOf are always well formed; calling
// arithmetic methods on a malformed Date panics.
type Date string

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", s, err)
	}

	return Date(t.Format(dateLayout)), nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}

	return d
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func (d Date) String() string {
	return string(d)
}

func (d Date) Valid() bool {
	_, err := time.Parse(dateLayout, string(d))

	return err == nil
}

func (d Date) Time() time.Time {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		panic(fmt.Sprintf("calendar: malformed date %q", string(d)))
	}

	return t
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// Nights counts the nights of the half-open stay [checkIn, checkOut).
func Nights(checkIn, checkOut Date) int {
	return int(checkOut.Time().Sub(checkIn.Time()) / (24 * time.Hour)) //nolint:gomnd
}

// DatesInRange lists every day from start to end, both inclusive.
func DatesInRange(start, end Date) ([]Date, error) {
	if end.Before(start) {
		return nil, &InvalidRangeError{From: start, To: end}
	}

	dates := make([]Date, 0, Nights(start, end)+1)
	for d := start.Time(); !d.After(end.Time()); d = d.AddDate(0, 0, 1) {
		dates = append(dates, DateOf(d))
	}

	return dates, nil
}

// stayDates lists the occupied nights of [checkIn, checkOut).
func stayDates(checkIn, checkOut Date) []Date {
	var dates []Date

	for d := checkIn.Time(); d.Before(checkOut.Time()); d = d.AddDate(0, 0, 1) {
		dates = append(dates, DateOf(d))
	}

	return dates
}

// DayMask selects weekdays, Sunday is bit 0.
type DayMask uint8

const (
	AllDays  DayMask = 0x7f
	Weekends DayMask = 1<<time.Sunday | 1<<time.Saturday
	Weekdays         = AllDays &^ Weekends
)

func NewDayMask(days ...time.Weekday) DayMask {
	var m DayMask

	for _, d := range days {
		m |= 1 << d
	}

	return m
}

func (m DayMask) Has(d time.Weekday) bool {
	return m&(1<<d) != 0
}

// Filter keeps the dates whose weekday is selected.
func (m DayMask) Filter(dates []Date) []Date {
	out := make([]Date, 0, len(dates))

	for _, d := range dates {
		if m.Has(d.Weekday()) {
			out = append(out, d)
		}
	}

	return out
}
