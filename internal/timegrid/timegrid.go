// Package timegrid computes the 15-minute slot grid and shift-containment
// checks a restaurant's local calendar day produces, in absolute time.
//
// It is a pure package: no store, no clock dependency beyond what callers
// pass in.
package timegrid

import (
	"time"

	"github.com/seatflow/reservation-engine/internal/restaurant"
)

// Step is the slot grid width used for locking and availability reporting.
const Step = 15 * time.Minute

// Date is a plain local calendar date (year/month/day), deliberately not
// tied to any particular timezone until resolved with a *time.Location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// dayBounds returns the absolute instants of local midnight at the start
// of D and local midnight at the start of the next day, in tz. Because the
// local day may be 23 or 25 hours of absolute time across a DST boundary,
// these are computed by constructing local wall-clock times directly in
// tz, not by adding 24h to the start.
func dayBounds(d Date, tz *time.Location) (time.Time, time.Time) {
	start := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, tz)
	next := time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, tz)
	return start, next
}

// DayBounds is the exported form of dayBounds: the UTC instants a store
// query filters on for "reservations whose start lies in this local day".
func DayBounds(d Date, tz *time.Location) (time.Time, time.Time) {
	start, next := dayBounds(d, tz)
	return start.UTC(), next.UTC()
}

// hhmmToMinutes converts "HH:MM" to minutes since local midnight.
// Restaurant.Validate already rejects malformed shift strings, so callers
// that only ever see validated restaurants can treat this as infallible.
func hhmmToMinutes(hhmm string) int {
	var h, m int
	// "HH:MM" is fixed width; avoid pulling in strconv/fmt for two digits.
	h = int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	m = int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	return h*60 + m
}

// ShiftEnd returns the absolute instant at which shift ends on the local
// calendar day containing t, in tz. shift is expected to be a value
// WithinShift already matched against t, so EndLocal is interpreted on
// t's own local date.
func ShiftEnd(t time.Time, tz *time.Location, shift restaurant.Shift) time.Time {
	local := t.In(tz)
	em := hhmmToMinutes(shift.EndLocal)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, em, 0, 0, tz)
}

// WithinShift reports whether t (an absolute instant) falls inside one of
// the restaurant's shifts when viewed in tz, and returns that shift.
// A restaurant with no configured shifts operates 24h, so every instant is
// considered within its single implicit all-day shift.
func WithinShift(t time.Time, tz *time.Location, shifts []restaurant.Shift) (restaurant.Shift, bool) {
	if len(shifts) == 0 {
		return restaurant.Shift{StartLocal: "00:00", EndLocal: "24:00"}, true
	}
	local := t.In(tz)
	minutesOfDay := local.Hour()*60 + local.Minute()
	for _, s := range shifts {
		start := hhmmToMinutes(s.StartLocal)
		end := hhmmToMinutes(s.EndLocal)
		if minutesOfDay >= start && minutesOfDay < end {
			return s, true
		}
	}
	return restaurant.Shift{}, false
}

// Slots generates every 15-minute-aligned absolute instant within d (the
// restaurant's local calendar day, in tz) that lies within a shift and for
// which the longest producible reservation (maxDuration) would still end
// within that same shift, so no reservation is ever allowed to span shifts.
//
// Slots are aligned to local midnight and returned in ascending order.
func Slots(d Date, tz *time.Location, shifts []restaurant.Shift, maxDuration time.Duration) []time.Time {
	dayStart, dayEnd := dayBounds(d, tz)

	type window struct{ start, end time.Time }
	var windows []window
	if len(shifts) == 0 {
		windows = []window{{start: dayStart, end: dayEnd}}
	} else {
		for _, s := range shifts {
			sm := hhmmToMinutes(s.StartLocal)
			em := hhmmToMinutes(s.EndLocal)
			start := time.Date(d.Year, d.Month, d.Day, 0, sm, 0, 0, tz)
			end := time.Date(d.Year, d.Month, d.Day, 0, em, 0, 0, tz)
			windows = append(windows, window{start: start, end: end})
		}
	}

	var slots []time.Time
	for _, w := range windows {
		// Align the first candidate slot to the local-midnight grid: since
		// w.start is itself constructed as an offset in minutes from local
		// midnight, and HH:MM shift boundaries only ever land on whole
		// minutes, w.start already sits on the 15-minute grid whenever the
		// shift boundary is grid-aligned. Restaurants with non-grid-aligned
		// shift boundaries still get a correct, if coarser, first slot by
		// rounding up to the next grid line.
		t := roundUpToGrid(w.start, dayStart)
		for !t.After(w.end.Add(-maxDuration)) && t.Before(w.end) {
			if !t.Before(w.start) {
				slots = append(slots, t)
			}
			t = t.Add(Step)
		}
	}
	return slots
}

// roundUpToGrid returns the earliest instant >= t that lies on the
// 15-minute grid anchored at gridOrigin (local midnight).
func roundUpToGrid(t, gridOrigin time.Time) time.Time {
	delta := t.Sub(gridOrigin)
	rem := delta % Step
	if rem == 0 {
		return t
	}
	return t.Add(Step - rem)
}
