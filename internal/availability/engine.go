// Package availability turns a tour's schedule and its bookings into
// per-date remaining capacity.
package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/kirinyoku/tour-go/internal/domain"
)

// Month is a calendar month. Day and time components are never significant.
type Month struct {
	Year  int
	Month time.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) Contains(t time.Time) bool {
	u := t.UTC()
	return u.Year() == m.Year && u.Month() == m.Month
}

var monthLayouts = []string{
	"2006-01",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseMonth accepts YYYY-MM, YYYY-MM-DD or an RFC3339 timestamp and keeps
// only the year and month.
func ParseMonth(s string) (Month, error) {
	const op = "availability.ParseMonth"

	s = strings.TrimSpace(s)
	if s == "" {
		return Month{}, fmt.Errorf("%s: month is required", op)
	}

	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return Month{Year: t.Year(), Month: t.Month()}, nil
		}
	}

	return Month{}, fmt.Errorf("%s: unparseable month %q", op, s)
}

// NormalizeDate strips the time of day, giving the canonical key for a
// departure. Both schedule dates and booking dates go through it.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Compute returns one entry per scheduled date of tour that falls in month,
// in schedule order. Cancelled bookings are ignored. spotsLeft never drops
// below zero even when a date is overbooked.
func Compute(tour domain.Tour, bookings []domain.Booking, month Month) []domain.DateAvailability {
	booked := bookedByDate(bookings)

	out := make([]domain.DateAvailability, 0)
	for _, d := range tour.StartDates {
		if !month.Contains(d) {
			continue
		}

		key := NormalizeDate(d)
		left := max(0, tour.MaxGroupSize-booked[key])

		out = append(out, domain.DateAvailability{
			Date:       key,
			Available:  left > 0,
			SpotsLeft:  left,
			TotalSpots: tour.MaxGroupSize,
		})
	}

	return out
}

// SpotsLeft returns the remaining capacity of tour on the departure date.
func SpotsLeft(tour domain.Tour, bookings []domain.Booking, date time.Time) int {
	return max(0, tour.MaxGroupSize-bookedByDate(bookings)[NormalizeDate(date)])
}

func bookedByDate(bookings []domain.Booking) map[time.Time]int {
	booked := make(map[time.Time]int, len(bookings))
	for _, b := range bookings {
		if !b.Status.ConsumesCapacity() {
			continue
		}
		booked[NormalizeDate(b.StartDate)] += b.NumberOfPeople
	}
	return booked
}
