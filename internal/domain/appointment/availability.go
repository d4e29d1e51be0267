package appointment

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

const (
	DateLayout          = "2006-01-02"
	DefaultSlotDuration = 30 * time.Minute
)

type AvailabilityInput struct {
	PractitionerID string
	Date           string
}

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type ClockTime struct {
	Hour   int
	Minute int
}

func ParseClock(hm string) (ClockTime, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return ClockTime{}, errors.Wrapf(err, "invalid clock time %q", hm)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (ct ClockTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), ct.Hour, ct.Minute, 0, 0, day.Location())
}

type BusinessHours struct {
	Open  ClockTime
	Close ClockTime
}

var DefaultBusinessHours = BusinessHours{
	Open:  ClockTime{Hour: 9},
	Close: ClockTime{Hour: 17},
}

// Window returns the business window for the calendar day of day, in
// day's location.
func (h BusinessHours) Window(day time.Time) (time.Time, time.Time) {
	return h.Open.On(day), h.Close.On(day)
}

var (
	ErrInvalidDay          = errors.New("invalid day")
	ErrInvalidSlotDuration = errors.New("slot duration must be positive")
	ErrInvalidHours        = errors.New("business hours close before they open")
)

// GenerateSlots lays back-to-back windows of length slot across the
// business hours of day. The last slot never ends past closing time.
func GenerateSlots(day time.Time, hours BusinessHours, slot time.Duration) ([]Slot, error) {
	if day.IsZero() {
		return nil, ErrInvalidDay
	}
	if slot <= 0 {
		return nil, ErrInvalidSlotDuration
	}

	dayStart, dayEnd := hours.Window(day)
	if !dayEnd.After(dayStart) {
		return nil, ErrInvalidHours
	}

	slots := make([]Slot, 0, int(dayEnd.Sub(dayStart)/slot))
	for cur := dayStart; !cur.Add(slot).After(dayEnd); cur = cur.Add(slot) {
		slots = append(slots, Slot{Start: cur, End: cur.Add(slot)})
	}
	return slots, nil
}

// Overlaps is the half-open interval test: touching endpoints do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// FreeSlots drops every slot that overlaps a blocking appointment.
func FreeSlots(slots []Slot, busy []models.Appointment) []Slot {
	free := make([]Slot, 0, len(slots))
	for _, s := range slots {
		taken := false
		for _, ap := range busy {
			if Status(ap.Status).Blocks() && Overlaps(s.Start, s.End, ap.StartsAt, ap.EndsAt) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, s)
		}
	}
	return free
}

// BookingDays lists the calendar days in loc touched by [start, end).
// Two overlapping windows always share at least one of these days.
func BookingDays(start, end time.Time, loc *time.Location) []string {
	s := start.In(loc)
	last := end.Add(-time.Nanosecond).In(loc)

	day := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, loc)

	var days []string
	for !day.After(lastDay) {
		days = append(days, day.Format(DateLayout))
		day = day.AddDate(0, 0, 1)
	}
	return days
}
