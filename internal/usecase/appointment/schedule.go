package appointment

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/BruksfildServices01/practice-scheduler/internal/config"
	domain "github.com/BruksfildServices01/practice-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/practice-scheduler/internal/timezone"
)

// Schedule is the business window every practitioner shares.
type Schedule struct {
	Hours    domain.BusinessHours
	Slot     time.Duration
	Location *time.Location
}

func DefaultSchedule() Schedule {
	return Schedule{
		Hours:    domain.DefaultBusinessHours,
		Slot:     domain.DefaultSlotDuration,
		Location: time.Local,
	}
}

func ScheduleFromConfig(cfg config.ScheduleConfig) (Schedule, error) {
	open, err := domain.ParseClock(cfg.Open)
	if err != nil {
		return Schedule{}, errors.Wrap(err, "BUSINESS_OPEN")
	}
	closing, err := domain.ParseClock(cfg.Close)
	if err != nil {
		return Schedule{}, errors.Wrap(err, "BUSINESS_CLOSE")
	}
	if cfg.SlotMinutes <= 0 {
		return Schedule{}, domain.ErrInvalidSlotDuration
	}

	return Schedule{
		Hours:    domain.BusinessHours{Open: open, Close: closing},
		Slot:     time.Duration(cfg.SlotMinutes) * time.Minute,
		Location: timezone.Location(cfg.Timezone),
	}, nil
}

// ParseDay reads a YYYY-MM-DD date as midnight in the business zone.
func (s Schedule) ParseDay(date string) (time.Time, error) {
	return time.ParseInLocation(domain.DateLayout, date, s.Location)
}
