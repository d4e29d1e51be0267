package appointment

import "github.com/BruksfildServices01/practice-scheduler/internal/config"

func configSchedule(open, closing string, minutes int) config.ScheduleConfig {
	return config.ScheduleConfig{
		Timezone:    "UTC",
		Open:        open,
		Close:       closing,
		SlotMinutes: minutes,
	}
}
