package parking

import (
	"fmt"
	"time"
)

// Layouts of the persisted table and the interactive shell.
const (
	DateLayout    = "02-01-06"
	ClockLayout   = "15:04"
	WeekdayLayout = "Mon"
)

func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q (want dd-mm-yy HH:MM): %w", date, clock, err)
	}
	return t, nil
}

func FormatDateTime(t time.Time) string {
	return t.Format(DateLayout + " " + ClockLayout)
}
