package tariff

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"smart-parking/internal/logging"
)

const (
	holidayDateLayout  = "02-01-2006"
	holidayClockLayout = "15:04"
)

// Holiday is a special date with its own rush-hour window. The window is
// half-open, [RushFrom, RushTo), in whole hours on the same day.
type Holiday struct {
	Date     time.Time `json:"date"`
	Name     string    `json:"name"`
	RushFrom int       `json:"rush_from"`
	RushTo   int       `json:"rush_to"`
}

type RushWindow struct {
	From int
	To   int
}

func (w RushWindow) Contains(hour int) bool {
	return w.From <= hour && hour < w.To
}

type dateKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dateKey {
	y, m, d := t.Date()
	return dateKey{y, m, d}
}

// Calendar is a read-only, date-keyed table of holidays.
type Calendar struct {
	byDate   map[dateKey]Holiday
	holidays []Holiday
}

// NewCalendar builds a calendar. When a date appears more than once the
// first entry wins.
func NewCalendar(holidays []Holiday) *Calendar {
	c := &Calendar{byDate: make(map[dateKey]Holiday, len(holidays))}
	for _, h := range holidays {
		k := keyOf(h.Date)
		if _, dup := c.byDate[k]; dup {
			continue
		}
		c.byDate[k] = h
		c.holidays = append(c.holidays, h)
	}
	sort.SliceStable(c.holidays, func(i, j int) bool {
		return c.holidays[i].Date.Before(c.holidays[j].Date)
	})
	return c
}

// RushWindowFor returns the holiday rush window for the calendar date of t.
func (c *Calendar) RushWindowFor(t time.Time) (RushWindow, bool) {
	if c == nil {
		return RushWindow{}, false
	}
	h, ok := c.byDate[keyOf(t)]
	if !ok {
		return RushWindow{}, false
	}
	return RushWindow{From: h.RushFrom, To: h.RushTo}, true
}

// Holidays lists the calendar in date order.
func (c *Calendar) Holidays() []Holiday {
	out := make([]Holiday, len(c.holidays))
	copy(out, c.holidays)
	return out
}

func (c *Calendar) Len() int {
	return len(c.holidays)
}

// LoadCalendar reads a holiday table with the columns
// Date (dd-mm-yyyy), Holiday Name, Rush Hr From (HH:MM), Rush Hr To (HH:MM).
// Rows that cannot be parsed are logged and skipped.
func LoadCalendar(ctx context.Context, path string) (*Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCalendar(ctx, f)
}

func ReadCalendar(ctx context.Context, r io.Reader) (*Calendar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading holiday header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Date", "Rush Hr From", "Rush Hr To"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("holiday table missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var holidays []Holiday
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			logging.Warn(ctx).Err(err).Int("line", line).Msg("Skipping unreadable holiday row")
			continue
		}

		h, err := parseHoliday(field(row, "Date"), field(row, "Holiday Name"), field(row, "Rush Hr From"), field(row, "Rush Hr To"))
		if err != nil {
			logging.Warn(ctx).Err(err).Int("line", line).Msg("Skipping malformed holiday row")
			continue
		}
		holidays = append(holidays, h)
	}

	return NewCalendar(holidays), nil
}

// LoadCalendarOrDefault never fails: if the file cannot be read the
// built-in table is used.
func LoadCalendarOrDefault(ctx context.Context, path string) *Calendar {
	if path != "" {
		cal, err := LoadCalendar(ctx, path)
		if err == nil {
			logging.Info(ctx).Str("file", path).Int("holidays", cal.Len()).Msg("Loaded holiday calendar")
			return cal
		}
		logging.Warn(ctx).Err(err).Str("file", path).Msg("Holiday file unavailable, using built-in calendar")
	}
	return DefaultCalendar()
}

func parseHoliday(date, name, from, to string) (Holiday, error) {
	d, err := time.Parse(holidayDateLayout, date)
	if err != nil {
		return Holiday{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	start, err := time.Parse(holidayClockLayout, from)
	if err != nil {
		return Holiday{}, fmt.Errorf("invalid rush start %q: %w", from, err)
	}
	end, err := time.Parse(holidayClockLayout, to)
	if err != nil {
		return Holiday{}, fmt.Errorf("invalid rush end %q: %w", to, err)
	}
	return Holiday{
		Date:     d,
		Name:     name,
		RushFrom: start.Hour(),
		RushTo:   end.Hour(),
	}, nil
}

var defaultHolidays = [][4]string{
	{"01-01-2025", "New Year's Day", "00:00", "23:59"},
	{"26-01-2025", "Republic Day", "08:00", "14:00"},
	{"02-02-2025", "Vasant Panchami", "09:00", "17:00"},
	{"26-02-2025", "Maha Shivaratri", "09:00", "17:00"},
	{"13-03-2025", "Holika Dahana", "09:00", "22:00"},
	{"14-03-2025", "Holi", "09:00", "20:00"},
	{"28-03-2025", "Jamat Ul-Vida", "09:00", "17:00"},
	{"30-03-2025", "Chaitra Sukhladi / Ugadi / Gudi Padwa", "09:00", "17:00"},
	{"31-03-2025", "Eid-ul-Fitr", "08:00", "21:00"},
	{"06-04-2025", "Rama Navami", "09:00", "17:00"},
	{"10-04-2025", "Mahavir Jayanti", "09:00", "17:00"},
	{"18-04-2025", "Good Friday", "08:00", "16:00"},
	{"12-05-2025", "Buddha Purnima", "09:00", "18:00"},
	{"07-06-2025", "Eid ul-Adha (Bakrid)", "08:00", "21:00"},
	{"06-07-2025", "Muharram", "07:00", "19:00"},
	{"09-08-2025", "Raksha Bandhan", "10:00", "18:00"},
	{"15-08-2025", "Independence Day", "08:00", "14:00"},
	{"16-08-2025", "Janmashtami", "08:00", "23:00"},
	{"27-08-2025", "Ganesh Chaturthi", "08:00", "21:00"},
	{"05-09-2025", "Milad-un-Nabi / Onam", "09:00", "17:00"},
	{"29-09-2025", "Maha Saptami", "06:00", "23:59"},
	{"30-09-2025", "Maha Ashtami", "06:00", "23:59"},
	{"01-10-2025", "Maha Navami", "06:00", "23:59"},
	{"02-10-2025", "Mahatma Gandhi Jayanti / Dussehra", "08:00", "17:00"},
	{"07-10-2025", "Maharishi Valmiki Jayanti", "09:00", "17:00"},
	{"20-10-2025", "Diwali", "10:00", "23:59"},
	{"22-10-2025", "Govardhan Puja", "09:00", "18:00"},
	{"23-10-2025", "Bhai Duj", "10:00", "18:00"},
	{"05-11-2025", "Guru Nanak Jayanti", "09:00", "19:00"},
	{"24-11-2025", "Guru Tegh Bahadur's Martyrdom Day", "09:00", "17:00"},
	{"25-12-2025", "Christmas Day", "09:00", "22:00"},
	{"31-12-2025", "New Year's Eve", "00:00", "23:59"},
}

// DefaultCalendar is the built-in 2025 holiday table.
func DefaultCalendar() *Calendar {
	holidays := make([]Holiday, 0, len(defaultHolidays))
	for _, row := range defaultHolidays {
		h, err := parseHoliday(row[0], row[1], row[2], row[3])
		if err != nil {
			panic(fmt.Sprintf("built-in holiday %q: %v", row[1], err))
		}
		holidays = append(holidays, h)
	}
	return NewCalendar(holidays)
}
