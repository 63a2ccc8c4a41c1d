package tariff

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-parking/internal/logging"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const holidayCSV = `Date,Holiday Name,Rush Hr From,Rush Hr To
01-05-2026,Labour Day,08:00,14:00
15-08-2026,Independence Day,07:30,12:45
not-a-date,Broken,08:00,10:00
15-08-2026,Duplicate,00:00,23:59
`

func TestReadCalendar(t *testing.T) {
	cal, err := ReadCalendar(context.Background(), strings.NewReader(holidayCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, cal.Len())

	window, ok := cal.RushWindowFor(time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, RushWindow{From: 7, To: 12}, window, "first entry for a date wins and minutes are dropped")

	_, ok = cal.RushWindowFor(time.Date(2026, 8, 16, 10, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestReadCalendarMissingColumn(t *testing.T) {
	_, err := ReadCalendar(context.Background(), strings.NewReader("Date,Holiday Name\n01-01-2026,New Year\n"))
	assert.Error(t, err)
}

func TestHolidaysAreSortedByDate(t *testing.T) {
	cal := NewCalendar([]Holiday{
		{Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Name: "b"},
		{Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Name: "a"},
	})

	holidays := cal.Holidays()
	require.Len(t, holidays, 2)
	assert.Equal(t, "a", holidays[0].Name)
	assert.Equal(t, "b", holidays[1].Name)
}

func TestLoadCalendarOrDefaultFallsBack(t *testing.T) {
	cal := LoadCalendarOrDefault(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, len(defaultHolidays), cal.Len())

	window, ok := cal.RushWindowFor(time.Date(2025, 10, 20, 12, 0, 0, 0, time.Local))
	require.True(t, ok)
	assert.Equal(t, RushWindow{From: 10, To: 23}, window)
}

func TestLoadCalendarOrDefaultReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.csv")
	require.NoError(t, os.WriteFile(path, []byte(holidayCSV), 0o644))

	cal := LoadCalendarOrDefault(context.Background(), path)
	assert.Equal(t, 2, cal.Len())
}

func TestRushWindowContains(t *testing.T) {
	w := RushWindow{From: 9, To: 17}
	assert.False(t, w.Contains(8))
	assert.True(t, w.Contains(9))
	assert.True(t, w.Contains(16))
	assert.False(t, w.Contains(17))
}
