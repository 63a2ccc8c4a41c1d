package tariff

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func testPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy(DefaultRates(), DefaultCalendar())
	require.NoError(t, err)
	return p
}

func TestComputeFridayEveningRush(t *testing.T) {
	p := testPolicy(t)

	// 2025-10-17 is a Friday with no holiday.
	b, err := p.Compute(Car, at(2025, 10, 17, 15, 0), at(2025, 10, 17, 19, 0))
	require.NoError(t, err)

	want := Breakdown{
		DurationHours:  4,
		StandardHours:  2,
		RushHours:      2,
		BaseRate:       200,
		RushSurcharge:  50,
		NightRate:      100,
		StandardCharge: 400,
		RushCharge:     500,
		Total:          900,
	}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("Compute() mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeBikeOvernight(t *testing.T) {
	p := testPolicy(t)

	b, err := p.Compute(Bike, at(2025, 10, 14, 22, 30), at(2025, 10, 15, 2, 30))
	require.NoError(t, err)

	assert.Equal(t, 1, b.StandardHours)
	assert.Equal(t, 0, b.RushHours)
	assert.Equal(t, 3, b.NightHours)
	assert.Equal(t, 4.0, b.DurationHours)
	assert.Equal(t, 450.0, b.Total)
}

func TestComputePartialHourIsReportedButNotBilled(t *testing.T) {
	p := testPolicy(t)

	b, err := p.Compute(Car, at(2025, 10, 14, 10, 0), at(2025, 10, 14, 12, 30))
	require.NoError(t, err)

	assert.Equal(t, 2.5, b.DurationHours)
	assert.Equal(t, 2, b.StandardHours)
	assert.Equal(t, 400.0, b.Total)

	b, err = p.Compute(Car, at(2025, 10, 14, 10, 0), at(2025, 10, 14, 10, 59))
	require.NoError(t, err)
	assert.Equal(t, 0.5, b.DurationHours)
	assert.Equal(t, 0.0, b.Total)
}

func TestComputeHolidayWindow(t *testing.T) {
	p := testPolicy(t)

	// Diwali, rush 10:00-23:00.
	b, err := p.Compute(Car, at(2025, 10, 20, 9, 0), at(2025, 10, 20, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, b.StandardHours)
	assert.Equal(t, 2, b.RushHours)
	assert.Equal(t, 700.0, b.Total)
}

func TestComputeHolidayReplacesWeekendRush(t *testing.T) {
	p := testPolicy(t)

	// Muharram falls on a Sunday with a 07:00-19:00 window, so the evening
	// is standard rather than weekend rush.
	b, err := p.Compute(Car, at(2025, 7, 6, 19, 0), at(2025, 7, 6, 21, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, b.StandardHours)
	assert.Equal(t, 0, b.RushHours)
	assert.Equal(t, 400.0, b.Total)

	// The following Sunday is an ordinary weekend.
	b, err = p.Compute(Car, at(2025, 7, 13, 19, 0), at(2025, 7, 13, 21, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, b.RushHours)
	assert.Equal(t, 500.0, b.Total)
}

func TestComputeHolidayWindowEndsBeforeNight(t *testing.T) {
	p := testPolicy(t)

	// New Year's Day window is 00:00-23:59, which truncates to [0, 23).
	b, err := p.Compute(Car, at(2025, 1, 1, 22, 0), at(2025, 1, 2, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, b.RushHours)
	assert.Equal(t, 1, b.NightHours)
	assert.Equal(t, 350.0, b.Total)
}

func TestComputeWeekendTruck(t *testing.T) {
	p := testPolicy(t)

	b, err := p.Compute(Truck, at(2025, 10, 18, 10, 0), at(2025, 10, 18, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, b.StandardHours)
	assert.Equal(t, 1, b.RushHours)
	assert.Equal(t, 670.0, b.Total)
}

func TestComputeNonPositiveDuration(t *testing.T) {
	p := testPolicy(t)
	arrival := at(2025, 10, 14, 10, 0)

	for _, departure := range []time.Time{arrival, arrival.Add(-3 * time.Hour)} {
		b, err := p.Compute(Car, arrival, departure)
		require.NoError(t, err)
		assert.Zero(t, b.DurationHours)
		assert.Zero(t, b.StandardHours+b.RushHours+b.NightHours)
		assert.Zero(t, b.Total)
	}
}

func TestComputeUnknownVehicleType(t *testing.T) {
	p := testPolicy(t)

	_, err := p.Compute(VehicleType("Bus"), at(2025, 10, 14, 10, 0), at(2025, 10, 14, 12, 0))
	assert.ErrorIs(t, err, ErrUnknownVehicleType)
}

func TestComputeIsDeterministic(t *testing.T) {
	p := testPolicy(t)
	arrival := at(2025, 10, 16, 3, 17)
	departure := at(2025, 10, 19, 8, 45)

	first, err := p.Compute(Truck, arrival, departure)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := p.Compute(Truck, arrival, departure)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, int(departure.Sub(arrival)/time.Hour), first.StandardHours+first.RushHours+first.NightHours)
}

func TestClassify(t *testing.T) {
	p := testPolicy(t)

	tests := []struct {
		name string
		at   time.Time
		want Band
	}{
		{"weekday morning", at(2025, 10, 14, 9, 0), BandStandard},
		{"weekday late night", at(2025, 10, 14, 23, 0), BandNight},
		{"early morning", at(2025, 10, 14, 4, 59), BandNight},
		{"five am", at(2025, 10, 14, 5, 0), BandStandard},
		{"friday before rush", at(2025, 10, 17, 16, 59), BandStandard},
		{"friday rush", at(2025, 10, 17, 17, 0), BandRush},
		{"friday rush beats night", at(2025, 10, 17, 23, 30), BandRush},
		{"saturday early is night", at(2025, 10, 18, 2, 0), BandNight},
		{"sunday rush", at(2025, 10, 19, 11, 0), BandRush},
		{"holiday inside window", at(2025, 12, 25, 9, 0), BandRush},
		{"holiday outside window", at(2025, 12, 25, 22, 0), BandStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Classify(tt.at))
		})
	}
}

func TestNewPolicyRejectsIncompleteRates(t *testing.T) {
	rates := DefaultRates()
	delete(rates.RushSurcharge, Bike)

	_, err := NewPolicy(rates, DefaultCalendar())
	assert.ErrorIs(t, err, ErrUnknownVehicleType)
}
