package tariff

import (
	"fmt"
	"math"
	"time"
)

type Band int

const (
	BandStandard Band = iota
	BandRush
	BandNight
)

func (b Band) String() string {
	switch b {
	case BandRush:
		return "rush"
	case BandNight:
		return "night"
	default:
		return "standard"
	}
}

const (
	nightStart        = 23
	nightEnd          = 5
	fridayRushStart   = 17
	weekendRushStart  = 11
	partialHourReport = 0.5
)

// Breakdown is the result of pricing one occupancy.
type Breakdown struct {
	DurationHours  float64 `json:"duration_hours"`
	StandardHours  int     `json:"standard_hours"`
	RushHours      int     `json:"rush_hours"`
	NightHours     int     `json:"night_hours"`
	BaseRate       float64 `json:"base_rate"`
	RushSurcharge  float64 `json:"rush_surcharge"`
	NightRate      float64 `json:"night_rate"`
	StandardCharge float64 `json:"standard_charge"`
	RushCharge     float64 `json:"rush_charge"`
	NightCharge    float64 `json:"night_charge"`
	Total          float64 `json:"total_cost"`
}

// Policy prices occupancies hour by hour against the rate table and the
// holiday calendar. It holds no mutable state.
type Policy struct {
	rates    Rates
	calendar *Calendar
}

func NewPolicy(rates Rates, calendar *Calendar) (*Policy, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return &Policy{rates: rates, calendar: calendar}, nil
}

func (p *Policy) Rates() Rates {
	return p.rates
}

func (p *Policy) Calendar() *Calendar {
	return p.calendar
}

// Classify puts the wall-clock hour starting at t into exactly one band.
// Holiday windows replace the weekly rush schedule for that date.
func (p *Policy) Classify(t time.Time) Band {
	hour := t.Hour()

	if window, holiday := p.calendar.RushWindowFor(t); holiday {
		if window.Contains(hour) {
			return BandRush
		}
	} else {
		switch t.Weekday() {
		case time.Friday:
			if hour >= fridayRushStart {
				return BandRush
			}
		case time.Saturday, time.Sunday:
			if hour >= weekendRushStart {
				return BandRush
			}
		}
	}

	if hour >= nightStart || hour < nightEnd {
		return BandNight
	}
	return BandStandard
}

// Compute prices the stay from arrival to departure. Only whole hours are
// billed; a trailing partial hour shows up as 0.5 in DurationHours and is
// free. A departure at or before arrival prices to zero.
func (p *Policy) Compute(vt VehicleType, arrival, departure time.Time) (Breakdown, error) {
	base, ok := p.rates.Standard[vt]
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: %q", ErrUnknownVehicleType, vt)
	}
	surcharge, ok := p.rates.RushSurcharge[vt]
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: %q", ErrUnknownVehicleType, vt)
	}

	b := Breakdown{
		BaseRate:      base,
		RushSurcharge: surcharge,
		NightRate:     p.rates.Night,
	}

	elapsed := departure.Sub(arrival)
	if elapsed <= 0 {
		return b, nil
	}

	fullHours := int(elapsed / time.Hour)
	b.DurationHours = float64(fullHours)
	if elapsed%time.Hour > 0 {
		b.DurationHours += partialHourReport
	}

	for h := 0; h < fullHours; h++ {
		switch p.Classify(arrival.Add(time.Duration(h) * time.Hour)) {
		case BandRush:
			b.RushHours++
		case BandNight:
			b.NightHours++
		default:
			b.StandardHours++
		}
	}

	b.StandardCharge = float64(b.StandardHours) * base
	b.RushCharge = float64(b.RushHours) * (base + surcharge)
	b.NightCharge = float64(b.NightHours) * p.rates.Night
	b.Total = roundCents(b.StandardCharge + b.RushCharge + b.NightCharge)

	return b, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
