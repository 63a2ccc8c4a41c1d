package tariff

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rates holds the hourly prices. Every vehicle type must have a standard
// rate and a rush surcharge; the night rate is shared.
type Rates struct {
	Standard      map[VehicleType]float64 `yaml:"standard" json:"standard"`
	RushSurcharge map[VehicleType]float64 `yaml:"rush_surcharge" json:"rush_surcharge"`
	Night         float64                 `yaml:"night" json:"night"`
}

func DefaultRates() Rates {
	return Rates{
		Standard:      map[VehicleType]float64{Car: 200, Bike: 150, Truck: 300},
		RushSurcharge: map[VehicleType]float64{Car: 50, Bike: 30, Truck: 70},
		Night:         100,
	}
}

// Validate checks the table covers the whole vehicle enumeration and
// nothing else.
func (r Rates) Validate() error {
	for _, vt := range vehicleTypes {
		if _, ok := r.Standard[vt]; !ok {
			return fmt.Errorf("%w: no standard rate for %s", ErrUnknownVehicleType, vt)
		}
		if _, ok := r.RushSurcharge[vt]; !ok {
			return fmt.Errorf("%w: no rush surcharge for %s", ErrUnknownVehicleType, vt)
		}
	}
	for vt := range r.Standard {
		if !vt.Valid() {
			return fmt.Errorf("%w: %q in standard rates", ErrUnknownVehicleType, vt)
		}
	}
	for vt := range r.RushSurcharge {
		if !vt.Valid() {
			return fmt.Errorf("%w: %q in rush surcharges", ErrUnknownVehicleType, vt)
		}
	}
	if r.Night < 0 {
		return fmt.Errorf("night rate must not be negative")
	}
	return nil
}

// LoadRates reads a YAML rate table. An empty path yields DefaultRates.
func LoadRates(path string) (Rates, error) {
	if path == "" {
		return DefaultRates(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rates{}, fmt.Errorf("reading tariff file: %w", err)
	}

	var rates Rates
	if err := yaml.Unmarshal(data, &rates); err != nil {
		return Rates{}, fmt.Errorf("parsing tariff file %s: %w", path, err)
	}
	if err := rates.Validate(); err != nil {
		return Rates{}, fmt.Errorf("tariff file %s: %w", path, err)
	}
	return rates, nil
}
