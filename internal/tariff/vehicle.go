package tariff

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownVehicleType = errors.New("unknown vehicle type")

// VehicleType is the closed set of vehicle categories the lot accepts.
type VehicleType string

const (
	Car   VehicleType = "Car"
	Bike  VehicleType = "Bike"
	Truck VehicleType = "Truck"
)

var vehicleTypes = []VehicleType{Car, Bike, Truck}

// VehicleTypes returns every known vehicle type in display order.
func VehicleTypes() []VehicleType {
	out := make([]VehicleType, len(vehicleTypes))
	copy(out, vehicleTypes)
	return out
}

// ParseVehicleType accepts a category name in any case, or the menu
// shortcuts "1", "2" and "3".
func ParseVehicleType(s string) (VehicleType, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "1":
		return Car, nil
	case "2":
		return Bike, nil
	case "3":
		return Truck, nil
	}
	for _, vt := range vehicleTypes {
		if strings.EqualFold(s, string(vt)) {
			return vt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVehicleType, s)
}

func (vt VehicleType) Valid() bool {
	for _, known := range vehicleTypes {
		if vt == known {
			return true
		}
	}
	return false
}

// IsLarge reports whether the vehicle is parked from the far end of the lot.
func (vt VehicleType) IsLarge() bool {
	return vt == Truck
}

func (vt VehicleType) String() string {
	return string(vt)
}
