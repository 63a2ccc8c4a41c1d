package parking

import (
	"strings"

	"smart-parking/internal/tariff"
)

type Vehicle struct {
	Type               tariff.VehicleType `json:"vehicle_type"`
	RegistrationNumber string             `json:"vehicle_number"`
}

// NewVehicle normalizes the plate to trimmed upper case.
func NewVehicle(vehicleType tariff.VehicleType, registrationNumber string) *Vehicle {
	return &Vehicle{
		Type:               vehicleType,
		RegistrationNumber: strings.ToUpper(strings.TrimSpace(registrationNumber)),
	}
}
