package parking

import (
	"fmt"
	"time"
)

type SlotStatus int

const (
	StatusAvailable SlotStatus = iota
	StatusOccupied
	StatusReserved
)

func (s SlotStatus) String() string {
	switch s {
	case StatusOccupied:
		return "occupied"
	case StatusReserved:
		return "reserved"
	default:
		return "available"
	}
}

func (s SlotStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SlotStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "available":
		*s = StatusAvailable
	case "occupied":
		*s = StatusOccupied
	case "reserved":
		*s = StatusReserved
	default:
		return fmt.Errorf("unknown slot status %q", text)
	}
	return nil
}

// Slot is one parking unit. Vehicle is set iff the slot is not available;
// ArrivalTime is set iff it is occupied.
type Slot struct {
	Number          int        `json:"slot_number"`
	Status          SlotStatus `json:"status"`
	Vehicle         *Vehicle   `json:"vehicle,omitempty"`
	ArrivalTime     time.Time  `json:"arrival_time,omitzero"`
	ExpectedPickup  time.Time  `json:"expected_pickup,omitzero"`
	ReservationTime time.Time  `json:"reservation_time,omitzero"`
}

func NewSlot(number int) *Slot {
	return &Slot{
		Number: number,
		Status: StatusAvailable,
	}
}

func (s *Slot) IsAvailable() bool {
	return s.Status == StatusAvailable
}

func (s *Slot) Park(vehicle *Vehicle, arrival, expectedPickup time.Time) {
	s.Status = StatusOccupied
	s.Vehicle = vehicle
	s.ArrivalTime = arrival
	s.ExpectedPickup = expectedPickup
	s.ReservationTime = time.Time{}
}

func (s *Slot) Reserve(vehicle *Vehicle, reservedFor, expectedPickup time.Time) {
	s.Status = StatusReserved
	s.Vehicle = vehicle
	s.ArrivalTime = time.Time{}
	s.ExpectedPickup = expectedPickup
	s.ReservationTime = reservedFor
}

// Leave resets the slot to available and returns whoever held it.
func (s *Slot) Leave() *Vehicle {
	vehicle := s.Vehicle
	*s = Slot{Number: s.Number, Status: StatusAvailable}
	return vehicle
}
