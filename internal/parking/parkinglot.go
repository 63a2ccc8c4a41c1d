package parking

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"smart-parking/internal/tariff"
)

const DefaultCapacity = 20

// Receipt is the bill for a removed vehicle.
type Receipt struct {
	Transaction
	tariff.Breakdown
}

type Statistics struct {
	TotalSlots       int     `json:"total_slots"`
	AvailableCount   int     `json:"available_count"`
	OccupiedCount    int     `json:"occupied_count"`
	ReservedCount    int     `json:"reserved_count"`
	OccupancyRate    float64 `json:"occupancy_rate"`
	TotalRevenue     float64 `json:"total_revenue"`
	TransactionCount int     `json:"total_transactions"`
}

// ParkingLot is the in-memory registry of slots 1..capacity. It owns slot
// assignment, billing on removal and the transaction ledger. It is not
// safe for concurrent use; Service serializes access to it.
type ParkingLot struct {
	capacity int
	slots    []*Slot
	policy   *tariff.Policy
	ledger   *Ledger

	now   func() time.Time
	newID func() string
}

func NewParkingLot(capacity int, policy *tariff.Policy) *ParkingLot {
	slots := make([]*Slot, capacity)
	for i := 0; i < capacity; i++ {
		slots[i] = NewSlot(i + 1)
	}

	return &ParkingLot{
		capacity: capacity,
		slots:    slots,
		policy:   policy,
		ledger:   NewLedger(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

func (pl *ParkingLot) Capacity() int {
	return pl.capacity
}

func (pl *ParkingLot) Policy() *tariff.Policy {
	return pl.policy
}

// nextAvailable applies the assignment rule: large vehicles take the highest
// numbered free slot, everything else the lowest.
func (pl *ParkingLot) nextAvailable(vehicleType tariff.VehicleType) *Slot {
	if vehicleType.IsLarge() {
		for i := len(pl.slots) - 1; i >= 0; i-- {
			if pl.slots[i].IsAvailable() {
				return pl.slots[i]
			}
		}
		return nil
	}
	for _, slot := range pl.slots {
		if slot.IsAvailable() {
			return slot
		}
	}
	return nil
}

func (pl *ParkingLot) slot(number int) (*Slot, error) {
	if number < 1 || number > pl.capacity {
		return nil, fmt.Errorf("%w: %d", ErrSlotNotFound, number)
	}
	return pl.slots[number-1], nil
}

func (pl *ParkingLot) Park(vehicle *Vehicle, arrival, expectedPickup time.Time) (int, error) {
	slot := pl.nextAvailable(vehicle.Type)
	if slot == nil {
		return 0, ErrNoCapacity
	}
	slot.Park(vehicle, arrival, expectedPickup)
	return slot.Number, nil
}

func (pl *ParkingLot) Reserve(vehicle *Vehicle, reservedFor time.Time, durationHours int) (int, error) {
	slot := pl.nextAvailable(vehicle.Type)
	if slot == nil {
		return 0, ErrNoCapacity
	}
	slot.Reserve(vehicle, reservedFor, reservedFor.Add(time.Duration(durationHours)*time.Hour))
	return slot.Number, nil
}

// Restore puts a vehicle back into a specific slot, used when rehydrating
// from the persisted table.
func (pl *ParkingLot) Restore(number int, vehicle *Vehicle, arrival, expectedPickup time.Time) error {
	slot, err := pl.slot(number)
	if err != nil {
		return err
	}
	if !slot.IsAvailable() {
		return fmt.Errorf("%w: slot %d is already %s", ErrInvalidState, number, slot.Status)
	}
	slot.Park(vehicle, arrival, expectedPickup)
	return nil
}

// Remove bills the occupant of the slot, records the transaction and frees
// the slot. Nothing changes if the slot is not occupied or billing fails.
func (pl *ParkingLot) Remove(number int, departure time.Time) (*Receipt, error) {
	slot, err := pl.slot(number)
	if err != nil {
		return nil, err
	}
	if slot.Status != StatusOccupied {
		return nil, fmt.Errorf("%w: slot %d is %s", ErrInvalidState, number, slot.Status)
	}

	breakdown, err := pl.policy.Compute(slot.Vehicle.Type, slot.ArrivalTime, departure)
	if err != nil {
		return nil, err
	}

	tx := Transaction{
		ID:            pl.newID(),
		SlotNumber:    number,
		VehicleType:   slot.Vehicle.Type,
		VehicleNumber: slot.Vehicle.RegistrationNumber,
		ArrivalTime:   slot.ArrivalTime,
		DepartureTime: departure,
		Amount:        breakdown.Total,
		Timestamp:     pl.now(),
	}
	pl.ledger.Record(tx)
	slot.Leave()

	return &Receipt{Transaction: tx, Breakdown: breakdown}, nil
}

func (pl *ParkingLot) Slot(number int) (Slot, error) {
	slot, err := pl.slot(number)
	if err != nil {
		return Slot{}, err
	}
	return *slot, nil
}

// Slots returns a copy of every slot ordered by number.
func (pl *ParkingLot) Slots() []Slot {
	out := make([]Slot, len(pl.slots))
	for i, slot := range pl.slots {
		out[i] = *slot
	}
	return out
}

func (pl *ParkingLot) SlotsWithStatus(status SlotStatus) []Slot {
	var out []Slot
	for _, slot := range pl.slots {
		if slot.Status == status {
			out = append(out, *slot)
		}
	}
	return out
}

// Search matches the query case-insensitively against the plates of every
// held slot. No match is an empty result, not an error.
func (pl *ParkingLot) Search(query string) []Slot {
	query = strings.ToUpper(strings.TrimSpace(query))
	var out []Slot
	for _, slot := range pl.slots {
		if slot.IsAvailable() || slot.Vehicle == nil {
			continue
		}
		if strings.Contains(strings.ToUpper(slot.Vehicle.RegistrationNumber), query) {
			out = append(out, *slot)
		}
	}
	return out
}

func (pl *ParkingLot) Statistics() Statistics {
	stats := Statistics{
		TotalSlots:       pl.capacity,
		TotalRevenue:     pl.ledger.Revenue(),
		TransactionCount: pl.ledger.Count(),
	}
	for _, slot := range pl.slots {
		switch slot.Status {
		case StatusOccupied:
			stats.OccupiedCount++
		case StatusReserved:
			stats.ReservedCount++
		default:
			stats.AvailableCount++
		}
	}
	if pl.capacity > 0 {
		stats.OccupancyRate = math.Round(float64(stats.OccupiedCount)/float64(pl.capacity)*1000) / 10
	}
	return stats
}

func (pl *ParkingLot) RecentTransactions(limit int) []Transaction {
	return pl.ledger.Recent(limit)
}

func (pl *ParkingLot) Transactions() []Transaction {
	return pl.ledger.All()
}

// ClearAll frees every slot and empties the ledger.
func (pl *ParkingLot) ClearAll() {
	for _, slot := range pl.slots {
		slot.Leave()
	}
	pl.ledger.Reset()
}
