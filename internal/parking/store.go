package parking

import (
	"context"
	"time"

	"smart-parking/internal/tariff"
)

// SlotRecord is an occupied slot as it appears in the persisted table.
// Reservations have no representation there.
type SlotRecord struct {
	Number         int
	VehicleType    tariff.VehicleType
	VehicleNumber  string
	ArrivalTime    time.Time
	ExpectedPickup time.Time
}

// Store is the persistence boundary. Load returns an error matching
// fs.ErrNotExist when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) ([]SlotRecord, error)
	Save(ctx context.Context, capacity int, records []SlotRecord) error
}

// Records returns the occupied slots in slot order.
func (pl *ParkingLot) Records() []SlotRecord {
	var records []SlotRecord
	for _, slot := range pl.slots {
		if slot.Status != StatusOccupied {
			continue
		}
		records = append(records, SlotRecord{
			Number:         slot.Number,
			VehicleType:    slot.Vehicle.Type,
			VehicleNumber:  slot.Vehicle.RegistrationNumber,
			ArrivalTime:    slot.ArrivalTime,
			ExpectedPickup: slot.ExpectedPickup,
		})
	}
	return records
}
