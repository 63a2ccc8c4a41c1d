package parking

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func runShell(t *testing.T, capacity int, script ...string) string {
	t.Helper()
	is, h := newInstrumented(t, capacity, &memoryStore{})

	var out bytes.Buffer
	shell := NewShell(is, h.telemetry, strings.NewReader(strings.Join(script, "\n")), &out, time.UTC)
	shell.Run(context.Background())
	return out.String()
}

func TestShellParkAndLeavePrintsBill(t *testing.T) {
	out := runShell(t, 3,
		"park Car wb01a1234 17-10-25 15:00 17-10-25 19:00",
		"leave 1 17-10-25 19:00",
	)

	assert.Contains(t, out, "Allocated slot number: 1\n")
	assert.Contains(t, out, "Vehicle Number: WB01A1234\n")
	assert.Contains(t, out, "Total Hours: 4.0\n")
	assert.Contains(t, out, "Standard Hours (2 hrs): Rs.400.00\n")
	assert.Contains(t, out, "Rush Hours (2 hrs): Rs.500.00\n")
	assert.Contains(t, out, "TOTAL CHARGE: Rs.900.00\n")
	assert.Contains(t, out, "Slot number 1 is free\n")
}

func TestShellTruckAndFullLot(t *testing.T) {
	out := runShell(t, 2,
		"park 3 T1 14-10-25 10:00 14-10-25 12:00",
		"park car C1 14-10-25 10:00 14-10-25 12:00",
		"reserve bike B1 14-10-25 18:00 2",
	)

	assert.Contains(t, out, "Allocated slot number: 2\n")
	assert.Contains(t, out, "Allocated slot number: 1\n")
	assert.Contains(t, out, "Sorry, parking lot is full\n")
}

func TestShellQueries(t *testing.T) {
	out := runShell(t, 3,
		"status",
		"park Car WB01A1 14-10-25 10:00 14-10-25 12:00",
		"reserve Bike WB02B2 14-10-25 18:00 1",
		"status",
		"slot 3",
		"slot 9",
		"search b2",
		"search nothing",
		"stats",
		"transactions",
	)

	assert.Contains(t, out, "Parking lot is empty\n")
	assert.Contains(t, out, "1\t\toccupied\tCar\tWB01A1\t14-10-25 10:00\t14-10-25 12:00\n")
	assert.Contains(t, out, "2\t\treserved\tBike\tWB02B2\t-\t14-10-25 19:00\n")
	assert.Contains(t, out, "Slot 3 is available\n")
	assert.Contains(t, out, "slot not found")
	assert.Contains(t, out, "Not found\n")
	assert.Contains(t, out, "Occupancy: 33.3%\n")
	assert.Contains(t, out, "No transactions\n")
}

func TestShellRejectsBadInput(t *testing.T) {
	out := runShell(t, 2,
		"park Bus X 14-10-25 10:00 14-10-25 12:00",
		"park Car X 14-10-25 12:00 14-10-25 10:00",
		"park Car X 2025-10-14 10:00 14-10-25 12:00",
		"leave one 14-10-25 12:00",
		"leave 1 14-10-25 12:00",
		"reserve Car X 14-10-25 18:00 0",
		"clear_all",
		"fly",
	)

	assert.Contains(t, out, "unknown vehicle type")
	assert.Contains(t, out, "pickup time must be after arrival time")
	assert.Contains(t, out, "want dd-mm-yy HH:MM")
	assert.Contains(t, out, "Invalid slot number\n")
	assert.Contains(t, out, "invalid slot state")
	assert.Contains(t, out, "reservation duration must be positive")
	assert.Contains(t, out, "Run: clear_all confirm\n")
	assert.Contains(t, out, "Unknown command: fly\n")
}

func TestShellTariffInformationAndClear(t *testing.T) {
	out := runShell(t, 2,
		"rates",
		"holidays",
		"park Car A 14-10-25 10:00 14-10-25 12:00",
		"leave 1 14-10-25 11:00",
		"transactions 5",
		"clear_all confirm",
		"stats",
	)

	assert.Contains(t, out, "Truck: Rs.300.00/hr standard, +Rs.70.00/hr rush\n")
	assert.Contains(t, out, "Night (23:00-05:00): Rs.100.00/hr for all vehicles\n")
	assert.Contains(t, out, "Diwali")
	assert.Contains(t, out, "1\t\tA\t14-10-25 10:00\t14-10-25 11:00\tRs.200.00\n")
	assert.Contains(t, out, "All parking data cleared\n")
	assert.Contains(t, out, "Revenue: Rs.0.00\n")
}
