package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-parking/internal/logging"
	"smart-parking/internal/parking"
	"smart-parking/internal/tariff"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 10, day, hour, minute, 0, 0, time.UTC)
}

var sampleRecords = []parking.SlotRecord{
	{Number: 1, VehicleType: tariff.Car, VehicleNumber: "WB01A1234", ArrivalTime: at(17, 15, 0), ExpectedPickup: at(17, 19, 0)},
	{Number: 3, VehicleType: tariff.Truck, VehicleNumber: "WB23C9901", ArrivalTime: at(18, 9, 30), ExpectedPickup: at(19, 6, 0)},
}

const sampleTable = `Slot,VehicleType,VehicleNumber,ArrivalDate,ArrivalTime,ExpectedPickupDate,ExpectedPickupTime,Weekday,Charge
1,Car,WB01A1234,17-10-25,15:00,17-10-25,19:00,Fri,0.0
2,,,,,,,,
3,Truck,WB23C9901,18-10-25,09:30,19-10-25,06:00,Sat,0.0
`

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, 3, sampleRecords, time.UTC))

	assert.Equal(t, sampleTable, buf.String())
}

func TestWriteTableEmptyLot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, 2, nil, time.UTC))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{strings.Join(Header, ","), "1,,,,,,,,", "2,,,,,,,,"}, lines)
}

func TestReadTable(t *testing.T) {
	records, err := ReadTable(context.Background(), strings.NewReader(sampleTable), time.UTC)
	require.NoError(t, err)

	assert.Equal(t, sampleRecords, records)
}

func TestReadTableSkipsMalformedRows(t *testing.T) {
	table := `Slot,VehicleType,VehicleNumber,ArrivalDate,ArrivalTime,ExpectedPickupDate,ExpectedPickupTime,Weekday,Charge
one,Car,BAD-SLOT,17-10-25,15:00,17-10-25,19:00,Fri,0.0
2,Bus,BAD-TYPE,17-10-25,15:00,17-10-25,19:00,Fri,0.0
3,Car,BAD-DATE,2025-10-17,15:00,17-10-25,19:00,Fri,0.0
4,bike,wb02x7,17-10-25,08:05,,,Fri,0.0
5,Car,,17-10-25,15:00,,,,
`
	records, err := ReadTable(context.Background(), strings.NewReader(table), time.UTC)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, parking.SlotRecord{
		Number:        4,
		VehicleType:   tariff.Bike,
		VehicleNumber: "wb02x7",
		ArrivalTime:   at(17, 8, 5),
	}, records[0])
}

func TestReadTableRequiresColumns(t *testing.T) {
	_, err := ReadTable(context.Background(), strings.NewReader("Slot,VehicleNumber\n1,X\n"), time.UTC)
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestReadTableEmptyInput(t *testing.T) {
	records, err := ReadTable(context.Background(), strings.NewReader(""), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWriteTransactions(t *testing.T) {
	txs := []parking.Transaction{
		{SlotNumber: 3, VehicleType: tariff.Truck, VehicleNumber: "WB23C9901", ArrivalTime: at(18, 9, 30), DepartureTime: at(19, 6, 0), Amount: 1410},
		{SlotNumber: 1, VehicleType: tariff.Car, VehicleNumber: "WB01A1234", ArrivalTime: at(17, 15, 0), DepartureTime: at(17, 17, 5), Amount: 62.5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txs, time.UTC))

	assert.Equal(t, `Date,Time,Vehicle,Type,Slot,Amount
2025-10-19,06:00,WB23C9901,Truck,3,1410.00
2025-10-17,17:05,WB01A1234,Car,1,62.50
`, buf.String())
}

func TestWriteTransactionsUsesLocation(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	txs := []parking.Transaction{
		{SlotNumber: 1, VehicleType: tariff.Bike, VehicleNumber: "WB02X7", DepartureTime: at(17, 20, 0), Amount: 20},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txs, kolkata))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2025-10-18,01:30,WB02X7,Bike,1,20.00", lines[1])
}
