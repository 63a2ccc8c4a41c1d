package storage

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"smart-parking/internal/parking"
)

// TransactionHeader is the column order of a transaction export.
var TransactionHeader = []string{"Date", "Time", "Vehicle", "Type", "Slot", "Amount"}

// WriteTransactions writes one row per transaction, stamped with its
// departure date and clock in loc.
func WriteTransactions(w io.Writer, txs []parking.Transaction, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(TransactionHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		departure := tx.DepartureTime.In(loc)
		row := []string{
			departure.Format(time.DateOnly),
			departure.Format(parking.ClockLayout),
			tx.VehicleNumber,
			tx.VehicleType.String(),
			strconv.Itoa(tx.SlotNumber),
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
