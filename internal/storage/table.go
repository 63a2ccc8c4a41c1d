// Package storage persists the slot registry as a flat CSV table with one
// row per slot.
package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"smart-parking/internal/logging"
	"smart-parking/internal/parking"
	"smart-parking/internal/tariff"
)

const (
	colSlot               = "Slot"
	colVehicleType        = "VehicleType"
	colVehicleNumber      = "VehicleNumber"
	colArrivalDate        = "ArrivalDate"
	colArrivalTime        = "ArrivalTime"
	colExpectedPickupDate = "ExpectedPickupDate"
	colExpectedPickupTime = "ExpectedPickupTime"
	colWeekday            = "Weekday"
	colCharge             = "Charge"
)

// Header is the fixed column order of the table.
var Header = []string{
	colSlot,
	colVehicleType,
	colVehicleNumber,
	colArrivalDate,
	colArrivalTime,
	colExpectedPickupDate,
	colExpectedPickupTime,
	colWeekday,
	colCharge,
}

var ErrMalformedTable = errors.New("malformed parking table")

// WriteTable writes capacity rows with dates and clocks rendered in loc, the
// zone ReadTable will parse them back in. Slots without a record are
// written with every column but Slot blank.
func WriteTable(w io.Writer, capacity int, records []parking.SlotRecord, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	bySlot := make(map[int]parking.SlotRecord, len(records))
	for _, rec := range records {
		bySlot[rec.Number] = rec
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for n := 1; n <= capacity; n++ {
		row := make([]string, len(Header))
		row[0] = strconv.Itoa(n)
		if rec, ok := bySlot[n]; ok {
			arrival := rec.ArrivalTime.In(loc)
			row[1] = rec.VehicleType.String()
			row[2] = rec.VehicleNumber
			row[3] = arrival.Format(parking.DateLayout)
			row[4] = arrival.Format(parking.ClockLayout)
			if !rec.ExpectedPickup.IsZero() {
				pickup := rec.ExpectedPickup.In(loc)
				row[5] = pickup.Format(parking.DateLayout)
				row[6] = pickup.Format(parking.ClockLayout)
			}
			row[7] = arrival.Format(parking.WeekdayLayout)
			row[8] = "0.0"
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTable returns the occupied rows of a table. Columns are located by
// header name. Rows that cannot be parsed are logged and skipped.
func ReadTable(ctx context.Context, r io.Reader, loc *time.Location) ([]parking.SlotRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrMalformedTable, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colSlot, colVehicleType, colVehicleNumber, colArrivalDate, colArrivalTime} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedTable, required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []parking.SlotRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logging.Warn(ctx).Err(err).Int("line", line).Msg("Skipping unreadable parking row")
			continue
		}

		vehicleType := field(row, colVehicleType)
		vehicleNumber := field(row, colVehicleNumber)
		if vehicleType == "" || vehicleNumber == "" {
			continue
		}

		rec, err := parseRecord(row, field, loc)
		if err != nil {
			logging.Warn(ctx).Err(err).Int("line", line).Msg("Skipping malformed parking row")
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRecord(row []string, field func([]string, string) string, loc *time.Location) (parking.SlotRecord, error) {
	number, err := strconv.Atoi(field(row, colSlot))
	if err != nil {
		return parking.SlotRecord{}, fmt.Errorf("slot: %w", err)
	}
	vehicleType, err := tariff.ParseVehicleType(field(row, colVehicleType))
	if err != nil {
		return parking.SlotRecord{}, err
	}
	arrival, err := parking.ParseDateTime(field(row, colArrivalDate), field(row, colArrivalTime), loc)
	if err != nil {
		return parking.SlotRecord{}, fmt.Errorf("arrival: %w", err)
	}

	rec := parking.SlotRecord{
		Number:        number,
		VehicleType:   vehicleType,
		VehicleNumber: field(row, colVehicleNumber),
		ArrivalTime:   arrival,
	}

	pickupDate, pickupClock := field(row, colExpectedPickupDate), field(row, colExpectedPickupTime)
	if pickupDate != "" || pickupClock != "" {
		rec.ExpectedPickup, err = parking.ParseDateTime(pickupDate, pickupClock, loc)
		if err != nil {
			return parking.SlotRecord{}, fmt.Errorf("expected pickup: %w", err)
		}
	}
	return rec, nil
}
