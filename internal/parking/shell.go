package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"smart-parking/internal/tariff"
)

// Shell is the line-oriented operator console.
type Shell struct {
	service   *InstrumentedService
	scanner   *bufio.Scanner
	out       io.Writer
	location  *time.Location
	telemetry *TelemetryProvider
}

func NewShell(service *InstrumentedService, telemetry *TelemetryProvider, in io.Reader, out io.Writer, location *time.Location) *Shell {
	if location == nil {
		location = time.Local
	}
	return &Shell{
		service:   service,
		scanner:   bufio.NewScanner(in),
		out:       out,
		location:  location,
		telemetry: telemetry,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil {
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(args ...any) {
	fmt.Fprintln(s.out, args...)
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "park":
		s.handlePark(ctx, parts)
	case "reserve":
		s.handleReserve(ctx, parts)
	case "leave":
		s.handleLeave(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "slot":
		s.handleSlot(parts)
	case "search":
		s.handleSearch(ctx, parts)
	case "stats":
		s.handleStats(ctx)
	case "transactions":
		s.handleTransactions(parts)
	case "rates":
		s.handleRates()
	case "holidays":
		s.handleHolidays()
	case "clear_all":
		s.handleClearAll(ctx, parts)
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

// reportPersistence prints a warning when the change was kept in memory but
// could not be saved.
func (s *Shell) reportPersistence(err error) {
	if errors.Is(err, ErrPersistence) {
		s.printf("Warning: %s\n", err.Error())
	}
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	if len(parts) != 7 {
		s.println("Usage: park <Car|Bike|Truck> <vehicle_number> <arrival dd-mm-yy> <HH:MM> <pickup dd-mm-yy> <HH:MM>")
		return
	}

	vehicleType, err := tariff.ParseVehicleType(parts[1])
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}
	arrival, err := ParseDateTime(parts[3], parts[4], s.location)
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}
	pickup, err := ParseDateTime(parts[5], parts[6], s.location)
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}

	slotNumber, err := s.service.Park(ctx, ParkRequest{
		VehicleType:    vehicleType,
		VehicleNumber:  parts[2],
		ArrivalTime:    arrival,
		ExpectedPickup: pickup,
	})
	if !IsCommitted(err) {
		if errors.Is(err, ErrNoCapacity) {
			s.println("Sorry, parking lot is full")
			return
		}
		s.printf("Error: %s\n", err.Error())
		return
	}

	s.printf("Allocated slot number: %d\n", slotNumber)
	s.reportPersistence(err)
}

func (s *Shell) handleReserve(ctx context.Context, parts []string) {
	if len(parts) != 6 {
		s.println("Usage: reserve <Car|Bike|Truck> <vehicle_number> <dd-mm-yy> <HH:MM> <hours>")
		return
	}

	vehicleType, err := tariff.ParseVehicleType(parts[1])
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}
	reservedFor, err := ParseDateTime(parts[3], parts[4], s.location)
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}
	hours, err := strconv.Atoi(parts[5])
	if err != nil {
		s.println("Invalid duration")
		return
	}

	slotNumber, err := s.service.Reserve(ctx, ReserveRequest{
		VehicleType:     vehicleType,
		VehicleNumber:   parts[2],
		ReservationTime: reservedFor,
		DurationHours:   hours,
	})
	if !IsCommitted(err) {
		if errors.Is(err, ErrNoCapacity) {
			s.println("Sorry, parking lot is full")
			return
		}
		s.printf("Error: %s\n", err.Error())
		return
	}

	s.printf("Reserved slot number: %d\n", slotNumber)
	s.reportPersistence(err)
}

func (s *Shell) handleLeave(ctx context.Context, parts []string) {
	if len(parts) != 4 {
		s.println("Usage: leave <slot_number> <departure dd-mm-yy> <HH:MM>")
		return
	}

	slotNumber, err := strconv.Atoi(parts[1])
	if err != nil {
		s.println("Invalid slot number")
		return
	}
	departure, err := ParseDateTime(parts[2], parts[3], s.location)
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}

	receipt, err := s.service.Remove(ctx, slotNumber, departure)
	if !IsCommitted(err) {
		s.printf("Error: %s\n", err.Error())
		return
	}

	s.printBill(receipt)
	s.printf("Slot number %d is free\n", slotNumber)
	s.reportPersistence(err)
}

func (s *Shell) printBill(r *Receipt) {
	s.println("========== BILL ==========")
	s.printf("Vehicle Type: %s\n", r.VehicleType)
	s.printf("Vehicle Number: %s\n", r.VehicleNumber)
	s.printf("Arrival: %s\n", FormatDateTime(r.ArrivalTime))
	s.printf("Departure: %s\n", FormatDateTime(r.DepartureTime))
	s.printf("Total Hours: %.1f\n", r.DurationHours)
	s.println("--------------------------")
	s.printf("Standard Hours (%d hrs): Rs.%.2f\n", r.StandardHours, r.StandardCharge)
	if r.RushHours > 0 {
		s.printf("Rush Hours (%d hrs): Rs.%.2f\n", r.RushHours, r.RushCharge)
	}
	s.printf("Night Hours (%d hrs): Rs.%.2f\n", r.NightHours, r.NightCharge)
	s.println("--------------------------")
	s.printf("TOTAL CHARGE: Rs.%.2f\n", r.Total)
	s.println("==========================")
}

func (s *Shell) printSlots(slots []Slot) {
	s.println("Slot No.\tStatus\t\tType\tRegistration No\tArrival\t\tPickup")
	for _, slot := range slots {
		arrival := "-"
		if !slot.ArrivalTime.IsZero() {
			arrival = FormatDateTime(slot.ArrivalTime)
		}
		pickup := "-"
		if !slot.ExpectedPickup.IsZero() {
			pickup = FormatDateTime(slot.ExpectedPickup)
		}
		s.printf("%d\t\t%s\t%s\t%s\t%s\t%s\n", slot.Number, slot.Status, slot.Vehicle.Type, slot.Vehicle.RegistrationNumber, arrival, pickup)
	}
}

func (s *Shell) handleStatus(ctx context.Context) {
	var held []Slot
	for _, slot := range s.service.Slots(ctx) {
		if !slot.IsAvailable() {
			held = append(held, slot)
		}
	}

	if len(held) == 0 {
		s.println("Parking lot is empty")
		return
	}
	s.printSlots(held)
}

func (s *Shell) handleSlot(parts []string) {
	if len(parts) != 2 {
		s.println("Usage: slot <slot_number>")
		return
	}

	slotNumber, err := strconv.Atoi(parts[1])
	if err != nil {
		s.println("Invalid slot number")
		return
	}

	slot, err := s.service.Slot(slotNumber)
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}
	if slot.IsAvailable() {
		s.printf("Slot %d is available\n", slot.Number)
		return
	}
	s.printSlots([]Slot{slot})
}

func (s *Shell) handleSearch(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.println("Usage: search <vehicle_number_fragment>")
		return
	}

	matches := s.service.Search(ctx, parts[1])
	if len(matches) == 0 {
		s.println("Not found")
		return
	}
	s.printSlots(matches)
}

func (s *Shell) handleStats(ctx context.Context) {
	stats := s.service.Statistics(ctx)
	s.printf("Total slots: %d\n", stats.TotalSlots)
	s.printf("Available: %d\n", stats.AvailableCount)
	s.printf("Occupied: %d\n", stats.OccupiedCount)
	s.printf("Reserved: %d\n", stats.ReservedCount)
	s.printf("Occupancy: %.1f%%\n", stats.OccupancyRate)
	s.printf("Revenue: Rs.%.2f\n", stats.TotalRevenue)
	s.printf("Transactions: %d\n", stats.TransactionCount)
}

func (s *Shell) handleTransactions(parts []string) {
	limit := DefaultRecentLimit
	if len(parts) == 2 {
		n, err := strconv.Atoi(parts[1])
		if err != nil || n <= 0 {
			s.println("Invalid limit")
			return
		}
		limit = n
	}

	txs := s.service.RecentTransactions(limit)
	if len(txs) == 0 {
		s.println("No transactions")
		return
	}

	s.println("Slot No.\tRegistration No\tArrival\t\tDeparture\tAmount")
	for _, tx := range txs {
		s.printf("%d\t\t%s\t%s\t%s\tRs.%.2f\n", tx.SlotNumber, tx.VehicleNumber,
			FormatDateTime(tx.ArrivalTime), FormatDateTime(tx.DepartureTime), tx.Amount)
	}
}

func (s *Shell) handleRates() {
	rates := s.service.Rates()
	for _, vt := range tariff.VehicleTypes() {
		s.printf("%s: Rs.%.2f/hr standard, +Rs.%.2f/hr rush\n", vt, rates.Standard[vt], rates.RushSurcharge[vt])
	}
	s.printf("Night (23:00-05:00): Rs.%.2f/hr for all vehicles\n", rates.Night)
}

func (s *Shell) handleHolidays() {
	for _, h := range s.service.Holidays() {
		s.printf("%s\t%02d:00-%02d:00\t%s\n", h.Date.Format("02-01-2006"), h.RushFrom, h.RushTo, h.Name)
	}
}

func (s *Shell) handleClearAll(ctx context.Context, parts []string) {
	if len(parts) != 2 || parts[1] != "confirm" {
		s.println("This removes every vehicle and all transactions. Run: clear_all confirm")
		return
	}

	err := s.service.ClearAll(ctx)
	if !IsCommitted(err) {
		s.printf("Error: %s\n", err.Error())
		return
	}
	s.println("All parking data cleared")
	s.reportPersistence(err)
}
