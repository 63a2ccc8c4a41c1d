package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedService struct {
	*Service
	telemetry *TelemetryProvider

	// Metrics
	parkingOperations     metric.Int64Counter
	reservationOperations metric.Int64Counter
	removalOperations     metric.Int64Counter
	occupancyGauge        metric.Int64UpDownCounter
	reservedGauge         metric.Int64UpDownCounter
	revenueCounter        metric.Float64Counter
	operationDuration     metric.Float64Histogram
	totalSlotsGauge       metric.Int64UpDownCounter
}

func NewInstrumentedService(service *Service, telemetry *TelemetryProvider) (*InstrumentedService, error) {
	meter := telemetry.Meter()

	parkingOperations, err := meter.Int64Counter("parking_operations_total",
		metric.WithDescription("Total number of parking operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	reservationOperations, err := meter.Int64Counter("reservation_operations_total",
		metric.WithDescription("Total number of reservation operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	removalOperations, err := meter.Int64Counter("removal_operations_total",
		metric.WithDescription("Total number of remove-and-bill operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	reservedGauge, err := meter.Int64UpDownCounter("parking_lot_reserved",
		metric.WithDescription("Current number of reserved parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	revenueCounter, err := meter.Float64Counter("parking_revenue_total",
		metric.WithDescription("Total amount billed on vehicle removal"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64UpDownCounter("parking_lot_total_slots",
		metric.WithDescription("Total number of parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	is := &InstrumentedService{
		Service:               service,
		telemetry:             telemetry,
		parkingOperations:     parkingOperations,
		reservationOperations: reservationOperations,
		removalOperations:     removalOperations,
		occupancyGauge:        occupancyGauge,
		reservedGauge:         reservedGauge,
		revenueCounter:        revenueCounter,
		operationDuration:     operationDuration,
		totalSlotsGauge:       totalSlotsGauge,
	}

	ctx := context.Background()
	stats := service.Statistics()
	totalSlotsGauge.Add(ctx, int64(stats.TotalSlots))
	occupancyGauge.Add(ctx, int64(stats.OccupiedCount))
	reservedGauge.Add(ctx, int64(stats.ReservedCount))

	return is, nil
}

// recordOutcome tags the span and metric labels with the result. A
// persistence failure still counts as a committed operation.
func recordOutcome(span trace.Span, labels []attribute.KeyValue, err error) []attribute.KeyValue {
	switch {
	case err == nil:
		return append(labels, attribute.String("status", "success"))
	case errors.Is(err, ErrPersistence):
		span.RecordError(err)
		span.AddEvent("persistence_failed")
		return append(labels, attribute.String("status", "unpersisted"))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return append(labels, attribute.String("status", "failed"))
	}
}

func (is *InstrumentedService) Park(ctx context.Context, req ParkRequest) (int, error) {
	tracer := is.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.park",
		trace.WithAttributes(
			attribute.String("vehicle.type", string(req.VehicleType)),
			attribute.String("vehicle.registration_number", req.VehicleNumber),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_available_slot")

	slotNumber, err := is.Service.Park(ctx, req)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
		attribute.String("vehicle_type", string(req.VehicleType)),
	}
	labels = recordOutcome(span, labels, err)

	if IsCommitted(err) {
		span.SetAttributes(attribute.Int("allocated_slot_number", slotNumber))
		span.AddEvent("slot_allocated", trace.WithAttributes(
			attribute.Int("slot_number", slotNumber),
		))
		is.occupancyGauge.Add(ctx, 1)
	}

	is.parkingOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	is.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return slotNumber, err
}

func (is *InstrumentedService) Reserve(ctx context.Context, req ReserveRequest) (int, error) {
	tracer := is.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.reserve",
		trace.WithAttributes(
			attribute.String("vehicle.type", string(req.VehicleType)),
			attribute.String("vehicle.registration_number", req.VehicleNumber),
			attribute.Int("reservation.duration_hours", req.DurationHours),
		))
	defer span.End()

	start := time.Now()

	slotNumber, err := is.Service.Reserve(ctx, req)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "reserve"),
		attribute.String("vehicle_type", string(req.VehicleType)),
	}
	labels = recordOutcome(span, labels, err)

	if IsCommitted(err) {
		span.SetAttributes(attribute.Int("reserved_slot_number", slotNumber))
		is.reservedGauge.Add(ctx, 1)
	}

	is.reservationOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	is.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return slotNumber, err
}

func (is *InstrumentedService) Remove(ctx context.Context, slotNumber int, departure time.Time) (*Receipt, error) {
	tracer := is.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.remove",
		trace.WithAttributes(
			attribute.Int("slot_number", slotNumber),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("billing_slot")

	receipt, err := is.Service.Remove(ctx, slotNumber, departure)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "remove"),
	}
	labels = recordOutcome(span, labels, err)

	if receipt != nil {
		labels = append(labels, attribute.String("vehicle_type", string(receipt.VehicleType)))
		span.SetAttributes(
			attribute.String("vehicle.registration_number", receipt.VehicleNumber),
			attribute.String("transaction.id", receipt.ID),
			attribute.Float64("bill.total", receipt.Total),
			attribute.Int("bill.rush_hours", receipt.RushHours),
			attribute.Int("bill.night_hours", receipt.NightHours),
		)
		span.AddEvent("slot_released")
		is.occupancyGauge.Add(ctx, -1)
		is.revenueCounter.Add(ctx, receipt.Total, metric.WithAttributes(
			attribute.String("vehicle_type", string(receipt.VehicleType)),
		))
	}

	is.removalOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	is.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return receipt, err
}

func (is *InstrumentedService) ClearAll(ctx context.Context) error {
	tracer := is.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.clear_all")
	defer span.End()

	before, err := is.Service.clearAll(ctx)
	recordOutcome(span, nil, err)

	if IsCommitted(err) {
		is.occupancyGauge.Add(ctx, -int64(before.OccupiedCount))
		is.reservedGauge.Add(ctx, -int64(before.ReservedCount))
		span.AddEvent("lot_cleared", trace.WithAttributes(
			attribute.Int("freed_slots", before.OccupiedCount+before.ReservedCount),
		))
	}

	return err
}

func (is *InstrumentedService) Search(ctx context.Context, query string) []Slot {
	tracer := is.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.search",
		trace.WithAttributes(
			attribute.String("query", query),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("searching_by_registration")

	matches := is.Service.Search(query)

	duration := time.Since(start).Seconds()

	span.SetAttributes(attribute.Int("match_count", len(matches)))

	status := "found"
	if len(matches) == 0 {
		span.AddEvent("vehicle_not_found")
		status = "not_found"
	}

	labels := []attribute.KeyValue{
		attribute.String("operation", "search"),
		attribute.String("status", status),
	}

	is.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return matches
}

func (is *InstrumentedService) Slots(ctx context.Context) []Slot {
	tracer := is.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.get_status")
	defer span.End()

	start := time.Now()

	slots := is.Service.Slots()

	duration := time.Since(start).Seconds()

	span.SetAttributes(attribute.Int("total_capacity", len(slots)))

	labels := []attribute.KeyValue{
		attribute.String("operation", "get_status"),
		attribute.String("status", "success"),
	}

	is.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return slots
}

func (is *InstrumentedService) Statistics(ctx context.Context) Statistics {
	_, span := is.telemetry.Tracer().Start(ctx, "parking_lot.statistics")
	defer span.End()

	stats := is.Service.Statistics()
	span.SetAttributes(
		attribute.Int("available_count", stats.AvailableCount),
		attribute.Int("occupied_count", stats.OccupiedCount),
		attribute.Int("reserved_count", stats.ReservedCount),
	)
	return stats
}
