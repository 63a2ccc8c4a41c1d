package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"smart-parking/internal/parking"
	"smart-parking/internal/tariff"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// ArrivalTime defaults to the server clock when omitted.
type ParkVehicleRequest struct {
	VehicleType    string    `json:"vehicle_type"`
	VehicleNumber  string    `json:"vehicle_number"`
	ArrivalTime    time.Time `json:"arrival_time"`
	ExpectedPickup time.Time `json:"expected_pickup"`
}

type ReserveSlotRequest struct {
	VehicleType     string    `json:"vehicle_type"`
	VehicleNumber   string    `json:"vehicle_number"`
	ReservationTime time.Time `json:"reservation_time"`
	DurationHours   int       `json:"duration_hours"`
}

// DepartureTime defaults to the server clock when omitted.
type RemoveVehicleRequest struct {
	SlotNumber    int       `json:"slot_number"`
	DepartureTime time.Time `json:"departure_time"`
}

type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

type SlotAssignmentResponse struct {
	SlotNumber    int                `json:"slot_number"`
	VehicleType   tariff.VehicleType `json:"vehicle_type"`
	VehicleNumber string             `json:"vehicle_number"`
}

type StatusResponse struct {
	Capacity  int            `json:"capacity"`
	Available int            `json:"available"`
	Occupied  int            `json:"occupied"`
	Reserved  int            `json:"reserved"`
	Slots     []parking.Slot `json:"slots"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Matches []parking.Slot `json:"matches"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

// WriteCommitted reports a mutation that took effect. A persistence error is
// surfaced as a warning next to the result.
func WriteCommitted(ctx context.Context, w http.ResponseWriter, message string, data any, persistErr error) {
	resp := Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	}
	if persistErr != nil {
		resp.Warning = persistErr.Error()
	}
	WriteJSON(w, http.StatusOK, resp)
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
