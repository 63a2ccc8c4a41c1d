package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"smart-parking/internal/logging"
	"smart-parking/internal/parking"
	"smart-parking/internal/storage"
	"smart-parking/internal/tariff"
)

type Handler struct {
	service     *parking.InstrumentedService
	serviceName string
	now         func() time.Time
}

func NewHandler(service *parking.InstrumentedService, serviceName string) *Handler {
	return &Handler{
		service:     service,
		serviceName: serviceName,
		now:         time.Now,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) ParkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ParkVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vehicleType, err := tariff.ParseVehicleType(req.VehicleType)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ExpectedPickup.IsZero() {
		WriteError(ctx, w, http.StatusBadRequest, "expected_pickup is required")
		return
	}
	if req.ArrivalTime.IsZero() {
		req.ArrivalTime = h.now()
	}

	slotNumber, err := h.service.Park(ctx, parking.ParkRequest{
		VehicleType:    vehicleType,
		VehicleNumber:  req.VehicleNumber,
		ArrivalTime:    req.ArrivalTime,
		ExpectedPickup: req.ExpectedPickup,
	})
	if !parking.IsCommitted(err) {
		writeServiceError(ctx, w, err)
		return
	}

	WriteCommitted(ctx, w, "Vehicle parked successfully", SlotAssignmentResponse{
		SlotNumber:    slotNumber,
		VehicleType:   vehicleType,
		VehicleNumber: parking.NewVehicle(vehicleType, req.VehicleNumber).RegistrationNumber,
	}, err)
}

func (h *Handler) ReserveSlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ReserveSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vehicleType, err := tariff.ParseVehicleType(req.VehicleType)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ReservationTime.IsZero() {
		WriteError(ctx, w, http.StatusBadRequest, "reservation_time is required")
		return
	}

	slotNumber, err := h.service.Reserve(ctx, parking.ReserveRequest{
		VehicleType:     vehicleType,
		VehicleNumber:   req.VehicleNumber,
		ReservationTime: req.ReservationTime,
		DurationHours:   req.DurationHours,
	})
	if !parking.IsCommitted(err) {
		writeServiceError(ctx, w, err)
		return
	}

	WriteCommitted(ctx, w, "Slot reserved successfully", SlotAssignmentResponse{
		SlotNumber:    slotNumber,
		VehicleType:   vehicleType,
		VehicleNumber: parking.NewVehicle(vehicleType, req.VehicleNumber).RegistrationNumber,
	}, err)
}

func (h *Handler) RemoveVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RemoveVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DepartureTime.IsZero() {
		req.DepartureTime = h.now()
	}

	receipt, err := h.service.Remove(ctx, req.SlotNumber, req.DepartureTime)
	if !parking.IsCommitted(err) {
		writeServiceError(ctx, w, err)
		return
	}

	WriteCommitted(ctx, w, "Vehicle removed successfully", receipt, err)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	slots := h.service.Slots(ctx)
	stats := h.service.Statistics(ctx)

	WriteSuccess(ctx, w, "Status retrieved successfully", StatusResponse{
		Capacity:  stats.TotalSlots,
		Available: stats.AvailableCount,
		Occupied:  stats.OccupiedCount,
		Reserved:  stats.ReservedCount,
		Slots:     slots,
	})
}

func (h *Handler) GetSlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	slotNumber, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Slot number must be an integer")
		return
	}

	slot, err := h.service.Slot(slotNumber)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, "Slot retrieved successfully", slot)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	matches := h.service.Search(ctx, query)
	if matches == nil {
		matches = []parking.Slot{}
	}

	WriteSuccess(ctx, w, "Search completed", SearchResponse{
		Query:   query,
		Matches: matches,
	})
}

func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	WriteSuccess(ctx, w, "Statistics retrieved successfully", h.service.Statistics(ctx))
}

// recentLimit reads the optional limit query parameter.
func recentLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return parking.DefaultRecentLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, ok := recentLimit(r)
	if !ok {
		WriteError(ctx, w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	txs := h.service.RecentTransactions(limit)
	if txs == nil {
		txs = []parking.Transaction{}
	}

	WriteSuccess(ctx, w, "Transactions retrieved successfully", txs)
}

func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, "Rates retrieved successfully", h.service.Rates())
}

func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, "Holidays retrieved successfully", h.service.Holidays())
}

func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Confirm {
		WriteError(ctx, w, http.StatusBadRequest, "Clearing all data requires confirm=true")
		return
	}

	err := h.service.ClearAll(ctx)
	if !parking.IsCommitted(err) {
		writeServiceError(ctx, w, err)
		return
	}

	WriteCommitted(ctx, w, "All parking data cleared", nil, err)
}

// Export streams the persisted table as CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var buf bytes.Buffer
	if err := storage.WriteTable(&buf, h.service.Capacity(), h.service.Records(), h.service.Location()); err != nil {
		logging.Error(ctx).Err(err).Msg("Failed to export parking table")
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to export parking data")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="parking_data.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ExportTransactions streams the most recent transactions as CSV, latest
// departure first.
func (h *Handler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, ok := recentLimit(r)
	if !ok {
		WriteError(ctx, w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	var buf bytes.Buffer
	if err := storage.WriteTransactions(&buf, h.service.RecentTransactions(limit), h.service.Location()); err != nil {
		logging.Error(ctx).Err(err).Msg("Failed to export transactions")
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to export transactions")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="parking_transactions.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
