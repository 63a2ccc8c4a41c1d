package server

import (
	"context"
	"errors"
	"net/http"

	"smart-parking/internal/logging"
	"smart-parking/internal/parking"
	"smart-parking/internal/tariff"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrNoCapacity), errors.Is(err, parking.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, parking.ErrSlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrInvalidInput), errors.Is(err, tariff.ErrUnknownVehicleType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Error(ctx).Err(err).Msg("Request failed")
		WriteError(ctx, w, status, "Internal server error")
		return
	}
	WriteError(ctx, w, status, err.Error())
}
