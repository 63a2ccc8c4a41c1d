package parking

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-parking/internal/tariff"
)

func TestCollectorReportsLiveState(t *testing.T) {
	svc := newTestService(t, 4, nil)
	ctx := context.Background()

	n, err := svc.Park(ctx, ParkRequest{VehicleType: tariff.Car, VehicleNumber: "A", ArrivalTime: tuesday(10, 0), ExpectedPickup: tuesday(12, 0)})
	require.NoError(t, err)
	_, err = svc.Park(ctx, ParkRequest{VehicleType: tariff.Truck, VehicleNumber: "T", ArrivalTime: tuesday(10, 0), ExpectedPickup: tuesday(12, 0)})
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, ReserveRequest{VehicleType: tariff.Bike, VehicleNumber: "B", ReservationTime: tuesday(18, 0), DurationHours: 1})
	require.NoError(t, err)
	_, err = svc.Remove(ctx, n, tuesday(12, 0))
	require.NoError(t, err)

	registry := prometheus.NewPedanticRegistry()
	require.NoError(t, registry.Register(NewCollector(svc)))

	expected := `
# HELP parking_slots Number of parking slots by status.
# TYPE parking_slots gauge
parking_slots{status="available"} 2
parking_slots{status="occupied"} 1
parking_slots{status="reserved"} 1
# HELP parking_revenue Revenue recorded in the transaction ledger.
# TYPE parking_revenue gauge
parking_revenue 400
# HELP parking_transactions Number of completed transactions in the ledger.
# TYPE parking_transactions gauge
parking_transactions 1
# HELP parking_occupancy_rate_percent Share of slots currently occupied.
# TYPE parking_occupancy_rate_percent gauge
parking_occupancy_rate_percent 25
`
	err = testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"parking_slots", "parking_revenue", "parking_transactions", "parking_occupancy_rate_percent")
	assert.NoError(t, err)
}
