package parking

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"smart-parking/internal/logging"
	"smart-parking/internal/tariff"
)

const (
	DefaultFlushTries    = 3
	defaultFlushInterval = 50 * time.Millisecond
	DefaultRecentLimit   = 10
)

type ParkRequest struct {
	VehicleType    tariff.VehicleType
	VehicleNumber  string
	ArrivalTime    time.Time
	ExpectedPickup time.Time
}

type ReserveRequest struct {
	VehicleType     tariff.VehicleType
	VehicleNumber   string
	ReservationTime time.Time
	DurationHours   int
}

type ServiceOption func(*Service)

// WithFlushRetry bounds how often a failed save is retried before the
// mutation is reported with ErrPersistence.
func WithFlushRetry(tries uint, initialInterval time.Duration) ServiceOption {
	return func(s *Service) {
		if tries > 0 {
			s.flushTries = tries
		}
		if initialInterval > 0 {
			s.flushInterval = initialInterval
		}
	}
}

// WithLocation makes loc the civil time zone of the lot. Every instant
// entering the service is converted to it, so billing bands and the saved
// table agree regardless of the offset a caller used.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// Service is the single entry point to the parking lot. Mutations are
// serialized and each successful one is flushed to the store before it
// returns. A failed flush does not undo the mutation: the result is
// returned together with an error wrapping ErrPersistence.
type Service struct {
	mu    sync.RWMutex
	lot   *ParkingLot
	store Store

	flushTries    uint
	flushInterval time.Duration
	location      *time.Location
}

// NewService wraps lot. A nil store disables persistence.
func NewService(lot *ParkingLot, store Store, opts ...ServiceOption) *Service {
	s := &Service{
		lot:           lot,
		store:         store,
		flushTries:    DefaultFlushTries,
		flushInterval: defaultFlushInterval,
		location:      time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore rehydrates occupied slots from the store. A missing table is
// created empty; rows that no longer fit the lot are skipped.
func (s *Service) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}

	records, err := s.store.Load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Info(ctx).Int("capacity", s.lot.Capacity()).Msg("No saved parking data, initializing an empty lot")
		return s.flush(ctx)
	}
	if err != nil {
		return fmt.Errorf("loading parking data: %w", err)
	}

	restored := 0
	for _, rec := range records {
		if !rec.VehicleType.Valid() {
			logging.Warn(ctx).Int("slot", rec.Number).Str("vehicle_type", string(rec.VehicleType)).Msg("Skipping saved slot with unknown vehicle type")
			continue
		}
		vehicle := NewVehicle(rec.VehicleType, rec.VehicleNumber)
		if err := s.lot.Restore(rec.Number, vehicle, s.local(rec.ArrivalTime), s.local(rec.ExpectedPickup)); err != nil {
			logging.Warn(ctx).Err(err).Int("slot", rec.Number).Msg("Skipping saved slot")
			continue
		}
		restored++
	}

	logging.Info(ctx).Int("occupied", restored).Msg("Restored parking data")
	return nil
}

func (s *Service) Park(ctx context.Context, req ParkRequest) (int, error) {
	if !req.VehicleType.Valid() {
		return 0, fmt.Errorf("%w: %q", tariff.ErrUnknownVehicleType, req.VehicleType)
	}
	vehicle := NewVehicle(req.VehicleType, req.VehicleNumber)
	if vehicle.RegistrationNumber == "" {
		return 0, fmt.Errorf("%w: vehicle number is required", ErrInvalidInput)
	}
	arrival, pickup := s.local(req.ArrivalTime), s.local(req.ExpectedPickup)
	if !pickup.After(arrival) {
		return 0, fmt.Errorf("%w: pickup time must be after arrival time", ErrInvalidState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slotNumber, err := s.lot.Park(vehicle, arrival, pickup)
	if err != nil {
		return 0, err
	}

	logging.Info(ctx).
		Int("slot", slotNumber).
		Str("vehicle_type", string(vehicle.Type)).
		Str("vehicle_number", vehicle.RegistrationNumber).
		Msg("Vehicle parked")

	return slotNumber, s.flush(ctx)
}

func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (int, error) {
	if !req.VehicleType.Valid() {
		return 0, fmt.Errorf("%w: %q", tariff.ErrUnknownVehicleType, req.VehicleType)
	}
	vehicle := NewVehicle(req.VehicleType, req.VehicleNumber)
	if vehicle.RegistrationNumber == "" {
		return 0, fmt.Errorf("%w: vehicle number is required", ErrInvalidInput)
	}
	if req.DurationHours <= 0 {
		return 0, fmt.Errorf("%w: reservation duration must be positive", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reservedFor := s.local(req.ReservationTime)
	slotNumber, err := s.lot.Reserve(vehicle, reservedFor, req.DurationHours)
	if err != nil {
		return 0, err
	}

	logging.Info(ctx).
		Int("slot", slotNumber).
		Str("vehicle_type", string(vehicle.Type)).
		Str("vehicle_number", vehicle.RegistrationNumber).
		Time("reserved_for", reservedFor).
		Int("hours", req.DurationHours).
		Msg("Slot reserved")

	return slotNumber, s.flush(ctx)
}

// Remove bills and frees an occupied slot. Departing at the arrival
// instant is allowed and bills nothing; departing before it is rejected.
func (s *Service) Remove(ctx context.Context, slotNumber int, departure time.Time) (*Receipt, error) {
	departure = s.local(departure)

	s.mu.Lock()
	defer s.mu.Unlock()

	slot, err := s.lot.Slot(slotNumber)
	if err != nil {
		return nil, err
	}
	if slot.Status == StatusOccupied && departure.Before(slot.ArrivalTime) {
		return nil, fmt.Errorf("%w: departure is before arrival", ErrInvalidState)
	}

	receipt, err := s.lot.Remove(slotNumber, departure)
	if err != nil {
		return nil, err
	}

	logging.Info(ctx).
		Int("slot", slotNumber).
		Str("vehicle_number", receipt.VehicleNumber).
		Str("transaction_id", receipt.ID).
		Float64("amount", receipt.Amount).
		Msg("Vehicle removed")

	return receipt, s.flush(ctx)
}

// ClearAll frees every slot and drops all transactions. Callers must get
// explicit confirmation first.
func (s *Service) ClearAll(ctx context.Context) error {
	_, err := s.clearAll(ctx)
	return err
}

// clearAll returns the statistics of the lot as it was just before it was
// cleared, read under the same write lock.
func (s *Service) clearAll(ctx context.Context) (Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.lot.Statistics()
	s.lot.ClearAll()
	logging.Warn(ctx).
		Int("freed_occupied", before.OccupiedCount).
		Int("freed_reserved", before.ReservedCount).
		Int("dropped_transactions", before.TransactionCount).
		Msg("All parking data cleared")

	return before, s.flush(ctx)
}

func (s *Service) Slot(number int) (Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lot.Slot(number)
}

func (s *Service) Slots() []Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lot.Slots()
}

func (s *Service) AvailableSlots() []Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lot.SlotsWithStatus(StatusAvailable)
}

func (s *Service) Search(query string) []Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lot.Search(query)
}

func (s *Service) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lot.Statistics()
}

func (s *Service) RecentTransactions(limit int) []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lot.RecentTransactions(limit)
}

func (s *Service) Transactions() []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lot.Transactions()
}

func (s *Service) Records() []SlotRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lot.Records()
}

func (s *Service) Location() *time.Location {
	return s.location
}

func (s *Service) Capacity() int {
	return s.lot.Capacity()
}

func (s *Service) Rates() tariff.Rates {
	return s.lot.Policy().Rates()
}

func (s *Service) Holidays() []tariff.Holiday {
	return s.lot.Policy().Calendar().Holidays()
}

// flush must be called with the write lock held so saves land in mutation
// order.
func (s *Service) flush(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	records := s.lot.Records()
	capacity := s.lot.Capacity()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.flushInterval
	bo.MaxInterval = 10 * s.flushInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, s.store.Save(ctx, capacity, records)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(s.flushTries),
	)
	if err != nil {
		logging.Error(ctx).Err(err).Msg("Failed to persist parking data")
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (s *Service) local(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(s.location)
}

// IsCommitted reports whether err still leaves the mutation applied, which
// is the case for a nil error or a persistence failure.
func IsCommitted(err error) bool {
	return err == nil || errors.Is(err, ErrPersistence)
}
