package parking

import (
	"slices"
	"time"

	"smart-parking/internal/tariff"
)

// Transaction is one completed, billed occupancy.
type Transaction struct {
	ID            string             `json:"id"`
	SlotNumber    int                `json:"slot_number"`
	VehicleType   tariff.VehicleType `json:"vehicle_type"`
	VehicleNumber string             `json:"vehicle_number"`
	ArrivalTime   time.Time          `json:"arrival_time"`
	DepartureTime time.Time          `json:"departure_time"`
	Amount        float64            `json:"amount"`
	Timestamp     time.Time          `json:"timestamp"`
}

// Ledger is the append-only history of completed occupancies. Revenue is
// kept as a running sum of every recorded amount.
type Ledger struct {
	transactions []Transaction
	revenue      float64
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Record(tx Transaction) {
	l.transactions = append(l.transactions, tx)
	l.revenue += tx.Amount
}

func (l *Ledger) Revenue() float64 {
	return l.revenue
}

func (l *Ledger) Count() int {
	return len(l.transactions)
}

// All returns the transactions in the order they were recorded.
func (l *Ledger) All() []Transaction {
	return slices.Clone(l.transactions)
}

// Recent returns up to limit transactions, latest departure first. A
// non-positive limit returns everything.
func (l *Ledger) Recent(limit int) []Transaction {
	sorted := slices.Clone(l.transactions)
	slices.SortStableFunc(sorted, func(a, b Transaction) int {
		return b.DepartureTime.Compare(a.DepartureTime)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// Reset drops all history. Only the administrative clear uses it.
func (l *Ledger) Reset() {
	l.transactions = nil
	l.revenue = 0
}
