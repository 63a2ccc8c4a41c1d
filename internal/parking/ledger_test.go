package parking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLedgerRevenueIsRunningSum(t *testing.T) {
	l := NewLedger()
	l.Record(Transaction{ID: "a", Amount: 400})
	l.Record(Transaction{ID: "b", Amount: 450.5})
	l.Record(Transaction{ID: "c", Amount: 0})

	assert.InDelta(t, 850.5, l.Revenue(), 1e-9)
	assert.Equal(t, 3, l.Count())
	assert.Equal(t, []string{"a", "b", "c"}, ids(l.All()))
}

func TestLedgerRecentOrdersByDeparture(t *testing.T) {
	base := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	l := NewLedger()
	l.Record(Transaction{ID: "early", DepartureTime: base.Add(1 * time.Hour)})
	l.Record(Transaction{ID: "late", DepartureTime: base.Add(5 * time.Hour)})
	l.Record(Transaction{ID: "middle", DepartureTime: base.Add(3 * time.Hour)})
	l.Record(Transaction{ID: "late-twin", DepartureTime: base.Add(5 * time.Hour)})

	assert.Equal(t, []string{"late", "late-twin", "middle", "early"}, ids(l.Recent(0)))
	assert.Equal(t, []string{"late", "late-twin"}, ids(l.Recent(2)))
	assert.Len(t, l.Recent(10), 4)
}

func TestLedgerReset(t *testing.T) {
	l := NewLedger()
	l.Record(Transaction{ID: "a", Amount: 100})

	l.Reset()

	assert.Zero(t, l.Revenue())
	assert.Zero(t, l.Count())
	assert.Empty(t, l.Recent(5))
}

func ids(txs []Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}
