package parking

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes the live state of a Service to Prometheus. Values are
// read at scrape time, so they always match the registry.
type Collector struct {
	service *Service

	slots        *prometheus.Desc
	revenue      *prometheus.Desc
	transactions *prometheus.Desc
	occupancy    *prometheus.Desc
}

func NewCollector(service *Service) *Collector {
	return &Collector{
		service: service,
		slots: prometheus.NewDesc("parking_slots",
			"Number of parking slots by status.",
			[]string{"status"}, nil),
		revenue: prometheus.NewDesc("parking_revenue",
			"Revenue recorded in the transaction ledger.",
			nil, nil),
		transactions: prometheus.NewDesc("parking_transactions",
			"Number of completed transactions in the ledger.",
			nil, nil),
		occupancy: prometheus.NewDesc("parking_occupancy_rate_percent",
			"Share of slots currently occupied.",
			nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.slots
	ch <- c.revenue
	ch <- c.transactions
	ch <- c.occupancy
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.service.Statistics()

	ch <- prometheus.MustNewConstMetric(c.slots, prometheus.GaugeValue, float64(stats.AvailableCount), StatusAvailable.String())
	ch <- prometheus.MustNewConstMetric(c.slots, prometheus.GaugeValue, float64(stats.OccupiedCount), StatusOccupied.String())
	ch <- prometheus.MustNewConstMetric(c.slots, prometheus.GaugeValue, float64(stats.ReservedCount), StatusReserved.String())
	ch <- prometheus.MustNewConstMetric(c.revenue, prometheus.GaugeValue, stats.TotalRevenue)
	ch <- prometheus.MustNewConstMetric(c.transactions, prometheus.GaugeValue, float64(stats.TransactionCount))
	ch <- prometheus.MustNewConstMetric(c.occupancy, prometheus.GaugeValue, stats.OccupancyRate)
}
