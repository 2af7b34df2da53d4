// Package poolprom exports pool gauges to prometheus. Register one Collector
// per process and pass it every pool worth watching.
package poolprom

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PoolLabel carries the pool name on every metric.
const PoolLabel = "pool"

// StatsProvider is the read-only slice of a pool the collector needs.
type StatsProvider interface {
	Name() string
	Count() int
	AvailableCount() int
	BorrowedCount() int
	WaitingCount() int
	Max() int
}

var (
	liveDesc = prometheus.NewDesc(
		"respool_live_resources",
		"resources the pool tracks, including ones being torn down",
		[]string{PoolLabel},
		prometheus.Labels{},
	)
	idleDesc = prometheus.NewDesc(
		"respool_idle_resources",
		"resources sitting in the pool ready to be borrowed",
		[]string{PoolLabel},
		prometheus.Labels{},
	)
	borrowedDesc = prometheus.NewDesc(
		"respool_borrowed_resources",
		"resources currently lent out",
		[]string{PoolLabel},
		prometheus.Labels{},
	)
	waitingDesc = prometheus.NewDesc(
		"respool_waiting_acquires",
		"borrow requests queued behind capacity",
		[]string{PoolLabel},
		prometheus.Labels{},
	)
	maxDesc = prometheus.NewDesc(
		"respool_max_resources",
		"configured ceiling, for showing percent used in dashboards",
		[]string{PoolLabel},
		prometheus.Labels{},
	)
)

// Collector reads pool stats on every scrape.
type Collector struct {
	pools []StatsProvider
}

// Make sure Collector implements prometheus.Collector.
var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(pools ...StatsProvider) *Collector {
	return &Collector{pools: pools}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- liveDesc
	ch <- idleDesc
	ch <- borrowedDesc
	ch <- waitingDesc
	ch <- maxDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, p := range c.pools {
		name := p.Name()
		ch <- prometheus.MustNewConstMetric(liveDesc, prometheus.GaugeValue, float64(p.Count()), name)
		ch <- prometheus.MustNewConstMetric(idleDesc, prometheus.GaugeValue, float64(p.AvailableCount()), name)
		ch <- prometheus.MustNewConstMetric(borrowedDesc, prometheus.GaugeValue, float64(p.BorrowedCount()), name)
		ch <- prometheus.MustNewConstMetric(waitingDesc, prometheus.GaugeValue, float64(p.WaitingCount()), name)
		ch <- prometheus.MustNewConstMetric(maxDesc, prometheus.GaugeValue, float64(p.Max()), name)
	}
}
