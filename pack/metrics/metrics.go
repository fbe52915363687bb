// Package metrics exposes Pack's admission and scheduling counters over the
// teacher's registered-metric idiom (github.com/luxfi/geth/metrics), bridged
// to Prometheus by metrics/prometheus.Gatherer.
package metrics

import (
	gethmetrics "github.com/luxfi/geth/metrics"
	"github.com/luxfi/metric"
	luxadapter "github.com/luxfi/validator-core/metrics/gatherer"
	promadapter "github.com/luxfi/validator-core/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

// rejectCounterNames maps every reject InsertResult to its registered
// counter name, mirroring core/txpool/txpool.go's per-cause meter naming
// (queuedNofundsMeter, queuedRateLimitMeter, ...).
var rejectCounterNames = map[int8]string{
	-1:  "pack/reject/priority",
	-2:  "pack/reject/duplicate",
	-3:  "pack/reject/unaffordable",
	-4:  "pack/reject/addr_lut",
	-5:  "pack/reject/expired",
	-6:  "pack/reject/too_large",
	-7:  "pack/reject/account_cnt",
	-8:  "pack/reject/duplicate_acct",
	-9:  "pack/reject/estimation_fail",
	-10: "pack/reject/writes_sysvar",
}

// Metrics holds Pack's registered gauges/counters/timer, one instance per
// Pack, each on its own private registry so multiple Packs in one process
// (e.g. in tests) never collide on metric names.
type Metrics struct {
	registry gethmetrics.Registry

	acceptNonVote gethmetrics.Counter
	acceptVote    gethmetrics.Counter
	reject        map[int8]gethmetrics.Counter

	poolDepth      gethmetrics.Gauge
	microblockSize gethmetrics.Histogram
	scheduleTimer  gethmetrics.Timer
}

// New constructs a Metrics bound to a fresh private registry and registers
// every metric on it with the NewRegistered* constructors. Because the
// registry is always new, no name is ever already registered.
func New() *Metrics {
	r := gethmetrics.NewRegistry()
	m := &Metrics{
		registry:      r,
		acceptNonVote: gethmetrics.NewRegisteredCounter("pack/accept/nonvote", r),
		acceptVote:    gethmetrics.NewRegisteredCounter("pack/accept/vote", r),
		reject:        make(map[int8]gethmetrics.Counter, len(rejectCounterNames)),

		poolDepth:      gethmetrics.NewRegisteredGauge("pack/pool_depth", r),
		microblockSize: gethmetrics.NewRegisteredHistogram("pack/microblock_size", r, gethmetrics.NewExpDecaySample(1028, 0.015)),
		scheduleTimer:  gethmetrics.NewRegisteredTimer("pack/schedule_latency", r),
	}
	for code, name := range rejectCounterNames {
		m.reject[code] = gethmetrics.NewRegisteredCounter(name, r)
	}
	return m
}

// NewNoop returns a Metrics that still exercises the real registered-metric
// types (so Gatherer() is always safe to call) but is not intended to be
// observed; used as the default when a caller constructs a Pack without
// supplying its own Metrics.
func NewNoop() *Metrics {
	return New()
}

// voteTagger and codeTagger are the minimal interfaces of pack.InsertResult
// this package needs, avoiding an import of the pack package (metrics must
// not depend on its own consumer).
type voteTagger interface {
	IsVote() bool
}

type codeTagger interface {
	Int8() int8
}

// Accept records an admitted transaction.
func (m *Metrics) Accept(r voteTagger) {
	if r.IsVote() {
		m.acceptVote.Inc(1)
	} else {
		m.acceptNonVote.Inc(1)
	}
}

// Reject records a rejected transaction by its reject code.
func (m *Metrics) Reject(r codeTagger) {
	if c, ok := m.reject[r.Int8()]; ok {
		c.Inc(1)
	}
}

// SetPoolDepth records the current pool occupancy.
func (m *Metrics) SetPoolDepth(n int) {
	m.poolDepth.Update(int64(n))
}

// Microblock records a completed scheduling pass that produced n
// transactions.
func (m *Metrics) Microblock(n int) {
	m.microblockSize.Update(int64(n))
}

// ScheduleTimer returns the timer to wrap around a scheduling pass, e.g.
// `defer m.ScheduleTimer().UpdateSince(start)`.
func (m *Metrics) ScheduleTimer() gethmetrics.Timer {
	return m.scheduleTimer
}

// Registry exposes the underlying registered-metric registry, e.g. for
// wiring into a Gatherer.
func (m *Metrics) Registry() gethmetrics.Registry {
	return m.registry
}

// Gatherer bridges this Metrics' registry to prometheus.Gatherer, exactly
// as metrics/prometheus.Gatherer bridges the teacher's go-ethereum-style
// metrics registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return promadapter.NewGatherer(m.registry)
}

// LuxGatherer bridges this Metrics' registry to metric.Gatherer, the
// teacher's node-native metrics interface (metrics/gatherer.Gatherer),
// for validators embedding this module directly into a luxd-style node
// process rather than scraping it over /metrics.
func (m *Metrics) LuxGatherer() metric.Gatherer {
	return luxadapter.NewGatherer(m.registry)
}
