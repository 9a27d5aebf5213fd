package monitoring

import (
	"sync/atomic"
	"time"
)

// Collector tracks service counters. All methods are safe for concurrent
// use from handlers and the model watcher.
type Collector struct {
	startedAt time.Time

	predictRequests   atomic.Int64
	recordsScored     atomic.Int64
	validationRejects atomic.Int64
	cacheHits         atomic.Int64
	modelReloads      atomic.Int64
}

// Snapshot is a point-in-time copy of the counters, shaped for JSON.
type Snapshot struct {
	UptimeSeconds     float64 `json:"uptime_seconds"`
	PredictRequests   int64   `json:"predict_requests"`
	RecordsScored     int64   `json:"records_scored"`
	ValidationRejects int64   `json:"validation_rejects"`
	CacheHits         int64   `json:"cache_hits"`
	ModelReloads      int64   `json:"model_reloads"`
}

var defaultCollector = NewCollector()

// Default returns the process-wide collector.
func Default() *Collector {
	return defaultCollector
}

func NewCollector() *Collector {
	return &Collector{startedAt: time.Now()}
}

func (c *Collector) PredictRequest()     { c.predictRequests.Add(1) }
func (c *Collector) RecordsScored(n int) { c.recordsScored.Add(int64(n)) }
func (c *Collector) ValidationRejected() { c.validationRejects.Add(1) }
func (c *Collector) CacheHit()           { c.cacheHits.Add(1) }
func (c *Collector) ModelReloaded()      { c.modelReloads.Add(1) }

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		UptimeSeconds:     time.Since(c.startedAt).Seconds(),
		PredictRequests:   c.predictRequests.Load(),
		RecordsScored:     c.recordsScored.Load(),
		ValidationRejects: c.validationRejects.Load(),
		CacheHits:         c.cacheHits.Load(),
		ModelReloads:      c.modelReloads.Load(),
	}
}
