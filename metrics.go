package simsig

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    signatureCounter prometheus.Counter
//	    batchHistogram   prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSignature(duration time.Duration) {
//	    p.signatureCounter.Inc()
//	    // ... record duration, etc.
//	}
type MetricsCollector interface {
	// RecordSignature is called after each signature computation.
	// duration is the time taken for the single document.
	RecordSignature(duration time.Duration)

	// RecordBatch is called after each batch operation.
	// count is the number of documents attempted, duration is the total
	// time taken, err is nil if every document succeeded.
	RecordBatch(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSignature(time.Duration)         {}
func (NoopMetricsCollector) RecordBatch(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SignatureCount      atomic.Int64
	SignatureTotalNanos atomic.Int64
	BatchCount          atomic.Int64
	BatchItems          atomic.Int64
	BatchErrors         atomic.Int64
	BatchTotalNanos     atomic.Int64
}

// RecordSignature implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSignature(duration time.Duration) {
	b.SignatureCount.Add(1)
	b.SignatureTotalNanos.Add(duration.Nanoseconds())
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count int, duration time.Duration, err error) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BatchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SignatureCount:    b.SignatureCount.Load(),
		SignatureAvgNanos: b.getAvgSignatureNanos(),
		BatchCount:        b.BatchCount.Load(),
		BatchItems:        b.BatchItems.Load(),
		BatchErrors:       b.BatchErrors.Load(),
		BatchAvgNanos:     b.getAvgBatchNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgSignatureNanos() int64 {
	count := b.SignatureCount.Load()
	if count == 0 {
		return 0
	}
	return b.SignatureTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgBatchNanos() int64 {
	count := b.BatchCount.Load()
	if count == 0 {
		return 0
	}
	return b.BatchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SignatureCount    int64
	SignatureAvgNanos int64
	BatchCount        int64
	BatchItems        int64
	BatchErrors       int64
	BatchAvgNanos     int64
}
