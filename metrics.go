package sparsebloom

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting filter metrics.
// Implement this interface to integrate with monitoring systems; the
// promcollector package provides a Prometheus implementation.
//
// Collectors are called synchronously from filter operations and must be
// cheap.
type MetricsCollector interface {
	// RecordInsert is called after each insert. newBits is the number of
	// probe bits that flipped from 0 to 1.
	RecordInsert(newBits int)

	// RecordQuery is called after each membership test.
	RecordQuery(hit bool)

	// RecordPromotion is called after a dense filter is promoted.
	// blocks is the number of allocated blocks in the result.
	RecordPromotion(blocks int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(int)                   {}
func (NoopMetricsCollector) RecordQuery(bool)                   {}
func (NoopMetricsCollector) RecordPromotion(int, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	InsertCount         atomic.Int64
	BitsSet             atomic.Int64
	QueryCount          atomic.Int64
	QueryHits           atomic.Int64
	PromotionCount      atomic.Int64
	PromotedBlocks      atomic.Int64
	PromotionTotalNanos atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(newBits int) {
	b.InsertCount.Add(1)
	b.BitsSet.Add(int64(newBits))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(hit bool) {
	b.QueryCount.Add(1)
	if hit {
		b.QueryHits.Add(1)
	}
}

// RecordPromotion implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPromotion(blocks int, duration time.Duration) {
	b.PromotionCount.Add(1)
	b.PromotedBlocks.Add(int64(blocks))
	b.PromotionTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		InsertCount:    b.InsertCount.Load(),
		BitsSet:        b.BitsSet.Load(),
		QueryCount:     b.QueryCount.Load(),
		QueryHits:      b.QueryHits.Load(),
		PromotionCount: b.PromotionCount.Load(),
		PromotedBlocks: b.PromotedBlocks.Load(),
	}
	if s.QueryCount > 0 {
		s.HitRatio = float64(s.QueryHits) / float64(s.QueryCount)
	}
	if s.PromotionCount > 0 {
		s.PromotionAvgNanos = b.PromotionTotalNanos.Load() / s.PromotionCount
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount       int64
	BitsSet           int64
	QueryCount        int64
	QueryHits         int64
	HitRatio          float64
	PromotionCount    int64
	PromotedBlocks    int64
	PromotionAvgNanos int64
}
