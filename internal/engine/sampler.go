package engine

import (
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MemorySample is one point-in-time process memory reading, retained
// in-memory for diagnostics in a bounded ring.
type MemorySample struct {
	At        time.Time
	AllocMB   float64
	SysMB     float64
	OverLimit bool
}

const ringCapacity = 64

// Sampler records process memory after every sub-batch and exposes both an
// in-memory diagnostic ring (always populated) and Prometheus gauges
// registered on its own Registry. Nothing in this module serves that
// registry over HTTP.
type Sampler struct {
	mu            sync.Mutex
	limitMB       int
	ring          []MemorySample
	next          int
	filled        bool
	allocGauge    prometheus.Gauge
	sysGauge      prometheus.Gauge
	overLimitFlag prometheus.Gauge
	Registry      *prometheus.Registry
}

// NewSampler creates a Sampler enforcing limitMB.
func NewSampler(limitMB int) *Sampler {
	reg := prometheus.NewRegistry()

	allocGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "repolizer_engine_memory_alloc_mb",
		Help: "Heap bytes allocated and in use, in MB, at the last sub-batch boundary.",
	})
	sysGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "repolizer_engine_memory_sys_mb",
		Help: "Total bytes obtained from the OS, in MB, at the last sub-batch boundary.",
	})
	overLimitFlag := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "repolizer_engine_memory_over_limit",
		Help: "1 when the last sample exceeded memory_limit_mb, 0 otherwise.",
	})
	reg.MustRegister(allocGauge, sysGauge, overLimitFlag)

	return &Sampler{
		limitMB:       limitMB,
		ring:          make([]MemorySample, ringCapacity),
		allocGauge:    allocGauge,
		sysGauge:      sysGauge,
		overLimitFlag: overLimitFlag,
		Registry:      reg,
	}
}

// Sample reads current process memory via runtime.MemStats, records it in
// the ring and the Prometheus gauges, and reports whether it exceeds the
// configured limit. Sampling failures are swallowed — runtime.ReadMemStats
// cannot itself fail, but this method never panics regardless.
func (s *Sampler) Sample() MemorySample {
	defer func() { _ = recover() }()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	sample := MemorySample{
		At:      time.Now(),
		AllocMB: float64(m.Alloc) / (1024 * 1024),
		SysMB:   float64(m.Sys) / (1024 * 1024),
	}
	sample.OverLimit = sample.AllocMB > float64(s.limitMB)

	s.mu.Lock()
	s.ring[s.next] = sample
	s.next = (s.next + 1) % len(s.ring)
	if s.next == 0 {
		s.filled = true
	}
	s.mu.Unlock()

	s.allocGauge.Set(sample.AllocMB)
	s.sysGauge.Set(sample.SysMB)
	if sample.OverLimit {
		s.overLimitFlag.Set(1)
	} else {
		s.overLimitFlag.Set(0)
	}

	return sample
}

// Recent returns the retained samples, oldest first.
func (s *Sampler) Recent() []MemorySample {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.filled {
		out := make([]MemorySample, s.next)
		copy(out, s.ring[:s.next])
		return out
	}

	out := make([]MemorySample, len(s.ring))
	copy(out, s.ring[s.next:])
	copy(out[len(s.ring)-s.next:], s.ring[:s.next])
	return out
}

// OverageRatio reports how far over the configured limit the most recent
// sample is, as a fraction (0 when at or under the limit). The Batch
// Runner uses this to proportionally tighten its inter-sub-batch pacing.
func (s *Sampler) OverageRatio() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.next - 1
	if idx < 0 {
		idx = len(s.ring) - 1
	}
	last := s.ring[idx]
	if s.limitMB <= 0 || last.AllocMB <= float64(s.limitMB) {
		return 0
	}
	return (last.AllocMB - float64(s.limitMB)) / float64(s.limitMB)
}
