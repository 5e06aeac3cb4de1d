// Package pool provides a fixed-capacity pool of pre-allocated audio buffers
// so the real-time processing path never allocates per chunk.
package pool

import (
	"fmt"
	"sync/atomic"
)

// ErrExhausted is returned by Acquire when every buffer is checked out
var ErrExhausted = fmt.Errorf("buffer pool exhausted")

// Config contains buffer pool configuration
type Config struct {
	PoolSize   int // Number of buffers to pre-allocate
	BufferSize int // Samples per buffer
}

// Stats tracks pool usage counters
type Stats struct {
	TotalAcquisitions  uint64
	FailedAcquisitions uint64
	CurrentInUse       int
	PeakInUse          int
}

// Pool is a thread-safe fixed-capacity set of pre-sized float buffers.
// All buffers are allocated up front; Acquire and Release only move
// ownership through a channel.
type Pool struct {
	config Config
	free   chan []float32

	totalAcquisitions  atomic.Uint64
	failedAcquisitions atomic.Uint64
	inUse              atomic.Int64
	peakInUse          atomic.Int64
}

// New creates a pool with all buffers pre-allocated
func New(config Config) (*Pool, error) {
	if config.PoolSize <= 0 || config.BufferSize <= 0 {
		return nil, fmt.Errorf("invalid pool configuration: pool_size=%d buffer_size=%d",
			config.PoolSize, config.BufferSize)
	}

	p := &Pool{
		config: config,
		free:   make(chan []float32, config.PoolSize),
	}

	for i := 0; i < config.PoolSize; i++ {
		p.free <- make([]float32, config.BufferSize)
	}

	return p, nil
}

// Acquire checks out a buffer, returning ErrExhausted when none is free.
// The returned buffer retains whatever the previous holder wrote; callers
// overwrite it before use.
func (p *Pool) Acquire() ([]float32, error) {
	select {
	case buf := <-p.free:
		p.totalAcquisitions.Add(1)
		current := p.inUse.Add(1)
		for {
			peak := p.peakInUse.Load()
			if current <= peak || p.peakInUse.CompareAndSwap(peak, current) {
				break
			}
		}
		return buf, nil
	default:
		p.failedAcquisitions.Add(1)
		return nil, ErrExhausted
	}
}

// Release returns a buffer to the pool. Buffers not obtained from Acquire,
// or released twice, are rejected.
func (p *Pool) Release(buf []float32) error {
	if len(buf) != p.config.BufferSize {
		return fmt.Errorf("buffer size mismatch: expected %d, got %d", p.config.BufferSize, len(buf))
	}

	select {
	case p.free <- buf:
		p.inUse.Add(-1)
		return nil
	default:
		return fmt.Errorf("release on full pool: buffer was not acquired from this pool")
	}
}

// BufferSize returns the configured per-buffer sample count
func (p *Pool) BufferSize() int {
	return p.config.BufferSize
}

// Available returns the number of buffers currently free
func (p *Pool) Available() int {
	return len(p.free)
}

// Stats returns a snapshot of usage counters
func (p *Pool) Stats() Stats {
	return Stats{
		TotalAcquisitions:  p.totalAcquisitions.Load(),
		FailedAcquisitions: p.failedAcquisitions.Load(),
		CurrentInUse:       int(p.inUse.Load()),
		PeakInUse:          int(p.peakInUse.Load()),
	}
}
