// Package realtime provides a ring-buffer-mediated ingestion stage that
// decouples an audio producer (such as an input-device callback) from the
// processing path consuming fixed-size chunks.
package realtime

import (
	"fmt"
	"math/bits"
	"time"
)

// Chunk is one fixed-size unit of audio moving through the ring
type Chunk struct {
	Data         []float32
	ValidSamples int
	Timestamp    time.Time
	FrameIndex   uint64
}

// Config contains processor configuration
type Config struct {
	// RingBufferSize is the chunk capacity of the ring; must be a power of two.
	RingBufferSize int

	// ChunkSize is the sample count per chunk, normally the engine hop size.
	ChunkSize int

	// Backpressure selects the full-ring policy: true blocks the producer
	// until space frees up, false drops the incoming chunk and counts it.
	Backpressure bool

	// EnableMetrics turns on throughput metric collection.
	EnableMetrics bool
}

// Processor queues audio chunks between one producer and one consumer.
// The channel-backed ring gives FIFO ordering and safe cross-goroutine
// handoff without locks on the hot path.
type Processor struct {
	config  Config
	ring    chan Chunk
	metrics *Metrics

	frameIndex uint64
	closed     chan struct{}
}

// NewProcessor creates a processor with a pre-sized ring
func NewProcessor(config Config) (*Processor, error) {
	if config.RingBufferSize <= 0 || bits.OnesCount(uint(config.RingBufferSize)) != 1 {
		return nil, fmt.Errorf("ring buffer size must be a power of two, got %d", config.RingBufferSize)
	}
	if config.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", config.ChunkSize)
	}

	p := &Processor{
		config: config,
		ring:   make(chan Chunk, config.RingBufferSize),
		closed: make(chan struct{}),
	}

	if config.EnableMetrics {
		p.metrics = newMetrics()
	}

	return p, nil
}

// Enqueue submits one chunk of audio. The samples are copied, so the caller
// keeps ownership of its buffer. Oversized input is rejected; when the ring
// is full the configured backpressure policy applies.
func (p *Processor) Enqueue(samples []float32) error {
	if len(samples) == 0 || len(samples) > p.config.ChunkSize {
		return fmt.Errorf("invalid chunk size: %d samples, chunk capacity %d",
			len(samples), p.config.ChunkSize)
	}

	chunk := Chunk{
		Data:         make([]float32, p.config.ChunkSize),
		ValidSamples: len(samples),
		Timestamp:    time.Now(),
		FrameIndex:   p.frameIndex,
	}
	copy(chunk.Data, samples)

	if p.config.Backpressure {
		select {
		case p.ring <- chunk:
		case <-p.closed:
			return fmt.Errorf("processor closed")
		}
	} else {
		select {
		case p.ring <- chunk:
		default:
			if p.metrics != nil {
				p.metrics.droppedChunks.Inc()
			}
			return fmt.Errorf("ring buffer full: chunk dropped")
		}
	}

	p.frameIndex++
	if p.metrics != nil {
		p.metrics.enqueuedChunks.Inc()
		p.metrics.queueDepth.Set(float64(len(p.ring)))
	}

	return nil
}

// TryDequeue returns the next chunk without blocking; ok is false when the
// ring is empty.
func (p *Processor) TryDequeue() (Chunk, bool) {
	select {
	case chunk := <-p.ring:
		p.observeDequeue(chunk)
		return chunk, true
	default:
		return Chunk{}, false
	}
}

// Dequeue blocks until a chunk is available or the processor is closed
func (p *Processor) Dequeue() (Chunk, bool) {
	select {
	case chunk := <-p.ring:
		p.observeDequeue(chunk)
		return chunk, true
	case <-p.closed:
		// Drain whatever was enqueued before the close
		select {
		case chunk := <-p.ring:
			p.observeDequeue(chunk)
			return chunk, true
		default:
			return Chunk{}, false
		}
	}
}

// Pending returns the number of queued chunks
func (p *Processor) Pending() int {
	return len(p.ring)
}

// Close stops the processor; blocked producers and consumers are released
func (p *Processor) Close() {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
}

func (p *Processor) observeDequeue(chunk Chunk) {
	if p.metrics == nil {
		return
	}
	p.metrics.dequeuedChunks.Inc()
	p.metrics.queueDepth.Set(float64(len(p.ring)))
	p.metrics.queueLatency.Observe(time.Since(chunk.Timestamp).Seconds())
}
