// Package bench measures engine throughput under the access pattern the
// real-time path sees in production: repeated ProcessAudioChunk calls at
// fixed chunk sizes, fed through the realtime ingestion ring.
package bench

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/internal/engine"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/audio/realtime"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/logging"
)

// Config contains benchmark parameters
type Config struct {
	ChunkSizes     []int         // Chunk sizes to measure, in samples
	ChunksPerRun   int           // Chunks submitted per chunk size
	SampleRate     int           // Synthesized signal sample rate
	RingBufferSize int           // Realtime ring capacity (power of two)
	MasterCall     string        // Optional master call to score against
	MasterCallsDir string        // Where master calls live
	Timeout        time.Duration // Per-run watchdog
}

// DefaultConfig returns the standard 256/512/1024 sweep
func DefaultConfig() Config {
	return Config{
		ChunkSizes:     []int{256, 512, 1024},
		ChunksPerRun:   2000,
		SampleRate:     44100,
		RingBufferSize: 256,
		Timeout:        2 * time.Minute,
	}
}

// Result holds the measurements for one chunk size
type Result struct {
	ChunkSize       int           `json:"chunk_size" yaml:"chunk_size"`
	ChunksProcessed int           `json:"chunks_processed" yaml:"chunks_processed"`
	ChunksDropped   int           `json:"chunks_dropped" yaml:"chunks_dropped"`
	Throughput      float64       `json:"throughput_chunks_per_sec" yaml:"throughput_chunks_per_sec"`
	RealtimeFactor  float64       `json:"realtime_factor" yaml:"realtime_factor"`
	Latency         *LatencyStats `json:"latency_ms" yaml:"latency_ms"`
	FinalScore      float64       `json:"final_score" yaml:"final_score"`
}

// Summary aggregates all runs
type Summary struct {
	Results       []Result      `json:"results" yaml:"results"`
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`
}

// Runner executes throughput benchmarks against a fresh engine per chunk size
type Runner struct {
	config Config
	logger logging.Logger
}

// NewRunner creates a benchmark runner
func NewRunner(config Config, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if len(config.ChunkSizes) == 0 {
		config.ChunkSizes = DefaultConfig().ChunkSizes
	}
	if config.ChunksPerRun <= 0 {
		config.ChunksPerRun = DefaultConfig().ChunksPerRun
	}
	if config.SampleRate <= 0 {
		config.SampleRate = DefaultConfig().SampleRate
	}
	if config.RingBufferSize <= 0 {
		config.RingBufferSize = DefaultConfig().RingBufferSize
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	return &Runner{
		config: config,
		logger: logger.WithFields(logging.Fields{"component": "bench_runner"}),
	}
}

// Run executes the full chunk-size sweep
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	for _, chunkSize := range r.config.ChunkSizes {
		result, err := r.runChunkSize(ctx, chunkSize)
		if err != nil {
			return nil, fmt.Errorf("benchmark failed for chunk size %d: %w", chunkSize, err)
		}
		summary.Results = append(summary.Results, *result)
	}

	summary.TotalDuration = time.Since(start)
	return summary, nil
}

// runChunkSize measures one chunk size: a producer goroutine pushes
// synthesized chunks into the realtime ring while the consumer drains it
// into ProcessAudioChunk, timing every call.
func (r *Runner) runChunkSize(ctx context.Context, chunkSize int) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	eng, err := engine.New(engine.Config{
		SampleRate:     r.config.SampleRate,
		FrameSize:      chunkSize,
		HopSize:        chunkSize / 2,
		MasterCallsDir: r.config.MasterCallsDir,
	}, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	defer eng.Close()

	if r.config.MasterCall != "" {
		if err := eng.LoadMasterCall(r.config.MasterCall); err != nil {
			return nil, fmt.Errorf("failed to load master call: %w", err)
		}
	}

	id, err := eng.CreateSession(float32(r.config.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	proc, err := realtime.NewProcessor(realtime.Config{
		RingBufferSize: r.config.RingBufferSize,
		ChunkSize:      chunkSize,
		Backpressure:   true,
		EnableMetrics:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime processor: %w", err)
	}
	defer proc.Close()

	chunk := synthesizeTone(chunkSize, r.config.SampleRate, 440.0)

	// Producer
	produceErr := make(chan error, 1)
	go func() {
		defer close(produceErr)
		for i := 0; i < r.config.ChunksPerRun; i++ {
			select {
			case <-ctx.Done():
				produceErr <- ctx.Err()
				proc.Close() // unblock the consumer
				return
			default:
			}
			if err := proc.Enqueue(chunk); err != nil {
				produceErr <- err
				proc.Close()
				return
			}
		}
	}()

	// Consumer
	latencies := make([]float64, 0, r.config.ChunksPerRun)
	processed := 0
	finalScore := 0.0
	runStart := time.Now()

	for processed < r.config.ChunksPerRun {
		c, ok := proc.Dequeue()
		if !ok {
			break
		}

		callStart := time.Now()
		result, err := eng.ProcessAudioChunk(id, c.Data[:c.ValidSamples])
		if err != nil {
			return nil, fmt.Errorf("chunk processing failed: %w", err)
		}
		latencies = append(latencies, float64(time.Since(callStart).Microseconds())/1000.0)
		finalScore = result.Score
		processed++

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	elapsed := time.Since(runStart)

	if err := <-produceErr; err != nil {
		return nil, fmt.Errorf("producer failed: %w", err)
	}

	stats := calculateStats(latencies)

	throughput := 0.0
	if elapsed > 0 {
		throughput = float64(processed) / elapsed.Seconds()
	}

	// How many times faster than the audio clock we process
	chunkDurationMs := float64(chunkSize) / float64(r.config.SampleRate) * 1000.0
	realtimeFactor := 0.0
	if stats.Mean > 0 {
		realtimeFactor = chunkDurationMs / stats.Mean
	}

	r.logger.Info("Benchmark run complete", logging.Fields{
		"chunk_size":      chunkSize,
		"chunks":          processed,
		"throughput":      throughput,
		"mean_latency_ms": stats.Mean,
		"realtime_factor": realtimeFactor,
	})

	return &Result{
		ChunkSize:       chunkSize,
		ChunksProcessed: processed,
		Throughput:      throughput,
		RealtimeFactor:  realtimeFactor,
		Latency:         stats,
		FinalScore:      finalScore,
	}, nil
}

// synthesizeTone generates one chunk of a pure sine tone loud enough to
// pass voice-activity gating
func synthesizeTone(samples, sampleRate int, freq float64) []float32 {
	out := make([]float32, samples)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2.0*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}
