package bench

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/audio/wav"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/logging"
)

func TestNewRunnerAppliesDefaults(t *testing.T) {
	r := NewRunner(Config{}, logging.NewNopLogger())

	assert.Equal(t, []int{256, 512, 1024}, r.config.ChunkSizes)
	assert.Equal(t, 2000, r.config.ChunksPerRun)
	assert.Equal(t, 44100, r.config.SampleRate)
	assert.Equal(t, 256, r.config.RingBufferSize)
}

func TestRunSmallSweep(t *testing.T) {
	r := NewRunner(Config{
		ChunkSizes:   []int{256, 512},
		ChunksPerRun: 32,
		Timeout:      30 * time.Second,
	}, logging.NewNopLogger())

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	for _, result := range summary.Results {
		assert.Equal(t, 32, result.ChunksProcessed)
		assert.Zero(t, result.ChunksDropped)
		assert.Positive(t, result.Throughput)
		assert.Positive(t, result.RealtimeFactor)
		require.NotNil(t, result.Latency)
		assert.Equal(t, 32, result.Latency.Count)
		assert.GreaterOrEqual(t, result.Latency.Max, result.Latency.Min)
	}
	assert.Equal(t, 256, summary.Results[0].ChunkSize)
	assert.Equal(t, 512, summary.Results[1].ChunkSize)
}

func TestRunWithMasterCallScores(t *testing.T) {
	dir := t.TempDir()

	tone := make([]float32, 2048)
	for i := range tone {
		tone[i] = float32(0.5 * math.Sin(2.0*math.Pi*440.0*float64(i)/44100.0))
	}
	require.NoError(t, wav.WriteFile(filepath.Join(dir, "tone.wav"), tone, 44100))

	r := NewRunner(Config{
		ChunkSizes:     []int{512},
		ChunksPerRun:   16,
		MasterCall:     "tone",
		MasterCallsDir: dir,
		Timeout:        30 * time.Second,
	}, logging.NewNopLogger())

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	// The synthesized benchmark signal matches the master tone
	assert.Greater(t, summary.Results[0].FinalScore, 0.0)
}

func TestRunMissingMasterCallFails(t *testing.T) {
	r := NewRunner(Config{
		ChunkSizes:     []int{256},
		ChunksPerRun:   4,
		MasterCall:     "missing",
		MasterCallsDir: t.TempDir(),
		Timeout:        10 * time.Second,
	}, logging.NewNopLogger())

	_, err := r.Run(context.Background())
	assert.Error(t, err)
}

func TestRunHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(Config{
		ChunkSizes:   []int{256},
		ChunksPerRun: 1000,
		Timeout:      10 * time.Second,
	}, logging.NewNopLogger())

	_, err := r.Run(ctx)
	assert.Error(t, err)
}
