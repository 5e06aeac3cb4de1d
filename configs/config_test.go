package configs

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, EngineDefaults(), config.Engine)
	assert.Equal(t, 256, config.Realtime.RingBufferSize)
	assert.False(t, config.Realtime.Backpressure)
	assert.True(t, config.Realtime.EnableMetrics)
	assert.Equal(t, []int{256, 512, 1024}, config.Bench.ChunkSizes)
	assert.Equal(t, 2000, config.Bench.ChunksPerRun)
}

func TestLoadConfigOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("engine.sample_rate", 48000)
	viper.Set("engine.master_calls_dir", "/tmp/calls")
	viper.Set("log_level", "debug")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 48000, config.Engine.SampleRate)
	assert.Equal(t, "/tmp/calls", config.Engine.MasterCallsDir)
	assert.Equal(t, "debug", config.LogLevel)
	// Untouched fields keep their defaults
	assert.Equal(t, 512, config.Engine.FrameSize)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"zero sample rate", "engine.sample_rate", 0},
		{"zero frame size", "engine.frame_size", 0},
		{"hop exceeds frame", "engine.hop_size", 4096},
		{"coefficients exceed filters", "engine.mfcc_coefficients", 99},
		{"zero vad threshold", "engine.vad_energy_threshold", 0.0},
		{"negative bench chunk size", "bench.chunk_sizes", []int{-1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()

			viper.Set(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	config := &Config{Engine: EngineDefaults()}
	assert.NoError(t, ValidateConfig(config))
}
