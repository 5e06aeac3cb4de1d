// Package configs defines the application configuration schema and loads it
// through viper from config files, environment variables and flags.
package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose  bool   `mapstructure:"verbose"`
	LogLevel string `mapstructure:"log_level"`

	// Engine configuration
	Engine EngineConfig `mapstructure:"engine"`

	// Realtime ingestion configuration
	Realtime RealtimeConfig `mapstructure:"realtime"`

	// Benchmark configuration
	Bench BenchConfig `mapstructure:"bench"`
}

// EngineConfig contains similarity engine settings
type EngineConfig struct {
	SampleRate         int           `mapstructure:"sample_rate"`
	FrameSize          int           `mapstructure:"frame_size"`
	HopSize            int           `mapstructure:"hop_size"`
	MFCCCoefficients   int           `mapstructure:"mfcc_coefficients"`
	MelFilters         int           `mapstructure:"mel_filters"`
	VADEnergyThreshold float64       `mapstructure:"vad_energy_threshold"`
	VADWindowDuration  time.Duration `mapstructure:"vad_window_duration"`
	BufferPoolSize     int           `mapstructure:"buffer_pool_size"`
	MasterCallsDir     string        `mapstructure:"master_calls_dir"`
}

// RealtimeConfig contains ingestion ring settings
type RealtimeConfig struct {
	RingBufferSize int  `mapstructure:"ring_buffer_size"`
	Backpressure   bool `mapstructure:"backpressure"`
	EnableMetrics  bool `mapstructure:"enable_metrics"`
}

// BenchConfig contains benchmark harness settings
type BenchConfig struct {
	ChunkSizes   []int         `mapstructure:"chunk_sizes"`
	ChunksPerRun int           `mapstructure:"chunks_per_run"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MasterCall   string        `mapstructure:"master_call"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	setDefaults(viper.GetViper())

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Engine.SampleRate <= 0 {
		return fmt.Errorf("engine sample rate must be positive")
	}

	if config.Engine.FrameSize <= 0 {
		return fmt.Errorf("engine frame size must be positive")
	}

	if config.Engine.HopSize <= 0 || config.Engine.HopSize > config.Engine.FrameSize {
		return fmt.Errorf("engine hop size must be in (0, frame_size]")
	}

	if config.Engine.MFCCCoefficients > config.Engine.MelFilters {
		return fmt.Errorf("mfcc coefficient count cannot exceed mel filter count")
	}

	if config.Engine.VADEnergyThreshold <= 0 {
		return fmt.Errorf("vad energy threshold must be positive")
	}

	for _, size := range config.Bench.ChunkSizes {
		if size <= 0 {
			return fmt.Errorf("bench chunk sizes must be positive, got %d", size)
		}
	}

	return nil
}
