package configs

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets default configuration values for all components
func setDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}

	// Engine defaults
	if !v.IsSet("engine.sample_rate") {
		v.Set("engine.sample_rate", 44100)
	}
	if !v.IsSet("engine.frame_size") {
		v.Set("engine.frame_size", 512)
	}
	if !v.IsSet("engine.hop_size") {
		v.Set("engine.hop_size", 256)
	}
	if !v.IsSet("engine.mfcc_coefficients") {
		v.Set("engine.mfcc_coefficients", 13)
	}
	if !v.IsSet("engine.mel_filters") {
		v.Set("engine.mel_filters", 26)
	}
	if !v.IsSet("engine.vad_energy_threshold") {
		v.Set("engine.vad_energy_threshold", 0.01)
	}
	if !v.IsSet("engine.vad_window_duration") {
		v.Set("engine.vad_window_duration", 20*time.Millisecond)
	}
	if !v.IsSet("engine.buffer_pool_size") {
		v.Set("engine.buffer_pool_size", 32)
	}
	if !v.IsSet("engine.master_calls_dir") {
		v.Set("engine.master_calls_dir", filepath.Join("data", "master_calls"))
	}

	// Realtime ingestion defaults
	if !v.IsSet("realtime.ring_buffer_size") {
		v.Set("realtime.ring_buffer_size", 256)
	}
	if !v.IsSet("realtime.backpressure") {
		v.Set("realtime.backpressure", false)
	}
	if !v.IsSet("realtime.enable_metrics") {
		v.Set("realtime.enable_metrics", true)
	}

	// Benchmark defaults
	if !v.IsSet("bench.chunk_sizes") {
		v.Set("bench.chunk_sizes", []int{256, 512, 1024})
	}
	if !v.IsSet("bench.chunks_per_run") {
		v.Set("bench.chunks_per_run", 2000)
	}
	if !v.IsSet("bench.timeout") {
		v.Set("bench.timeout", 2*time.Minute)
	}
}

// EngineDefaults exposes the default engine configuration for callers that
// bypass viper, such as tests
func EngineDefaults() EngineConfig {
	return EngineConfig{
		SampleRate:         44100,
		FrameSize:          512,
		HopSize:            256,
		MFCCCoefficients:   13,
		MelFilters:         26,
		VADEnergyThreshold: 0.01,
		VADWindowDuration:  20 * time.Millisecond,
		BufferPoolSize:     32,
		MasterCallsDir:     filepath.Join("data", "master_calls"),
	}
}
