// Package vad implements short-term energy voice activity detection used to
// gate feature extraction so silence never reaches the scoring path.
package vad

import (
	"fmt"
	"sort"
	"time"
)

// Config contains voice activity detector configuration
type Config struct {
	EnergyThreshold float64       // Mean-square energy above which a window is active
	WindowDuration  time.Duration // Length of one analysis window
	SampleRate      int           // Samples per second of the input audio

	// Adaptive raises the effective threshold to three times the recent
	// noise floor (25th percentile of window energies). Off by default so
	// detection stays a pure function of the input window.
	Adaptive bool
}

// Result describes one analyzed window
type Result struct {
	IsActive    bool
	EnergyLevel float64
}

// Detector classifies audio windows as active or silent
type Detector struct {
	config        Config
	windowSamples int

	// Adaptive-mode state
	energyHistory []float64
	threshold     float64
}

const energyHistorySize = 50

// New creates a detector from the given configuration
func New(config Config) (*Detector, error) {
	if config.EnergyThreshold <= 0 {
		return nil, fmt.Errorf("energy threshold must be positive, got %g", config.EnergyThreshold)
	}
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", config.SampleRate)
	}
	if config.WindowDuration <= 0 {
		return nil, fmt.Errorf("window duration must be positive, got %v", config.WindowDuration)
	}

	windowSamples := int(float64(config.SampleRate) * config.WindowDuration.Seconds())
	if windowSamples < 1 {
		windowSamples = 1
	}

	return &Detector{
		config:        config,
		windowSamples: windowSamples,
		threshold:     config.EnergyThreshold,
	}, nil
}

// ProcessWindow evaluates one audio chunk. Chunks longer than the configured
// window are scanned in sub-windows; the chunk is active if any sub-window
// exceeds the threshold. The reported energy is the loudest sub-window.
func (d *Detector) ProcessWindow(samples []float32) (Result, error) {
	if len(samples) == 0 {
		return Result{}, fmt.Errorf("empty audio window")
	}

	peakEnergy := 0.0
	for start := 0; start < len(samples); start += d.windowSamples {
		end := start + d.windowSamples
		if end > len(samples) {
			end = len(samples)
		}
		if e := meanSquareEnergy(samples[start:end]); e > peakEnergy {
			peakEnergy = e
		}
	}

	threshold := d.config.EnergyThreshold
	if d.config.Adaptive {
		threshold = d.updateAdaptiveThreshold(peakEnergy)
	}

	return Result{
		IsActive:    peakEnergy > threshold,
		EnergyLevel: peakEnergy,
	}, nil
}

// Reset clears adaptive-mode history and restores the configured threshold
func (d *Detector) Reset() {
	d.energyHistory = d.energyHistory[:0]
	d.threshold = d.config.EnergyThreshold
}

// updateAdaptiveThreshold tracks recent energies and floors the threshold at
// three times the 25th-percentile noise estimate
func (d *Detector) updateAdaptiveThreshold(energy float64) float64 {
	d.energyHistory = append(d.energyHistory, energy)
	if len(d.energyHistory) > energyHistorySize {
		d.energyHistory = d.energyHistory[1:]
	}

	if len(d.energyHistory) >= 5 {
		sorted := make([]float64, len(d.energyHistory))
		copy(sorted, d.energyHistory)
		sort.Float64s(sorted)

		noiseFloor := sorted[len(sorted)/4]
		if adaptive := noiseFloor * 3.0; adaptive > d.config.EnergyThreshold {
			d.threshold = adaptive
		} else {
			d.threshold = d.config.EnergyThreshold
		}
	}

	return d.threshold
}

// meanSquareEnergy computes average signal power over the window
func meanSquareEnergy(samples []float32) float64 {
	sum := 0.0
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return sum / float64(len(samples))
}
