// Package mfcc extracts Mel-Frequency Cepstral Coefficient feature vectors
// from PCM audio frames. One fixed pipeline serves both the streaming path
// (one frame in, one vector out) and batch extraction over a whole recording.
package mfcc

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/window"
)

// Config contains MFCC extraction parameters, fixed at construction
type Config struct {
	SampleRate      int     // Input sample rate in Hz
	FrameSize       int     // Samples per analysis frame
	NumCoefficients int     // Cepstral coefficients per output vector
	NumFilters      int     // Mel filterbank channels
	LowFreq         float64 // Lower filterbank edge in Hz
	HighFreq        float64 // Upper filterbank edge in Hz; 0 means Nyquist
}

// Defaults matching common speech-analysis practice
const (
	DefaultNumCoefficients = 13
	DefaultNumFilters      = 26

	logFloor = 1e-10
)

// Processor converts audio frames into cepstral feature vectors.
// Extraction is deterministic: identical input always produces identical
// output. Not safe for concurrent use; callers hold one per goroutine or
// serialize access.
type Processor struct {
	config Config

	win           []float64   // Precomputed Hamming window
	filterBank    [][]float64 // NumFilters x numBins triangular filters
	dctMatrix     [][]float64 // NumCoefficients x NumFilters orthonormal DCT-II
	numBins       int
	windowedFrame []float64 // Scratch, reused across frames
	melEnergies   []float64 // Scratch, reused across frames
}

// New creates a processor with precomputed window, filterbank and DCT tables
func New(config Config) (*Processor, error) {
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", config.SampleRate)
	}
	if config.FrameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %d", config.FrameSize)
	}
	if config.NumCoefficients <= 0 {
		config.NumCoefficients = DefaultNumCoefficients
	}
	if config.NumFilters <= 0 {
		config.NumFilters = DefaultNumFilters
	}
	if config.NumCoefficients > config.NumFilters {
		return nil, fmt.Errorf("coefficient count %d exceeds filter count %d",
			config.NumCoefficients, config.NumFilters)
	}
	if config.HighFreq == 0 {
		config.HighFreq = float64(config.SampleRate) / 2.0
	}
	if config.LowFreq < 0 || config.LowFreq >= config.HighFreq {
		return nil, fmt.Errorf("invalid filterbank range [%g, %g]", config.LowFreq, config.HighFreq)
	}

	p := &Processor{
		config:        config,
		numBins:       config.FrameSize/2 + 1,
		windowedFrame: make([]float64, config.FrameSize),
		melEnergies:   make([]float64, config.NumFilters),
	}

	// Build the window table once by applying the generator to a unit signal
	ones := make([]float64, config.FrameSize)
	for i := range ones {
		ones[i] = 1.0
	}
	p.win = window.Hamming(ones)

	p.initFilterBank()
	p.initDCTMatrix()

	return p, nil
}

// Config returns the extraction parameters
func (p *Processor) Config() Config {
	return p.config
}

// ProcessFrame extracts one feature vector from exactly one frame of audio
func (p *Processor) ProcessFrame(samples []float32) ([]float64, error) {
	if len(samples) != p.config.FrameSize {
		return nil, fmt.Errorf("frame size mismatch: expected %d samples, got %d",
			p.config.FrameSize, len(samples))
	}

	// Window
	for i, s := range samples {
		p.windowedFrame[i] = float64(s) * p.win[i]
	}

	// Power spectrum over positive frequencies
	spectrum := fft.FFTReal(p.windowedFrame)
	power := make([]float64, p.numBins)
	for i := 0; i < p.numBins; i++ {
		mag := cmplx.Abs(spectrum[i])
		power[i] = mag * mag
	}

	// Mel filterbank energies with log compression
	for f := 0; f < p.config.NumFilters; f++ {
		energy := 0.0
		for b, weight := range p.filterBank[f] {
			if weight != 0 {
				energy += weight * power[b]
			}
		}
		p.melEnergies[f] = math.Log(energy + logFloor)
	}

	// DCT-II down to the cepstral coefficients
	coeffs := make([]float64, p.config.NumCoefficients)
	for i := 0; i < p.config.NumCoefficients; i++ {
		sum := 0.0
		for j := 0; j < p.config.NumFilters; j++ {
			sum += p.dctMatrix[i][j] * p.melEnergies[j]
		}
		coeffs[i] = sum
	}

	return coeffs, nil
}

// ProcessBuffer extracts one feature vector per hop across the whole buffer,
// used for master-call loading. Trailing samples shorter than a frame are
// dropped.
func (p *Processor) ProcessBuffer(samples []float32, hopSize int) ([][]float64, error) {
	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive, got %d", hopSize)
	}
	if len(samples) < p.config.FrameSize {
		return nil, fmt.Errorf("buffer too short: %d samples, need at least %d",
			len(samples), p.config.FrameSize)
	}

	numFrames := (len(samples)-p.config.FrameSize)/hopSize + 1
	frames := make([][]float64, 0, numFrames)

	for i := 0; i < numFrames; i++ {
		offset := i * hopSize
		vec, err := p.ProcessFrame(samples[offset : offset+p.config.FrameSize])
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		frames = append(frames, vec)
	}

	return frames, nil
}

// melScale converts frequency in Hz to mel
func melScale(freq float64) float64 {
	return 2595.0 * math.Log10(1.0+freq/700.0)
}

// melToFreq converts mel back to Hz
func melToFreq(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// initFilterBank builds triangular filters evenly spaced on the mel scale
func (p *Processor) initFilterBank() {
	numFilters := p.config.NumFilters

	melLow := melScale(p.config.LowFreq)
	melHigh := melScale(p.config.HighFreq)
	melStep := (melHigh - melLow) / float64(numFilters+1)

	// Filter edge frequencies mapped to FFT bin indices
	binIndices := make([]int, numFilters+2)
	for i := range binIndices {
		freq := melToFreq(melLow + float64(i)*melStep)
		binIndices[i] = int(freq * float64(p.config.FrameSize) / float64(p.config.SampleRate))
	}

	p.filterBank = make([][]float64, numFilters)
	for f := 0; f < numFilters; f++ {
		p.filterBank[f] = make([]float64, p.numBins)
		startBin, centerBin, endBin := binIndices[f], binIndices[f+1], binIndices[f+2]

		for bin := startBin; bin < centerBin && bin < p.numBins; bin++ {
			if bin >= 0 && centerBin > startBin {
				p.filterBank[f][bin] = float64(bin-startBin) / float64(centerBin-startBin)
			}
		}
		for bin := centerBin; bin < endBin && bin < p.numBins; bin++ {
			if bin >= 0 && endBin > centerBin {
				p.filterBank[f][bin] = float64(endBin-bin) / float64(endBin-centerBin)
			}
		}
	}
}

// initDCTMatrix builds the orthonormal type-II DCT basis
func (p *Processor) initDCTMatrix() {
	n := float64(p.config.NumFilters)
	scale := math.Sqrt(2.0 / n)

	p.dctMatrix = make([][]float64, p.config.NumCoefficients)
	for i := 0; i < p.config.NumCoefficients; i++ {
		p.dctMatrix[i] = make([]float64, p.config.NumFilters)
		for j := 0; j < p.config.NumFilters; j++ {
			v := scale * math.Cos(math.Pi*float64(i)*(float64(j)+0.5)/n)
			if i == 0 {
				v /= math.Sqrt2
			}
			p.dctMatrix[i][j] = v
		}
	}
}
