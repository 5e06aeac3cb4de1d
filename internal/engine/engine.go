// Package engine implements the real-time game-call similarity engine: it
// owns session lifecycle, voice-activity gating, MFCC feature extraction and
// DTW scoring against a loaded master call. One engine instance safely serves
// any number of concurrent recording sessions.
package engine

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/audio/dtw"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/audio/mfcc"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/audio/pool"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/audio/vad"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/audio/wav"
	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/logging"
)

// Config contains engine parameters, immutable after construction
type Config struct {
	SampleRate         int           // Expected sample rate in Hz
	FrameSize          int           // Samples per chunk on the real-time path
	HopSize            int           // Hop between frames for batch extraction
	MFCCCoefficients   int           // Cepstral coefficients per feature vector
	MelFilters         int           // Mel filterbank channels
	VADEnergyThreshold float64       // Mean-square energy gate
	VADWindowDuration  time.Duration // VAD analysis window length
	BufferPoolSize     int           // Pre-allocated real-time buffers
	MasterCallsDir     string        // Directory holding <name>.wav reference files
}

// DefaultConfig returns the parameters used when fields are zero-valued
func DefaultConfig() Config {
	return Config{
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

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = d.SampleRate
	}
	if c.FrameSize <= 0 {
		c.FrameSize = d.FrameSize
	}
	if c.HopSize <= 0 {
		c.HopSize = d.HopSize
	}
	if c.MFCCCoefficients <= 0 {
		c.MFCCCoefficients = d.MFCCCoefficients
	}
	if c.MelFilters <= 0 {
		c.MelFilters = d.MelFilters
	}
	if c.VADEnergyThreshold <= 0 {
		c.VADEnergyThreshold = d.VADEnergyThreshold
	}
	if c.VADWindowDuration <= 0 {
		c.VADWindowDuration = d.VADWindowDuration
	}
	if c.BufferPoolSize <= 0 {
		c.BufferPoolSize = d.BufferPoolSize
	}
	if c.MasterCallsDir == "" {
		c.MasterCallsDir = d.MasterCallsDir
	}
}

// ProcessingResult is the outcome of one chunk submission
type ProcessingResult struct {
	Score           float64   // Similarity in [0, 1]; 1 is a perfect match
	Timestamp       time.Time // When the chunk finished processing
	FramesProcessed int       // Frames contributed by this call (0 or 1)
}

// Engine is the composition root owning all processing components and all
// per-session state. All methods are safe for concurrent use.
type Engine struct {
	config Config
	logger logging.Logger

	bufferPool *pool.Pool
	detector   *vad.Detector
	comparator *dtw.Comparator

	sessionsMu sync.RWMutex
	sessions   map[SessionID]*session
	nextID     atomic.Int32

	masterMu       sync.RWMutex
	masterName     string
	masterFeatures [][]float64

	initialized atomic.Bool
}

// New constructs an engine and all of its components
func New(config Config, logger logging.Logger) (*Engine, error) {
	config.applyDefaults()
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	logger = logger.WithFields(logging.Fields{
		"component": "session_engine",
	})

	bufferPool, err := pool.New(pool.Config{
		PoolSize:   config.BufferPoolSize,
		BufferSize: config.FrameSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer pool: %w", err)
	}

	// Adaptive mode stays off so gating is a pure function of the window
	// and the detector is safe to share across sessions.
	detector, err := vad.New(vad.Config{
		EnergyThreshold: config.VADEnergyThreshold,
		WindowDuration:  config.VADWindowDuration,
		SampleRate:      config.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create voice activity detector: %w", err)
	}

	// Normalized distance keeps scores comparable as session history grows;
	// no band constraint, since history and master lengths diverge freely.
	comparator := dtw.New(dtw.Config{Normalize: true})

	e := &Engine{
		config:     config,
		logger:     logger,
		bufferPool: bufferPool,
		detector:   detector,
		comparator: comparator,
		sessions:   make(map[SessionID]*session),
	}
	e.initialized.Store(true)

	logger.Debug("Engine initialized", logging.Fields{
		"sample_rate":      config.SampleRate,
		"frame_size":       config.FrameSize,
		"hop_size":         config.HopSize,
		"mfcc_coeffs":      config.MFCCCoefficients,
		"mel_filters":      config.MelFilters,
		"buffer_pool_size": config.BufferPoolSize,
	})

	return e, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// IsInitialized reports whether the engine is within its valid lifetime
func (e *Engine) IsInitialized() bool {
	return e.initialized.Load()
}

// ActiveSessionCount returns the number of currently active sessions
func (e *Engine) ActiveSessionCount() int {
	e.sessionsMu.RLock()
	defer e.sessionsMu.RUnlock()
	return len(e.sessions)
}

// CreateSession allocates a new active session with an engine-issued id.
// IDs start at 0 and increase monotonically for the engine's lifetime.
func (e *Engine) CreateSession(sampleRate float32) (SessionID, error) {
	if !e.initialized.Load() {
		return 0, newError(CodeNotInitialized, "engine not initialized", nil)
	}
	if sampleRate <= 0 {
		return 0, newError(CodeInvalidInput, fmt.Sprintf("invalid sample rate %g", sampleRate), nil)
	}

	id := SessionID(e.nextID.Add(1) - 1)
	if err := e.insertSession(id, sampleRate); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateSessionWithID allocates a session under a caller-chosen id, failing
// when the id is already active
func (e *Engine) CreateSessionWithID(id SessionID, sampleRate float32) error {
	if !e.initialized.Load() {
		return newError(CodeNotInitialized, "engine not initialized", nil)
	}
	if sampleRate <= 0 {
		return newError(CodeInvalidInput, fmt.Sprintf("invalid sample rate %g", sampleRate), nil)
	}
	return e.insertSession(id, sampleRate)
}

func (e *Engine) insertSession(id SessionID, sampleRate float32) error {
	extractor, err := mfcc.New(mfcc.Config{
		SampleRate:      e.config.SampleRate,
		FrameSize:       e.config.FrameSize,
		NumCoefficients: e.config.MFCCCoefficients,
		NumFilters:      e.config.MelFilters,
	})
	if err != nil {
		return newError(CodeProcessingFailed, "failed to create feature extractor", err)
	}

	e.sessionsMu.Lock()
	defer e.sessionsMu.Unlock()

	if _, exists := e.sessions[id]; exists {
		return newError(CodeInvalidInput, fmt.Sprintf("session %d already exists", id), nil)
	}
	e.sessions[id] = newSession(id, sampleRate, extractor)

	e.logger.Debug("Session created", logging.Fields{
		"session_id":  id,
		"sample_rate": sampleRate,
	})

	return nil
}

// EndSession removes an active session and discards its feature history.
// Ending is terminal; the id is never reused for caller-chosen ids and
// engine-issued ids keep counting upward.
func (e *Engine) EndSession(id SessionID) error {
	if !e.initialized.Load() {
		return newError(CodeNotInitialized, "engine not initialized", nil)
	}

	e.sessionsMu.Lock()
	defer e.sessionsMu.Unlock()

	s, exists := e.sessions[id]
	if !exists {
		return newError(CodeInvalidInput, fmt.Sprintf("session %d not found", id), nil)
	}
	delete(e.sessions, id)

	e.logger.Debug("Session ended", logging.Fields{
		"session_id":       id,
		"frames_processed": s.frameCount(),
		"duration_seconds": time.Since(s.createdAt).Seconds(),
	})

	return nil
}

// LoadMasterCall resolves name to <master_calls_dir>/<name>.wav, decodes it
// and extracts features over the whole recording. The stored master-call
// sequence is replaced only after both decode and extraction succeed; a
// failed load leaves any previously loaded master call intact.
func (e *Engine) LoadMasterCall(name string) error {
	if !e.initialized.Load() {
		return newError(CodeNotInitialized, "engine not initialized", nil)
	}

	path := filepath.Join(e.config.MasterCallsDir, name+".wav")

	data, err := wav.ReadFile(path)
	if err != nil {
		return newError(CodeResourceUnavailable,
			fmt.Sprintf("master call %q could not be loaded", name), err)
	}

	extractor, err := mfcc.New(mfcc.Config{
		SampleRate:      e.config.SampleRate,
		FrameSize:       e.config.FrameSize,
		NumCoefficients: e.config.MFCCCoefficients,
		NumFilters:      e.config.MelFilters,
	})
	if err != nil {
		return newError(CodeProcessingFailed, "failed to create feature extractor", err)
	}

	features, err := extractor.ProcessBuffer(data.Samples, e.config.HopSize)
	if err != nil {
		return newError(CodeProcessingFailed,
			fmt.Sprintf("feature extraction failed for master call %q", name), err)
	}
	if len(features) == 0 {
		return newError(CodeProcessingFailed,
			fmt.Sprintf("master call %q produced no feature frames", name), nil)
	}

	e.masterMu.Lock()
	e.masterName = name
	e.masterFeatures = features
	e.masterMu.Unlock()

	e.logger.Info("Master call loaded", logging.Fields{
		"name":             name,
		"frames":           len(features),
		"duration_seconds": data.Duration(),
		"file_sample_rate": data.SampleRate,
	})

	return nil
}

// MasterCallName returns the name of the loaded master call, or ""
func (e *Engine) MasterCallName() string {
	e.masterMu.RLock()
	defer e.masterMu.RUnlock()
	return e.masterName
}

// ProcessAudioChunk scores one chunk of session audio against the loaded
// master call. Silent chunks return an empty result without touching the
// session's feature history. The caller keeps ownership of samples; the
// engine copies it into a pooled buffer for the duration of the call.
func (e *Engine) ProcessAudioChunk(id SessionID, samples []float32) (ProcessingResult, error) {
	if !e.initialized.Load() {
		return ProcessingResult{}, newError(CodeNotInitialized, "engine not initialized", nil)
	}
	if len(samples) != e.config.FrameSize {
		return ProcessingResult{}, newError(CodeInvalidInput,
			fmt.Sprintf("chunk length %d does not match frame size %d",
				len(samples), e.config.FrameSize), nil)
	}

	e.sessionsMu.RLock()
	s, exists := e.sessions[id]
	e.sessionsMu.RUnlock()
	if !exists {
		return ProcessingResult{}, newError(CodeInvalidInput,
			fmt.Sprintf("session %d not found", id), nil)
	}

	buf, err := e.bufferPool.Acquire()
	if err != nil {
		return ProcessingResult{}, newError(CodeProcessingFailed, "audio buffer pool exhausted", err)
	}
	defer e.bufferPool.Release(buf)
	copy(buf, samples)

	vadResult, err := e.detector.ProcessWindow(buf)
	if err != nil {
		return ProcessingResult{}, newError(CodeProcessingFailed, "voice activity detection failed", err)
	}
	if !vadResult.IsActive {
		return ProcessingResult{Timestamp: time.Now()}, nil
	}

	history, _, err := s.extractAndAppend(buf)
	if err != nil {
		return ProcessingResult{}, newError(CodeProcessingFailed, "feature extraction failed", err)
	}

	score := 0.0
	e.masterMu.RLock()
	master := e.masterFeatures
	e.masterMu.RUnlock()

	if len(master) > 0 {
		distance, err := e.comparator.Compare(master, history)
		if err != nil {
			return ProcessingResult{}, newError(CodeProcessingFailed, "alignment failed", err)
		}
		score = 1.0 / (1.0 + distance)
	}

	return ProcessingResult{
		Score:           score,
		Timestamp:       time.Now(),
		FramesProcessed: 1,
	}, nil
}

// SessionFrameCount returns the number of active frames a session has
// accumulated, for introspection and tests
func (e *Engine) SessionFrameCount(id SessionID) (uint64, error) {
	e.sessionsMu.RLock()
	s, exists := e.sessions[id]
	e.sessionsMu.RUnlock()
	if !exists {
		return 0, newError(CodeInvalidInput, fmt.Sprintf("session %d not found", id), nil)
	}
	return s.frameCount(), nil
}

// Close tears the engine down. In-flight chunk calls past their existence
// checks are allowed to complete; subsequent operations fail with
// NOT_INITIALIZED.
func (e *Engine) Close() {
	if !e.initialized.CompareAndSwap(true, false) {
		return
	}

	e.sessionsMu.Lock()
	count := len(e.sessions)
	e.sessions = make(map[SessionID]*session)
	e.sessionsMu.Unlock()

	e.logger.Debug("Engine closed", logging.Fields{
		"discarded_sessions": count,
	})
}
