package engine

import (
	"sync"
	"time"

	"github.com/Hunt-Master-Academy/hma-gamecalls-engine-sub014/pkg/audio/mfcc"
)

// SessionID identifies one active recording session
type SessionID int32

// session holds the per-session state the engine accumulates while a user
// records. Each session carries its own mutex so concurrent sessions never
// serialize on each other's feature appends, and its own feature extractor
// since extraction scratch state is not shareable across goroutines.
type session struct {
	id         SessionID
	sampleRate float32
	createdAt  time.Time

	mu              sync.Mutex
	extractor       *mfcc.Processor
	features        [][]float64
	framesProcessed uint64
}

func newSession(id SessionID, sampleRate float32, extractor *mfcc.Processor) *session {
	return &session{
		id:         id,
		sampleRate: sampleRate,
		createdAt:  time.Now(),
		extractor:  extractor,
	}
}

// extractAndAppend runs feature extraction on one frame and appends the
// result to the session history. The history is append-only; vectors are
// never mutated after insertion.
func (s *session) extractAndAppend(samples []float32) ([][]float64, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vec, err := s.extractor.ProcessFrame(samples)
	if err != nil {
		return nil, s.framesProcessed, err
	}

	s.features = append(s.features, vec)
	s.framesProcessed++

	// Snapshot the history for scoring outside the session lock. Only the
	// outer slice is copied; the vectors themselves are immutable.
	history := make([][]float64, len(s.features))
	copy(history, s.features)

	return history, s.framesProcessed, nil
}

// frameCount returns the number of active frames processed so far
func (s *session) frameCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.framesProcessed
}
