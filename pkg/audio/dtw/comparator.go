// Package dtw implements Dynamic Time Warping alignment between two feature
// vector sequences, returning the cumulative alignment cost.
package dtw

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Config contains comparator parameters
type Config struct {
	// UseWindow constrains the alignment to a Sakoe-Chiba band of width
	// WindowRatio * max(N, M) around the diagonal.
	UseWindow   bool
	WindowRatio float64

	// Normalize divides the raw alignment cost by the summed sequence
	// lengths (N + M) so scores stay comparable as histories grow.
	Normalize bool

	// DistanceWeight scales the local distance; 1.0 when zero-valued.
	DistanceWeight float64
}

// Comparator aligns feature sequences. Compare is a pure function of its
// inputs and safe for concurrent use.
type Comparator struct {
	config Config
}

// New creates a comparator from the given configuration
func New(config Config) *Comparator {
	if config.DistanceWeight == 0 {
		config.DistanceWeight = 1.0
	}
	if config.WindowRatio < 0 {
		config.WindowRatio = 0
	} else if config.WindowRatio > 1 {
		config.WindowRatio = 1
	}
	return &Comparator{config: config}
}

// Compare returns the DTW alignment distance between two sequences using the
// standard three-way recurrence with Euclidean local distance. Memory is
// O(M) via a two-row cost matrix; the result is identical to the full-matrix
// formulation.
func (c *Comparator) Compare(seq1, seq2 [][]float64) (float64, error) {
	n, m := len(seq1), len(seq2)
	if n == 0 || m == 0 {
		return 0, fmt.Errorf("cannot align empty sequence: lengths %d and %d", n, m)
	}

	windowSize := m
	if c.config.UseWindow {
		longest := n
		if m > longest {
			longest = m
		}
		windowSize = int(float64(longest) * c.config.WindowRatio)
		if windowSize < 1 {
			windowSize = 1
		}
	}

	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := range prev {
		prev[j] = math.Inf(1)
	}
	prev[0] = 0

	for i := 1; i <= n; i++ {
		for j := range curr {
			curr[j] = math.Inf(1)
		}

		jStart, jEnd := 1, m
		if c.config.UseWindow {
			if lo := i - windowSize; lo > jStart {
				jStart = lo
			}
			if hi := i + windowSize; hi < jEnd {
				jEnd = hi
			}
		}

		for j := jStart; j <= jEnd; j++ {
			cost := c.localDistance(seq1[i-1], seq2[j-1])

			best := prev[j-1] // match
			if prev[j] < best {
				best = prev[j] // insertion
			}
			if curr[j-1] < best {
				best = curr[j-1] // deletion
			}

			curr[j] = cost + best
		}

		prev, curr = curr, prev
	}

	distance := prev[m]
	if math.IsInf(distance, 1) {
		return 0, fmt.Errorf("alignment window too narrow for lengths %d and %d", n, m)
	}
	if c.config.Normalize {
		distance /= float64(n + m)
	}

	return distance, nil
}

// PathPoint is one aligned index pair (i in seq1, j in seq2)
type PathPoint struct {
	I, J int
}

// ComparePath computes the alignment distance and the optimal warping path.
// It keeps the full N x M matrix, so it is meant for offline analysis rather
// than the real-time path.
func (c *Comparator) ComparePath(seq1, seq2 [][]float64) (float64, []PathPoint, error) {
	n, m := len(seq1), len(seq2)
	if n == 0 || m == 0 {
		return 0, nil, fmt.Errorf("cannot align empty sequence: lengths %d and %d", n, m)
	}

	const (
		stepDiagonal = iota
		stepUp
		stepLeft
	)

	cost := make([][]float64, n+1)
	step := make([][]uint8, n+1)
	for i := range cost {
		cost[i] = make([]float64, m+1)
		step[i] = make([]uint8, m+1)
		for j := range cost[i] {
			cost[i][j] = math.Inf(1)
		}
	}
	cost[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			local := c.localDistance(seq1[i-1], seq2[j-1])

			best := cost[i-1][j-1]
			dir := uint8(stepDiagonal)
			if cost[i-1][j] < best {
				best = cost[i-1][j]
				dir = stepUp
			}
			if cost[i][j-1] < best {
				best = cost[i][j-1]
				dir = stepLeft
			}

			cost[i][j] = local + best
			step[i][j] = dir
		}
	}

	// Backtrack from the corner
	var path []PathPoint
	for i, j := n, m; i > 0 && j > 0; {
		path = append(path, PathPoint{I: i - 1, J: j - 1})
		switch step[i][j] {
		case stepDiagonal:
			i--
			j--
		case stepUp:
			i--
		default:
			j--
		}
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}

	distance := cost[n][m]
	if c.config.Normalize {
		distance /= float64(n + m)
	}

	return distance, path, nil
}

// localDistance is the weighted Euclidean distance between two vectors.
// Mismatched lengths compare over the shorter prefix.
func (c *Comparator) localDistance(v1, v2 []float64) float64 {
	if len(v1) != len(v2) {
		if len(v1) > len(v2) {
			v1 = v1[:len(v2)]
		} else {
			v2 = v2[:len(v1)]
		}
	}
	return floats.Distance(v1, v2, 2) * c.config.DistanceWeight
}
