package matcher

import (
	"fmt"
	"math"

	"github.com/andresmejia3/rollcall/internal/types"
)

const (
	// DefaultTolerance is the largest accepted euclidean distance between a live
	// descriptor and a known one.
	DefaultTolerance = 0.5
	// Unknown labels faces that did not match any enrolled identity.
	Unknown = "Unknown"
)

// Result describes the outcome of matching one live descriptor.
type Result struct {
	Identity string
	Distance float64
	Index    int // index into the known records, -1 if none
	Matched  bool
}

// Distance returns the euclidean distance between two descriptors.
// Vectors of different or zero length are infinitely far apart.
func Distance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Distances computes the distance from query to every known record, in order.
func Distances(known []types.DescriptorRecord, query []float64) []float64 {
	out := make([]float64, len(known))
	for i, rec := range known {
		out[i] = Distance(rec.Descriptor, query)
	}
	return out
}

// Best returns the index and distance of the nearest known record.
// Ties keep the first candidate. Returns -1 when known is empty.
func Best(known []types.DescriptorRecord, query []float64) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, d := range Distances(known, query) {
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// Match picks the nearest known record and accepts it only within tolerance.
func Match(known []types.DescriptorRecord, query []float64, tolerance float64) Result {
	idx, dist := Best(known, query)
	if idx == -1 || dist > tolerance {
		return Result{Identity: Unknown, Distance: dist, Index: idx}
	}
	return Result{
		Identity: known[idx].Identity,
		Distance: dist,
		Index:    idx,
		Matched:  true,
	}
}

// ValidateTolerance rejects tolerances outside (0, 1].
func ValidateTolerance(tolerance float64) error {
	if tolerance <= 0 || tolerance > 1.0 {
		return fmt.Errorf("must be between 0.0 and 1.0, got %f", tolerance)
	}
	return nil
}
