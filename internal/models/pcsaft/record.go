// Package pcsaft holds the non-associating PC-SAFT parameter records and their
// homosegmented group contribution rules.
package pcsaft

import (
	"errors"
	"fmt"
	"math"

	"github.com/ppiankov/thermoparam/internal/model"
	"github.com/ppiankov/thermoparam/internal/segment"
)

// ErrNoSegments is returned when combining an empty or massless segment list
var ErrNoSegments = errors.New("pc-saft: no segments to combine")

// Record holds the pure component PC-SAFT parameters
type Record struct {
	M        float64 `json:"m" yaml:"m"`                 // segment number
	Sigma    float64 `json:"sigma" yaml:"sigma"`         // segment diameter in Å
	EpsilonK float64 `json:"epsilon_k" yaml:"epsilon_k"` // dispersion energy over k_B in K
}

func (r Record) String() string {
	return fmt.Sprintf("PcSaftRecord(m=%g, sigma=%g, epsilon_k=%g)", r.M, r.Sigma, r.EpsilonK)
}

// Combine applies the homosegmented mixing rule:
//
//	m     = Σ n_i m_i
//	σ³    = Σ n_i m_i σ_i³ / m
//	ε/k   = Σ n_i m_i (ε/k)_i / m
func Combine[W model.CountType](segments []segment.Weighted[Record, W]) (Record, error) {
	var m, sigma3, epsilonK float64
	for _, s := range segments {
		mi := s.Count.ApplyCount(s.Record.M)
		m += mi
		sigma3 += mi * s.Record.Sigma * s.Record.Sigma * s.Record.Sigma
		epsilonK += mi * s.Record.EpsilonK
	}
	if m == 0 {
		return Record{}, ErrNoSegments
	}
	return Record{
		M:        m,
		Sigma:    math.Cbrt(sigma3 / m),
		EpsilonK: epsilonK / m,
	}, nil
}

// Combiner returns the segment combiner for count kind W
func Combiner[W model.CountType]() segment.Combiner[Record, W] {
	return segment.CombinerFunc[Record, W](Combine[W])
}

// BinaryRecord holds the binary interaction parameter k_ij
type BinaryRecord struct {
	KIJ float64 `json:"k_ij" yaml:"k_ij"`
}

func (r BinaryRecord) String() string {
	return fmt.Sprintf("PcSaftBinaryRecord(k_ij=%g)", r.KIJ)
}

// CombineBinary averages segment-segment k_ij weighted by n_a·n_b
func CombineBinary[W model.CountType](segments []segment.BinarySegment[W]) (BinaryRecord, error) {
	var kij, n float64
	for _, s := range segments {
		nab := s.Count1.Float() * s.Count2.Float()
		kij += s.Value * nab
		n += nab
	}
	if n == 0 {
		return BinaryRecord{}, ErrNoSegments
	}
	return BinaryRecord{KIJ: kij / n}, nil
}

// BinaryCombiner returns the binary combiner for count kind W
func BinaryCombiner[W model.CountType]() segment.BinaryCombiner[BinaryRecord, W] {
	return segment.BinaryCombinerFunc[BinaryRecord, W](CombineBinary[W])
}
