// Package joback holds the Joback & Reid ideal gas heat capacity parameters.
package joback

import (
	"fmt"

	"github.com/ppiankov/thermoparam/internal/model"
	"github.com/ppiankov/thermoparam/internal/segment"
)

// Record holds the coefficients of c_p = a + bT + cT² + dT³ + eT⁴
type Record struct {
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
	C float64 `json:"c" yaml:"c"`
	D float64 `json:"d" yaml:"d"`
	E float64 `json:"e" yaml:"e"`
}

func (r Record) String() string {
	return fmt.Sprintf("JobackRecord(a=%g, b=%g, c=%g, d=%g, e=%g)", r.A, r.B, r.C, r.D, r.E)
}

// offsets of the Joback correlation, added once per molecule
var offsets = Record{A: -37.93, B: 0.21, C: -3.91e-4, D: 2.06e-7}

// Combine sums the group contributions onto the correlation offsets.
// No segments give the bare offsets.
func Combine[W model.CountType](segments []segment.Weighted[Record, W]) (Record, error) {
	r := offsets
	for _, s := range segments {
		r.A += s.Count.ApplyCount(s.Record.A)
		r.B += s.Count.ApplyCount(s.Record.B)
		r.C += s.Count.ApplyCount(s.Record.C)
		r.D += s.Count.ApplyCount(s.Record.D)
		r.E += s.Count.ApplyCount(s.Record.E)
	}
	return r, nil
}

// Combiner returns the segment combiner for count kind W
func Combiner[W model.CountType]() segment.Combiner[Record, W] {
	return segment.CombinerFunc[Record, W](Combine[W])
}
