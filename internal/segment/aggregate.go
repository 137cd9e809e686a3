// Package segment builds pure substance records from segment (group) records.
//
// The combination of model payloads is delegated to a Combiner supplied by the
// parameter model; this package only accumulates molar weights and keeps the
// segment order intact.
package segment

import (
	"fmt"

	"github.com/ppiankov/thermoparam/internal/model"
)

// Weighted pairs a record with its count in a molecule
type Weighted[T any, W model.CountType] struct {
	Record T
	Count  W
}

// Combiner combines weighted segment payloads into a single payload.
// A payload type supporting several count kinds provides one Combiner per kind.
type Combiner[M any, W model.CountType] interface {
	Combine(segments []Weighted[M, W]) (M, error)
}

// CombinerFunc adapts a function to the Combiner interface
type CombinerFunc[M any, W model.CountType] func(segments []Weighted[M, W]) (M, error)

// Combine calls f(segments)
func (f CombinerFunc[M, W]) Combine(segments []Weighted[M, W]) (M, error) {
	return f(segments)
}

// BinarySegment is one contribution to a binary interaction: the segment-segment
// interaction value and the counts of both segments.
type BinarySegment[W model.CountType] struct {
	Value  float64
	Count1 W
	Count2 W
}

// BinaryCombiner combines weighted segment-segment interactions into a binary payload
type BinaryCombiner[B any, W model.CountType] interface {
	CombineBinary(segments []BinarySegment[W]) (B, error)
}

// BinaryCombinerFunc adapts a function to the BinaryCombiner interface
type BinaryCombinerFunc[B any, W model.CountType] func(segments []BinarySegment[W]) (B, error)

// CombineBinary calls f(segments)
func (f BinaryCombinerFunc[B, W]) CombineBinary(segments []BinarySegment[W]) (B, error) {
	return f(segments)
}

// AggregatePureRecord builds a pure record from weighted segment records.
// The molar weight is the count-weighted sum of the segment molar weights,
// summed in input order. An empty segment list is passed on to the combiner.
func AggregatePureRecord[M any, W model.CountType](id model.Identifier, segments []Weighted[model.SegmentRecord[M], W], c Combiner[M, W]) (model.PureRecord[M], error) {
	var molarWeight float64
	payloads := make([]Weighted[M, W], 0, len(segments))
	for _, s := range segments {
		molarWeight += s.Count.ApplyCount(s.Record.MolarWeight)
		payloads = append(payloads, Weighted[M, W]{Record: s.Record.ModelRecord, Count: s.Count})
	}

	modelRecord, err := c.Combine(payloads)
	if err != nil {
		return model.PureRecord[M]{}, &AggregationError{ID1: id, Err: err}
	}

	return model.NewPureRecord(id, molarWeight, modelRecord), nil
}

// AggregateBinaryRecord builds a binary record from weighted segment interactions
func AggregateBinaryRecord[B any, W model.CountType](id1, id2 model.Identifier, segments []BinarySegment[W], c BinaryCombiner[B, W]) (model.BinaryRecord[B], error) {
	modelRecord, err := c.CombineBinary(segments)
	if err != nil {
		return model.BinaryRecord[B]{}, &AggregationError{ID1: id1, ID2: &id2, Err: err}
	}
	return model.NewBinaryRecord(id1, id2, modelRecord), nil
}

// AggregationError wraps a combination failure with the record it was building
type AggregationError struct {
	ID1 model.Identifier
	ID2 *model.Identifier // set for binary records
	Err error
}

func (e *AggregationError) Error() string {
	if e.ID2 != nil {
		return fmt.Sprintf("aggregate binary record %s/%s: %v", e.ID1, *e.ID2, e.Err)
	}
	return fmt.Sprintf("aggregate %s: %v", e.ID1, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
