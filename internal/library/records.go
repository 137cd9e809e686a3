package library

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/ppiankov/thermoparam/internal/model"
	"github.com/ppiankov/thermoparam/internal/segment"
)

// Records decodes every element at location into T
func Records[T any](ctx context.Context, l *Loader, location string, kind Kind) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		i := 0
		for raw, err := range l.Elements(ctx, location, kind) {
			if err != nil {
				yield(zero, err)
				return
			}
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				yield(zero, fmt.Errorf("%s: decode %s record %d: %w", location, kind, i, err))
				return
			}
			if !yield(v, nil) {
				return
			}
			i++
		}
	}
}

// Pure streams the pure records of a library
func Pure[M any](ctx context.Context, l *Loader, location string) iter.Seq2[model.PureRecord[M], error] {
	return Records[model.PureRecord[M]](ctx, l, location, KindPure)
}

// Segments streams the segment records of a library
func Segments[M any](ctx context.Context, l *Loader, location string) iter.Seq2[model.SegmentRecord[M], error] {
	return Records[model.SegmentRecord[M]](ctx, l, location, KindSegment)
}

// Chemicals streams chemical records (segment compositions)
func Chemicals(ctx context.Context, l *Loader, location string) iter.Seq2[segment.ChemicalRecord, error] {
	return Records[segment.ChemicalRecord](ctx, l, location, KindChemical)
}

// BinarySegments streams segment-segment interaction records
func BinarySegments(ctx context.Context, l *Loader, location string) iter.Seq2[segment.BinarySegmentRecord, error] {
	return Records[segment.BinarySegmentRecord](ctx, l, location, KindBinary)
}

// Binary loads all binary records of a library. There is nothing to match;
// records are returned in library order.
func Binary[B any](ctx context.Context, l *Loader, location string) ([]model.BinaryRecord[B], error) {
	return Collect(Records[model.BinaryRecord[B]](ctx, l, location, KindBinary))
}

// Collect drains seq, stopping at the first error
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
