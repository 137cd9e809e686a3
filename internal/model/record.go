package model

import (
	"fmt"
	"strings"
)

// PureRecord is a parameter set of a pure substance. M is the model
// specific payload and stays opaque to everything in this package.
type PureRecord[M any] struct {
	Identifier  Identifier `json:"identifier" yaml:"identifier"`
	MolarWeight float64    `json:"molarweight" yaml:"molarweight"` // g/mol, 0.0 when not given
	ModelRecord M          `json:"model_record" yaml:"model_record"`
}

// NewPureRecord creates a new PureRecord
func NewPureRecord[M any](id Identifier, molarWeight float64, modelRecord M) PureRecord[M] {
	return PureRecord[M]{
		Identifier:  id,
		MolarWeight: molarWeight,
		ModelRecord: modelRecord,
	}
}

// KeyFor returns the record's key under scheme
func (r PureRecord[M]) KeyFor(scheme Scheme) (string, bool) {
	return r.Identifier.KeyFor(scheme)
}

func (r PureRecord[M]) String() string {
	return renderRecord("PureRecord", [][2]string{
		{"identifier", r.Identifier.String()},
		{"molarweight", fmt.Sprint(r.MolarWeight)},
		{"model_record", fmt.Sprintf("%v", r.ModelRecord)},
	})
}

// SegmentRecord is the parameter set of a single molecular fragment.
// Segment records are combined into pure records by group contribution methods.
type SegmentRecord[M any] struct {
	Identifier  Identifier `json:"identifier" yaml:"identifier"`
	MolarWeight float64    `json:"molarweight" yaml:"molarweight"`
	ModelRecord M          `json:"model_record" yaml:"model_record"`
}

// NewSegmentRecord creates a new SegmentRecord
func NewSegmentRecord[M any](id Identifier, molarWeight float64, modelRecord M) SegmentRecord[M] {
	return SegmentRecord[M]{
		Identifier:  id,
		MolarWeight: molarWeight,
		ModelRecord: modelRecord,
	}
}

// KeyFor returns the segment's key under scheme
func (r SegmentRecord[M]) KeyFor(scheme Scheme) (string, bool) {
	return r.Identifier.KeyFor(scheme)
}

func (r SegmentRecord[M]) String() string {
	return renderRecord("SegmentRecord", [][2]string{
		{"identifier", r.Identifier.String()},
		{"molarweight", fmt.Sprint(r.MolarWeight)},
		{"model_record", fmt.Sprintf("%v", r.ModelRecord)},
	})
}

// BinaryRecord holds interaction parameters between two substances.
// The order of ID1 and ID2 is kept as given.
type BinaryRecord[B any] struct {
	ID1         Identifier `json:"id1" yaml:"id1"`
	ID2         Identifier `json:"id2" yaml:"id2"`
	ModelRecord B          `json:"model_record" yaml:"model_record"`
}

// NewBinaryRecord creates a new BinaryRecord
func NewBinaryRecord[B any](id1, id2 Identifier, modelRecord B) BinaryRecord[B] {
	return BinaryRecord[B]{
		ID1:         id1,
		ID2:         id2,
		ModelRecord: modelRecord,
	}
}

func (r BinaryRecord[B]) String() string {
	return renderRecord("BinaryRecord", [][2]string{
		{"id1", r.ID1.String()},
		{"id2", r.ID2.String()},
		{"model_record", fmt.Sprintf("%v", r.ModelRecord)},
	})
}

func renderRecord(kind string, fields [][2]string) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteString("(")
	for _, f := range fields {
		fmt.Fprintf(&b, "\n\t%s=%s,", f[0], f[1])
	}
	b.WriteString("\n)")
	return b.String()
}
