package segment

import (
	"fmt"

	"github.com/ppiankov/thermoparam/internal/model"
	"github.com/ppiankov/thermoparam/internal/resolve"
)

// ChemicalRecord describes a substance by the segments it is built from.
// Segments may repeat; every occurrence counts once.
type ChemicalRecord struct {
	Identifier model.Identifier `json:"identifier" yaml:"identifier"`
	Segments   []string         `json:"segments" yaml:"segments"`
}

// KeyFor returns the chemical's key under scheme
func (c ChemicalRecord) KeyFor(scheme model.Scheme) (string, bool) {
	return c.Identifier.KeyFor(scheme)
}

// SegmentCount is the number of occurrences of one segment in a chemical
type SegmentCount struct {
	Name  string
	Count model.Integral
}

// SegmentCounts returns each distinct segment with its count, in order of first appearance
func (c ChemicalRecord) SegmentCounts() []SegmentCount {
	index := make(map[string]int, len(c.Segments))
	var counts []SegmentCount
	for _, s := range c.Segments {
		if i, ok := index[s]; ok {
			counts[i].Count++
			continue
		}
		index[s] = len(counts)
		counts = append(counts, SegmentCount{Name: s, Count: 1})
	}
	return counts
}

// BinarySegmentRecord is the interaction value between two segments
type BinarySegmentRecord struct {
	ID1         string  `json:"id1" yaml:"id1"`
	ID2         string  `json:"id2" yaml:"id2"`
	ModelRecord float64 `json:"model_record" yaml:"model_record"`
}

// FromChemicalRecord looks up the segments of chem in the segment library
// (matched under scheme) and aggregates them into a pure record.
func FromChemicalRecord[M any](chem ChemicalRecord, library []model.SegmentRecord[M], scheme model.Scheme, c Combiner[M, model.Integral]) (model.PureRecord[M], error) {
	counts := chem.SegmentCounts()
	keys := make([]string, len(counts))
	for i, sc := range counts {
		keys[i] = sc.Name
	}

	found, err := resolve.Resolve(keys, library, scheme)
	if err != nil {
		return model.PureRecord[M]{}, fmt.Errorf("segments of %s: %w", chem.Identifier, err)
	}

	weighted := make([]Weighted[model.SegmentRecord[M], model.Integral], len(found))
	for i, seg := range found {
		weighted[i] = Weighted[model.SegmentRecord[M], model.Integral]{Record: seg, Count: counts[i].Count}
	}
	return AggregatePureRecord(chem.Identifier, weighted, c)
}

// FromChemicalRecords applies FromChemicalRecord to every chemical, keeping order
func FromChemicalRecords[M any](chems []ChemicalRecord, library []model.SegmentRecord[M], scheme model.Scheme, c Combiner[M, model.Integral]) ([]model.PureRecord[M], error) {
	records := make([]model.PureRecord[M], 0, len(chems))
	for _, chem := range chems {
		r, err := FromChemicalRecord(chem, library, scheme, c)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

type segmentPair struct {
	a, b string
}

func indexBinarySegments(records []BinarySegmentRecord) map[segmentPair]float64 {
	index := make(map[segmentPair]float64, 2*len(records))
	for _, r := range records {
		if _, ok := index[segmentPair{r.ID1, r.ID2}]; ok {
			continue
		}
		index[segmentPair{r.ID1, r.ID2}] = r.ModelRecord
		index[segmentPair{r.ID2, r.ID1}] = r.ModelRecord
	}
	return index
}

// BinaryFromChemicalRecords combines the segment-segment interactions between two
// chemicals. Every pair of segments contributes; a pair without a record contributes 0.
func BinaryFromChemicalRecords[B any](chem1, chem2 ChemicalRecord, records []BinarySegmentRecord, c BinaryCombiner[B, model.Integral]) (model.BinaryRecord[B], error) {
	return binaryFromIndex(chem1, chem2, indexBinarySegments(records), c)
}

func binaryFromIndex[B any](chem1, chem2 ChemicalRecord, index map[segmentPair]float64, c BinaryCombiner[B, model.Integral]) (model.BinaryRecord[B], error) {
	counts1 := chem1.SegmentCounts()
	counts2 := chem2.SegmentCounts()

	segments := make([]BinarySegment[model.Integral], 0, len(counts1)*len(counts2))
	for _, s1 := range counts1 {
		for _, s2 := range counts2 {
			segments = append(segments, BinarySegment[model.Integral]{
				Value:  index[segmentPair{s1.Name, s2.Name}],
				Count1: s1.Count,
				Count2: s2.Count,
			})
		}
	}
	return AggregateBinaryRecord(chem1.Identifier, chem2.Identifier, segments, c)
}

// BinaryRecordsFromChemicals builds a binary record for every unordered pair (i < j) of chems
func BinaryRecordsFromChemicals[B any](chems []ChemicalRecord, records []BinarySegmentRecord, c BinaryCombiner[B, model.Integral]) ([]model.BinaryRecord[B], error) {
	index := indexBinarySegments(records)
	var out []model.BinaryRecord[B]
	for i := range chems {
		for j := i + 1; j < len(chems); j++ {
			br, err := binaryFromIndex(chems[i], chems[j], index, c)
			if err != nil {
				return nil, err
			}
			out = append(out, br)
		}
	}
	return out, nil
}
