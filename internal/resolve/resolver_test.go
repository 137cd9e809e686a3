package resolve

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/thermoparam/internal/model"
)

type payload struct {
	Tag string
}

func rec(name, cas, tag string) model.PureRecord[payload] {
	return model.NewPureRecord(model.Identifier{Name: name, CAS: cas}, 1.0, payload{Tag: tag})
}

func names(records []model.PureRecord[payload]) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Identifier.Name
	}
	return out
}

func TestResolve_PreservesRequestOrder(t *testing.T) {
	candidates := []model.PureRecord[payload]{
		rec("methane", "74-82-8", "m"),
		rec("ethane", "74-84-0", "e"),
		rec("propane", "74-98-6", "p"),
		rec("butane", "106-97-8", "b"),
	}

	tests := [][]string{
		{"propane", "methane"},
		{"butane", "ethane", "methane", "propane"},
		{"ethane"},
	}

	for _, requested := range tests {
		got, err := Resolve(requested, candidates, model.SchemeName)
		require.NoError(t, err)
		assert.Equal(t, requested, names(got))
	}
}

func TestResolve_ByCAS(t *testing.T) {
	candidates := []model.PureRecord[payload]{
		rec("methane", "74-82-8", "m"),
		rec("ethane", "74-84-0", "e"),
	}

	got, err := Resolve([]string{"74-84-0", "74-82-8"}, candidates, model.SchemeCAS)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ethane", got[0].Identifier.Name)
	assert.Equal(t, "methane", got[1].Identifier.Name)
}

func TestResolve_DuplicateRequest(t *testing.T) {
	candidates := []model.PureRecord[payload]{rec("A", "", "a")}

	for _, c := range [][]model.PureRecord[payload]{candidates, nil} {
		_, err := Resolve([]string{"A", "A"}, c, model.SchemeName)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateRequest)

		var dup *DuplicateRequestError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, 2, dup.Requested)
		assert.Equal(t, 1, dup.Unique)
		assert.NotContains(t, err.Error(), "\"A\"")
	}
}

func TestResolve_DuplicateCheckedBeforeScan(t *testing.T) {
	pulled := 0
	var source iter.Seq2[model.PureRecord[payload], error] = func(yield func(model.PureRecord[payload], error) bool) {
		pulled++
		yield(rec("A", "", "a"), nil)
	}

	_, err := ResolveSeq([]string{"A", "B", "A"}, source, model.SchemeName)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	assert.Zero(t, pulled)
}

func TestResolve_ReportsAllMissing(t *testing.T) {
	candidates := []model.PureRecord[payload]{
		rec("A", "", "a"),
		rec("B", "", "b"),
	}

	_, err := Resolve([]string{"A", "B", "C"}, candidates, model.SchemeName)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolved)

	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []string{"C"}, unresolved.Keys)
	assert.Equal(t, "name", unresolved.Scheme)

	_, err = Resolve([]string{"x10", "A", "x9", "x1"}, candidates, model.SchemeName)
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []string{"x1", "x9", "x10"}, unresolved.Keys)
	assert.Contains(t, err.Error(), "x1, x9, x10")
}

func TestResolve_FirstMatchWins(t *testing.T) {
	candidates := []model.PureRecord[payload]{
		rec("A", "", "first"),
		rec("A", "", "second"),
	}

	got, err := Resolve([]string{"A"}, candidates, model.SchemeName)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].ModelRecord.Tag)
}

func TestResolve_FirstMatchWinsWhileOthersPending(t *testing.T) {
	candidates := []model.PureRecord[payload]{
		rec("A", "", "first"),
		rec("A", "", "second"),
		rec("B", "", "b"),
	}

	got, err := Resolve([]string{"B", "A"}, candidates, model.SchemeName)
	require.NoError(t, err)
	assert.Equal(t, "b", got[0].ModelRecord.Tag)
	assert.Equal(t, "first", got[1].ModelRecord.Tag)
}

func TestResolve_TrailingCandidatesIgnored(t *testing.T) {
	alone, err := Resolve([]string{"A"}, []model.PureRecord[payload]{rec("A", "", "a")}, model.SchemeName)
	require.NoError(t, err)

	withTail, err := Resolve([]string{"A"}, []model.PureRecord[payload]{
		rec("A", "", "a"),
		rec("B", "", "b"),
		rec("C", "", "c"),
	}, model.SchemeName)
	require.NoError(t, err)

	assert.Equal(t, alone, withTail)
}

func TestResolveSeq_StopsPullingWhenSatisfied(t *testing.T) {
	var seen []string
	var source iter.Seq2[model.PureRecord[payload], error] = func(yield func(model.PureRecord[payload], error) bool) {
		for _, n := range []string{"A", "B", "C", "D"} {
			seen = append(seen, n)
			if !yield(rec(n, "", n), nil) {
				return
			}
		}
	}

	got, err := ResolveSeq([]string{"B", "A"}, source, model.SchemeName)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, names(got))
	assert.Equal(t, []string{"A", "B"}, seen)
}

func TestResolveSeq_SourceError(t *testing.T) {
	boom := errors.New("malformed record")
	var source iter.Seq2[model.PureRecord[payload], error] = func(yield func(model.PureRecord[payload], error) bool) {
		if !yield(rec("A", "", "a"), nil) {
			return
		}
		yield(model.PureRecord[payload]{}, boom)
	}

	_, err := ResolveSeq([]string{"A", "B"}, source, model.SchemeName)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnresolved)
}

func TestResolveSeq_ErrorAfterExhaustionNotSeen(t *testing.T) {
	var source iter.Seq2[model.PureRecord[payload], error] = func(yield func(model.PureRecord[payload], error) bool) {
		if !yield(rec("A", "", "a"), nil) {
			return
		}
		yield(model.PureRecord[payload]{}, errors.New("never reached"))
	}

	got, err := ResolveSeq([]string{"A"}, source, model.SchemeName)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestResolve_SkipsCandidatesWithoutKey(t *testing.T) {
	candidates := []model.PureRecord[payload]{
		rec("A", "", "no cas"),
		rec("A", "1-2-3", "with cas"),
	}

	_, err := Resolve([]string{""}, candidates, model.SchemeCAS)
	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)

	got, err := Resolve([]string{"1-2-3"}, candidates, model.SchemeCAS)
	require.NoError(t, err)
	assert.Equal(t, "with cas", got[0].ModelRecord.Tag)
}

func TestResolve_EmptyRequest(t *testing.T) {
	got, err := Resolve(nil, []model.PureRecord[payload]{rec("A", "", "a")}, model.SchemeName)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolve_DoesNotMutateCandidates(t *testing.T) {
	candidates := []model.PureRecord[payload]{
		rec("B", "", "b"),
		rec("A", "", "a"),
	}
	before := append([]model.PureRecord[payload](nil), candidates...)

	_, err := Resolve([]string{"A", "B"}, candidates, model.SchemeName)
	require.NoError(t, err)
	assert.Equal(t, before, candidates)
}

func TestResolve_SegmentRecords(t *testing.T) {
	segments := []model.SegmentRecord[payload]{
		model.NewSegmentRecord(model.Identifier{Name: "CH3"}, 15.035, payload{Tag: "ch3"}),
		model.NewSegmentRecord(model.Identifier{Name: "CH2"}, 14.027, payload{Tag: "ch2"}),
	}

	got, err := Resolve([]string{"CH2", "CH3"}, segments, model.SchemeName)
	require.NoError(t, err)
	assert.Equal(t, "ch2", got[0].ModelRecord.Tag)
	assert.Equal(t, "ch3", got[1].ModelRecord.Tag)
}

func TestCheckDuplicates(t *testing.T) {
	assert.NoError(t, CheckDuplicates([]string{"a", "b"}))
	assert.ErrorIs(t, CheckDuplicates([]string{"a", "b", "a"}), ErrDuplicateRequest)
}
