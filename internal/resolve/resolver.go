// Package resolve matches requested substances against candidate parameter records.
//
// Matching is exact equality of one identifier field (the scheme) per call.
// The first candidate carrying a requested key wins; candidates after the
// last match are never looked at, so streaming sources stop being read early.
package resolve

import (
	"fmt"
	"iter"

	"github.com/ppiankov/thermoparam/internal/model"
)

// Keyed is any record that can be matched under an identifier scheme
type Keyed interface {
	KeyFor(scheme model.Scheme) (string, bool)
}

// Resolve returns one candidate per requested key, in request order
func Resolve[R Keyed](requested []string, candidates []R, scheme model.Scheme) ([]R, error) {
	return ResolveSeq(requested, Slice(candidates), scheme)
}

// ResolveSeq is Resolve over a streaming source. An error yielded by the
// source aborts the call.
func ResolveSeq[R Keyed](requested []string, candidates iter.Seq2[R, error], scheme model.Scheme) ([]R, error) {
	pending, err := pendingSet(requested)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]R, len(requested))
	if len(pending) > 0 {
		for candidate, err := range candidates {
			if err != nil {
				return nil, fmt.Errorf("read candidates: %w", err)
			}
			key, ok := candidate.KeyFor(scheme)
			if !ok {
				continue
			}
			// check, then remove, then insert: a key is consumed once
			if _, wanted := pending[key]; !wanted {
				continue
			}
			delete(pending, key)
			resolved[key] = candidate

			if len(pending) == 0 {
				break
			}
		}
	}

	if len(pending) > 0 {
		return nil, newUnresolvedError(scheme.String(), pending)
	}

	out := make([]R, len(requested))
	for i, key := range requested {
		out[i] = resolved[key]
	}
	return out, nil
}

// CheckDuplicates fails with a DuplicateRequestError if requested repeats a key
func CheckDuplicates(requested []string) error {
	_, err := pendingSet(requested)
	return err
}

func pendingSet(requested []string) (map[string]struct{}, error) {
	pending := make(map[string]struct{}, len(requested))
	for _, key := range requested {
		pending[key] = struct{}{}
	}
	if len(pending) < len(requested) {
		return nil, &DuplicateRequestError{Requested: len(requested), Unique: len(pending)}
	}
	return pending, nil
}

// Slice adapts a slice to the candidate stream accepted by ResolveSeq
func Slice[R any](records []R) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		for _, r := range records {
			if !yield(r, nil) {
				return
			}
		}
	}
}
