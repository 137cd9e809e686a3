package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

var (
	// ErrDuplicateRequest is returned when a substance is requested more than once
	ErrDuplicateRequest = errors.New("duplicate substance request")

	// ErrUnresolved is returned when requested substances have no matching record
	ErrUnresolved = errors.New("substances not found")
)

// DuplicateRequestError reports a request list naming the same substance twice.
// It does not name the substance.
type DuplicateRequestError struct {
	Requested int // length of the request list
	Unique    int // number of distinct keys in it
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("a substance was defined more than once in the request list (%d requested, %d distinct)", e.Requested, e.Unique)
}

func (e *DuplicateRequestError) Is(target error) bool {
	return target == ErrDuplicateRequest
}

// UnresolvedError lists every requested key left without a record
type UnresolvedError struct {
	Scheme string
	Keys   []string // natural order
}

func newUnresolvedError(scheme string, pending map[string]struct{}) *UnresolvedError {
	keys := make([]string, 0, len(pending))
	for k := range pending {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	return &UnresolvedError{Scheme: scheme, Keys: keys}
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%d substance(s) not found by %s: %s", len(e.Keys), e.Scheme, strings.Join(e.Keys, ", "))
}

func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolved
}
