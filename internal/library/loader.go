// Package library reads parameter libraries into streams of decoded records.
//
// A library is a sequence of records stored as a JSON array, a YAML sequence
// or an SQLite table. Records are decoded lazily, so a consumer that stops
// early (the resolver does) never decodes the rest of the library.
package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Kind is the record type a library holds
type Kind int

const (
	KindPure Kind = iota
	KindSegment
	KindBinary
	KindChemical
)

func (k Kind) String() string {
	switch k {
	case KindSegment:
		return "segment"
	case KindBinary:
		return "binary"
	case KindChemical:
		return "chemical"
	default:
		return "pure"
	}
}

func (k Kind) defaultTable() string {
	return k.String() + "_records"
}

// Fetcher downloads http(s) libraries
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options configures a Loader. Fetcher and Store may be nil when no remote
// libraries are used.
type Options struct {
	Fetcher Fetcher
	Store   ObjectStore
	Logger  *zap.Logger
}

// Loader opens libraries from any supported location
type Loader struct {
	fetcher Fetcher
	store   ObjectStore
	log     *zap.Logger
}

// NewLoader creates a Loader
func NewLoader(opts Options) *Loader {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		fetcher: opts.Fetcher,
		store:   opts.Store,
		log:     log.Named("library"),
	}
}

// Elements yields the raw JSON encoding of every record at location
func (l *Loader) Elements(ctx context.Context, location string, kind Kind) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		loc, err := ParseLocation(location)
		if err != nil {
			yield(nil, err)
			return
		}
		l.log.Debug("Opening library",
			zap.String("location", location),
			zap.Stringer("source", loc.Source),
			zap.Stringer("kind", kind))

		if loc.Source == SourceSQLite {
			sqliteElements(ctx, loc, kind)(yield)
			return
		}

		rc, err := l.open(ctx, loc)
		if err != nil {
			yield(nil, err)
			return
		}
		r, release, err := decompress(rc, loc.Compression)
		if err != nil {
			_ = rc.Close()
			yield(nil, fmt.Errorf("%s: %w", location, err))
			return
		}
		defer func() {
			if err := multierr.Append(release(), rc.Close()); err != nil {
				l.log.Warn("Unable to close library", zap.String("location", location), zap.Error(err))
			}
		}()

		elements := jsonElements(r)
		if loc.Format == FormatYAML {
			elements = yamlElements(r)
		}
		for raw, err := range elements {
			if err != nil {
				yield(nil, fmt.Errorf("%s: %w", location, err))
				return
			}
			if !yield(raw, nil) {
				return
			}
		}
	}
}

func (l *Loader) open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	switch loc.Source {
	case SourceHTTP:
		if l.fetcher == nil {
			return nil, fmt.Errorf("%s: no http fetcher configured", loc.Raw)
		}
		data, err := l.fetcher.Fetch(ctx, loc.Path)
		if err != nil {
			return nil, fmt.Errorf("fetch library: %w", err)
		}
		return io.NopCloser(bytes.NewReader(data)), nil

	case SourceS3:
		if l.store == nil {
			return nil, fmt.Errorf("%s: no object store configured", loc.Raw)
		}
		return l.store.Open(ctx, loc.Bucket, loc.Path)

	default:
		f, err := os.Open(loc.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("open library %s: %w", loc.Path, ErrNotFound)
			}
			return nil, fmt.Errorf("open library: %w", err)
		}
		return f, nil
	}
}
