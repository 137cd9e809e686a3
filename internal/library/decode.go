package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"
)

// decompress wraps r according to c. The returned close function releases
// decoder resources only; it does not close r.
func decompress(r io.Reader, c Compression) (io.Reader, func() error, error) {
	nop := func() error { return nil }
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return gz, gz.Close, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return dec, func() error { dec.Close(); return nil }, nil
	case CompressionLZ4:
		return lz4.NewReader(r), nop, nil
	default:
		return r, nop, nil
	}
}

// jsonElements yields the elements of a top level JSON array one at a time.
// Nothing past the last element the consumer asked for is decoded.
func jsonElements(r io.Reader) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		dec := json.NewDecoder(r)

		tok, err := dec.Token()
		if err != nil {
			yield(nil, fmt.Errorf("read library: %w", err))
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			yield(nil, fmt.Errorf("library must be a JSON array, found %v", tok))
			return
		}

		for i := 0; dec.More(); i++ {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				yield(nil, fmt.Errorf("decode record %d: %w", i, err))
				return
			}
			if !yield(raw, nil) {
				return
			}
		}

		if _, err := dec.Token(); err != nil {
			yield(nil, fmt.Errorf("read library: %w", err))
		}
	}
}

// yamlElements decodes a YAML sequence and re-encodes each element as JSON,
// so that records only need JSON decoding.
func yamlElements(r io.Reader) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		var doc []any
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			yield(nil, fmt.Errorf("read library: %w", err))
			return
		}

		for i, element := range doc {
			raw, err := json.Marshal(element)
			if err != nil {
				yield(nil, fmt.Errorf("convert record %d: %w", i, err))
				return
			}
			if !yield(raw, nil) {
				return
			}
		}
	}
}
