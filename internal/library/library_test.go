package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/ppiankov/thermoparam/internal/model"
)

type params struct {
	A float64 `json:"a"`
}

const pureJSON = `[
  {"identifier": {"cas": "74-82-8", "name": "methane"}, "molarweight": 16.043, "model_record": {"a": 1}},
  {"identifier": {"cas": "74-84-0", "name": "ethane"}, "molarweight": 30.07, "model_record": {"a": 2}}
]`

const pureYAML = `
- identifier: {cas: 74-82-8, name: methane}
  molarweight: 16.043
  model_record: {a: 1}
- identifier: {cas: 74-84-0, name: ethane}
  molarweight: 30.07
  model_record: {a: 2}
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func names(t *testing.T, records []model.PureRecord[params]) []string {
	t.Helper()
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Identifier.Name
	}
	return out
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw         string
		source      Source
		path        string
		bucket      string
		table       string
		format      Format
		compression Compression
	}{
		{"params/pure.json", SourceFile, "params/pure.json", "", "", FormatJSON, CompressionNone},
		{"file:///tmp/pure.yml", SourceFile, "/tmp/pure.yml", "", "", FormatYAML, CompressionNone},
		{"pure.yaml.gz", SourceFile, "pure.yaml.gz", "", "", FormatYAML, CompressionGzip},
		{"https://example.org/lib/pure.json.zst", SourceHTTP, "https://example.org/lib/pure.json.zst", "", "", FormatJSON, CompressionZstd},
		{"s3://params/gross2001/pure.json.lz4", SourceS3, "gross2001/pure.json.lz4", "params", "", FormatJSON, CompressionLZ4},
		{"sqlite:params.db", SourceSQLite, "params.db", "", "", FormatJSON, CompressionNone},
		{"sqlite://params.db?table=gc_segments", SourceSQLite, "params.db", "", "gc_segments", FormatJSON, CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			loc, err := ParseLocation(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.source, loc.Source)
			assert.Equal(t, tt.path, loc.Path)
			assert.Equal(t, tt.bucket, loc.Bucket)
			assert.Equal(t, tt.table, loc.Table)
			assert.Equal(t, tt.format, loc.Format)
			assert.Equal(t, tt.compression, loc.Compression)
		})
	}
}

func TestParseLocation_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "s3://bucket-only", "sqlite:", "sqlite:x.db?table=a;drop"} {
		_, err := ParseLocation(raw)
		assert.Error(t, err, raw)
	}
}

func TestPure_JSON(t *testing.T) {
	p := writeFile(t, "pure.json", []byte(pureJSON))
	records, err := Collect(Pure[params](context.Background(), NewLoader(Options{}), p))
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, []string{"methane", "ethane"}, names(t, records))
	assert.Equal(t, "74-84-0", records[1].Identifier.CAS)
	assert.InDelta(t, 30.07, records[1].MolarWeight, 1e-12)
	assert.Equal(t, 2.0, records[1].ModelRecord.A)
}

func TestPure_YAML(t *testing.T) {
	p := writeFile(t, "pure.yaml", []byte(pureYAML))
	records, err := Collect(Pure[params](context.Background(), NewLoader(Options{}), p))
	require.NoError(t, err)
	assert.Equal(t, []string{"methane", "ethane"}, names(t, records))
	assert.Equal(t, 1.0, records[0].ModelRecord.A)
}

func TestPure_EmptyLibraries(t *testing.T) {
	for name, content := range map[string]string{"empty.json": "[]", "empty.yaml": ""} {
		t.Run(name, func(t *testing.T) {
			p := writeFile(t, name, []byte(content))
			records, err := Collect(Pure[params](context.Background(), NewLoader(Options{}), p))
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestElements_StopsEarly(t *testing.T) {
	// Everything after the first record is malformed; a consumer that stops
	// after one record must never see it.
	p := writeFile(t, "pure.json", []byte(`[{"identifier": {"name": "methane"}}, {not json`))

	count := 0
	for _, err := range NewLoader(Options{}).Elements(context.Background(), p, KindPure) {
		require.NoError(t, err)
		count++
		break
	}
	assert.Equal(t, 1, count)

	_, err := Collect(Pure[params](context.Background(), NewLoader(Options{}), p))
	assert.Error(t, err)
}

func TestElements_NotAnArray(t *testing.T) {
	p := writeFile(t, "pure.json", []byte(`{"identifier": {}}`))
	_, err := Collect(Pure[params](context.Background(), NewLoader(Options{}), p))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON array")
}

func TestElements_MissingFile(t *testing.T) {
	_, err := Collect(Pure[params](context.Background(), NewLoader(Options{}), filepath.Join(t.TempDir(), "nope.json")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecords_DecodeError(t *testing.T) {
	p := writeFile(t, "pure.json", []byte(`[{"molarweight": "heavy"}]`))
	_, err := Collect(Pure[params](context.Background(), NewLoader(Options{}), p))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode pure record 0")
}

func TestCompressedLibraries(t *testing.T) {
	compressors := map[string]func(io.Writer) io.WriteCloser{
		"pure.json.gz": func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) },
		"pure.json.zst": func(w io.Writer) io.WriteCloser {
			enc, err := zstd.NewWriter(w)
			require.NoError(t, err)
			return enc
		},
		"pure.json.lz4": func(w io.Writer) io.WriteCloser { return lz4.NewWriter(w) },
	}

	for name, newWriter := range compressors {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			w := newWriter(&buf)
			_, err := io.WriteString(w, pureJSON)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			p := writeFile(t, name, buf.Bytes())
			records, err := Collect(Pure[params](context.Background(), NewLoader(Options{}), p))
			require.NoError(t, err)
			assert.Equal(t, []string{"methane", "ethane"}, names(t, records))
		})
	}
}

type fakeFetcher struct {
	bodies map[string]string
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("unexpected status: 404 404 Not Found")
	}
	return []byte(body), nil
}

func TestElements_HTTP(t *testing.T) {
	url := "https://example.org/pure.yaml"
	fetcher := &fakeFetcher{bodies: map[string]string{url: pureYAML}}
	loader := NewLoader(Options{Fetcher: fetcher})

	records, err := Collect(Pure[params](context.Background(), loader, url))
	require.NoError(t, err)
	assert.Equal(t, []string{"methane", "ethane"}, names(t, records))
	assert.Equal(t, []string{url}, fetcher.calls)

	_, err = Collect(Pure[params](context.Background(), loader, "https://example.org/missing.json"))
	assert.Error(t, err)
}

func TestElements_HTTPWithoutFetcher(t *testing.T) {
	_, err := Collect(Pure[params](context.Background(), NewLoader(Options{}), "https://example.org/pure.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no http fetcher")
}

type fakeStore struct {
	objects map[string]string
	closed  int
}

type trackedReader struct {
	io.Reader
	store *fakeStore
}

func (r *trackedReader) Close() error {
	r.store.closed++
	return nil
}

func (s *fakeStore) Open(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	body, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, ErrNotFound)
	}
	return &trackedReader{Reader: strings.NewReader(body), store: s}, nil
}

func TestElements_S3(t *testing.T) {
	store := &fakeStore{objects: map[string]string{"params/pure.json": pureJSON}}
	loader := NewLoader(Options{Store: store})

	records, err := Collect(Pure[params](context.Background(), loader, "s3://params/pure.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"methane", "ethane"}, names(t, records))
	assert.Equal(t, 1, store.closed)

	_, err = Collect(Pure[params](context.Background(), loader, "s3://params/other.json"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func newSQLiteLibrary(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "params.db")
	conn, err := sqlite.OpenConn(p, sqlite.OpenReadWrite, sqlite.OpenCreate)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, sqlitex.ExecuteScript(conn, `
		CREATE TABLE pure_records (identifier TEXT NOT NULL, molarweight REAL, model_record TEXT NOT NULL);
		CREATE TABLE binary_records (id1 TEXT NOT NULL, id2 TEXT NOT NULL, model_record TEXT NOT NULL);
	`, nil))

	insert := func(query string, args ...any) {
		require.NoError(t, sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args}))
	}
	insert(`INSERT INTO pure_records VALUES (?, ?, ?)`, `{"name": "methane"}`, 16.043, `{"a": 1}`)
	insert(`INSERT INTO pure_records VALUES (?, NULL, ?)`, `{"name": "ethane"}`, `{"a": 2}`)
	insert(`INSERT INTO binary_records VALUES (?, ?, ?)`, `{"name": "methane"}`, `{"name": "ethane"}`, `{"a": 0.01}`)
	return p
}

func TestElements_SQLite(t *testing.T) {
	loader := NewLoader(Options{})
	p := newSQLiteLibrary(t)

	records, err := Collect(Pure[params](context.Background(), loader, "sqlite:"+p))
	require.NoError(t, err)
	assert.Equal(t, []string{"methane", "ethane"}, names(t, records))
	assert.InDelta(t, 16.043, records[0].MolarWeight, 1e-12)
	assert.Zero(t, records[1].MolarWeight)

	binary, err := Binary[params](context.Background(), loader, "sqlite:"+p)
	require.NoError(t, err)
	require.Len(t, binary, 1)
	assert.Equal(t, "methane", binary[0].ID1.Name)
	assert.Equal(t, "ethane", binary[0].ID2.Name)
	assert.Equal(t, 0.01, binary[0].ModelRecord.A)
}

func TestElements_SQLiteStopsEarly(t *testing.T) {
	p := newSQLiteLibrary(t)

	count := 0
	for _, err := range NewLoader(Options{}).Elements(context.Background(), "sqlite:"+p, KindPure) {
		require.NoError(t, err)
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestElements_SQLiteMissingTable(t *testing.T) {
	p := newSQLiteLibrary(t)
	_, err := Collect(Pure[params](context.Background(), NewLoader(Options{}), "sqlite:"+p+"?table=nothing_here"))
	assert.Error(t, err)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "pure_records", KindPure.defaultTable())
	assert.Equal(t, "segment_records", KindSegment.defaultTable())
	assert.Equal(t, "binary_records", KindBinary.defaultTable())
	assert.Equal(t, "chemical_records", KindChemical.defaultTable())
}
