package library

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Source is where a library is read from
type Source int

const (
	SourceFile Source = iota
	SourceHTTP
	SourceS3
	SourceSQLite
)

func (s Source) String() string {
	switch s {
	case SourceHTTP:
		return "http"
	case SourceS3:
		return "s3"
	case SourceSQLite:
		return "sqlite"
	default:
		return "file"
	}
}

// Format is the encoding of a file based library
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// Compression wraps the encoded library
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

// Location is a parsed library location. Accepted forms:
//
//	path/to/lib.json[.gz|.zst|.lz4]   local file (also file://...)
//	https://host/lib.yaml              downloaded through the Fetcher
//	s3://bucket/key.json.zst           object storage
//	sqlite:path/to/lib.db?table=name   SQLite database
type Location struct {
	Raw         string
	Source      Source
	Path        string // file path, URL, object key or database path
	Bucket      string // s3 only
	Table       string // sqlite only, empty selects the default table
	Format      Format
	Compression Compression
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseLocation parses a library location string
func ParseLocation(raw string) (Location, error) {
	loc := Location{Raw: raw}
	if strings.TrimSpace(raw) == "" {
		return loc, fmt.Errorf("empty library location")
	}

	var name string
	switch {
	case strings.HasPrefix(raw, "sqlite:"):
		loc.Source = SourceSQLite
		rest := strings.TrimPrefix(strings.TrimPrefix(raw, "sqlite:"), "//")
		if i := strings.IndexByte(rest, '?'); i >= 0 {
			query, err := url.ParseQuery(rest[i+1:])
			if err != nil {
				return loc, fmt.Errorf("parse sqlite location %q: %w", raw, err)
			}
			rest = rest[:i]
			loc.Table = query.Get("table")
			if loc.Table != "" && !tableName.MatchString(loc.Table) {
				return loc, fmt.Errorf("invalid sqlite table name %q", loc.Table)
			}
		}
		if rest == "" {
			return loc, fmt.Errorf("sqlite location %q has no database path", raw)
		}
		loc.Path = rest
		return loc, nil

	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		u, err := url.Parse(raw)
		if err != nil {
			return loc, fmt.Errorf("parse library url: %w", err)
		}
		loc.Source = SourceHTTP
		loc.Path = raw
		name = u.Path

	case strings.HasPrefix(raw, "s3://"):
		u, err := url.Parse(raw)
		if err != nil {
			return loc, fmt.Errorf("parse s3 location: %w", err)
		}
		loc.Source = SourceS3
		loc.Bucket = u.Host
		loc.Path = strings.TrimPrefix(u.Path, "/")
		if loc.Bucket == "" || loc.Path == "" {
			return loc, fmt.Errorf("s3 location %q needs bucket and key", raw)
		}
		name = loc.Path

	default:
		loc.Source = SourceFile
		loc.Path = strings.TrimPrefix(raw, "file://")
		name = loc.Path
	}

	loc.Format, loc.Compression = detectEncoding(name)
	return loc, nil
}

func detectEncoding(name string) (Format, Compression) {
	name = strings.ToLower(path.Base(name))

	compression := CompressionNone
	switch {
	case strings.HasSuffix(name, ".gz"):
		compression = CompressionGzip
	case strings.HasSuffix(name, ".zst"):
		compression = CompressionZstd
	case strings.HasSuffix(name, ".lz4"):
		compression = CompressionLZ4
	}
	if compression != CompressionNone {
		name = strings.TrimSuffix(name, path.Ext(name))
	}

	switch path.Ext(name) {
	case ".yaml", ".yml":
		return FormatYAML, compression
	default:
		return FormatJSON, compression
	}
}
