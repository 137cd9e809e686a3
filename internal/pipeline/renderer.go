package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Formats lists the supported output formats
var Formats = []string{"json", "yaml", "text"}

// Renderer writes records in one output format
type Renderer struct {
	format string
}

// NewRenderer creates a renderer for format (json, yaml or text)
func NewRenderer(format string) (*Renderer, error) {
	format = strings.ToLower(format)
	switch format {
	case "json", "yaml", "text":
		return &Renderer{format: format}, nil
	case "yml":
		return &Renderer{format: "yaml"}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected one of %s)", format, strings.Join(Formats, ", "))
	}
}

// Ext is the file extension used for rendered files
func (r *Renderer) Ext() string {
	if r.format == "text" {
		return ".txt"
	}
	return "." + r.format
}

// Render writes v. In text form v must be a fmt.Stringer, a []fmt.Stringer
// or an *Aggregated; records are written in their display form.
func (r *Renderer) Render(w io.Writer, v any) error {
	switch r.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()

	default:
		var records []fmt.Stringer
		switch t := v.(type) {
		case []fmt.Stringer:
			records = t
		case *Aggregated:
			records = append(append(records, t.Pure...), t.Binary...)
		case fmt.Stringer:
			records = []fmt.Stringer{t}
		default:
			return fmt.Errorf("cannot render %T as text", v)
		}
		for _, rec := range records {
			if _, err := fmt.Fprintln(w, rec.String()); err != nil {
				return err
			}
		}
		return nil
	}
}

// RenderFile writes v to path, replacing it atomically
func (r *Renderer) RenderFile(v any, path string) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, v); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Summary describes a finished run
type Summary struct {
	Title     string
	Libraries int
	Records   int
	Failed    int
	Elapsed   time.Duration
}

// RenderSummary prints a short coloured summary
func (r *Renderer) RenderSummary(w io.Writer, s Summary) {
	title := color.New(color.Bold)
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed, color.Bold)

	_, _ = title.Fprintf(w, "%s\n", s.Title)
	_, _ = fmt.Fprintf(w, "  libraries: %d\n", s.Libraries)
	_, _ = ok.Fprintf(w, "  records:   %d\n", s.Records)
	if s.Failed > 0 {
		_, _ = bad.Fprintf(w, "  failed:    %d\n", s.Failed)
	}
	_, _ = fmt.Fprintf(w, "  elapsed:   %s\n", s.Elapsed.Round(time.Millisecond))
}
