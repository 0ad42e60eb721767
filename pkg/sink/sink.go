// Package sink writes converted findings out.
//
// Stream sinks (csv, json, yaml) write to a file or stdout, compressed when
// the output path ends in ".gz" or ".zst". The sqlite sink writes a database
// file. Every sink emits findings in report order and fields in
// report.FieldNames order.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/exploopio/nessus-convert/pkg/compress"
	"github.com/exploopio/nessus-convert/pkg/errors"
	"github.com/exploopio/nessus-convert/pkg/report"
)

// Sink consumes one report.
type Sink interface {
	// Write emits the report's findings.
	Write(ctx context.Context, r *report.Report) error

	// Close flushes and releases the output.
	Close() error
}

// Format names an output format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatYAML, FormatSQLite}
}

// ParseFormat resolves a format name, case-insensitively. "yml" is accepted
// for yaml.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatYAML, FormatSQLite:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.E(errors.KindInvalidInput, "sink.ParseFormat", fmt.Sprintf("unsupported format %q", s))
}

// Config selects and configures a sink.
type Config struct {
	Format Format

	// Path is the output file. Empty or "-" writes to Stdout.
	Path string

	// Stdout is used when Path is empty; defaults to os.Stdout.
	Stdout io.Writer
}

// Open creates the sink described by cfg.
func Open(cfg Config) (Sink, error) {
	if cfg.Format == FormatSQLite {
		if cfg.Path == "" || cfg.Path == "-" {
			return nil, errors.E(errors.KindInvalidInput, "sink.Open", "sqlite output needs a file path")
		}
		return NewSQLiteSink(cfg.Path)
	}

	out, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Format {
	case FormatCSV, "":
		return NewCSVSink(out), nil
	case FormatJSON:
		return NewJSONSink(out), nil
	case FormatYAML:
		return NewYAMLSink(out), nil
	}
	_ = out.Close()
	return nil, errors.E(errors.KindInvalidInput, "sink.Open", fmt.Sprintf("unsupported format %q", cfg.Format))
}

// output is a possibly-compressed destination. Close flushes the compressor,
// then closes the file.
type output struct {
	io.Writer
	closers []io.Closer
}

func (o *output) Close() error {
	var first error
	for _, c := range o.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openOutput(cfg Config) (*output, error) {
	if cfg.Path == "" || cfg.Path == "-" {
		w := cfg.Stdout
		if w == nil {
			w = os.Stdout
		}
		return &output{Writer: w}, nil
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	cw, err := compress.NewWriter(f, compress.AlgorithmFromPath(cfg.Path), compress.LevelDefault)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &output{Writer: cw, closers: []io.Closer{cw, f}}, nil
}
