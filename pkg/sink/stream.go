package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/exploopio/nessus-convert/pkg/report"
)

// CSVSink writes a header row followed by one row per finding.
type CSVSink struct {
	out io.WriteCloser
}

// NewCSVSink creates a CSV sink. Rows end in CRLF, as spreadsheet tools
// expect.
func NewCSVSink(out io.WriteCloser) *CSVSink {
	return &CSVSink{out: out}
}

func (s *CSVSink) Write(ctx context.Context, r *report.Report) error {
	w := csv.NewWriter(s.out)
	w.UseCRLF = true
	if err := w.Write(report.FieldNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, f := range r.Findings {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := w.Write(f.Values()); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}

func (s *CSVSink) Close() error {
	return s.out.Close()
}

// JSONSink writes the findings as one JSON array of objects.
type JSONSink struct {
	out io.WriteCloser
}

// NewJSONSink creates a JSON sink.
func NewJSONSink(out io.WriteCloser) *JSONSink {
	return &JSONSink{out: out}
}

func (s *JSONSink) Write(ctx context.Context, r *report.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	findings := r.Findings
	if findings == nil {
		findings = []report.Finding{}
	}
	enc := json.NewEncoder(s.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(findings); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func (s *JSONSink) Close() error {
	return s.out.Close()
}

// YAMLSink writes the findings as one YAML sequence of mappings.
type YAMLSink struct {
	out io.WriteCloser
}

// NewYAMLSink creates a YAML sink.
func NewYAMLSink(out io.WriteCloser) *YAMLSink {
	return &YAMLSink{out: out}
}

func (s *YAMLSink) Write(ctx context.Context, r *report.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	findings := r.Findings
	if findings == nil {
		findings = []report.Finding{}
	}
	enc := yaml.NewEncoder(s.out)
	enc.SetIndent(2)
	if err := enc.Encode(findings); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func (s *YAMLSink) Close() error {
	return s.out.Close()
}

var (
	_ Sink = (*CSVSink)(nil)
	_ Sink = (*JSONSink)(nil)
	_ Sink = (*YAMLSink)(nil)
)
