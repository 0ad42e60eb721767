// Package report defines the converter's output document: the ordered
// findings of one run, the diagnostics collected while extracting them, and a
// run summary.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/exploopio/nessus-convert/pkg/errors"
	"github.com/exploopio/nessus-convert/pkg/shared/severity"
)

// Report is the result of converting one input document.
type Report struct {
	// Report metadata
	Metadata Metadata `json:"metadata" yaml:"metadata"`

	// Tool information
	Tool *Tool `json:"tool,omitempty" yaml:"tool,omitempty"`

	// Findings in anchor order, then host-binding order within an anchor
	Findings []Finding `json:"findings" yaml:"findings"`

	// Diagnostics collected for blocks and bindings that were skipped or odd
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	// Summary counters
	Summary Summary `json:"summary" yaml:"summary"`
}

// Metadata contains metadata about the run.
type Metadata struct {
	// Unique identifier for this run
	ID string `json:"id" yaml:"id"`

	// Timestamp when the report was generated
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Duration of extraction in milliseconds
	DurationMs int64 `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`

	// Source is the input the findings were read from (file path or "-")
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Parser is the name of the parser that produced the findings
	Parser string `json:"parser,omitempty" yaml:"parser,omitempty"`
}

// Tool describes the scanner that generated the input.
type Tool struct {
	Name   string `json:"name" yaml:"name"`
	Vendor string `json:"vendor,omitempty" yaml:"vendor,omitempty"`
}

// Diagnostic records a per-block or per-binding condition.
type Diagnostic struct {
	// Kind is the error taxonomy entry
	Kind errors.Kind `json:"kind" yaml:"kind"`

	// VulnID of the block, when it could be parsed
	VulnID string `json:"vuln_id,omitempty" yaml:"vuln_id,omitempty"`

	// AnchorText is the raw header text of the block
	AnchorText string `json:"anchor_text,omitempty" yaml:"anchor_text,omitempty"`

	// Label is the missing or offending label, if any
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Message is a human-readable description
	Message string `json:"message" yaml:"message"`
}

// Summary holds run counters.
type Summary struct {
	Blocks               int `json:"blocks" yaml:"blocks"`
	StructuralViolations int `json:"structural_violations" yaml:"structural_violations"`
	EmptyBindingSets     int `json:"empty_binding_sets" yaml:"empty_binding_sets"`
	TruncatedBlocks      int `json:"truncated_blocks" yaml:"truncated_blocks"`
	MalformedPortSpecs   int `json:"malformed_port_specs" yaml:"malformed_port_specs"`
	Deduplicated         int `json:"deduplicated" yaml:"deduplicated"`
	Filtered             int `json:"filtered" yaml:"filtered"`

	BySeverity severity.CountBySeverity `json:"by_severity" yaml:"by_severity"`
}

// NewReport creates a new report with a fresh run id.
func NewReport() *Report {
	return &Report{
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now().UTC(),
		},
		Findings: []Finding{},
	}
}

// AddDiagnostic appends a diagnostic and bumps the matching counter.
func (r *Report) AddDiagnostic(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	switch d.Kind {
	case errors.KindStructuralViolation:
		r.Summary.StructuralViolations++
	case errors.KindEmptyBindingSet:
		r.Summary.EmptyBindingSets++
	case errors.KindMalformedPortSpec:
		r.Summary.MalformedPortSpecs++
	}
}

// DiagnosticsOf returns the diagnostics of one kind, in the order recorded.
func (r *Report) DiagnosticsOf(kind errors.Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Dedupe removes findings whose fingerprint was already seen, keeping the
// first occurrence. Returns the number removed.
func (r *Report) Dedupe() int {
	seen := make(map[string]struct{}, len(r.Findings))
	kept := r.Findings[:0]
	for _, f := range r.Findings {
		fp := f.Fingerprint()
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		kept = append(kept, f)
	}
	removed := len(r.Findings) - len(kept)
	r.Findings = kept
	r.Summary.Deduplicated += removed
	return removed
}

// FilterMinSeverity drops findings below the given level. Findings whose
// severity can't be determined are kept. Returns the number removed.
func (r *Report) FilterMinSeverity(min severity.Level) int {
	if min == severity.Unknown || min == "" {
		return 0
	}
	kept := r.Findings[:0]
	for _, f := range r.Findings {
		level := f.Severity()
		if level == severity.Unknown || level.IsAtLeast(min) {
			kept = append(kept, f)
		}
	}
	removed := len(r.Findings) - len(kept)
	r.Findings = kept
	r.Summary.Filtered += removed
	return removed
}

// Tally recomputes the per-severity counts over the current findings.
func (r *Report) Tally() {
	var counts severity.CountBySeverity
	for _, f := range r.Findings {
		counts.Increment(f.Severity())
	}
	r.Summary.BySeverity = counts
}
