// Package core provides the parser contract and the parser registry.
// Each supported report format implements Parser and is looked up by name or
// by sniffing the input bytes.
package core

import (
	"context"

	"github.com/exploopio/nessus-convert/pkg/report"
)

// =============================================================================
// Parser Interface - For converting report exports
// =============================================================================

// Parser converts one report export into findings.
type Parser interface {
	// Name returns the parser name (e.g., "nessus-html")
	Name() string

	// SupportedFormats returns the input formats this parser handles
	SupportedFormats() []string

	// CanParse checks if this parser can handle the data
	CanParse(data []byte) bool

	// Parse converts the data into a report. Per-block problems are recorded
	// as diagnostics on the report; only fatal problems return an error.
	Parse(ctx context.Context, data []byte, opts *ParseOptions) (*report.Report, error)
}

// ParseOptions configures a single parse.
type ParseOptions struct {
	// Source names the input for report metadata (file path or "-")
	Source string `yaml:"source" json:"source"`

	// KeepUnbound emits one finding with empty host/protocol/port for a
	// vulnerability whose host bindings could not be resolved, instead of
	// dropping it.
	KeepUnbound bool `yaml:"keep_unbound" json:"keep_unbound"`
}
