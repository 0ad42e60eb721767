// Package nessus extracts vulnerability findings from a Nessus HTML report export.
//
// The export has no schema. Vulnerability sections are marked by a styled
// header element, fields by fixed label text, and hosts by the per-host
// section the header sits in. Extraction runs in four steps per header:
//
//	Locate      find header anchors by their style signature
//	fields      resolve the labeled fields by forward search
//	bindings    resolve the host (backward) and protocol/port pairs (forward)
//	Expand      one finding per host binding
package nessus

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/exploopio/nessus-convert/pkg/report"
)

// Outcome is the typed result of extracting one block.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeStructuralViolation
	OutcomeEmptyBindingSet
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeStructuralViolation:
		return "structural_violation"
	case OutcomeEmptyBindingSet:
		return "empty_binding_set"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Block is one vulnerability occurrence: a header anchor and everything
// resolved from it.
type Block struct {
	// Anchor is the header node; Position its document-order index.
	Anchor   *html.Node
	Position int

	// AnchorText is the raw, whitespace-trimmed header text.
	AnchorText string

	VulnID string
	Title  string

	Fields FieldSet

	// Host is empty when no "DNS Name:" cell precedes the anchor.
	Host     string
	Bindings []report.HostBinding

	// Truncated is set when the report generator cut the port list short.
	Truncated bool

	Outcome Outcome

	// Err is set for OutcomeStructuralViolation.
	Err error

	// Diagnostics recorded while extracting this block.
	Diagnostics []report.Diagnostic
}

func (b *Block) addDiagnostic(d report.Diagnostic) {
	d.VulnID = b.VulnID
	d.AnchorText = b.AnchorText
	b.Diagnostics = append(b.Diagnostics, d)
}

// BlockError reports a block that broke the export's layout assumptions.
type BlockError struct {
	AnchorText string

	// Labels are the required labels that could not be resolved. Empty when
	// the anchor text itself was malformed.
	Labels []string

	Err error
}

func (e *BlockError) Error() string {
	if len(e.Labels) > 0 {
		return fmt.Sprintf("block %q: missing %s: %v", e.AnchorText, strings.Join(e.Labels, ", "), e.Err)
	}
	return fmt.Sprintf("block %q: %v", e.AnchorText, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}
