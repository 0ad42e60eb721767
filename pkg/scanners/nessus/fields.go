package nessus

import (
	"strings"

	"github.com/exploopio/nessus-convert/pkg/doctree"
	"github.com/exploopio/nessus-convert/pkg/report"
)

// Label texts used as landmarks in the export.
const (
	LabelSynopsis     = "Synopsis"
	LabelDescription  = "Description"
	LabelRiskFactor   = "Risk Factor"
	LabelCVSS         = "CVSS v3.0 Base Score"
	LabelSolution     = "Solution"
	LabelReferences   = "References"
	LabelDNSName      = "DNS Name:"
	LabelPluginOutput = "Plugin Output"
)

// TruncationMarker is written by Nessus when it cuts a host or port list short.
const TruncationMarker = "report output too big - ending list here"

// FieldValue is a resolved field. Present is false when the label was not
// found, which keeps "absent" apart from "present but empty".
type FieldValue struct {
	Value   string
	Present bool
}

// String renders the value, or "N/A" when the label was absent.
func (v FieldValue) String() string {
	if !v.Present {
		return report.NotAvailable
	}
	return v.Value
}

// FieldSet holds the labeled fields of one block.
type FieldSet struct {
	Synopsis    FieldValue
	Description FieldValue
	Risk        FieldValue
	CVSS        FieldValue
	Solution    FieldValue
	References  FieldValue
}

type fieldSpec struct {
	label    string
	required bool
	value    func(fs *FieldSet) *FieldValue
}

var fieldSpecs = []fieldSpec{
	{LabelSynopsis, true, func(fs *FieldSet) *FieldValue { return &fs.Synopsis }},
	{LabelDescription, true, func(fs *FieldSet) *FieldValue { return &fs.Description }},
	{LabelRiskFactor, true, func(fs *FieldSet) *FieldValue { return &fs.Risk }},
	{LabelCVSS, false, func(fs *FieldSet) *FieldValue { return &fs.CVSS }},
	{LabelSolution, true, func(fs *FieldSet) *FieldValue { return &fs.Solution }},
	{LabelReferences, false, func(fs *FieldSet) *FieldValue { return &fs.References }},
}

// extractFields resolves every field for the anchor at pos. It returns the
// required labels that could not be resolved, in field order.
func extractFields(idx *doctree.Index, pos int) (FieldSet, []string) {
	var (
		fs      FieldSet
		missing []string
	)
	for _, spec := range fieldSpecs {
		v := resolveField(idx, pos, spec.label)
		if !v.Present && spec.required {
			missing = append(missing, spec.label)
		}
		*spec.value(&fs) = v
	}
	return fs, missing
}

// resolveField finds the first text node equal to label after pos. The value
// sits in the second div following the label's container:
//
//	<div>Synopsis</div>
//	<div><div>value</div></div>
func resolveField(idx *doctree.Index, pos int, label string) FieldValue {
	at, ok := idx.NextMatching(pos, doctree.TextEquals(label))
	if !ok {
		return FieldValue{}
	}
	container := idx.Node(at).Parent
	if container == nil {
		return FieldValue{}
	}
	div := doctree.ElementNamed("div")
	first, ok := idx.NextAfter(container, div)
	if !ok {
		return FieldValue{}
	}
	second, ok := idx.NextAfter(first, div)
	if !ok {
		return FieldValue{}
	}
	return FieldValue{Value: strings.TrimSpace(doctree.Text(second)), Present: true}
}
