package nessus

import (
	"context"
	"strings"

	"github.com/exploopio/nessus-convert/pkg/doctree"
	"github.com/exploopio/nessus-convert/pkg/errors"
	"github.com/exploopio/nessus-convert/pkg/report"
)

// Extract locates every block in the document and resolves it. Blocks are
// returned in document order whatever their outcome; a broken block never
// stops the blocks after it. The context is checked between blocks.
func Extract(ctx context.Context, idx *doctree.Index, sig Signature) ([]Block, error) {
	anchors := Locate(idx, sig)
	blocks := make([]Block, 0, len(anchors))
	for i, a := range anchors {
		if err := ctx.Err(); err != nil {
			return blocks, err
		}
		limit := -1
		if i+1 < len(anchors) {
			limit = anchors[i+1].Position
		}
		blocks = append(blocks, extractBlock(idx, sig, a, limit))
	}
	return blocks, nil
}

func extractBlock(idx *doctree.Index, sig Signature, a Anchor, limit int) Block {
	b := Block{
		Anchor:     a.Node,
		Position:   a.Position,
		AnchorText: a.Text(),
	}

	id, title, err := parseAnchorText(b.AnchorText)
	if err != nil {
		b.violate(nil, err)
		return b
	}
	b.VulnID, b.Title = id, title

	fields, missing := extractFields(idx, a.Position)
	b.Fields = fields
	if len(missing) > 0 {
		b.violate(missing, errors.E(errors.KindStructuralViolation, "nessus.extractFields",
			"required label not found after header"))
		return b
	}

	host, ok := resolveHost(idx, a.Position)
	if !ok {
		b.addDiagnostic(report.Diagnostic{
			Kind:    errors.KindHostUnresolved,
			Label:   LabelDNSName,
			Message: "no host cell precedes the header",
		})
	}
	b.Host = host

	w := enumerateBindings(idx, sig, a.Position, limit, host)
	b.Bindings = w.bindings
	b.Truncated = w.truncated
	for _, err := range w.malformed {
		b.addDiagnostic(report.Diagnostic{
			Kind:    errors.KindMalformedPortSpec,
			Label:   LabelPluginOutput,
			Message: errMessage(err),
		})
	}

	if len(b.Bindings) == 0 {
		b.Outcome = OutcomeEmptyBindingSet
		b.addDiagnostic(report.Diagnostic{
			Kind:    errors.KindEmptyBindingSet,
			Label:   LabelPluginOutput,
			Message: "no protocol/port bindings resolved",
		})
		return b
	}
	b.Outcome = OutcomeSuccess
	return b
}

// violate marks the block as structurally broken.
func (b *Block) violate(missing []string, cause error) {
	b.Outcome = OutcomeStructuralViolation
	b.Err = &BlockError{AnchorText: b.AnchorText, Labels: missing, Err: cause}
	if len(missing) == 0 {
		b.addDiagnostic(report.Diagnostic{
			Kind:    errors.KindStructuralViolation,
			Message: errMessage(cause),
		})
		return
	}
	b.addDiagnostic(report.Diagnostic{
		Kind:    errors.KindStructuralViolation,
		Label:   strings.Join(missing, ", "),
		Message: "required label not found after header",
	})
}

// errMessage returns the message of a converter error without its op prefix.
func errMessage(err error) string {
	var e *errors.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
