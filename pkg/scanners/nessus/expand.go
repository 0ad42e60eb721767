package nessus

import (
	"github.com/exploopio/nessus-convert/pkg/report"
)

// Expand turns a block into findings: one per host binding, in binding order,
// all sharing the block's fields. A block without bindings yields nothing,
// unless keepUnbound is set, in which case it yields a single finding with
// empty host, protocol and port. Structurally broken blocks never yield
// findings.
func Expand(b Block, keepUnbound bool) []report.Finding {
	if b.Outcome == OutcomeStructuralViolation {
		return nil
	}
	if len(b.Bindings) == 0 {
		if !keepUnbound {
			return nil
		}
		return []report.Finding{newFinding(b, report.HostBinding{})}
	}

	findings := make([]report.Finding, 0, len(b.Bindings))
	for _, hb := range b.Bindings {
		findings = append(findings, newFinding(b, hb))
	}
	return findings
}

func newFinding(b Block, hb report.HostBinding) report.Finding {
	return report.Finding{
		VulnID:      b.VulnID,
		Title:       b.Title,
		Synopsis:    b.Fields.Synopsis.String(),
		Description: b.Fields.Description.String(),
		Risk:        b.Fields.Risk.String(),
		CVSS:        b.Fields.CVSS.String(),
		Solution:    b.Fields.Solution.String(),
		Hostname:    hb.Host,
		Protocol:    hb.Protocol,
		Port:        hb.Port,
		References:  b.Fields.References.String(),
	}
}
