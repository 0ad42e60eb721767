// Package nessusxml converts a .nessus v2 XML export into the same findings
// the HTML export parser produces.
package nessusxml

import (
	"bytes"
	"context"
	"encoding/xml"
	"strings"
	"time"

	"github.com/exploopio/nessus-convert/pkg/core"
	"github.com/exploopio/nessus-convert/pkg/errors"
	"github.com/exploopio/nessus-convert/pkg/metrics"
	"github.com/exploopio/nessus-convert/pkg/report"
)

// ParserName is the registry name of the XML export parser.
const ParserName = "nessus-xml"

var rootTag = []byte("<NessusClientData_v2")

// Parser converts .nessus XML into findings.
type Parser struct {
	logger  core.Logger
	metrics metrics.Collector
}

// NewParser creates a new .nessus parser.
func NewParser(logger core.Logger, collector metrics.Collector) *Parser {
	if logger == nil {
		logger = core.GetDefaultLogger()
	}
	if collector == nil {
		collector = &metrics.NopCollector{}
	}
	return &Parser{logger: logger, metrics: collector}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return ParserName
}

// SupportedFormats returns supported input formats.
func (p *Parser) SupportedFormats() []string {
	return []string{"nessus", "xml", ParserName}
}

// CanParse checks for the .nessus root element.
func (p *Parser) CanParse(data []byte) bool {
	return bytes.Contains(data, rootTag)
}

// Parse decodes the export. Each ReportItem is one finding, bound to the
// item's own protocol and port.
func (p *Parser) Parse(ctx context.Context, data []byte, opts *core.ParseOptions) (*report.Report, error) {
	if opts == nil {
		opts = &core.ParseOptions{}
	}
	start := time.Now()
	timer := metrics.NewTimer(p.metrics, metrics.ParseDuration.Name, "parser", ParserName)
	defer timer.ObserveDuration()

	var doc ClientData
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, errors.E(errors.KindDocumentUnavailable, "nessusxml.Parse", "decode .nessus xml", err)
	}

	r := report.NewReport()
	r.Metadata.Source = opts.Source
	r.Metadata.Parser = ParserName
	r.Tool = &report.Tool{Name: "Nessus", Vendor: "Tenable"}

	for _, host := range doc.Report.Hosts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hostname := hostName(host)
		for _, item := range host.Items {
			r.Summary.Blocks++
			if strings.TrimSpace(item.PluginID) == "" {
				p.violation(r, item)
				continue
			}
			f := toFinding(hostname, item)
			r.Findings = append(r.Findings, f)
			p.metrics.CounterInc(metrics.BlocksTotal.Name, "outcome", "success")
			p.metrics.CounterInc(metrics.FindingsTotal.Name, "severity", f.Severity().String())
		}
	}

	r.Tally()
	r.Metadata.DurationMs = time.Since(start).Milliseconds()
	p.logger.Debug("nessusxml: %d hosts, %d findings", len(doc.Report.Hosts), len(r.Findings))
	return r, nil
}

func (p *Parser) violation(r *report.Report, item ReportItem) {
	d := report.Diagnostic{
		Kind:       errors.KindStructuralViolation,
		AnchorText: item.PluginName,
		Label:      "pluginID",
		Message:    "report item has no plugin id",
	}
	r.AddDiagnostic(d)
	p.metrics.CounterInc(metrics.BlocksTotal.Name, "outcome", "structural_violation")
	p.metrics.CounterInc(metrics.DiagnosticsTotal.Name, "kind", d.Kind.String())
	p.logger.Warn("nessusxml: skipping item %q: %s", item.PluginName, d.Message)
}

// hostName prefers the DNS name, like the HTML export's "DNS Name:" cell.
func hostName(h ReportHost) string {
	if fqdn := h.Properties.Get("host-fqdn"); fqdn != "" {
		return fqdn
	}
	return strings.TrimSpace(h.Name)
}

func toFinding(host string, item ReportItem) report.Finding {
	return report.Finding{
		VulnID:      strings.TrimSpace(item.PluginID),
		Title:       strings.TrimSpace(item.PluginName),
		Synopsis:    strings.TrimSpace(item.Synopsis),
		Description: strings.TrimSpace(item.Description),
		Risk:        strings.TrimSpace(item.RiskFactor),
		CVSS:        orNotAvailable(item.CVSS3Base),
		Solution:    strings.TrimSpace(item.Solution),
		Hostname:    host,
		Protocol:    strings.TrimSpace(item.Protocol),
		Port:        strings.TrimSpace(item.Port),
		References:  references(item),
	}
}

func references(item ReportItem) string {
	if see := strings.TrimSpace(item.SeeAlso); see != "" {
		return see
	}
	if len(item.CVE) > 0 {
		return strings.Join(item.CVE, "\n")
	}
	return report.NotAvailable
}

func orNotAvailable(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return report.NotAvailable
	}
	return s
}

var _ core.Parser = (*Parser)(nil)
