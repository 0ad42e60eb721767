package nessus

import (
	"bytes"
	"context"
	"time"

	"github.com/exploopio/nessus-convert/pkg/core"
	"github.com/exploopio/nessus-convert/pkg/doctree"
	"github.com/exploopio/nessus-convert/pkg/errors"
	"github.com/exploopio/nessus-convert/pkg/metrics"
	"github.com/exploopio/nessus-convert/pkg/report"
)

// ParserName is the registry name of the HTML export parser.
const ParserName = "nessus-html"

// sniffLen bounds how much of the input CanParse lowercases.
const sniffLen = 4096

// Parser converts a Nessus HTML export into findings.
type Parser struct {
	sig     Signature
	logger  core.Logger
	metrics metrics.Collector
}

// Option configures a Parser.
type Option func(*Parser)

// WithSignature replaces the default header signature.
func WithSignature(sig Signature) Option {
	return func(p *Parser) {
		if sig != nil {
			p.sig = sig
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l core.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(c metrics.Collector) Option {
	return func(p *Parser) {
		if c != nil {
			p.metrics = c
		}
	}
}

// NewParser creates a new Nessus HTML parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		sig:     DefaultSignature(),
		logger:  core.GetDefaultLogger(),
		metrics: &metrics.NopCollector{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return ParserName
}

// SupportedFormats returns supported input formats.
func (p *Parser) SupportedFormats() []string {
	return []string{"html", ParserName}
}

// CanParse checks for an HTML document carrying the export's landmarks. A
// fragment without the html wrapper is accepted when it has a host table
// label or a header in the export's style.
func (p *Parser) CanParse(data []byte) bool {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	head = bytes.ToLower(head)
	if bytes.Contains(head, []byte("<html")) || bytes.Contains(head, []byte("<!doctype html")) {
		return bytes.Contains(data, []byte(LabelPluginOutput)) || bytes.Contains(data, []byte(LabelDNSName))
	}
	if !bytes.Contains(head, []byte("<")) {
		return false
	}
	return bytes.Contains(data, []byte(LabelDNSName)) || defaultSignature.header.Match(data)
}

// Parse converts the document into a report. Only an unreadable document is
// an error; broken blocks become diagnostics.
func (p *Parser) Parse(ctx context.Context, data []byte, opts *core.ParseOptions) (*report.Report, error) {
	if opts == nil {
		opts = &core.ParseOptions{}
	}
	start := time.Now()
	timer := metrics.NewTimer(p.metrics, metrics.ParseDuration.Name, "parser", ParserName)
	defer timer.ObserveDuration()

	idx, err := doctree.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "nessus.Parse")
	}

	blocks, err := Extract(ctx, idx, p.sig)
	if err != nil {
		return nil, err
	}
	p.metrics.GaugeSet(metrics.AnchorsLocated.Name, float64(len(blocks)), "parser", ParserName)

	r := report.NewReport()
	r.Metadata.Source = opts.Source
	r.Metadata.Parser = ParserName
	r.Tool = &report.Tool{Name: "Nessus", Vendor: "Tenable"}

	for i := range blocks {
		p.record(r, &blocks[i])
		r.Findings = append(r.Findings, Expand(blocks[i], opts.KeepUnbound)...)
	}
	r.Summary.Blocks = len(blocks)
	r.Tally()
	r.Metadata.DurationMs = time.Since(start).Milliseconds()

	for _, f := range r.Findings {
		p.metrics.CounterInc(metrics.FindingsTotal.Name, "severity", f.Severity().String())
	}
	p.logger.Debug("nessus: %d blocks, %d findings, %d diagnostics",
		len(blocks), len(r.Findings), len(r.Diagnostics))

	return r, nil
}

// record copies a block's diagnostics into the report and logs them.
func (p *Parser) record(r *report.Report, b *Block) {
	p.metrics.CounterInc(metrics.BlocksTotal.Name, "outcome", b.Outcome.String())

	if b.Truncated {
		r.Summary.TruncatedBlocks++
		p.metrics.CounterInc(metrics.TruncatedBlocksTotal.Name)
		p.logger.Info("nessus: %s: host list truncated by report generator", b.VulnID)
	}

	for _, d := range b.Diagnostics {
		r.AddDiagnostic(d)
		p.metrics.CounterInc(metrics.DiagnosticsTotal.Name, "kind", d.Kind.String())
		switch d.Kind {
		case errors.KindStructuralViolation:
			p.logger.Warn("nessus: skipping block %q: %s %s", d.AnchorText, d.Message, d.Label)
		case errors.KindMalformedPortSpec:
			p.logger.Warn("nessus: %s: %s", d.VulnID, d.Message)
		default:
			p.logger.Debug("nessus: %s: %s", d.VulnID, d.Message)
		}
	}
}

var _ core.Parser = (*Parser)(nil)
