// Package scanners wires the built-in report parsers into a registry.
package scanners

import (
	"github.com/exploopio/nessus-convert/pkg/core"
	"github.com/exploopio/nessus-convert/pkg/errors"
	"github.com/exploopio/nessus-convert/pkg/metrics"
	"github.com/exploopio/nessus-convert/pkg/scanners/nessus"
	"github.com/exploopio/nessus-convert/pkg/scanners/nessusxml"
)

// Auto selects the parser by sniffing the input.
const Auto = "auto"

// NewRegistry creates a parser registry with the built-in parsers. The XML
// parser is registered first; its root-element check is the stricter one.
func NewRegistry(logger core.Logger, collector metrics.Collector, opts ...nessus.Option) *core.ParserRegistry {
	registry := core.NewParserRegistry()
	registry.Register(nessusxml.NewParser(logger, collector))

	htmlOpts := append([]nessus.Option{nessus.WithLogger(logger), nessus.WithMetrics(collector)}, opts...)
	registry.Register(nessus.NewParser(htmlOpts...))
	return registry
}

// Select returns the named parser, or the first one that accepts data when
// name is empty or "auto".
func Select(registry *core.ParserRegistry, name string, data []byte) (core.Parser, error) {
	if name == "" || name == Auto {
		if p := registry.FindParser(data); p != nil {
			return p, nil
		}
		return nil, errors.ErrNoParser
	}
	if p := registry.Get(name); p != nil {
		return p, nil
	}
	return nil, errors.E(errors.KindInvalidInput, "scanners.Select", "unknown parser "+name)
}
