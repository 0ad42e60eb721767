package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/exploopio/nessus-convert/pkg/compress"
	"github.com/exploopio/nessus-convert/pkg/core"
	"github.com/exploopio/nessus-convert/pkg/errors"
	"github.com/exploopio/nessus-convert/pkg/logging"
	"github.com/exploopio/nessus-convert/pkg/metrics"
	"github.com/exploopio/nessus-convert/pkg/report"
	"github.com/exploopio/nessus-convert/pkg/scanners"
	"github.com/exploopio/nessus-convert/pkg/shared/severity"
	"github.com/exploopio/nessus-convert/pkg/sink"
)

// run converts one input according to cfg.
func run(ctx context.Context, cfg *Config, stdin io.Reader, stdout, stderr io.Writer) error {
	logCfg := cfg.Log
	if logCfg.Output == "" || logCfg.Output == "stderr" {
		logCfg.Writer = stderr
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer log.Close()

	var collector metrics.Collector = &metrics.NopCollector{}
	var prom *metrics.PrometheusCollector
	if cfg.MetricsFile != "" {
		prom, err = metrics.NewPrometheusCollector()
		if err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}
		collector = prom
	}

	rep, err := convert(ctx, cfg, stdin, stdout, log.Logger, collector)
	if err != nil {
		return err
	}

	if prom != nil {
		if err := prom.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	logSummary(log.Logger, rep)

	if cfg.Strict && rep.Summary.StructuralViolations > 0 {
		return &exitCodeError{
			code: exitStrict,
			msg:  fmt.Sprintf("%d block(s) failed structurally", rep.Summary.StructuralViolations),
		}
	}
	return nil
}

// convert reads, parses and writes one report.
func convert(ctx context.Context, cfg *Config, stdin io.Reader, stdout io.Writer, log *logrus.Logger, collector metrics.Collector) (*report.Report, error) {
	raw, err := readInput(cfg.Input, stdin)
	if err != nil {
		return nil, err
	}
	data, alg, err := compress.Decompress(raw)
	if err != nil {
		return nil, errors.E(errors.KindDocumentUnavailable, "decompress input", err)
	}
	if alg != compress.AlgorithmNone {
		log.Debugf("Decompressed %s input: %d -> %d bytes", alg, len(raw), len(data))
	}

	registry := scanners.NewRegistry(core.NewLogrusLogger(log, "parser"), collector)
	parser, err := scanners.Select(registry, cfg.Parser, data)
	if err != nil {
		return nil, err
	}
	log.WithField("parser", parser.Name()).Debugf("Parsing %s", cfg.Input)

	rep, err := parser.Parse(ctx, data, &core.ParseOptions{
		Source:      cfg.Input,
		KeepUnbound: cfg.KeepUnbound,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Dedupe {
		if n := rep.Dedupe(); n > 0 {
			log.Infof("Dropped %d duplicate finding(s)", n)
		}
	}
	if cfg.MinRisk != "" {
		if n := rep.FilterMinSeverity(severity.FromString(cfg.MinRisk)); n > 0 {
			log.Infof("Dropped %d finding(s) below %s", n, cfg.MinRisk)
		}
	}
	rep.Tally()

	format, err := sink.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	out, err := sink.Open(sink.Config{Format: format, Path: cfg.Output, Stdout: stdout})
	if err != nil {
		return nil, err
	}
	if err := out.Write(ctx, rep); err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("failed to write %s output: %w", format, err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close output: %w", err)
	}
	return rep, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.E(errors.KindDocumentUnavailable, "read input", err)
	}
	return data, nil
}

// logSummary logs the run totals, then one line per block that failed
// structurally.
func logSummary(log *logrus.Logger, rep *report.Report) {
	s := rep.Summary
	log.WithFields(logrus.Fields{
		"parser":                rep.Metadata.Parser,
		"blocks":                s.Blocks,
		"findings":              len(rep.Findings),
		"structural_violations": s.StructuralViolations,
		"empty_binding_sets":    s.EmptyBindingSets,
		"truncated_blocks":      s.TruncatedBlocks,
		"malformed_port_specs":  s.MalformedPortSpecs,
		"duration_ms":           rep.Metadata.DurationMs,
	}).Infof("Converted %d finding(s) from %s", len(rep.Findings), rep.Metadata.Source)

	if s.BySeverity.Total > 0 {
		log.WithFields(logrus.Fields{
			"critical": s.BySeverity.Critical,
			"high":     s.BySeverity.High,
			"medium":   s.BySeverity.Medium,
			"low":      s.BySeverity.Low,
			"info":     s.BySeverity.Info,
		}).Info("Severity breakdown")
	}

	for _, d := range rep.DiagnosticsOf(errors.KindStructuralViolation) {
		entry := log.WithField("anchor", d.AnchorText)
		if d.Label != "" {
			entry = entry.WithField("label", d.Label)
		}
		entry.Warnf("Skipped block: %s", d.Message)
	}
}
