// nessus-convert flattens a Nessus HTML (or .nessus XML) export into one
// record per vulnerability, host, protocol and port.
//
//	nessus-convert -i report.html -o findings.csv
//	nessus-convert -i report.html.gz -f json --dedupe --min-risk medium
//	nessus-convert -i report.html -f sqlite -o findings.db --metrics-file run.prom
//	nessus-convert --config nessus-convert.yaml
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/exploopio/nessus-convert/pkg/scanners"
	"github.com/exploopio/nessus-convert/pkg/sink"
)

const (
	appName    = "nessus-convert"
	appVersion = "1.0.0"
)

const (
	exitOK     = 0
	exitError  = 1
	exitStrict = 2
)

// exitCodeError carries a non-default exit code out of the command.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// execute runs the command line and maps the outcome onto an exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	if ec, ok := err.(*exitCodeError); ok {
		fmt.Fprintf(stderr, "Error: %s\n", ec.msg)
		return ec.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitError
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Convert a Nessus report export into flat finding records",
		Long: `nessus-convert reads a Nessus HTML export (or a .nessus v2 XML file) and
writes one record per vulnerability and host binding.

Input may be gzip or zstd compressed. Output goes to stdout unless --output
is set; a ".gz" or ".zst" output suffix compresses it.

Every flag can also be set in the YAML config file or through a
NESSUS_CONVERT_* environment variable (for example NESSUS_CONVERT_LOG_LEVEL).`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdin, stdout, stderr)
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(fmt.Sprintf("%s version {{.Version}}\n", appName))

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "Path to YAML config file")
	flags.StringP("input", "i", "", `Input report path ("-" reads stdin)`)
	flags.StringP("output", "o", "-", `Output path ("-" writes stdout)`)
	flags.StringP("format", "f", string(sink.FormatCSV), "Output format: csv, json, yaml or sqlite")
	flags.String("parser", scanners.Auto, "Parser: auto, nessus-html or nessus-xml")
	flags.Bool("keep-unbound", false, "Emit one record with empty host, protocol and port for blocks without bindings")
	flags.Bool("dedupe", false, "Drop repeated (vuln id, host, protocol, port) records")
	flags.String("min-risk", "", "Drop records below this risk level (critical, high, medium, low, none)")
	flags.Bool("strict", false, "Exit with status 2 when any block fails structurally")
	flags.String("metrics-file", "", "Write run metrics in Prometheus text format to this path")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.String("log-file", "", "Log to this file (rotated) instead of stderr")

	return cmd
}
