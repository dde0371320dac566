/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gridserde/pkg/defaults"
	"github.com/NVIDIA/gridserde/pkg/logging"
	"github.com/NVIDIA/gridserde/pkg/schema"
	"github.com/NVIDIA/gridserde/pkg/serializer"
)

const (
	name           = "gridserde"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Flags shared by several commands. Each call returns a fresh flag so
// commands never share parsed state.
func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout, also \"-\")",
	}
}

func formatFlag(def serializer.ReportFormat) cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   string(def),
		Usage: fmt.Sprintf("Report format (supported: %s)",
			strings.Join(serializer.SupportedReportFormats(), ", ")),
	}
}

func fromFlag() cli.Flag {
	return &cli.StringFlag{
		Name: "from",
		Usage: fmt.Sprintf("Input wire format (supported: %s); detected from the file extension when omitted",
			strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

func inputFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Required: true,
		Usage:    "Input dataset: file path, \"-\" for stdin, or HTTP/HTTPS URL (repeatable)",
	}
}

// Execute runs the CLI with the process arguments and exits non-zero on
// error. SIGINT and SIGTERM cancel the command context.
// remoteFlags configure how HTTP/HTTPS inputs are fetched.
func remoteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "connect-timeout",
			Value: defaults.HTTPConnectTimeout,
			Usage: "Time allowed for each of the TCP connect and TLS handshake to a remote input",
		},
		&cli.BoolFlag{
			Name:  "insecure-skip-verify",
			Usage: "Skip TLS certificate verification of HTTPS inputs",
		},
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		ShellComplete:         commandLister,
		Usage:                 "Convert and validate power-grid datasets",
		Description: `gridserde reads and writes power-grid datasets in two wire formats:

  json     - human-readable text
  msgpack  - compact binary

convert  - converts datasets between the wire formats
validate - checks datasets against the schema and summarizes them
schema   - prints the dataset schema registry
serve    - runs the HTTP conversion service`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars(logging.EnvVarLogLevel),
			},
			&cli.StringFlag{
				Name:    "schema",
				Usage:   "YAML schema registry replacing the built-in one",
				Sources: cli.EnvVars("GRIDSERDE_SCHEMA"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logLevel := cmd.String("log-level")
			logging.SetDefaultStructuredLoggerWithLevel(name, version, logLevel)
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
				"logLevel", logLevel)
			return ctx, nil
		},
		Commands: []*cli.Command{
			convertCmd(),
			validateCmd(),
			schemaCmd(),
			serveCmd(),
		},
	}
}

// commandLister prints the visible subcommands for shell completion.
func commandLister(_ context.Context, cmd *cli.Command) {
	if cmd == nil || cmd.Root() == nil {
		return
	}
	for _, c := range cmd.Root().Commands {
		if c.Hidden {
			continue
		}
		fmt.Println(c.Name)
	}
}

// loadRegistry returns the registry named by --schema or the built-in one.
func loadRegistry(cmd *cli.Command) (*schema.Registry, error) {
	path := cmd.String("schema")
	if path == "" {
		return schema.Default(), nil
	}
	reg, err := schema.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema from %q: %w", path, err)
	}
	slog.Debug("schema loaded", "path", path, "datasets", reg.DatasetTypes())
	return reg, nil
}

func parseOutputFormat(cmd *cli.Command) (serializer.ReportFormat, error) {
	f := serializer.ReportFormat(strings.ToLower(cmd.String("format")))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", cmd.String("format"))
	}
	return f, nil
}

func parseInputFormat(cmd *cli.Command) (serializer.Format, error) {
	if !cmd.IsSet("from") {
		return "", nil
	}
	return serializer.ParseFormat(cmd.String("from"))
}

// sourceReader builds the reader shared by all inputs of one command run.
// Remote inputs are fetched concurrently, at most ConvertConcurrency
// connections per host.
func sourceReader(cmd *cli.Command) *serializer.SourceReader {
	timeout := cmd.Duration("connect-timeout")
	return serializer.NewSourceReader(
		serializer.WithConnectTimeout(timeout),
		serializer.WithTLSHandshakeTimeout(timeout),
		serializer.WithMaxConnsPerHost(defaults.ConvertConcurrency),
		serializer.WithInsecureSkipVerify(cmd.Bool("insecure-skip-verify")),
	)
}

// reportWriter writes to the --output file, or to the command's writer
// for stdout.
func reportWriter(cmd *cli.Command, format serializer.ReportFormat) (*serializer.ReportWriter, error) {
	path := strings.TrimSpace(cmd.String("output"))
	if path == "" || path == serializer.StdioURI {
		return serializer.NewReportWriter(format, cmd.Root().Writer), nil
	}
	return serializer.NewReportFileWriterOrStdout(format, path)
}
