/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/gridserde/pkg/dataset"
	"github.com/NVIDIA/gridserde/pkg/defaults"
	"github.com/NVIDIA/gridserde/pkg/schema"
	"github.com/NVIDIA/gridserde/pkg/serializer"
)

const stdinStem = "stdin"

type convertCmdOptions struct {
	inputs    []string
	from      serializer.Format
	to        serializer.Format
	output    string
	outputDir string
	compact   bool
	indent    int
	sources   *serializer.SourceReader
}

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:                  "convert",
		EnableShellCompletion: true,
		Usage:                 "Convert datasets between JSON and msgpack",
		Description: `Convert one or more datasets to the requested wire format.

Inputs are read from files, stdin ("-") or HTTP/HTTPS URLs. The input format
is detected from the file extension (.msgpack, .mpk and .pgmb are msgpack,
everything else JSON) unless --from is given.

Batch components whose scenarios all hold the same number of elements are
written densely; datasets with a varying number of elements per scenario
cannot be written and fail the conversion.

# Examples

Convert a JSON dataset to msgpack:
  gridserde convert -i input.json --to msgpack -o input.msgpack

Convert several files concurrently into a directory:
  gridserde convert -i a.json -i b.json --to msgpack --output-dir out/

Pretty-print a binary dataset:
  gridserde convert -i update.msgpack --to json --indent 4

Write batches in the compact indptr layout:
  gridserde convert -i batch.json --to json --compact -o batch.compact.json`,
		Flags: append([]cli.Flag{
			inputFlag(),
			fromFlag(),
			&cli.StringFlag{
				Name:  "to",
				Value: string(serializer.FormatJSON),
				Usage: fmt.Sprintf("Output wire format (supported: %s)",
					strings.Join(serializer.SupportedFormats(), ", ")),
			},
			outputFlag(),
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"d"},
				Usage:   "Directory for converted files, named after the inputs",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Write batch components as a single indptr map",
			},
			&cli.IntFlag{
				Name:  "indent",
				Value: defaults.DefaultIndent,
				Usage: "Spaces per nesting level of JSON output (0 or less writes a single line)",
			},
		}, remoteFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parseConvertCmdOptions(cmd)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			return runConvert(ctx, reg, opts, cmd.Root().Writer)
		},
	}
}

func parseConvertCmdOptions(cmd *cli.Command) (*convertCmdOptions, error) {
	from, err := parseInputFormat(cmd)
	if err != nil {
		return nil, err
	}
	to, err := serializer.ParseFormat(cmd.String("to"))
	if err != nil {
		return nil, err
	}

	opts := &convertCmdOptions{
		inputs:    cmd.StringSlice("input"),
		from:      from,
		to:        to,
		output:    strings.TrimSpace(cmd.String("output")),
		outputDir: strings.TrimSpace(cmd.String("output-dir")),
		compact:   cmd.Bool("compact"),
		indent:    cmd.Int("indent"),
		sources:   sourceReader(cmd),
	}

	if len(opts.inputs) == 0 {
		return nil, fmt.Errorf("at least one --input is required")
	}
	if opts.indent > defaults.MaxIndent {
		return nil, fmt.Errorf("--indent must not exceed %d, got %d", defaults.MaxIndent, opts.indent)
	}
	if opts.indent < 0 {
		opts.indent = 0
	}
	if opts.output != "" && opts.outputDir != "" {
		return nil, fmt.Errorf("--output and --output-dir are mutually exclusive")
	}
	if len(opts.inputs) > 1 && opts.outputDir == "" {
		return nil, fmt.Errorf("converting %d inputs requires --output-dir", len(opts.inputs))
	}

	// two inputs must not land on the same file
	if opts.outputDir != "" {
		seen := make(map[string]string, len(opts.inputs))
		for _, in := range opts.inputs {
			out := opts.outputPath(in)
			if prev, dup := seen[out]; dup {
				return nil, fmt.Errorf("inputs %q and %q both convert to %q", prev, in, out)
			}
			seen[out] = in
		}
	}

	return opts, nil
}

// outputPath returns where the conversion of in is written; "-" is stdout.
func (o *convertCmdOptions) outputPath(in string) string {
	switch {
	case o.output != "":
		return o.output
	case o.outputDir != "":
		return filepath.Join(o.outputDir, inputStem(in)+o.to.Extension())
	default:
		return serializer.StdioURI
	}
}

// inputStem is the base name of in without its extension.
func inputStem(in string) string {
	if in == serializer.StdioURI {
		return stdinStem
	}
	base := filepath.Base(in)
	if serializer.IsRemote(in) {
		if u, err := url.Parse(in); err == nil {
			base = path.Base(u.Path)
		}
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		return stdinStem
	}
	return base
}

func runConvert(ctx context.Context, reg *schema.Registry, opts *convertCmdOptions, stdout io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.CLIConvertTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(defaults.ConvertConcurrency)

	for _, in := range opts.inputs {
		g.Go(func() error {
			return convertOne(ctx, reg, opts, in, stdout)
		})
	}
	return g.Wait()
}

func convertOne(ctx context.Context, reg *schema.Registry, opts *convertCmdOptions, in string, stdout io.Writer) error {
	start := time.Now()

	data, err := opts.sources.Read(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", in, err)
	}

	from := opts.from
	if from == "" {
		from = serializer.FormatFromPath(in)
	}

	datasetType, ds, err := serializer.Deserialize(data, from, serializer.WithRegistry(reg))
	if err != nil {
		return fmt.Errorf("failed to load %q: %w", in, err)
	}

	out, err := serializer.Serialize(datasetType, dataset.Canonicalize(ds), opts.to,
		serializer.WithRegistry(reg),
		serializer.WithCompactList(opts.compact),
		serializer.WithIndent(opts.indent))
	if err != nil {
		return fmt.Errorf("failed to convert %q: %w", in, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("conversion of %q canceled: %w", in, err)
	}

	dest := opts.outputPath(in)
	if dest == serializer.StdioURI {
		if _, err := stdout.Write(out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if err := serializer.WriteToFile(dest, out); err != nil {
		return fmt.Errorf("failed to write %q: %w", dest, err)
	}

	slog.Info("dataset converted",
		"input", in,
		"output", dest,
		"type", datasetType,
		"from", from,
		"to", opts.to,
		"bytes", len(out),
		"duration", time.Since(start))
	return nil
}
