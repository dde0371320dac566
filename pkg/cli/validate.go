/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/gridserde/pkg/defaults"
	"github.com/NVIDIA/gridserde/pkg/schema"
	"github.com/NVIDIA/gridserde/pkg/serializer"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate datasets against the schema",
		Description: `Load one or more datasets, check them against the schema registry and
print a summary per input: dataset type, batch size and the layout and
element count of every component.

Any malformed or invalid input fails the command with the structured error
of the first failure, including the path inside the dataset and, for syntax
errors, the position in the input.

# Examples

Validate a dataset:
  gridserde validate -i input.json

Summarize several datasets as YAML:
  gridserde validate -i input.json -i update.msgpack --format yaml

Validate against a custom schema:
  gridserde --schema grid.yaml validate -i input.json`,
		Flags: append([]cli.Flag{
			inputFlag(),
			fromFlag(),
			outputFlag(),
			formatFlag(serializer.ReportTable),
		}, remoteFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			from, err := parseInputFormat(cmd)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}

			summaries, err := summarize(ctx, reg, sourceReader(cmd), cmd.StringSlice("input"), from)
			if err != nil {
				return err
			}

			w, err := reportWriter(cmd, outFormat)
			if err != nil {
				return err
			}
			defer func() {
				if err := w.Close(); err != nil {
					slog.Warn("failed to close report writer", "error", err)
				}
			}()

			if err := w.Write(ctx, summaries); err != nil {
				return fmt.Errorf("failed to write validation report: %w", err)
			}
			return nil
		},
	}
}

// summarize loads every input concurrently and returns the summaries in
// input order.
func summarize(ctx context.Context, reg *schema.Registry, sources *serializer.SourceReader, inputs []string, from serializer.Format) (serializer.Summaries, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.CLIConvertTimeout)
	defer cancel()

	out := make(serializer.Summaries, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(defaults.ConvertConcurrency)

	for i, in := range inputs {
		g.Go(func() error {
			data, err := sources.Read(ctx, in)
			if err != nil {
				return fmt.Errorf("failed to read %q: %w", in, err)
			}
			f := from
			if f == "" {
				f = serializer.FormatFromPath(in)
			}
			_, ds, err := serializer.Deserialize(data, f, serializer.WithRegistry(reg))
			if err != nil {
				return fmt.Errorf("invalid dataset %q: %w", in, err)
			}
			out[i] = serializer.Summarize(in, f, ds)
			slog.Debug("dataset valid", "input", in, "type", ds.Type(), "batch_size", ds.BatchSize())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
