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

	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/NVIDIA/gridserde/pkg/schema"
	"github.com/NVIDIA/gridserde/pkg/serializer"
)

func schemaCmd() *cli.Command {
	return &cli.Command{
		Name:                  "schema",
		EnableShellCompletion: true,
		Usage:                 "Print the dataset schema registry",
		Description: `Print the dataset types, components and attributes known to gridserde.

YAML and JSON output use the same layout as the --schema file, so the
built-in registry can be exported, edited and loaded back.

# Examples

List all attributes of the input dataset:
  gridserde schema --dataset input

Export the registry for editing:
  gridserde schema --format yaml -o grid.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dataset",
				Usage: "Only print this dataset type",
			},
			outputFlag(),
			formatFlag(serializer.ReportYAML),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			defs, err := schemaDefs(reg, cmd.String("dataset"))
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

			var report any = schema.File{Datasets: defs}
			if outFormat == serializer.ReportTable {
				report = schemaTable(defs)
			}
			if err := w.Write(ctx, report); err != nil {
				return fmt.Errorf("failed to write schema: %w", err)
			}
			return nil
		},
	}
}

func schemaDefs(reg *schema.Registry, datasetType string) ([]schema.DatasetDef, error) {
	if datasetType == "" {
		return reg.Defs(), nil
	}
	ds, ok := reg.Dataset(datasetType)
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeUnknownDatasetType,
			fmt.Sprintf("unknown dataset type %q", datasetType),
			map[string]any{"known": reg.DatasetTypes()})
	}
	return []schema.DatasetDef{ds.Def()}, nil
}

// schemaTable renders one row per attribute.
type schemaTable []schema.DatasetDef

func (schemaTable) TableHeader() []string {
	return []string{"DATASET", "COMPONENT", "ATTRIBUTE", "TYPE"}
}

func (t schemaTable) TableRows() [][]string {
	var rows [][]string
	for _, ds := range t {
		for _, c := range ds.Components {
			for _, a := range c.Attributes {
				rows = append(rows, []string{ds.Name, c.Name, a.Name, a.Type.String()})
			}
		}
	}
	return rows
}
