/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gridserde/pkg/api"
	"github.com/NVIDIA/gridserde/pkg/defaults"
	"github.com/NVIDIA/gridserde/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Run the HTTP conversion service",
		Description: `Serve POST /v1/convert and POST /v1/validate together with /health,
/ready and /metrics until interrupted.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   defaults.ServerPort,
				Usage:   "Listen port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "Listen address (default: all interfaces)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			port := cmd.Int("port")
			if port < 0 || port > 65535 {
				return fmt.Errorf("invalid port %d", port)
			}
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}

			opts := []server.Option{server.WithPort(port)}
			if addr := cmd.String("address"); addr != "" {
				opts = append(opts, server.WithAddress(addr))
			}
			return api.Run(ctx, reg, opts...)
		},
	}
}
