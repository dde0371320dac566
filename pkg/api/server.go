// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/NVIDIA/gridserde/pkg/logging"
	"github.com/NVIDIA/gridserde/pkg/schema"
	"github.com/NVIDIA/gridserde/pkg/serializer"
	"github.com/NVIDIA/gridserde/pkg/server"
)

const (
	name           = "gridserded"
	versionDefault = "dev"

	// EnvSchemaFile names a YAML schema registry that replaces the built-in one.
	EnvSchemaFile = "GRIDSERDE_SCHEMA"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/gridserde/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until shutdown.
// It configures logging, loads the schema registry, sets up routes, and
// handles graceful shutdown.
func Serve() error {
	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	reg, err := registryFromEnv()
	if err != nil {
		return err
	}

	return Run(context.Background(), reg)
}

// Run serves the dataset endpoints until ctx is canceled or a shutdown
// signal arrives. A nil reg uses schema.Default(). opts are applied after
// the name, version and handlers, so they may override them.
func Run(ctx context.Context, reg *schema.Registry, opts ...server.Option) error {
	s := server.New(append([]server.Option{
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(Routes(reg)),
	}, opts...)...)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}

// Routes returns the application handlers keyed by path.
func Routes(reg *schema.Registry) map[string]http.HandlerFunc {
	h := serializer.NewHandler(reg)
	return map[string]http.HandlerFunc{
		"/v1/convert":  h.HandleConvert,
		"/v1/validate": h.HandleValidate,
	}
}

func registryFromEnv() (*schema.Registry, error) {
	path := os.Getenv(EnvSchemaFile)
	if path == "" {
		return schema.Default(), nil
	}
	reg, err := schema.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema from %s: %w", path, err)
	}
	slog.Info("schema loaded", "path", path, "datasets", reg.DatasetTypes())
	return reg, nil
}
