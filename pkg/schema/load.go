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

package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/gridserde/pkg/errors"
)

//go:embed default.yaml
var defaultSchema []byte

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the built-in registry. It is parsed once and shared.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(bytes.NewReader(defaultSchema))
		if err != nil {
			panic(fmt.Sprintf("invalid embedded schema: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Load reads a YAML schema file from r.
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidRequest, "empty schema document")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse schema", err)
	}
	if len(f.Datasets) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "schema defines no dataset types")
	}

	return New(f.Datasets...)
}

// LoadFile reads a YAML schema file from disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "failed to open schema file", err,
			map[string]any{"path": path})
	}
	defer f.Close()

	return Load(f)
}
