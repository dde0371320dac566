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

package serializer

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/gridserde/pkg/dataset"
	"github.com/NVIDIA/gridserde/pkg/defaults"
	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/google/uuid"
)

const (
	// StdioURI selects stdin for reads and stdout for writes.
	StdioURI = "-"

	fileURIScheme = "file://"
)

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

// IsRemote reports whether uri is fetched over HTTP.
func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

// SourceReader reads inputs named by URI. Remote inputs share one
// HttpReader, so connection limits apply across concurrent reads.
type SourceReader struct {
	http *HttpReader
}

// NewSourceReader creates a SourceReader whose remote fetches are
// configured by opts.
func NewSourceReader(opts ...HttpReaderOption) *SourceReader {
	return &SourceReader{http: NewHttpReader(opts...)}
}

// ReadSource returns the raw bytes behind uri: a file path (optionally
// file:// prefixed), "-" for stdin, or an http(s) URL. Inputs larger than
// defaults.MaxInputBytes are rejected. The context bounds remote fetches.
func ReadSource(ctx context.Context, uri string, opts ...HttpReaderOption) ([]byte, error) {
	return NewSourceReader(opts...).Read(ctx, uri)
}

// Read returns the raw bytes behind uri. See ReadSource.
func (s *SourceReader) Read(ctx context.Context, uri string) ([]byte, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return nil, errors.New(errors.ErrCodeInvalidRequest, "input is empty")
	case uri == StdioURI:
		return readLimited(stdin, "stdin")
	case IsRemote(uri):
		return s.readRemote(ctx, uri)
	default:
		return readFile(strings.TrimPrefix(uri, fileURIScheme))
	}
}

func (s *SourceReader) readRemote(ctx context.Context, uri string) ([]byte, error) {
	data, err := s.http.ReadWithContext(ctx, uri)
	if err == nil {
		return data, nil
	}

	var se *StatusError
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, errors.WrapWithContext(errors.ErrCodeTimeout, "timed out fetching input", err,
			map[string]any{"uri": uri})
	case stderrors.As(err, &se) && se.StatusCode == http.StatusNotFound:
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "input not found", err,
			map[string]any{"uri": uri})
	default:
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to fetch input", err,
			map[string]any{"uri": uri})
	}
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "input file not found", err,
				map[string]any{"path": path})
		}
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to stat input file", err,
			map[string]any{"path": path})
	}
	if info.IsDir() {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "input is a directory",
			map[string]any{"path": path})
	}
	if info.Size() > defaults.MaxInputBytes {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("input of %d bytes exceeds limit of %d bytes", info.Size(), defaults.MaxInputBytes),
			map[string]any{"path": path})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read input file", err,
			map[string]any{"path": path})
	}
	return data, nil
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, defaults.MaxInputBytes+1))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read input", err,
			map[string]any{"source": name})
	}
	if int64(len(data)) > defaults.MaxInputBytes {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("input exceeds limit of %d bytes", defaults.MaxInputBytes),
			map[string]any{"source": name})
	}
	return data, nil
}

// WriteToFile writes data to path atomically: the bytes go to a uniquely
// named temporary file in the same directory which is then renamed over
// path. Readers never observe a partially written file.
// The file is created with 0644 permissions.
func WriteToFile(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.New().String()))

	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// FromFile reads and deserializes the dataset at path. The wire format is
// taken from the file extension.
func FromFile(path string, opts ...Option) (string, *dataset.Dataset, error) {
	data, err := ReadSource(context.Background(), path)
	if err != nil {
		return "", nil, err
	}
	return Deserialize(data, FormatFromPath(path), opts...)
}
