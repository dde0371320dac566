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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/gridserde/pkg/codec"
	"github.com/NVIDIA/gridserde/pkg/errors"
)

// Format represents a wire format of a serialized dataset.
type Format string

const (
	// FormatJSON is the human-readable text format.
	FormatJSON Format = "json"
	// FormatMsgpack is the compact binary format.
	FormatMsgpack Format = "msgpack"
)

// Content types used when datasets travel over HTTP.
const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
)

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// IsUnknown reports whether f is not a supported wire format.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatMsgpack:
		return false
	default:
		return true
	}
}

// IsBinary reports whether f is a binary format. Indentation does not
// apply to binary formats.
func (f Format) IsBinary() bool {
	return f == FormatMsgpack
}

// ContentType returns the HTTP content type of f.
func (f Format) ContentType() string {
	if f == FormatMsgpack {
		return ContentTypeMsgpack
	}
	return ContentTypeJSON
}

// SupportedFormats returns a list of all supported wire formats.
func SupportedFormats() []string {
	return []string{
		string(FormatJSON),
		string(FormatMsgpack),
	}
}

// ParseFormat converts a user supplied name into a Format. Matching is
// case-insensitive; "text" and "binary" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "text":
		return FormatJSON, nil
	case "msgpack", "binary", "mpk":
		return FormatMsgpack, nil
	default:
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported format %q", s),
			map[string]any{"supported": SupportedFormats()})
	}
}

// FormatFromPath determines the wire format from a file extension.
// Unknown extensions default to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk", ".pgmb":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

// FormatFromContentType maps an HTTP content type to a Format. The second
// result is false when the content type names no supported format.
func FormatFromContentType(ct string) (Format, bool) {
	mediaType, _, _ := strings.Cut(strings.ToLower(ct), ";")
	switch strings.TrimSpace(mediaType) {
	case ContentTypeJSON, "text/json":
		return FormatJSON, true
	case ContentTypeMsgpack, "application/x-msgpack", "application/vnd.msgpack":
		return FormatMsgpack, true
	default:
		return "", false
	}
}

// Extension returns the preferred file extension of f, including the dot.
func (f Format) Extension() string {
	if f == FormatMsgpack {
		return ".msgpack"
	}
	return ".json"
}

func newCodec(f Format, limits codec.Limits) (codec.Codec, error) {
	switch f {
	case FormatJSON:
		return codec.NewJSON(codec.WithLimits(limits)), nil
	case FormatMsgpack:
		return codec.NewMsgpack(codec.WithLimits(limits)), nil
	default:
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported format %q", f),
			map[string]any{"supported": SupportedFormats()})
	}
}
