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

package defaults

// Wire format settings.
const (
	// FormatVersion is written to the "version" key of every serialized dataset.
	FormatVersion = "1.0"

	// FormatMajorVersion is the only major version the decoder accepts.
	FormatMajorVersion = 1

	// DefaultIndent is the number of spaces per nesting level in text output.
	DefaultIndent = 2

	// MaxIndent caps the indent accepted from callers. Values at or below
	// zero select single-line output.
	MaxIndent = 16
)

// Decoder and transport limits.
const (
	// MaxDepth bounds nesting of decoded input. Valid datasets never nest
	// deeper than six levels.
	MaxDepth = 64

	// MaxInputBytes caps inputs read from files, stdin or URLs (1 GiB).
	MaxInputBytes int64 = 1 << 30

	// MaxBodyBytes caps HTTP request bodies accepted by the server (64 MiB).
	MaxBodyBytes int64 = 64 << 20

	// ConvertConcurrency bounds parallel conversions in the CLI.
	ConvertConcurrency = 4
)

// Server settings.
const (
	// ServerPort is the default listen port.
	ServerPort = 8080

	// RateLimit is the sustained requests per second allowed by the server.
	RateLimit = 100

	// RateLimitBurst is the request burst allowed by the server.
	RateLimitBurst = 200
)
