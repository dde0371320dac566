// Package cli implements the command-line interface of the gridserde tool.
//
// # Overview
//
// The gridserde CLI converts power-grid datasets between the JSON and
// msgpack wire formats, validates them against the schema registry and runs
// the HTTP conversion service.
//
// # Commands
//
// convert - Convert datasets:
//
//	gridserde convert -i FILE [-i FILE ...] --to json|msgpack [-o FILE | --output-dir DIR] [--compact] [--indent N]
//
// Inputs are converted concurrently. A single input is written to --output
// or stdout; several inputs require --output-dir and keep their base names.
//
// validate - Validate datasets and summarize them:
//
//	gridserde validate -i FILE [-i FILE ...] [--format table|json|yaml] [--output FILE]
//
// schema - Print the schema registry:
//
//	gridserde schema [--dataset TYPE] [--format yaml|json|table]
//
// serve - Run the HTTP service:
//
//	gridserde serve [--port 8080] [--address 0.0.0.0]
//
// # Global Flags
//
//	--log-level    Logging level: debug, info, warn, error (default: info)
//	--schema       YAML schema registry replacing the built-in one
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Inputs
//
// Every --input accepts a file path, "-" for stdin or an HTTP/HTTPS URL.
// The wire format follows the file extension (.msgpack, .mpk and .pgmb are
// msgpack, anything else JSON) unless --from is given.
//
// # Environment Variables
//
//	LOG_LEVEL         Same as --log-level
//	GRIDSERDE_SCHEMA  Same as --schema
//	PORT              Same as serve --port
//
// # Exit Codes
//
//	0  Success
//	1  Invalid arguments or a failed conversion
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to:
//   - pkg/serializer - Wire formats, sources and reports
//   - pkg/schema - Schema registry
//   - pkg/api - HTTP service
//   - pkg/logging - Structured logging
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/gridserde/pkg/cli.version=1.0.0'"
package cli
