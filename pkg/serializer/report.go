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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// ReportFormat is the output format of human and machine readable reports
// such as validation summaries and schema listings.
type ReportFormat string

const (
	// ReportJSON outputs reports in JSON format
	ReportJSON ReportFormat = "json"
	// ReportYAML outputs reports in YAML format
	ReportYAML ReportFormat = "yaml"
	// ReportTable outputs reports as an aligned text table
	ReportTable ReportFormat = "table"
)

const defaultValueKey = "value"

// IsUnknown reports whether f is not a supported report format.
func (f ReportFormat) IsUnknown() bool {
	switch f {
	case ReportJSON, ReportYAML, ReportTable:
		return false
	default:
		return true
	}
}

// SupportedReportFormats returns a list of all supported report formats.
func SupportedReportFormats() []string {
	return []string{
		string(ReportJSON),
		string(ReportYAML),
		string(ReportTable),
	}
}

// Tabular is implemented by report values that know their own table
// layout. Values that don't are flattened into FIELD/VALUE rows.
type Tabular interface {
	TableHeader() []string
	TableRows() [][]string
}

// ReportWriter writes reports to an output stream.
// Close must be called to release file handles when using NewReportFileWriterOrStdout.
type ReportWriter struct {
	format ReportFormat
	output io.Writer
	closer io.Closer
}

// NewReportWriter creates a ReportWriter with the specified format and output destination.
// If output is nil, os.Stdout will be used.
// If format is unknown, defaults to JSON format.
func NewReportWriter(format ReportFormat, output io.Writer) *ReportWriter {
	if output == nil {
		output = os.Stdout
	}
	if format.IsUnknown() {
		slog.Warn("unknown report format, defaulting to JSON", "format", format)
		format = ReportJSON
	}
	return &ReportWriter{
		format: format,
		output: output,
	}
}

// NewReportFileWriterOrStdout creates a ReportWriter that outputs to the specified file path.
// An empty path or "-" writes to stdout. Remember to call Close().
func NewReportFileWriterOrStdout(format ReportFormat, path string) (*ReportWriter, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == StdioURI {
		return NewReportWriter(format, os.Stdout), nil
	}

	file, err := os.Create(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", trimmed, err)
	}

	w := NewReportWriter(format, file)
	w.closer = file
	return w, nil
}

// Close releases any resources associated with the ReportWriter.
// It's safe to call Close multiple times or on stdout-based writers.
func (w *ReportWriter) Close() error {
	if w.closer == nil {
		return nil
	}
	err := w.closer.Close()
	w.closer = nil
	return err
}

// Write renders v in the configured format.
// Context is accepted for symmetry with the other I/O helpers; writes to
// files and stdout are not cancellable.
func (w *ReportWriter) Write(_ context.Context, v any) error {
	switch w.format {
	case ReportJSON:
		return w.writeJSON(v)
	case ReportYAML:
		return w.writeYAML(v)
	case ReportTable:
		return w.writeTable(v)
	default:
		return fmt.Errorf("unsupported report format: %s", w.format)
	}
}

func (w *ReportWriter) writeJSON(v any) error {
	encoder := json.NewEncoder(w.output)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to serialize to JSON: %w", err)
	}
	return nil
}

func (w *ReportWriter) writeYAML(v any) error {
	encoder := yaml.NewEncoder(w.output)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	return encoder.Close()
}

func (w *ReportWriter) writeTable(v any) error {
	tw := tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)

	if t, ok := v.(Tabular); ok {
		header := t.TableHeader()
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		fmt.Fprintln(tw, strings.Join(underline(header), "\t"))
		for _, row := range t.TableRows() {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		return tw.Flush()
	}

	flat := make(map[string]any)
	flattenValue(flat, reflect.ValueOf(v), "")
	if len(flat) == 0 {
		fmt.Fprintln(w.output, "<empty>")
		return nil
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(tw, "FIELD\tVALUE")
	fmt.Fprintln(tw, "-----\t-----")
	for _, key := range keys {
		fmt.Fprintf(tw, "%s\t%v\n", key, flat[key])
	}
	return tw.Flush()
}

func underline(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.Repeat("-", len(h))
	}
	return out
}

func flattenValue(out map[string]any, val reflect.Value, prefix string) {
	if !val.IsValid() {
		return
	}

	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			if prefix != "" {
				out[prefix] = nil
			}
			return
		}
		val = val.Elem()
	}

	//nolint:exhaustive // We handle the common cases explicitly; all others go to default
	switch val.Kind() {
	case reflect.Struct:
		typ := val.Type()
		for i := range val.NumField() {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			flattenValue(out, val.Field(i), joinKey(prefix, fieldName(field)))
		}
	case reflect.Map:
		for _, mapKey := range val.MapKeys() {
			key := joinKey(prefix, fmt.Sprintf("%v", mapKey.Interface()))
			flattenValue(out, val.MapIndex(mapKey), key)
		}
	case reflect.Slice, reflect.Array:
		for i := range val.Len() {
			flattenValue(out, val.Index(i), fmt.Sprintf("%s[%d]", prefix, i))
		}
	default:
		if prefix == "" {
			prefix = defaultValueKey
		}
		out[prefix] = val.Interface()
	}
}

// fieldName prefers the json tag so table keys match the other formats.
func fieldName(f reflect.StructField) string {
	if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
		return tag
	}
	return f.Name
}

func joinKey(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	if suffix == "" {
		return prefix
	}
	return prefix + "." + suffix
}
