package serializer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleSummaries(t *testing.T) Summaries {
	t.Helper()
	_, single, err := Deserialize([]byte(singleNodeJSON), FormatJSON)
	require.NoError(t, err)
	return Summaries{
		Summarize("input.json", FormatJSON, single),
		Summarize("batch.msgpack", FormatMsgpack, inputBatch(t)),
	}
}

func TestReportWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewReportWriter(ReportJSON, &buf)
	require.NoError(t, w.Write(t.Context(), sampleSummaries(t)))

	var got []Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "input.json", got[0].Source)
	assert.Equal(t, 2, got[1].BatchSize)
	assert.Len(t, got[1].Components, 2)
}

func TestReportWriter_YAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewReportWriter(ReportYAML, &buf)
	require.NoError(t, w.Write(t.Context(), sampleSummaries(t)[0]))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "input", got["type"])
	assert.Equal(t, false, got["is_batch"])
	assert.Contains(t, buf.String(), "name: node")
}

func TestReportWriter_Table(t *testing.T) {
	var buf bytes.Buffer
	w := NewReportWriter(ReportTable, &buf)
	require.NoError(t, w.Write(t.Context(), sampleSummaries(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "SOURCE"))
	assert.Contains(t, lines[1], "------")
	assert.Contains(t, lines[2], "node")
	assert.Contains(t, lines[3], "batch.msgpack")
	assert.Contains(t, lines[4], "sym_load")
}

func TestReportWriter_TableFlattensPlainValues(t *testing.T) {
	var buf bytes.Buffer
	w := NewReportWriter(ReportTable, &buf)
	require.NoError(t, w.Write(t.Context(), ComponentSummary{Name: "node", Layout: "dense", Elements: 3}))

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "elements")
	assert.Contains(t, out, "name")
}

func TestReportWriter_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportWriter(ReportTable, &buf).Write(t.Context(), struct{}{}))
	assert.Equal(t, "<empty>\n", buf.String())
}

func TestNewReportWriter_UnknownFormatFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewReportWriter("xml", &buf)
	require.NoError(t, w.Write(t.Context(), map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

func TestNewReportFileWriterOrStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	w, err := NewReportFileWriterOrStdout(ReportYAML, path)
	require.NoError(t, err)
	require.NoError(t, w.Write(t.Context(), map[string]string{"type": "input"}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "type: input\n", string(data))

	stdout, err := NewReportFileWriterOrStdout(ReportJSON, StdioURI)
	require.NoError(t, err)
	assert.NoError(t, stdout.Close())

	_, err = NewReportFileWriterOrStdout(ReportJSON, filepath.Join(t.TempDir(), "missing", "r.json"))
	assert.Error(t, err)
}

func TestSupportedReportFormats(t *testing.T) {
	for _, f := range SupportedReportFormats() {
		assert.False(t, ReportFormat(f).IsUnknown())
	}
	assert.True(t, ReportFormat("csv").IsUnknown())
}

func TestSummaries_TableRowsWithoutComponents(t *testing.T) {
	rows := Summaries{{Source: "a.json", Format: FormatJSON, Type: "input", BatchSize: 1}}.TableRows()
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a.json", "json", "input", "false", "1", "-", "-", "0"}, rows[0])
}
