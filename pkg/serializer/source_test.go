package serializer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSource_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(path, []byte(singleNodeJSON), 0o600))

	data, err := ReadSource(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, singleNodeJSON, string(data))

	data, err = ReadSource(t.Context(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, singleNodeJSON, string(data))
}

func TestReadSource_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		uri  string
		code errors.ErrorCode
	}{
		{name: "empty", uri: "  ", code: errors.ErrCodeInvalidRequest},
		{name: "missing file", uri: filepath.Join(dir, "missing.json"), code: errors.ErrCodeNotFound},
		{name: "directory", uri: dir, code: errors.ErrCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSource(t.Context(), tt.uri)
			requireCode(t, err, tt.code)
		})
	}
}

func TestReadSource_Stdin(t *testing.T) {
	prev := stdin
	t.Cleanup(func() { stdin = prev })
	stdin = strings.NewReader(singleNodeJSON)

	data, err := ReadSource(t.Context(), StdioURI)
	require.NoError(t, err)
	assert.Equal(t, singleNodeJSON, string(data))
}

func TestReadSource_Remote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/input.json":
			w.Write([]byte(singleNodeJSON))
		case "/slow.json":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(singleNodeJSON))
		case "/broken.json":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	assert.True(t, IsRemote(server.URL))
	assert.False(t, IsRemote("input.json"))

	data, err := ReadSource(t.Context(), server.URL+"/input.json")
	require.NoError(t, err)
	assert.Equal(t, singleNodeJSON, string(data))

	_, err = ReadSource(t.Context(), server.URL+"/missing.json")
	requireCode(t, err, errors.ErrCodeNotFound)

	_, err = ReadSource(t.Context(), server.URL+"/broken.json")
	requireCode(t, err, errors.ErrCodeUnavailable)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = ReadSource(ctx, server.URL+"/slow.json")
	requireCode(t, err, errors.ErrCodeTimeout)

	_, err = ReadSource(t.Context(), server.URL+"/input.json", WithMaxBytes(8))
	requireCode(t, err, errors.ErrCodeUnavailable)
}

func TestWriteToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	require.NoError(t, WriteToFile(path, []byte("first")))
	require.NoError(t, WriteToFile(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm()&0o644)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteToFile_MissingDirectory(t *testing.T) {
	err := WriteToFile(filepath.Join(t.TempDir(), "nope", "out.json"), []byte("x"))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	_, ds, err := Deserialize([]byte(singleNodeJSON), FormatJSON)
	require.NoError(t, err)
	raw, err := Serialize("input", ds, FormatMsgpack)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "input.msgpack")
	require.NoError(t, WriteToFile(path, raw))

	datasetType, got, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "input", datasetType)
	assert.Equal(t, 1, got.Len())
}
