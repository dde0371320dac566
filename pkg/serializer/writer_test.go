package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/NVIDIA/gridserde/pkg/dataset"
	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/NVIDIA/gridserde/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize_SingleNodeIsByteIdentical(t *testing.T) {
	_, ds, err := Deserialize([]byte(singleNodeJSON), FormatJSON)
	require.NoError(t, err)

	out, err := Serialize("input", ds, FormatJSON, WithIndent(0))
	require.NoError(t, err)
	assert.Equal(t, singleNodeJSON, string(out))
	assert.Contains(t, string(out), `"data":{"node":[{"id":5,"u_rated":10500.0}]}`)
}

func TestSerialize_RoundTrip(t *testing.T) {
	src := inputBatch(t)
	want := dataset.Canonicalize(src)

	for _, f := range []Format{FormatJSON, FormatMsgpack} {
		for _, compact := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/compact=%t", f, compact), func(t *testing.T) {
				out, err := Serialize("input", src, f, WithCompactList(compact))
				require.NoError(t, err)

				datasetType, got, err := Deserialize(out, f)
				require.NoError(t, err)
				assert.Equal(t, "input", datasetType)
				assert.True(t, got.IsBatch())
				assert.Equal(t, 2, got.BatchSize())
				assert.True(t, dataset.Equal(want, got))

				// the reloaded dataset serializes again once densified
				again, err := Serialize("input", dataset.Canonicalize(got), f, WithCompactList(compact))
				require.NoError(t, err)
				assert.Equal(t, out, again)
			})
		}
	}
}

func TestSerialize_CompactListChangesLayoutOnly(t *testing.T) {
	src := inputBatch(t)

	lists, err := Serialize("input", src, FormatJSON, WithIndent(0))
	require.NoError(t, err)
	compact, err := Serialize("input", src, FormatJSON, WithIndent(0), WithCompactList(true))
	require.NoError(t, err)

	assert.NotEqual(t, lists, compact)
	assert.Contains(t, string(compact), `"node":{"indptr":[0,2,4],"data":[`)
	assert.Contains(t, string(lists), `"node":[[{"id":1,`)

	_, a, err := Deserialize(lists, FormatJSON)
	require.NoError(t, err)
	_, b, err := Deserialize(compact, FormatJSON)
	require.NoError(t, err)
	assert.True(t, dataset.Equal(a, b))
}

func TestSerialize_IndentOnlyChangesWhitespace(t *testing.T) {
	src := inputBatch(t)

	flat, err := Serialize("input", src, FormatJSON, WithIndent(0))
	require.NoError(t, err)
	pretty, err := Serialize("input", src, FormatJSON, WithIndent(4))
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n    \"version\"")

	var compacted bytes.Buffer
	require.NoError(t, json.Compact(&compacted, pretty))
	assert.Equal(t, string(flat), compacted.String())

	// binary output ignores indentation
	m0, err := Serialize("input", src, FormatMsgpack, WithIndent(0))
	require.NoError(t, err)
	m4, err := Serialize("input", src, FormatMsgpack, WithIndent(4))
	require.NoError(t, err)
	assert.Equal(t, m0, m4)
}

func TestSerialize_Values(t *testing.T) {
	reg := meterRegistry(t)
	meter := component(t, reg, "input", "meter")
	ds, _ := reg.Dataset("input")

	d := dataset.New(ds)
	arr, err := dataset.NewDense(meter, 1, []dataset.Record{
		record(t, meter, "id", dataset.ID(1)),
		record(t, meter, "id", dataset.ID(2), "label", "a\"b", "count", int32(-4), "status", int8(1),
			"reading", [3]float64{1, math.NaN(), math.Inf(-1)}),
	})
	require.NoError(t, err)
	require.NoError(t, d.Add(arr))

	out, err := Serialize("input", d, FormatJSON, WithIndent(0), WithRegistry(reg))
	require.NoError(t, err)
	assert.Contains(t, string(out),
		`"data":{"meter":[{"id":1},{"id":2,"label":"a\"b","count":-4,"status":1,"reading":[1.0,null,"-inf"]}]}`)

	_, back, err := Deserialize(out, FormatJSON, WithRegistry(reg))
	require.NoError(t, err)
	assert.True(t, dataset.Equal(d, back))
}

func TestSerialize_EmptyDataset(t *testing.T) {
	ds, _ := schema.Default().Dataset("sym_output")
	out, err := Serialize("sym_output", dataset.New(ds), FormatJSON, WithIndent(0))
	require.NoError(t, err)
	assert.Equal(t, `{"version":"1.0","type":"sym_output","is_batch":false,"attributes":{},"data":{}}`, string(out))
}

func TestSerialize_SingleScenarioBatchIsSingle(t *testing.T) {
	in := `{"type":"update","is_batch":true,"data":{"sym_load":[[{"id":1,"status":0}]]}}`
	_, ds, err := Deserialize([]byte(in), FormatJSON)
	require.NoError(t, err)

	out, err := Serialize("update", ds, FormatJSON, WithIndent(0))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"is_batch":false`)
	assert.Contains(t, string(out), `"sym_load":[{"id":1,"status":0}]`)
}

func TestNewSerializer_Errors(t *testing.T) {
	reg := schema.Default()
	inputSchema, _ := reg.Dataset("input")
	node := component(t, reg, "input", "node")
	load := component(t, reg, "input", "sym_load")

	inconsistent := dataset.New(inputSchema)
	nodeArr, err := dataset.NewDense(node, 2, nodes(t, node, 1, 2))
	require.NoError(t, err)
	require.NoError(t, inconsistent.Add(nodeArr))
	loadArr, err := dataset.NewDense(load, 3, nil)
	require.NoError(t, err)
	require.NoError(t, inconsistent.Add(loadArr))

	_, ragged, err := Deserialize(
		[]byte(`{"type":"input","is_batch":true,"data":{"node":[[{"id":1}],[]]}}`), FormatJSON)
	require.NoError(t, err)

	tests := []struct {
		name        string
		datasetType string
		ds          *dataset.Dataset
		format      Format
		code        errors.ErrorCode
	}{
		{name: "unknown format", datasetType: "input", ds: inputBatch(t), format: "xml", code: errors.ErrCodeInvalidRequest},
		{name: "nil dataset", datasetType: "input", format: FormatJSON, code: errors.ErrCodeInvalidRequest},
		{name: "unknown type", datasetType: "foo", ds: inputBatch(t), format: FormatJSON, code: errors.ErrCodeUnknownDatasetType},
		{name: "type mismatch", datasetType: "update", ds: inputBatch(t), format: FormatJSON, code: errors.ErrCodeInvalidRequest},
		{name: "sparse component", datasetType: "input", ds: ragged, format: FormatMsgpack, code: errors.ErrCodeNotSupported},
		{name: "inconsistent batch", datasetType: "input", ds: inconsistent, format: FormatJSON, code: errors.ErrCodeInconsistentBatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSerializer(tt.datasetType, tt.ds, tt.format)
			requireCode(t, err, tt.code)
			assert.Nil(t, s)
		})
	}
}

func TestSerialize_UniformSparseAfterCanonicalize(t *testing.T) {
	in := `{"type":"input","is_batch":true,"data":{"node":{"indptr":[0,1,2],"data":[{"id":1},{"id":2}]}}}`
	_, ds, err := Deserialize([]byte(in), FormatJSON)
	require.NoError(t, err)

	_, err = Serialize("input", ds, FormatJSON)
	requireCode(t, err, errors.ErrCodeNotSupported)

	out, err := Serialize("input", dataset.Canonicalize(ds), FormatJSON, WithIndent(0))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"node":[[{"id":1}],[{"id":2}]]`)
}

func TestSerializer_Lifecycle(t *testing.T) {
	s, err := NewSerializer("input", inputBatch(t), FormatJSON, WithIndent(0))
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, s.Format())

	text, err := s.DumpString()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, `{"version":"1.0","type":"input","is_batch":true,`))

	// per-call options do not stick
	compact, err := s.DumpString(WithCompactList(true))
	require.NoError(t, err)
	assert.Contains(t, compact, `"indptr"`)
	again, err := s.DumpString()
	require.NoError(t, err)
	assert.Equal(t, text, again)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.Dump()
	requireCode(t, err, errors.ErrCodeInvalidRequest)
}
