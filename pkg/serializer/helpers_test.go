package serializer

import (
	"testing"

	"github.com/NVIDIA/gridserde/pkg/dataset"
	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/NVIDIA/gridserde/pkg/schema"
	"github.com/stretchr/testify/require"
)

// meterRegistry has one component per scalar type.
func meterRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.New(schema.DatasetDef{
		Name: "input",
		Components: []schema.ComponentDef{
			{Name: "node", Attributes: []schema.AttributeDef{
				{Name: "id", Type: schema.ScalarID},
				{Name: "u_rated", Type: schema.ScalarFloat64},
			}},
			{Name: "meter", Attributes: []schema.AttributeDef{
				{Name: "id", Type: schema.ScalarID},
				{Name: "label", Type: schema.ScalarString},
				{Name: "count", Type: schema.ScalarInt32},
				{Name: "status", Type: schema.ScalarInt8},
				{Name: "reading", Type: schema.ScalarFloat64x3},
			}},
		},
	})
	require.NoError(t, err)
	return reg
}

func component(t *testing.T, reg *schema.Registry, datasetType, name string) *schema.Component {
	t.Helper()
	ds, ok := reg.Dataset(datasetType)
	require.True(t, ok, "dataset type %s", datasetType)
	c, ok := ds.Component(name)
	require.True(t, ok, "component %s", name)
	return c
}

func record(t *testing.T, c *schema.Component, kv ...any) dataset.Record {
	t.Helper()
	require.Zero(t, len(kv)%2, "key/value pairs expected")
	r := dataset.NewRecord(c)
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, r.Set(c, kv[i].(string), kv[i+1]))
	}
	return r
}

func nodes(t *testing.T, c *schema.Component, ids ...int32) []dataset.Record {
	t.Helper()
	out := make([]dataset.Record, len(ids))
	for i, id := range ids {
		out[i] = record(t, c, "id", dataset.ID(id), "u_rated", 10500.0+float64(i))
	}
	return out
}

// inputBatch builds an input batch of the default registry with two
// scenarios of two nodes and one sym_load each.
func inputBatch(t *testing.T) *dataset.Dataset {
	t.Helper()
	reg := schema.Default()
	ds, _ := reg.Dataset("input")
	node := component(t, reg, "input", "node")
	load := component(t, reg, "input", "sym_load")

	d := dataset.New(ds)
	nodeArr, err := dataset.NewDense(node, 2, nodes(t, node, 1, 2, 1, 2))
	require.NoError(t, err)
	require.NoError(t, d.Add(nodeArr))

	loadArr, err := dataset.NewDense(load, 2, []dataset.Record{
		record(t, load, "id", dataset.ID(10), "status", int8(1), "p_specified", 1e6),
		record(t, load, "id", dataset.ID(10), "status", int8(0), "q_specified", -2.5e5),
	})
	require.NoError(t, err)
	require.NoError(t, d.Add(loadArr))
	return d
}

func requireCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.IsCode(err, code), "expected %s, got %v", code, err)
}
