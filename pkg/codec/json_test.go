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

package codec

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/gridserde/pkg/errors"
)

func mustMap(kv ...any) *Map {
	m := NewMap(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

func TestMap(t *testing.T) {
	m := NewMap(0)
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, m.Keys())
	assert.Equal(t, 2, m.Len())
	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.False(t, m.Has("c"))

	var nilMap *Map
	assert.Equal(t, 0, nilMap.Len())
}

func TestJSONDecode(t *testing.T) {
	v, err := NewJSON().Decode([]byte(`{"type":"input","n":5,"f":10500.0,"big":18446744073709551615,"neg":-3,"e":1e3,"ok":true,"nil":null,"arr":[1,"x"]}`))
	require.NoError(t, err)

	m, ok := v.(*Map)
	require.True(t, ok)
	assert.Equal(t, []string{"type", "n", "f", "big", "neg", "e", "ok", "nil", "arr"}, m.Keys())

	get := func(k string) any { x, _ := m.Get(k); return x }
	assert.Equal(t, "input", get("type"))
	assert.Equal(t, int64(5), get("n"))
	assert.Equal(t, 10500.0, get("f"))
	assert.Equal(t, uint64(math.MaxUint64), get("big"))
	assert.Equal(t, int64(-3), get("neg"))
	assert.Equal(t, 1000.0, get("e"))
	assert.Equal(t, true, get("ok"))
	assert.Nil(t, get("nil"))
	assert.Equal(t, []any{int64(1), "x"}, get("arr"))
}

func TestJSONDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace", input: "  \n "},
		{name: "truncated object", input: `{"a":1`},
		{name: "truncated string", input: `{"a":"x`},
		{name: "missing colon", input: `{"a" 1}`},
		{name: "trailing comma", input: `[1,]`},
		{name: "duplicate key", input: `{"a":1,"a":2}`},
		{name: "trailing data", input: `{} {}`},
		{name: "trailing garbage", input: `{} x`},
		{name: "bare word", input: `nope`},
		{name: "number out of range", input: `[1e400]`},
		{name: "invalid utf8", input: "{\"a\":\"\xff\"}"},
		{name: "unclosed array", input: `[[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJSON().Decode([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput), "got %v", err)
			pos, ok := errors.PositionOf(err)
			require.True(t, ok, "expected a position")
			assert.GreaterOrEqual(t, pos.Line, 1)
			assert.LessOrEqual(t, pos.Offset, int64(len(tt.input)))
		})
	}
}

func TestJSONDecode_Positions(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column int
	}{
		{name: "missing colon", input: "{\n  \"a\" 1\n}", line: 2, column: 7},
		{name: "duplicate key", input: "{\n\"a\": 1,\n\"a\": 2}", line: 3, column: 1},
		{name: "trailing", input: "{}\n\n  []", line: 3, column: 3},
		{name: "invalid utf8", input: "[\"ok\",\n\"\xfe\"]", line: 2, column: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJSON().Decode([]byte(tt.input))
			require.Error(t, err)
			pos, ok := errors.PositionOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.line, pos.Line)
			assert.Equal(t, tt.column, pos.Column)
		})
	}
}

func TestJSONDecode_MaxDepth(t *testing.T) {
	c := NewJSON(WithLimits(Limits{MaxDepth: 3}))

	_, err := c.Decode([]byte(`[[[1]]]`))
	require.NoError(t, err)

	_, err = c.Decode([]byte(`[[[[1]]]]`))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput))
	assert.Contains(t, err.Error(), "maximum depth")

	deep := strings.Repeat("[", 100) + strings.Repeat("]", 100)
	_, err = NewJSON().Decode([]byte(deep))
	assert.Error(t, err)
}

func TestJSONEncode(t *testing.T) {
	tree := mustMap(
		"version", "1.0",
		"type", "input",
		"is_batch", false,
		"attributes", NewMap(0),
		"data", mustMap("node", []any{mustMap("id", int64(5), "u_rated", 10500.0)}),
	)

	out, err := NewJSON().Encode(tree, EncodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, `{"version":"1.0","type":"input","is_batch":false,"attributes":{},"data":{"node":[{"id":5,"u_rated":10500.0}]}}`, string(out))

	indented, err := NewJSON().Encode(mustMap("a", []any{int64(1)}, "b", NewMap(0)), EncodeOptions{Indent: 2})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1\n  ],\n  \"b\": {}\n}", string(indented))
}

func TestJSONEncode_Floats(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-2.5, "-2.5"},
		{10500, "10500.0"},
		{1e20, "100000000000000000000.0"},
		{1e21, "1e+21"},
		{1e-7, "1e-7"},
		{0.1, "0.1"},
		{math.Inf(1), `"inf"`},
		{math.Inf(-1), `"-inf"`},
		{math.NaN(), "null"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			out, err := NewJSON().Encode(tt.in, EncodeOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestJSONEncode_Strings(t *testing.T) {
	out, err := NewJSON().Encode("a<b>&\"q\"\\\n\t\x01 é", EncodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&\"q\"\\\n\t\u0001 é"`, string(out))

	out, err = NewJSON().Encode("\xff", EncodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, `"\ufffd"`, string(out))
}

func TestJSONEncode_Unsupported(t *testing.T) {
	_, err := NewJSON().Encode(struct{}{}, EncodeOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
}

func TestJSONRoundTrip(t *testing.T) {
	tree := mustMap(
		"s", "text",
		"i", int64(-42),
		"u", uint64(math.MaxUint64),
		"f", 3.25,
		"whole", 7.0,
		"b", true,
		"n", nil,
		"nested", []any{[]any{}, NewMap(0), mustMap("k", "v")},
	)
	c := NewJSON()
	for _, indent := range []int{0, 2, 4} {
		out, err := c.Encode(tree, EncodeOptions{Indent: indent})
		require.NoError(t, err)
		back, err := c.Decode(out)
		require.NoError(t, err)
		assert.Equal(t, tree, back)
	}
}
