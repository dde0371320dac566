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
	"testing"

	"github.com/NVIDIA/gridserde/pkg/errors"
)

// FuzzJSONDecode checks that arbitrary input never panics and that every
// failure is a positioned MalformedInput error.
func FuzzJSONDecode(f *testing.F) {
	f.Add([]byte(`{"version":"1.0","type":"input","data":{"node":[{"id":1}]}}`))
	f.Add([]byte(`[[[[]]]]`))
	f.Add([]byte(`{"a":1,"a":2}`))
	f.Add([]byte(`{"a":"é"}`))
	f.Add([]byte("\xff"))
	f.Add([]byte(`1e999`))
	f.Add([]byte(""))

	c := NewJSON()
	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := c.Decode(data)
		if err != nil {
			if !errors.IsCode(err, errors.ErrCodeMalformedInput) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			if _, ok := errors.PositionOf(err); !ok {
				t.Fatalf("error without position: %v", err)
			}
			return
		}

		out, err := c.Encode(v, EncodeOptions{})
		if err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
		if _, err := c.Decode(out); err != nil {
			t.Fatalf("re-decode of %q failed: %v", out, err)
		}
	})
}

// FuzzMsgpackDecode checks that arbitrary binary input never panics or
// over-allocates and that failures carry a byte offset.
func FuzzMsgpackDecode(f *testing.F) {
	c := NewMsgpack()
	seed, _ := c.Encode(mustMap("type", "input", "data", mustMap("node", []any{mustMap("id", int64(1))})), EncodeOptions{})
	f.Add(seed)
	f.Add([]byte{0xdf, 0xff, 0xff, 0xff, 0xff})
	f.Add([]byte{0xdd, 0x7f, 0xff, 0xff, 0xff})
	f.Add([]byte{0xc7, 0x01, 0x01, 0x00})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := c.Decode(data)
		if err != nil {
			if !errors.IsCode(err, errors.ErrCodeMalformedInput) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			pos, ok := errors.PositionOf(err)
			if !ok || pos.Offset < 0 || pos.Offset > int64(len(data)) {
				t.Fatalf("bad position %+v for %v", pos, err)
			}
			return
		}
		if _, err := c.Encode(v, EncodeOptions{}); err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
	})
}
