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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/NVIDIA/gridserde/pkg/errors"
)

// MsgpackName is the name of the binary codec.
const MsgpackName = "msgpack"

// Msgpack is the binary codec.
type Msgpack struct {
	cfg config
}

// NewMsgpack creates a binary codec.
func NewMsgpack(opts ...Option) *Msgpack {
	return &Msgpack{cfg: newConfig(opts)}
}

// Name returns "msgpack".
func (*Msgpack) Name() string { return MsgpackName }

type encoderPoolEntry struct {
	buf *bytes.Buffer
	enc *msgpack.Encoder
}

var encoderPool = sync.Pool{
	New: func() any {
		buf := new(bytes.Buffer)
		return &encoderPoolEntry{buf: buf, enc: msgpack.NewEncoder(buf)}
	},
}

// Encode renders v as msgpack with the smallest integer encodings and
// float64 doubles. NaN is written as nil. Options are ignored.
func (m *Msgpack) Encode(v any, _ EncodeOptions) ([]byte, error) {
	entry := encoderPool.Get().(*encoderPoolEntry)
	defer encoderPool.Put(entry)
	entry.buf.Reset()

	if err := writeMsgpack(entry.enc, v); err != nil {
		return nil, err
	}

	out := make([]byte, entry.buf.Len())
	copy(out, entry.buf.Bytes())
	return out, nil
}

func writeMsgpack(enc *msgpack.Encoder, v any) error {
	var err error
	switch x := v.(type) {
	case nil:
		err = enc.EncodeNil()
	case bool:
		err = enc.EncodeBool(x)
	case int:
		err = enc.EncodeInt(int64(x))
	case int64:
		err = enc.EncodeInt(x)
	case uint64:
		err = enc.EncodeUint(x)
	case float64:
		if math.IsNaN(x) {
			err = enc.EncodeNil()
		} else {
			err = enc.EncodeFloat64(x)
		}
	case string:
		err = enc.EncodeString(x)
	case []any:
		if err = enc.EncodeArrayLen(len(x)); err != nil {
			break
		}
		for _, e := range x {
			if err = writeMsgpack(enc, e); err != nil {
				return err
			}
		}
	case *Map:
		if err = enc.EncodeMapLen(x.Len()); err != nil {
			break
		}
		x.Range(func(k string, e any) bool {
			if err = enc.EncodeString(k); err != nil {
				return false
			}
			err = writeMsgpack(enc, e)
			return err == nil
		})
	default:
		return errors.Newf(errors.ErrCodeInternal, "unsupported tree node %T", v)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "msgpack encode failed", err)
	}
	return nil
}

// Decode parses one msgpack value. Container lengths are checked against
// the remaining input before anything is allocated; ext types, non-string
// map keys, duplicate keys, truncation and trailing bytes are rejected.
// bin payloads decode as strings; str and bin payloads must be valid UTF-8.
func (m *Msgpack) Decode(data []byte) (any, error) {
	r := bytes.NewReader(data)
	p := &msgpackParser{
		data:     data,
		r:        r,
		dec:      msgpack.NewDecoder(r),
		maxDepth: m.cfg.limits.MaxDepth,
	}

	v, err := p.value(0)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, malformed(fmt.Sprintf("%d unexpected bytes after top-level value", r.Len()), p.pos())
	}
	return v, nil
}

type msgpackParser struct {
	data     []byte
	r        *bytes.Reader
	dec      *msgpack.Decoder
	maxDepth int
}

func (p *msgpackParser) offset() int64 {
	return int64(len(p.data) - p.r.Len())
}

func (p *msgpackParser) pos() errors.Position {
	return errors.Position{Offset: p.offset()}
}

func (p *msgpackParser) truncated(at int64) error {
	return malformed("unexpected end of input", errors.Position{Offset: at})
}

// header reads the length field that follows a container or string tag
// without consuming input. It returns the declared length and the number
// of header bytes including the tag.
func (p *msgpackParser) header(c byte) (n, size int, err error) {
	off := p.offset()
	rest := p.data[off:]

	switch {
	case msgpcode.IsFixedString(c):
		return int(c & 0x1f), 1, nil
	case msgpcode.IsFixedArray(c), msgpcode.IsFixedMap(c):
		return int(c & 0x0f), 1, nil
	}

	switch c {
	case msgpcode.Str8, msgpcode.Bin8:
		size = 2
	case msgpcode.Str16, msgpcode.Bin16, msgpcode.Array16, msgpcode.Map16:
		size = 3
	case msgpcode.Str32, msgpcode.Bin32, msgpcode.Array32, msgpcode.Map32:
		size = 5
	default:
		return 0, 0, malformed(fmt.Sprintf("unexpected type tag 0x%02x", c), p.pos())
	}
	if len(rest) < size {
		return 0, 0, p.truncated(int64(len(p.data)))
	}

	switch size {
	case 2:
		n = int(rest[1])
	case 3:
		n = int(binary.BigEndian.Uint16(rest[1:3]))
	default:
		n = int(binary.BigEndian.Uint32(rest[1:5]))
	}
	return n, size, nil
}

// checkLength verifies that n items of at least minItem bytes each fit in
// the input after a size-byte header.
func (p *msgpackParser) checkLength(n, size, minItem int) error {
	remaining := int64(p.r.Len()) - int64(size)
	if int64(n)*int64(minItem) > remaining {
		return malformed(fmt.Sprintf("declared length %d exceeds remaining %d bytes", n, max(remaining, 0)), p.pos())
	}
	return nil
}

func (p *msgpackParser) wrap(err error, at int64) error {
	if p.r.Len() == 0 {
		return p.truncated(int64(len(p.data)))
	}
	return malformedWrap("msgpack decode failed", err, errors.Position{Offset: at})
}

func (p *msgpackParser) value(depth int) (any, error) {
	at := p.offset()
	if p.r.Len() == 0 {
		return nil, p.truncated(at)
	}
	c, err := p.dec.PeekCode()
	if err != nil {
		return nil, p.wrap(err, at)
	}

	switch {
	case msgpcode.IsFixedNum(c):
		v, err := p.dec.DecodeInt64()
		if err != nil {
			return nil, p.wrap(err, at)
		}
		return v, nil
	case msgpcode.IsString(c), msgpcode.IsBin(c):
		return p.str(c, at)
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		return p.array(c, depth+1, at)
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		return p.mapping(c, depth+1, at)
	case msgpcode.IsFixedExt(c) || msgpcode.IsExt(c):
		return nil, malformed(fmt.Sprintf("extension type 0x%02x is not supported", c), p.pos())
	}

	switch c {
	case msgpcode.Nil:
		if err := p.dec.DecodeNil(); err != nil {
			return nil, p.wrap(err, at)
		}
		return nil, nil
	case msgpcode.True, msgpcode.False:
		v, err := p.dec.DecodeBool()
		if err != nil {
			return nil, p.wrap(err, at)
		}
		return v, nil
	case msgpcode.Uint64:
		v, err := p.dec.DecodeUint64()
		if err != nil {
			return nil, p.wrap(err, at)
		}
		if v <= math.MaxInt64 {
			return int64(v), nil
		}
		return v, nil
	case msgpcode.Uint8, msgpcode.Uint16, msgpcode.Uint32,
		msgpcode.Int8, msgpcode.Int16, msgpcode.Int32, msgpcode.Int64:
		v, err := p.dec.DecodeInt64()
		if err != nil {
			return nil, p.wrap(err, at)
		}
		return v, nil
	case msgpcode.Float, msgpcode.Double:
		v, err := p.dec.DecodeFloat64()
		if err != nil {
			return nil, p.wrap(err, at)
		}
		return v, nil
	default:
		return nil, malformed(fmt.Sprintf("unexpected type tag 0x%02x", c), p.pos())
	}
}

func (p *msgpackParser) str(c byte, at int64) (string, error) {
	n, size, err := p.header(c)
	if err != nil {
		return "", err
	}
	if err := p.checkLength(n, size, 1); err != nil {
		return "", err
	}
	var s string
	if msgpcode.IsBin(c) {
		b, err := p.dec.DecodeBytes()
		if err != nil {
			return "", p.wrap(err, at)
		}
		s = string(b)
	} else {
		if s, err = p.dec.DecodeString(); err != nil {
			return "", p.wrap(err, at)
		}
	}
	if !utf8.ValidString(s) {
		bad := invalidUTF8Offset([]byte(s))
		return "", malformed("invalid UTF-8 in string", errors.Position{Offset: at + int64(size+bad)})
	}
	return s, nil
}

func (p *msgpackParser) array(c byte, depth int, at int64) (any, error) {
	if depth > p.maxDepth {
		return nil, malformed(fmt.Sprintf("nesting exceeds maximum depth %d", p.maxDepth), p.pos())
	}
	n, size, err := p.header(c)
	if err != nil {
		return nil, err
	}
	if err := p.checkLength(n, size, 1); err != nil {
		return nil, err
	}
	if _, err := p.dec.DecodeArrayLen(); err != nil {
		return nil, p.wrap(err, at)
	}

	arr := make([]any, 0, n)
	for range n {
		v, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

func (p *msgpackParser) mapping(c byte, depth int, at int64) (any, error) {
	if depth > p.maxDepth {
		return nil, malformed(fmt.Sprintf("nesting exceeds maximum depth %d", p.maxDepth), p.pos())
	}
	n, size, err := p.header(c)
	if err != nil {
		return nil, err
	}
	if err := p.checkLength(n, size, 2); err != nil {
		return nil, err
	}
	if _, err := p.dec.DecodeMapLen(); err != nil {
		return nil, p.wrap(err, at)
	}

	m := NewMap(n)
	for range n {
		keyAt := p.offset()
		if p.r.Len() == 0 {
			return nil, p.truncated(keyAt)
		}
		kc, err := p.dec.PeekCode()
		if err != nil {
			return nil, p.wrap(err, keyAt)
		}
		if !msgpcode.IsString(kc) {
			return nil, malformed(fmt.Sprintf("map key must be a string, got tag 0x%02x", kc), p.pos())
		}
		key, err := p.str(kc, keyAt)
		if err != nil {
			return nil, err
		}
		if m.Has(key) {
			return nil, malformed(fmt.Sprintf("duplicate key %q", key), errors.Position{Offset: keyAt})
		}
		v, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}
