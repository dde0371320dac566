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
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/NVIDIA/gridserde/pkg/errors"
)

// JSONName is the name of the text codec.
const JSONName = "json"

// JSON is the text codec.
type JSON struct {
	cfg config
}

// NewJSON creates a text codec.
func NewJSON(opts ...Option) *JSON {
	return &JSON{cfg: newConfig(opts)}
}

// Name returns "json".
func (*JSON) Name() string { return JSONName }

// Decode parses a single JSON document. Integers become int64 (uint64 above
// math.MaxInt64, float64 beyond that), other numbers float64. Duplicate
// object keys and trailing data are rejected.
func (j *JSON) Decode(data []byte) (any, error) {
	if off := invalidUTF8Offset(data); off >= 0 {
		return nil, malformed("input is not valid UTF-8", textPosition(data, int64(off)))
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	p := &jsonParser{dec: dec, data: data, maxDepth: j.cfg.limits.MaxDepth}

	v, err := p.value(0)
	if err != nil {
		return nil, err
	}

	end := skipWhitespace(data, dec.InputOffset())
	if end < int64(len(data)) {
		return nil, malformed("unexpected data after top-level value", textPosition(data, end))
	}
	return v, nil
}

type jsonParser struct {
	dec      *json.Decoder
	data     []byte
	maxDepth int
}

func (p *jsonParser) pos(off int64) errors.Position {
	return textPosition(p.data, off)
}

func (p *jsonParser) fail(err error) error {
	if err == io.EOF || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return malformed("unexpected end of input", p.pos(int64(len(p.data))))
	}
	var se *json.SyntaxError
	if stderrors.As(err, &se) {
		return malformedWrap("syntax error", err, p.pos(se.Offset))
	}
	return malformedWrap("syntax error", err, p.pos(p.dec.InputOffset()))
}

func (p *jsonParser) value(depth int) (any, error) {
	start := skipSpace(p.data, p.dec.InputOffset())
	tok, err := p.dec.Token()
	if err != nil {
		return nil, p.fail(err)
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth+1 > p.maxDepth {
			return nil, malformed(fmt.Sprintf("nesting exceeds maximum depth %d", p.maxDepth), p.pos(start))
		}
		switch t {
		case '{':
			return p.object(depth + 1)
		case '[':
			return p.array(depth + 1)
		default:
			return nil, malformed(fmt.Sprintf("unexpected %q", t.String()), p.pos(start))
		}
	case json.Number:
		return p.number(t, start)
	case string, bool, nil:
		return t, nil
	default:
		return nil, malformed(fmt.Sprintf("unexpected token %v", tok), p.pos(start))
	}
}

func (p *jsonParser) object(depth int) (any, error) {
	m := NewMap(0)
	for p.dec.More() {
		keyStart := skipSpace(p.data, p.dec.InputOffset())
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.fail(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, malformed("object key must be a string", p.pos(keyStart))
		}
		if m.Has(key) {
			return nil, malformed(fmt.Sprintf("duplicate key %q", key), p.pos(keyStart))
		}
		v, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	if _, err := p.dec.Token(); err != nil {
		return nil, p.fail(err)
	}
	return m, nil
}

func (p *jsonParser) array(depth int) (any, error) {
	arr := make([]any, 0)
	for p.dec.More() {
		v, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if _, err := p.dec.Token(); err != nil {
		return nil, p.fail(err)
	}
	return arr, nil
}

func (p *jsonParser) number(n json.Number, start int64) (any, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		if !strings.HasPrefix(s, "-") {
			if u, err := strconv.ParseUint(s, 10, 64); err == nil {
				return u, nil
			}
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, malformedWrap(fmt.Sprintf("number %s out of range", s), err, p.pos(start))
	}
	return f, nil
}

func skipWhitespace(data []byte, off int64) int64 {
	for off < int64(len(data)) {
		switch data[off] {
		case ' ', '\t', '\n', '\r':
			off++
		default:
			return off
		}
	}
	return off
}

// skipSpace returns the offset of the first non-whitespace byte at or
// after off, skipping separators left behind by the token reader.
func skipSpace(data []byte, off int64) int64 {
	for off < int64(len(data)) {
		switch data[off] {
		case ' ', '\t', '\n', '\r', ',', ':':
			off++
		default:
			return off
		}
	}
	return off
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// Encode renders v as JSON. Floats always keep a decimal point or exponent,
// infinities are written as the strings "inf" and "-inf", NaN as null.
func (j *JSON) Encode(v any, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	if opts.Indent <= 0 {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	out.Grow(buf.Len() * 2)
	if err := json.Indent(&out, buf.Bytes(), "", strings.Repeat(" ", opts.Indent)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to indent output", err)
	}
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case int:
		buf.WriteString(strconv.Itoa(x))
	case int64:
		buf.WriteString(strconv.FormatInt(x, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(x, 10))
	case float64:
		writeJSONFloat(buf, x)
	case string:
		writeJSONString(buf, x)
	case []any:
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Map:
		buf.WriteByte('{')
		var err error
		i := 0
		x.Range(func(k string, e any) bool {
			if i > 0 {
				buf.WriteByte(',')
			}
			i++
			writeJSONString(buf, k)
			buf.WriteByte(':')
			err = writeJSON(buf, e)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return errors.Newf(errors.ErrCodeInternal, "unsupported tree node %T", v)
	}
	return nil
}

func writeJSONFloat(buf *bytes.Buffer, f float64) {
	switch {
	case math.IsNaN(f):
		buf.WriteString("null")
		return
	case math.IsInf(f, 1):
		buf.WriteString(`"inf"`)
		return
	case math.IsInf(f, -1):
		buf.WriteString(`"-inf"`)
		return
	}

	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b := strconv.AppendFloat(buf.AvailableBuffer(), f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		if n := len(b); n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	} else if !bytes.ContainsAny(b, ".") {
		b = append(b, '.', '0')
	}
	buf.Write(b)
}

const hexDigits = "0123456789abcdef"

func writeJSONString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); {
		if b := s[i]; b < utf8.RuneSelf {
			if b >= 0x20 && b != '"' && b != '\\' {
				i++
				continue
			}
			buf.WriteString(s[start:i])
			switch b {
			case '\\', '"':
				buf.WriteByte('\\')
				buf.WriteByte(b)
			case '\n':
				buf.WriteString(`\n`)
			case '\r':
				buf.WriteString(`\r`)
			case '\t':
				buf.WriteString(`\t`)
			default:
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[b>>4])
				buf.WriteByte(hexDigits[b&0xF])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf.WriteString(s[start:i])
			buf.WriteString(`\ufffd`)
			i += size
			start = i
			continue
		}
		if r == '\u2028' || r == '\u2029' {
			buf.WriteString(s[start:i])
			buf.WriteString(`\u202`)
			buf.WriteByte(hexDigits[r&0xF])
			i += size
			start = i
			continue
		}
		i += size
	}
	buf.WriteString(s[start:])
	buf.WriteByte('"')
}
