// Copyright © 2021 Rak Laptudirm <raklaptudirm@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bencode

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/p2p-ld/torrent-models/pkg/bencode/scanner"
	"github.com/p2p-ld/torrent-models/pkg/bencode/token"
)

// Kind identifies which of the four bencode atoms a Value holds.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindList
	KindDict
)

// Value is a generic, tagged-union bencode value preserving the exact
// shape of the source: dictionary insertion order, unknown keys, and
// (when decoded from bytes) the byte span the value occupied in the
// source buffer.
type Value struct {
	Kind Kind
	Int  *big.Int // KindInt; unbounded, see §4.A
	Str  []byte   // KindString; raw bytes, no encoding assumed
	List []Value  // KindList
	Dict *Dict    // KindDict

	// Start and End are the [start, end) byte range this value occupied
	// in the buffer it was decoded from. Both are -1 for values built
	// programmatically rather than decoded.
	Start, End int
}

// NewInt returns an integer Value.
func NewInt(i int64) Value {
	return Value{Kind: KindInt, Int: big.NewInt(i), Start: -1, End: -1}
}

// NewBigInt returns an integer Value from an arbitrary-precision integer.
func NewBigInt(i *big.Int) Value {
	return Value{Kind: KindInt, Int: new(big.Int).Set(i), Start: -1, End: -1}
}

// NewBytes returns a byte-string Value.
func NewBytes(b []byte) Value {
	return Value{Kind: KindString, Str: append([]byte(nil), b...), Start: -1, End: -1}
}

// NewString returns a byte-string Value from a Go string.
func NewString(s string) Value {
	return NewBytes([]byte(s))
}

// NewList returns a list Value.
func NewList(items ...Value) Value {
	return Value{Kind: KindList, List: items, Start: -1, End: -1}
}

// NewDictValue returns a dictionary Value wrapping d.
func NewDictValue(d *Dict) Value {
	return Value{Kind: KindDict, Dict: d, Start: -1, End: -1}
}

// Bytes returns the raw bytes of a KindString value.
func (v Value) Bytes() ([]byte, bool) {
	if v.Kind != KindString {
		return nil, false
	}
	return v.Str, true
}

// Text returns a KindString value decoded as UTF-8. Invalid sequences are
// replaced per the standard library's usual replacement-character policy;
// callers that need the untouched bytes should use Bytes instead, per the
// "both raw and decoded views" requirement of §4.B.
func (v Value) Text() (string, bool) {
	b, ok := v.Bytes()
	if !ok {
		return "", false
	}
	return strings.ToValidUTF8(string(b), "�"), true
}

// Int64 returns a KindInt value as an int64, or false if it overflows.
func (v Value) Int64() (int64, bool) {
	if v.Kind != KindInt || v.Int == nil {
		return 0, false
	}
	if !v.Int.IsInt64() {
		return 0, false
	}
	return v.Int.Int64(), true
}

// Items returns the elements of a KindList value.
func (v Value) Items() ([]Value, bool) {
	if v.Kind != KindList {
		return nil, false
	}
	return v.List, true
}

// AsDict returns the underlying Dict of a KindDict value.
func (v Value) AsDict() (*Dict, bool) {
	if v.Kind != KindDict || v.Dict == nil {
		return nil, false
	}
	return v.Dict, true
}

// Dict is an ordered mapping from byte-string keys to Values. Insertion
// order is preserved for round-tripping decoded data (§3); canonical
// serialization always re-sorts keys lexicographically regardless of
// insertion order, per §4.A.
type Dict struct {
	keys   []string
	values []Value
	index  map[string]int
}

// NewDict returns an empty, ready to use Dict.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Get returns the value stored under key, and whether it was present.
func (d *Dict) Get(key string) (Value, bool) {
	i, ok := d.index[key]
	if !ok {
		return Value{}, false
	}
	return d.values[i], true
}

// MustGet returns the value stored under key, panicking if absent. Callers
// should only use this after validating the key is present (e.g. in
// invariant checks that already confirmed a required field exists).
func (d *Dict) MustGet(key string) Value {
	v, ok := d.Get(key)
	if !ok {
		panic(fmt.Sprintf("bencode: missing required key %q", key))
	}
	return v
}

// Set inserts or replaces the value stored under key. Replacing a key
// preserves its original position; inserting a new key appends it.
func (d *Dict) Set(key string, v Value) {
	if i, ok := d.index[key]; ok {
		d.values[i] = v
		return
	}
	d.index[key] = len(d.keys)
	d.keys = append(d.keys, key)
	d.values = append(d.values, v)
}

// Delete removes key from the dict, if present.
func (d *Dict) Delete(key string) {
	i, ok := d.index[key]
	if !ok {
		return
	}
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	d.values = append(d.values[:i], d.values[i+1:]...)
	delete(d.index, key)
	for k, idx := range d.index {
		if idx > i {
			d.index[k] = idx - 1
		}
	}
}

// Len returns the number of entries in the dict.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the dict's keys in insertion (read) order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// SortedKeys returns the dict's keys in strictly ascending lexicographic
// byte order, the order canonical encoding MUST use.
func (d *Dict) SortedKeys() []string {
	out := d.Keys()
	sort.Strings(out)
	return out
}

// DecodeValue parses exactly one top-level bencode value from data into a
// generic Value tree, returning a *SyntaxError (see errors.go) on
// any malformed input, including trailing bytes after the value.
//
// Every Value in the resulting tree (not only the top-level one) carries
// the exact [Start, End) byte span it occupied in data. This lets callers
// — the metainfo parser in particular — slice out nested sub-dictionaries,
// such as "info", and hash exactly the bytes the encoder originally wrote,
// without needing to re-encode them (§4.A, §9 "Infohash caching").
func DecodeValue(data []byte) (Value, error) {
	sc := scanner.New(data)
	if err := sc.Valid(); err != nil {
		return Value{}, wrapSyntaxError(err)
	}

	cur := valueCursor{tokens: sc.Tokens}
	return cur.value()
}

// valueCursor walks a fully-scanned token stream, building a Value tree
// and keeping each node's byte span alongside it.
type valueCursor struct {
	tokens []token.Token
	pos    int
}

func (c *valueCursor) peek() token.Token {
	if c.pos >= len(c.tokens) {
		return token.Token{Type: token.ILLEGAL}
	}
	return c.tokens[c.pos]
}

func (c *valueCursor) next() token.Token {
	t := c.peek()
	if c.pos < len(c.tokens) {
		c.pos++
	}
	return t
}

func (c *valueCursor) value() (Value, error) {
	switch c.peek().Type {
	case token.DICT:
		return c.dict()
	case token.LIST:
		return c.list()
	case token.NUMBER:
		return c.number()
	case token.STRING:
		return c.string()
	default:
		panic("bencode: token stream out of sync with the scanner")
	}
}

func (c *valueCursor) dict() (Value, error) {
	start := c.peek().Offset
	c.next() // consume DICT

	d := NewDict()
	for c.peek().Type == token.STRING {
		key := c.next().RawString()

		v, err := c.value()
		if err != nil {
			return Value{}, err
		}
		d.Set(key, v)
	}

	end := c.next() // consume END
	return Value{Kind: KindDict, Dict: d, Start: start, End: end.End()}, nil
}

func (c *valueCursor) list() (Value, error) {
	start := c.peek().Offset
	c.next() // consume LIST

	var items []Value
	for c.peek().Type != token.END && c.peek().Type != token.ILLEGAL {
		v, err := c.value()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}

	end := c.next() // consume END
	return Value{Kind: KindList, List: items, Start: start, End: end.End()}, nil
}

func (c *valueCursor) number() (Value, error) {
	t := c.next()

	n := new(big.Int)
	if _, ok := n.SetString(t.RawNumber(), 10); !ok {
		return Value{}, fmt.Errorf("bencode: invalid integer literal %q", t.Literal)
	}

	return Value{Kind: KindInt, Int: n, Start: t.Offset, End: t.End()}, nil
}

func (c *valueCursor) string() (Value, error) {
	t := c.next()
	return Value{Kind: KindString, Str: []byte(t.RawString()), Start: t.Offset, End: t.End()}, nil
}

// EncodeValue canonically serializes v: integers without leading zeros or
// a '+' sign, dictionary keys in strictly ascending lexicographic order,
// byte strings verbatim. Encoding is deterministic — the same logical
// Value always produces the same bytes (§4.A, §8 round-trip laws).
func EncodeValue(v Value) []byte {
	var buf bytes.Buffer
	writeValue(&buf, v)
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v Value) {
	switch v.Kind {
	case KindInt:
		buf.WriteByte('i')
		buf.WriteString(v.Int.String())
		buf.WriteByte('e')
	case KindString:
		buf.WriteString(strconv.Itoa(len(v.Str)))
		buf.WriteByte(':')
		buf.Write(v.Str)
	case KindList:
		buf.WriteByte('l')
		for _, item := range v.List {
			writeValue(buf, item)
		}
		buf.WriteByte('e')
	case KindDict:
		buf.WriteByte('d')
		for _, k := range v.Dict.SortedKeys() {
			writeValue(buf, NewString(k))
			val, _ := v.Dict.Get(k)
			writeValue(buf, val)
		}
		buf.WriteByte('e')
	default:
		panic(fmt.Sprintf("bencode: encoding unknown Value kind %d", v.Kind))
	}
}
