/*
 * Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License").
 * You may not use this file except in compliance with the License.
 * A copy of the License is located at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * or in the "license" file accompanying this file. This file is distributed
 * on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
 * express or implied. See the License for the specific language governing
 * permissions and limitations under the License.
 */

package ion

import (
	"bytes"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarshalText(t *testing.T, v interface{}, eval string) {
	val, err := MarshalText(v)
	require.NoError(t, err)
	assert.Equal(t, eval, string(val))
}

func TestMarshalTextScalars(t *testing.T) {
	testMarshalText(t, nil, "null")
	testMarshalText(t, true, "true")
	testMarshalText(t, 5, "5")
	testMarshalText(t, int64(-12), "-12")
	testMarshalText(t, uint(7), "7")
	testMarshalText(t, 2.5, "2.5e+0")
	testMarshalText(t, "hello", `"hello"`)
	testMarshalText(t, []byte("hello"), "{{aGVsbG8=}}")
}

func TestMarshalTextPointers(t *testing.T) {
	i := 42
	pi := &i

	testMarshalText(t, pi, "42")
	testMarshalText(t, (*int)(nil), "null")
}

func TestMarshalTextBigInt(t *testing.T) {
	bi, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	testMarshalText(t, bi, "123456789012345678901234567890")
}

func TestMarshalTextDecimal(t *testing.T) {
	testMarshalText(t, MustParseDecimal("1.23"), "1.23")
}

func TestMarshalTextTimestamp(t *testing.T) {
	ts := NewDateTimestamp(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), Day)
	testMarshalText(t, ts, "2010-01-01T")
}

func TestMarshalTextTimeDate(t *testing.T) {
	tm := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	testMarshalText(t, tm, "2010-01-01T00:00:00.000000000Z")
}

func TestMarshalTextSlicesAndArrays(t *testing.T) {
	testMarshalText(t, []int{1, 2, 3}, "[1,2,3]")
	testMarshalText(t, [2]string{"a", "b"}, `["a","b"]`)
	testMarshalText(t, []interface{}{1, "two", nil}, `[1,"two",null]`)
	testMarshalText(t, [][]int{{1}, {}}, "[[1],[]]")
	testMarshalText(t, []int(nil), "null")
}

func TestMarshalTextMaps(t *testing.T) {
	// MarshalText sorts map keys for deterministic output.
	testMarshalText(t, map[string]int{"b": 2, "a": 1, "c": 3}, "{a:1,b:2,c:3}")
	testMarshalText(t, map[string]int(nil), "null")
}

func TestMarshalTextStructs(t *testing.T) {
	type inner struct {
		B int `ion:"b"`
	}
	type root struct {
		A inner `ion:"a"`
		C int   `ion:"c"`
	}

	testMarshalText(t, root{A: inner{B: 6}, C: 7}, "{a:{b:6},c:7}")
}

func TestMarshalTextOmitEmpty(t *testing.T) {
	type omits struct {
		A int    `ion:"a,omitempty"`
		B string `ion:"b,omitempty"`
		C []int  `ion:"c,omitempty"`
		D int    `ion:"d"`
	}

	testMarshalText(t, omits{}, "{d:0}")
	testMarshalText(t, omits{A: 1, D: 2}, "{a:1,d:2}")
}

func TestMarshalTextHints(t *testing.T) {
	type hinted struct {
		Sym  string `ion:"sym,symbol"`
		Clob []byte `ion:"clob,clob"`
		Sexp []int  `ion:"sexp,sexp"`
	}

	v := hinted{
		Sym:  "abc",
		Clob: []byte("def"),
		Sexp: []int{1, 2, 3},
	}

	testMarshalText(t, v, `{sym:abc,clob:{{"def"}},sexp:(1 2 3)}`)
}

func TestMarshalTextAnnotations(t *testing.T) {
	type wrapper struct {
		Value       int
		Annotations []SymbolToken `ion:",annotations"`
	}

	v := wrapper{
		Value:       5,
		Annotations: []SymbolToken{NewSymbolTokenFromString("age")},
	}

	testMarshalText(t, v, "age::5")
}

type outfit struct {
	color string
}

func (o *outfit) MarshalIon(w Writer) error {
	return w.WriteSymbolFromString(o.color)
}

func TestMarshalTextMarshaler(t *testing.T) {
	testMarshalText(t, &outfit{color: "tan"}, "tan")
}

func TestMarshalTextUnsupportedType(t *testing.T) {
	_, err := MarshalText(make(chan int))
	assert.Error(t, err)
}

func TestEncodeAs(t *testing.T) {
	buf := strings.Builder{}
	e := NewEncoder(NewTextWriterOpts(&buf, TextWriterQuietFinish))

	require.NoError(t, e.EncodeAs("foo", SymbolType))
	require.NoError(t, e.Finish())

	assert.Equal(t, "foo", buf.String())
}

func TestEncodeMultipleValues(t *testing.T) {
	buf := strings.Builder{}
	e := NewTextEncoder(&buf)

	require.NoError(t, e.Encode(1))
	require.NoError(t, e.Encode("two"))
	require.NoError(t, e.Finish())

	assert.Equal(t, "1\n\"two\"\n", buf.String())
}

func TestMarshalBinary(t *testing.T) {
	val, err := MarshalBinary(5)
	require.NoError(t, err)

	eval := []byte{0xE0, 0x01, 0x00, 0xEA, 0x21, 0x05}
	assert.Equal(t, fmtbytes(eval), fmtbytes(val))
}

func TestMarshalBinaryLST(t *testing.T) {
	lst := NewLocalSymbolTable(nil, []string{"foo"})

	type v struct {
		Foo int `ion:"foo"`
	}

	val, err := MarshalBinaryLST(v{Foo: 1}, lst)
	require.NoError(t, err)

	eval := []byte{
		0xE0, 0x01, 0x00, 0xEA,
		0xE9, 0x81, 0x83, 0xD6, // $ion_symbol_table::{
		0x87, 0xB4, // symbols:[
		0x83, 'f', 'o', 'o', // "foo"
		// ]}
		0xD3, 0x8A, 0x21, 0x01, // {foo: 1}
	}
	assert.Equal(t, fmtbytes(eval), fmtbytes(val))
}

func TestMarshalTo(t *testing.T) {
	buf := bytes.Buffer{}
	w := NewTextWriterOpts(&buf, TextWriterQuietFinish)

	require.NoError(t, w.BeginList())
	require.NoError(t, MarshalTo(w, 5))
	require.NoError(t, w.EndList())
	require.NoError(t, w.Finish())

	assert.Equal(t, "[5]", buf.String())
}
