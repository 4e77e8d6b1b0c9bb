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
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBinary exercises a writer with a fixed local symbol table: a
// hundred-symbol unresolvable import plus the locals foo (110) and
// bar (111). The emitted prefix matches readBinary's.
func writeBinary(t *testing.T, f func(w Writer)) []byte {
	bogusSyms := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		bogusSyms = append(bogusSyms, fmt.Sprintf("blah%v", i))
	}

	bogus := []SharedSymbolTable{
		NewSharedSymbolTable("bogus", 42, bogusSyms),
	}

	buf := bytes.Buffer{}
	w := NewBinaryWriterLST(&buf, NewLocalSymbolTable(bogus, []string{"foo", "bar"}))

	f(w)

	require.NoError(t, w.Finish())
	return buf.Bytes()
}

func testBinaryWriter(t *testing.T, eval []byte, f func(w Writer)) {
	val := writeBinary(t, f)

	prefix := []byte{
		0xE0, 0x01, 0x00, 0xEA, // $ion_1_0
		0xEE, 0x9F, 0x81, 0x83, 0xDE, 0x9B, // $ion_symbol_table::{
		0x86, 0xBE, 0x8E, // imports:[
		0xDD, // {
		0x84, 0x85, 'b', 'o', 'g', 'u', 's', // name: "bogus"
		0x85, 0x21, 0x2A, // version: 42
		0x88, 0x21, 0x64, // max_id: 100
		// }]
		0x87, 0xB8, // symbols:[
		0x83, 'f', 'o', 'o', // "foo"
		0x83, 'b', 'a', 'r', // "bar"
		// ]}
	}

	eval = append(prefix, eval...)
	assert.Equal(t, fmtbytes(eval), fmtbytes(val))
}

func TestWriteBinaryNulls(t *testing.T) {
	eval := []byte{
		0x0F,
		0x2F,
		0x8F,
		0xDF,
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.WriteNull())
		assert.NoError(t, w.WriteNullType(IntType))
		assert.NoError(t, w.WriteNullType(StringType))
		assert.NoError(t, w.WriteNullType(StructType))
	})
}

func TestWriteBinaryBools(t *testing.T) {
	eval := []byte{0x10, 0x11}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.WriteBool(false))
		assert.NoError(t, w.WriteBool(true))
	})
}

func TestWriteBinaryInts(t *testing.T) {
	eval := []byte{
		0x20,
		0x21, 0x01,
		0x31, 0x01,
		0x22, 0x01, 0x00,
		0x28, 0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.WriteInt(0))
		assert.NoError(t, w.WriteInt(1))
		assert.NoError(t, w.WriteInt(-1))
		assert.NoError(t, w.WriteInt(256))
		assert.NoError(t, w.WriteInt(math.MaxInt64))
	})
}

func TestWriteBinaryUintsBigInts(t *testing.T) {
	eval := []byte{
		0x28, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0x29, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x20,
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.WriteUint(math.MaxUint64))

		bi := new(big.Int).Lsh(big.NewInt(1), 64)
		assert.NoError(t, w.WriteBigInt(bi))

		assert.NoError(t, w.WriteBigInt(big.NewInt(0)))
	})
}

func TestWriteBinaryFloats(t *testing.T) {
	eval := []byte{
		0x40,
		0x44, 0x40, 0x50, 0x00, 0x00,
		0x48, 0x40, 0x09, 0x21, 0xFB, 0x54, 0x44, 0x2D, 0x18,
		0x44, 0x7F, 0xC0, 0x00, 0x00,
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.WriteFloat(0))
		assert.NoError(t, w.WriteFloat(3.25))
		assert.NoError(t, w.WriteFloat(3.141592653589793))
		assert.NoError(t, w.WriteFloat(math.NaN()))
	})
}

func TestWriteBinaryDecimals(t *testing.T) {
	eval := []byte{
		0x50,
		0x52, 0xC2, 0x7B,
		0x52, 0xC2, 0x80,
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.WriteDecimal(MustParseDecimal("0.")))
		assert.NoError(t, w.WriteDecimal(MustParseDecimal("1.23")))
		assert.NoError(t, w.WriteDecimal(MustParseDecimal("-0.00")))
	})
}

func TestWriteBinaryTimestamps(t *testing.T) {
	eval := []byte{
		0x63, 0xC0, 0x0F, 0xD0,
		0x68, 0x80, 0x0F, 0xE3, 0x88, 0x84, 0x88, 0x8F, 0xAB,
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.WriteTimestamp(NewDateTimestamp(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), Year)))
		assert.NoError(t, w.WriteTimestamp(NewTimestamp(time.Date(2019, 8, 4, 8, 15, 43, 0, time.UTC), Second, TimezoneUTC)))
	})
}

func TestWriteBinarySymbols(t *testing.T) {
	eval := []byte{
		0x71, 0x04, // name
		0x71, 0x6E, // foo
		0x71, 0x6F, // bar
		0x71, 0x0B, // $11
		0x71, 0x09, // $9
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.WriteSymbolFromString("name"))
		assert.NoError(t, w.WriteSymbolFromString("foo"))
		assert.NoError(t, w.WriteSymbol(NewSymbolTokenFromString("bar")))
		assert.NoError(t, w.WriteSymbolFromString("$11"))
		assert.NoError(t, w.WriteSymbol(SymbolToken{SID: 9}))
	})
}

func TestWriteBinaryUnknownSymbol(t *testing.T) {
	buf := bytes.Buffer{}
	w := NewBinaryWriterLST(&buf, NewLocalSymbolTable(nil, nil))

	// A fixed symbol table cannot intern new text.
	assert.Error(t, w.WriteSymbolFromString("bogus"))
}

func TestWriteBinaryStrings(t *testing.T) {
	eval := []byte{
		0x80,
		0x83, 'f', 'o', 'o',
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.WriteString(""))
		assert.NoError(t, w.WriteString("foo"))
	})
}

func TestWriteBinaryLobs(t *testing.T) {
	eval := []byte{
		0x95, 'h', 'e', 'l', 'l', 'o',
		0xA5, 'w', 'o', 'r', 'l', 'd',
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.WriteClob([]byte("hello")))
		assert.NoError(t, w.WriteBlob([]byte("world")))
	})
}

func TestWriteBinaryLists(t *testing.T) {
	eval := []byte{
		0xB3,
		0x21, 0x01,
		0xB0,
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.BeginList())
		assert.NoError(t, w.WriteInt(1))
		assert.NoError(t, w.BeginList())
		assert.NoError(t, w.EndList())
		assert.NoError(t, w.EndList())
	})
}

func TestWriteBinarySexps(t *testing.T) {
	eval := []byte{
		0xC3,
		0x71, 0x6E,
		0xC0,
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.BeginSexp())
		assert.NoError(t, w.WriteSymbolFromString("foo"))
		assert.NoError(t, w.BeginSexp())
		assert.NoError(t, w.EndSexp())
		assert.NoError(t, w.EndSexp())
	})
}

func TestWriteBinaryStructs(t *testing.T) {
	eval := []byte{
		0xD0,
		0xD6,
		0xEE, 0x21, 0x01, // foo: 1
		0xEF, 0xB1, 0x11, // bar: [true]
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.BeginStruct())
		assert.NoError(t, w.EndStruct())

		assert.NoError(t, w.BeginStruct())

		assert.NoError(t, w.FieldName(NewSymbolTokenFromString("foo")))
		assert.NoError(t, w.WriteInt(1))

		assert.NoError(t, w.FieldName(NewSymbolTokenFromString("bar")))
		assert.NoError(t, w.BeginList())
		assert.NoError(t, w.WriteBool(true))
		assert.NoError(t, w.EndList())

		assert.NoError(t, w.EndStruct())
	})
}

func TestWriteBinaryAnnotations(t *testing.T) {
	eval := []byte{
		0xE4, 0x81, 0xEE, 0x21, 0x01, // foo::1
	}
	testBinaryWriter(t, eval, func(w Writer) {
		assert.NoError(t, w.Annotation(NewSymbolTokenFromString("foo")))
		assert.NoError(t, w.WriteInt(1))
	})
}

func TestWriteBinaryTopLevelFieldNameFails(t *testing.T) {
	buf := bytes.Buffer{}
	w := NewBinaryWriter(&buf)

	assert.Error(t, w.FieldName(NewSymbolTokenFromString("foo")))
}

func TestWriteBinaryUnmatchedEndFails(t *testing.T) {
	buf := bytes.Buffer{}
	w := NewBinaryWriter(&buf)

	assert.Error(t, w.EndList())
}

func TestWriteBinaryFinishInContainerFails(t *testing.T) {
	buf := bytes.Buffer{}
	w := NewBinaryWriter(&buf)

	require.NoError(t, w.BeginList())
	assert.Error(t, w.Finish())
}

func TestWriteBinaryBuffered(t *testing.T) {
	buf := bytes.Buffer{}
	w := NewBinaryWriter(&buf)

	require.NoError(t, w.WriteInt(1))
	require.NoError(t, w.Finish())

	// No symbols were written, so no symbol table is needed.
	eval := []byte{
		0xE0, 0x01, 0x00, 0xEA,
		0x21, 0x01,
	}
	assert.Equal(t, fmtbytes(eval), fmtbytes(buf.Bytes()))
}

func TestWriteBinaryBufferedInternsSymbols(t *testing.T) {
	buf := bytes.Buffer{}
	w := NewBinaryWriter(&buf)

	require.NoError(t, w.WriteSymbolFromString("hello"))
	require.NoError(t, w.Finish())

	eval := []byte{
		0xE0, 0x01, 0x00, 0xEA,
		0xEB, 0x81, 0x83, 0xD8, // $ion_symbol_table::{
		0x87, 0xB6, // symbols:[
		0x85, 'h', 'e', 'l', 'l', 'o', // "hello"
		// ]}
		0x71, 0x0A, // $10
	}
	assert.Equal(t, fmtbytes(eval), fmtbytes(buf.Bytes()))
}
