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
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func _next(t *testing.T, r Reader, et Type) {
	require.True(t, r.Next(), "next returned false, err: %v", r.Err())
	require.Equal(t, et, r.Type())
}

func _eof(t *testing.T, r Reader) {
	require.False(t, r.Next())
	require.NoError(t, r.Err())
}

func _null(t *testing.T, r Reader, et Type) {
	_next(t, r, et)
	assert.True(t, r.IsNull())
}

func _bool(t *testing.T, r Reader, expected bool) {
	_next(t, r, BoolType)
	val, err := r.BoolValue()
	require.NoError(t, err)
	require.NotNil(t, val)
	assert.Equal(t, expected, *val)
}

func _int(t *testing.T, r Reader, expected int64) {
	_next(t, r, IntType)
	val, err := r.Int64Value()
	require.NoError(t, err)
	require.NotNil(t, val)
	assert.Equal(t, expected, *val)
}

func _float(t *testing.T, r Reader, expected float64) {
	_next(t, r, FloatType)
	val, err := r.FloatValue()
	require.NoError(t, err)
	require.NotNil(t, val)
	if math.IsNaN(expected) {
		assert.True(t, math.IsNaN(*val))
	} else {
		assert.Equal(t, expected, *val)
	}
}

func _decimal(t *testing.T, r Reader, expected *Decimal) {
	_next(t, r, DecimalType)
	val, err := r.DecimalValue()
	require.NoError(t, err)
	require.NotNil(t, val)
	assert.True(t, expected.Equal(val), "expected %v, got %v", expected, val)
}

func _timestamp(t *testing.T, r Reader, expected Timestamp) {
	_next(t, r, TimestampType)
	val, err := r.TimestampValue()
	require.NoError(t, err)
	require.NotNil(t, val)
	assert.True(t, expected.Equal(*val), "expected %v, got %v", expected, *val)
}

func _string(t *testing.T, r Reader, expected string) {
	_next(t, r, StringType)
	val, err := r.StringValue()
	require.NoError(t, err)
	require.NotNil(t, val)
	assert.Equal(t, expected, *val)
}

func _symbol(t *testing.T, r Reader, expected string) {
	_next(t, r, SymbolType)
	val, err := r.SymbolValue()
	require.NoError(t, err)
	require.NotNil(t, val)
	require.NotNil(t, val.Text)
	assert.Equal(t, expected, *val.Text)
}

func _lob(t *testing.T, r Reader, et Type, expected []byte) {
	_next(t, r, et)
	val, err := r.ByteValue()
	require.NoError(t, err)
	assert.Equal(t, expected, val)
}

func TestReadTextNulls(t *testing.T) {
	r := NewReaderString("null null.null null.bool null.int null.struct")

	_null(t, r, NullType)
	_null(t, r, NullType)
	_null(t, r, BoolType)
	_null(t, r, IntType)
	_null(t, r, StructType)
	_eof(t, r)
}

func TestReadTextBools(t *testing.T) {
	r := NewReaderString("true false")

	_bool(t, r, true)
	_bool(t, r, false)
	_eof(t, r)
}

func TestReadTextInts(t *testing.T) {
	r := NewReaderString("0 -1 1_000 0b1010 0xFF -0x10")

	_int(t, r, 0)
	_int(t, r, -1)
	_int(t, r, 1000)
	_int(t, r, 10)
	_int(t, r, 255)
	_int(t, r, -16)
	_eof(t, r)
}

func TestReadTextBigInt(t *testing.T) {
	r := NewReaderString("123456789012345678901234567890")

	_next(t, r, IntType)

	size, err := r.IntSize()
	require.NoError(t, err)
	assert.Equal(t, BigInt, size)

	val, err := r.BigIntValue()
	require.NoError(t, err)
	require.NotNil(t, val)
	assert.Equal(t, "123456789012345678901234567890", val.String())

	_eof(t, r)
}

func TestReadTextFloats(t *testing.T) {
	r := NewReaderString("0e0 1.5e2 nan +inf -inf")

	_float(t, r, 0)
	_float(t, r, 150)
	_float(t, r, math.NaN())
	_float(t, r, math.Inf(1))
	_float(t, r, math.Inf(-1))
	_eof(t, r)
}

func TestReadTextDecimals(t *testing.T) {
	r := NewReaderString("0. 1.23 -0.00 1d100")

	_decimal(t, r, MustParseDecimal("0."))
	_decimal(t, r, MustParseDecimal("1.23"))
	_decimal(t, r, MustParseDecimal("-0.00"))
	_decimal(t, r, MustParseDecimal("1d100"))
	_eof(t, r)
}

func TestReadTextTimestamps(t *testing.T) {
	r := NewReaderString("2001T 2001-02-03T 2001-02-03T04:05:06.789Z")

	ts1, _ := parseTimestamp("2001T")
	ts2, _ := parseTimestamp("2001-02-03T")
	ts3, _ := parseTimestamp("2001-02-03T04:05:06.789Z")

	_timestamp(t, r, ts1)
	_timestamp(t, r, ts2)
	_timestamp(t, r, ts3)
	_eof(t, r)
}

func TestReadTextStrings(t *testing.T) {
	r := NewReaderString(`"hello" "a\nb" '''long ''' '''string'''`)

	_string(t, r, "hello")
	_string(t, r, "a\nb")
	_string(t, r, "long string")
	_eof(t, r)
}

func TestReadTextSymbols(t *testing.T) {
	r := NewReaderString("foo 'bar baz' $4 $10")

	_symbol(t, r, "foo")
	_symbol(t, r, "bar baz")

	// $4 resolves through the system symbol table.
	_symbol(t, r, "name")

	// $10 is past the end of the table; its text is unknown but it is
	// still data.
	_next(t, r, SymbolType)
	val, err := r.SymbolValue()
	require.NoError(t, err)
	require.NotNil(t, val)
	assert.Nil(t, val.Text)
	assert.Equal(t, int64(10), val.SID)

	_eof(t, r)
}

func TestReadTextLobs(t *testing.T) {
	r := NewReaderString(`{{aGVsbG8=}} {{"world"}}`)

	_lob(t, r, BlobType, []byte("hello"))
	_lob(t, r, ClobType, []byte("world"))
	_eof(t, r)
}

func TestReadTextList(t *testing.T) {
	r := NewReaderString("[1, two, [3]]")

	_next(t, r, ListType)
	require.NoError(t, r.StepIn())
	{
		_int(t, r, 1)
		_symbol(t, r, "two")

		_next(t, r, ListType)
		require.NoError(t, r.StepIn())
		{
			_int(t, r, 3)
			_eof(t, r)
		}
		require.NoError(t, r.StepOut())

		_eof(t, r)
	}
	require.NoError(t, r.StepOut())
	_eof(t, r)
}

func TestReadTextStruct(t *testing.T) {
	r := NewReaderString(`{foo: 1, "bar": two}`)

	_next(t, r, StructType)
	require.NoError(t, r.StepIn())
	assert.True(t, r.IsInStruct())

	_int(t, r, 1)
	fn, err := r.FieldName()
	require.NoError(t, err)
	require.NotNil(t, fn)
	require.NotNil(t, fn.Text)
	assert.Equal(t, "foo", *fn.Text)

	_symbol(t, r, "two")
	fn, err = r.FieldName()
	require.NoError(t, err)
	require.NotNil(t, fn)
	require.NotNil(t, fn.Text)
	assert.Equal(t, "bar", *fn.Text)

	_eof(t, r)
	require.NoError(t, r.StepOut())
	_eof(t, r)
}

func TestReadTextStepOutEarly(t *testing.T) {
	r := NewReaderString("[1, 2, {a: b}] after")

	_next(t, r, ListType)
	require.NoError(t, r.StepIn())
	_int(t, r, 1)
	require.NoError(t, r.StepOut())

	_symbol(t, r, "after")
	_eof(t, r)
}

func TestReadTextSexp(t *testing.T) {
	r := NewReaderString("(a + (b - c))")

	_next(t, r, SexpType)
	require.NoError(t, r.StepIn())
	{
		_symbol(t, r, "a")
		_symbol(t, r, "+")

		_next(t, r, SexpType)
		require.NoError(t, r.StepIn())
		{
			_symbol(t, r, "b")
			_symbol(t, r, "-")
			_symbol(t, r, "c")
			_eof(t, r)
		}
		require.NoError(t, r.StepOut())

		_eof(t, r)
	}
	require.NoError(t, r.StepOut())
	_eof(t, r)
}

func TestReadTextOperatorOutsideSexp(t *testing.T) {
	r := NewReaderString("1 + 2")

	_int(t, r, 1)
	require.False(t, r.Next())
	assert.Error(t, r.Err())

	// The reader stays poisoned.
	require.False(t, r.Next())
	assert.Error(t, r.Err())
}

func TestReadTextAnnotations(t *testing.T) {
	r := NewReaderString("foo::bar::null 'baz qux'::42")

	_null(t, r, NullType)
	as, err := r.Annotations()
	require.NoError(t, err)
	require.Len(t, as, 2)
	assert.Equal(t, "foo", *as[0].Text)
	assert.Equal(t, "bar", *as[1].Text)

	_int(t, r, 42)
	as, err = r.Annotations()
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, "baz qux", *as[0].Text)

	_eof(t, r)
}

func TestReadTextIVM(t *testing.T) {
	r := NewReaderString("$ion_1_0 42")

	// The version marker is an encoding artifact, not a value.
	_int(t, r, 42)
	_eof(t, r)
}

func TestReadTextQuotedIVM(t *testing.T) {
	r := NewReaderString("'$ion_1_0'")

	// Quoting turns it back into an ordinary symbol.
	_symbol(t, r, "$ion_1_0")
	_eof(t, r)
}

func TestReadTextLocalSymbolTable(t *testing.T) {
	r := NewReaderString(`$ion_symbol_table::{symbols:["foo", "bar"]} $10 $11`)

	_symbol(t, r, "foo")
	_symbol(t, r, "bar")
	_eof(t, r)

	st := r.SymbolTable()
	require.NotNil(t, st)
	sid, ok := st.FindByName("foo")
	require.True(t, ok)
	assert.Equal(t, uint64(10), sid)
}

func TestReadTextLocalSymbolTableWithImport(t *testing.T) {
	shared := NewSharedSymbolTable("shared", 1, []string{"a", "b"})
	cat := NewCatalog(shared)

	r := NewReaderCat(strings.NewReader(`$ion_symbol_table::{imports:[{name:"shared",version:1,max_id:2}],symbols:["c"]} $10 $12`), cat)

	_symbol(t, r, "a")
	_symbol(t, r, "c")
	_eof(t, r)
}

func TestReadTextLocalSymbolTableAppend(t *testing.T) {
	r := NewReaderString(`$ion_symbol_table::{symbols:["foo", "bar"]} $10 ` +
		`$ion_symbol_table::{imports:$ion_symbol_table, symbols:["baz"]} $10 $11 $12`)

	_symbol(t, r, "foo")

	// Appending keeps previously assigned ids stable.
	_symbol(t, r, "foo")
	_symbol(t, r, "bar")
	_symbol(t, r, "baz")
	_eof(t, r)
}

func TestReadTextDeeplyNestedSkip(t *testing.T) {
	// Skipping nesting deeper than any reasonable call stack must not
	// crash; balanced input skips cleanly, unterminated input errors.
	depth := 1 << 20
	r := NewReaderString(strings.Repeat("[", depth) + strings.Repeat("]", depth))

	_next(t, r, ListType)
	require.NoError(t, r.StepIn())
	require.NoError(t, r.StepOut())
	_eof(t, r)

	r = NewReaderString(strings.Repeat("[", 1<<25))

	_next(t, r, ListType)
	require.NoError(t, r.StepIn())
	require.Error(t, r.StepOut())
}

func TestReadTextUnquotedKeywordFieldName(t *testing.T) {
	r := NewReaderString("{null: 1}")

	_next(t, r, StructType)
	require.NoError(t, r.StepIn())

	require.False(t, r.Next())
	assert.Error(t, r.Err())
}

func TestReadTextMismatchedDelimiters(t *testing.T) {
	r := NewReaderString("[1, 2)")

	_next(t, r, ListType)
	require.NoError(t, r.StepIn())
	_int(t, r, 1)
	_int(t, r, 2)

	require.False(t, r.Next())
	assert.Error(t, r.Err())
}

func TestReadTextWrongAccessor(t *testing.T) {
	r := NewReaderString("42")

	_next(t, r, IntType)

	_, err := r.StringValue()
	assert.Error(t, err)

	_, err = r.BoolValue()
	assert.Error(t, err)

	// The right accessor still works afterwards.
	val, err := r.Int64Value()
	require.NoError(t, err)
	require.NotNil(t, val)
	assert.Equal(t, int64(42), *val)
}
