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
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolNeedsQuoting(t *testing.T) {
	test := func(sym string, expected bool) {
		t.Run(sym, func(t *testing.T) {
			assert.Equal(t, expected, symbolNeedsQuoting(sym))
		})
	}

	test("", true)
	test("null", true)
	test("true", true)
	test("false", true)
	test("nan", true)

	test("foo", false)
	test("$foo", false)
	test("_foo_", false)
	test("foo123", false)

	test("123foo", true)
	test("foo bar", true)
	test("foo.bar", true)
	test("foo'bar", true)
}

func TestIsSymbolRef(t *testing.T) {
	assert.True(t, isSymbolRef("$10"))
	assert.True(t, isSymbolRef("$0"))

	assert.False(t, isSymbolRef("$"))
	assert.False(t, isSymbolRef("$foo"))
	assert.False(t, isSymbolRef("$10a"))
	assert.False(t, isSymbolRef("10"))
}

func TestWriteSymbol(t *testing.T) {
	test := func(sym, expected string) {
		t.Run(sym, func(t *testing.T) {
			buf := strings.Builder{}
			require.NoError(t, writeSymbol(sym, &buf))
			assert.Equal(t, expected, buf.String())
		})
	}

	test("foo", "foo")
	test("null", "'null'")
	test("foo bar", "'foo bar'")
	test("foo'bar", `'foo\'bar'`)

	// Symbol-reference lookalikes must be quoted to mean their text.
	test("$10", "'$10'")
	test("$foo", "$foo")
}

func TestFormatFloat(t *testing.T) {
	test := func(val float64, expected string) {
		t.Run(expected, func(t *testing.T) {
			assert.Equal(t, expected, formatFloat(val))
		})
	}

	test(0, "0e+0")
	test(1, "1e+0")
	test(-1, "-1e+0")
	test(0.25, "2.5e-1")
	test(1000, "1e+3")
	test(1e100, "1e+100")
	test(math.MaxFloat64, "1.7976931348623157e+308")

	test(math.Inf(1), "+inf")
	test(math.Inf(-1), "-inf")
	test(math.NaN(), "nan")
}

func TestParseFloat(t *testing.T) {
	val, err := parseFloat("2.5e-1")
	require.NoError(t, err)
	assert.Equal(t, 0.25, val)

	// Overflow clips to an infinity rather than failing.
	val, err = parseFloat("1e500")
	require.NoError(t, err)
	assert.True(t, math.IsInf(val, 1))

	_, err = parseFloat("bogus")
	assert.Error(t, err)
}

func TestParseIntDecimal(t *testing.T) {
	val, err := parseInt("123", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(123), val)

	val, err = parseInt("-123", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(-123), val)

	val, err = parseInt("123456789012345678901234567890", 10)
	require.NoError(t, err)
	expected, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	assert.Equal(t, 0, expected.Cmp(val.(*big.Int)))
}

func TestParseIntRadix(t *testing.T) {
	val, err := parseInt("0b1010", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(10), val)

	val, err = parseInt("-0b1010", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(-10), val)

	val, err = parseInt("0xFF", 16)
	require.NoError(t, err)
	assert.Equal(t, int64(255), val)

	val, err = parseInt("-0xff", 16)
	require.NoError(t, err)
	assert.Equal(t, int64(-255), val)

	assert.Panics(t, func() {
		_, _ = parseInt("777", 8)
	})
}

func TestWriteEscapedString(t *testing.T) {
	test := func(in, expected string) {
		t.Run(expected, func(t *testing.T) {
			buf := strings.Builder{}
			require.NoError(t, writeEscapedString(in, &buf))
			assert.Equal(t, expected, buf.String())
		})
	}

	test("hello", "hello")
	test("\"hi\"", `\"hi\"`)
	test("back\\slash", `back\\slash`)
	test("line\nbreak", `line\nbreak`)
	test("\x00", `\0`)
	test("\x01", `\x01`)
}
