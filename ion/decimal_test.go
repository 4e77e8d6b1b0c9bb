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
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	test := func(in string, ecoef string, escale int32) {
		t.Run(in, func(t *testing.T) {
			d, err := ParseDecimal(in)
			require.NoError(t, err)

			coef, ok := new(big.Int).SetString(ecoef, 10)
			require.True(t, ok)

			acoef, ascale := d.CoEx()
			assert.Equal(t, 0, coef.Cmp(acoef), "expected coef %v, got %v", coef, acoef)
			assert.Equal(t, escale, -ascale)
		})
	}

	test("0", "0", 0)
	test("-0", "0", 0)
	test("0.", "0", 0)
	test("0d0", "0", 0)
	test("0d-0", "0", 0)

	test("0.0", "0", 1)
	test("0.00", "0", 2)
	test("0d-1", "0", 1)

	test("1", "1", 0)
	test("-1", "-1", 0)
	test("1d1", "1", -1)
	test("1d+1", "1", -1)
	test("1d-1", "1", 1)

	test("1.0", "10", 1)
	test("0.01", "1", 2)
	test("1.01", "101", 2)

	test("101d-2", "101", 2)

	test("123456789012345678901234567890", "123456789012345678901234567890", 0)
}

func TestParseDecimalErrors(t *testing.T) {
	test := func(in string) {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDecimal(in)
			assert.Error(t, err)
		})
	}

	test("")
	test("one")
	test("1d")
	test("1dd1")
	test("1.2.3")
}

func TestNegativeZero(t *testing.T) {
	d := MustParseDecimal("-0.00")
	assert.True(t, d.IsNegZero())

	assert.Equal(t, 0, d.Sign())
	assert.Equal(t, "-0.00", d.String())

	assert.False(t, MustParseDecimal("0.00").IsNegZero())
}

func TestDecimalString(t *testing.T) {
	test := func(in string, expected string) {
		t.Run(in, func(t *testing.T) {
			d := MustParseDecimal(in)
			assert.Equal(t, expected, d.String())
		})
	}

	test("0", "0.")
	test("1", "1.")
	test("-1", "-1.")

	test("1d1", "1d1")
	test("1d-1", "0.1")
	test("1d-2", "0.01")
	test("-1d-2", "-0.01")

	test("1.0", "1.0")
	test("1.00", "1.00")
	test("10d-1", "1.0")

	test("123d10", "123d10")
	test("123d-1", "12.3")
	test("123d-5", "0.00123")
}

func TestDecimalArithmetic(t *testing.T) {
	one := MustParseDecimal("1")
	two := MustParseDecimal("2")
	tenth := MustParseDecimal("0.1")

	assert.Equal(t, 0, MustParseDecimal("3").Cmp(one.Add(two)))
	assert.Equal(t, 0, MustParseDecimal("-1").Cmp(one.Sub(two)))
	assert.Equal(t, 0, MustParseDecimal("0.2").Cmp(two.Mul(tenth)))

	assert.Equal(t, 0, one.Cmp(MustParseDecimal("-1").Abs()))
	assert.Equal(t, 0, one.Cmp(MustParseDecimal("-1").Neg()))
}

func TestDecimalShift(t *testing.T) {
	d := MustParseDecimal("1.23")

	assert.Equal(t, 0, MustParseDecimal("123").Cmp(d.ShiftL(2)))
	assert.Equal(t, 0, MustParseDecimal("0.000123").Cmp(d.ShiftR(4)))
}

func TestDecimalEqual(t *testing.T) {
	// Equal cares about scale; Cmp does not.
	a := MustParseDecimal("1.0")
	b := MustParseDecimal("1.00")

	assert.Equal(t, 0, a.Cmp(b))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(MustParseDecimal("1.0")))
}

func TestDecimalTruncate(t *testing.T) {
	d := MustParseDecimal("123.456")

	assert.Equal(t, "123.4", d.Truncate(4).String())
	assert.Equal(t, "123.", d.Truncate(3).String())
	assert.Equal(t, "1.2", MustParseDecimal("1.23").Truncate(2).String())
}
