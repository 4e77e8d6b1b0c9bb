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
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// A ParseError is returned when ParseDecimal is given input that is not a
// valid Ion decimal.
type ParseError struct {
	Num string
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ion: ParseDecimal(%v): %v", e.Num, e.Msg)
}

// A Decimal is an arbitrary-precision decimal value: coefficient * 10^exp.
// Negative zero is representable and distinct from zero, per the Ion data
// model.
type Decimal struct {
	coef    *big.Int
	scale   int32 // negated exponent
	negZero bool
}

// NewDecimal creates a decimal with the given coefficient and exponent.
// negZero marks the negative-zero coefficient, which big.Int cannot carry.
func NewDecimal(coef *big.Int, exp int32, negZero bool) *Decimal {
	return &Decimal{
		coef:    coef,
		scale:   -exp,
		negZero: negZero && coef.Sign() == 0,
	}
}

// NewDecimalInt creates a decimal equal to the given integer.
func NewDecimalInt(n int64) *Decimal {
	return NewDecimal(big.NewInt(n), 0, false)
}

// MustParseDecimal is ParseDecimal, panicking on error.
func MustParseDecimal(in string) *Decimal {
	d, err := ParseDecimal(in)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDecimal parses the Ion text form of a decimal: an optionally signed
// coefficient with an optional '.' and an optional d/D exponent.
func ParseDecimal(in string) (*Decimal, error) {
	if len(in) == 0 {
		return nil, &ParseError{in, "empty string"}
	}

	exponent := int32(0)

	if idx := strings.IndexAny(in, "dD"); idx != -1 {
		estr := in[idx+1:]
		if len(estr) == 0 {
			return nil, &ParseError{in, "unexpected end of input after d"}
		}

		e, err := strconv.ParseInt(estr, 10, 32)
		if err != nil {
			return nil, &ParseError{in, err.Error()}
		}

		exponent = int32(e)
		in = in[:idx]
	}

	if idx := strings.Index(in, "."); idx != -1 {
		frac := in[idx+1:]
		exponent -= int32(len(frac))
		in = in[:idx] + frac
	}

	coef, ok := new(big.Int).SetString(in, 10)
	if !ok {
		return nil, &ParseError{in, "cannot parse coefficient"}
	}

	negZero := coef.Sign() == 0 && len(in) > 0 && in[0] == '-'

	return NewDecimal(coef, exponent, negZero), nil
}

// CoEx returns the coefficient and exponent.
func (d *Decimal) CoEx() (*big.Int, int32) {
	return d.coef, -d.scale
}

// IsNegZero reports whether this decimal is negative zero.
func (d *Decimal) IsNegZero() bool {
	return d.negZero
}

// Abs returns the absolute value.
func (d *Decimal) Abs() *Decimal {
	return &Decimal{
		coef:  new(big.Int).Abs(d.coef),
		scale: d.scale,
	}
}

// Neg returns the negation.
func (d *Decimal) Neg() *Decimal {
	return &Decimal{
		coef:  new(big.Int).Neg(d.coef),
		scale: d.scale,
	}
}

// Add returns d + o.
func (d *Decimal) Add(o *Decimal) *Decimal {
	// a*10^x + b*10^y = (a*10^(x-y) + b) * 10^y
	dd, oo := rescale(d, o)
	return &Decimal{
		coef:  new(big.Int).Add(dd.coef, oo.coef),
		scale: dd.scale,
	}
}

// Sub returns d - o.
func (d *Decimal) Sub(o *Decimal) *Decimal {
	dd, oo := rescale(d, o)
	return &Decimal{
		coef:  new(big.Int).Sub(dd.coef, oo.coef),
		scale: dd.scale,
	}
}

// Mul returns d * o.
func (d *Decimal) Mul(o *Decimal) *Decimal {
	// a*10^x * b*10^y = (a*b) * 10^(x+y)
	scale := int64(d.scale) + int64(o.scale)
	if scale > math.MaxInt32 || scale < math.MinInt32 {
		panic("exponent out of bounds")
	}

	return &Decimal{
		coef:  new(big.Int).Mul(d.coef, o.coef),
		scale: int32(scale),
	}
}

// ShiftL returns d * 10^shift without touching the coefficient.
func (d *Decimal) ShiftL(shift int) *Decimal {
	scale := int64(d.scale) - int64(shift)
	if scale > math.MaxInt32 || scale < math.MinInt32 {
		panic("exponent out of bounds")
	}

	return &Decimal{
		coef:  d.coef,
		scale: int32(scale),
	}
}

// ShiftR returns d / 10^shift without touching the coefficient.
func (d *Decimal) ShiftR(shift int) *Decimal {
	scale := int64(d.scale) + int64(shift)
	if scale > math.MaxInt32 || scale < math.MinInt32 {
		panic("exponent out of bounds")
	}

	return &Decimal{
		coef:  d.coef,
		scale: int32(scale),
	}
}

// Sign returns -1, 0, or +1 depending on the sign of the value.
func (d *Decimal) Sign() int {
	return d.coef.Sign()
}

// Cmp compares two decimals numerically, ignoring precision.
func (d *Decimal) Cmp(o *Decimal) int {
	dd, oo := rescale(d, o)
	return dd.coef.Cmp(oo.coef)
}

// Equal reports data-model equality: the same coefficient at the same
// scale. 1.0 and 1.00 compare Cmp-equal but are not Equal.
func (d *Decimal) Equal(o *Decimal) bool {
	return d.scale == o.scale && d.coef.Cmp(o.coef) == 0 && d.negZero == o.negZero
}

func rescale(a, b *Decimal) (*Decimal, *Decimal) {
	switch {
	case a.scale < b.scale:
		return a.upscale(b.scale), b
	case a.scale > b.scale:
		return a, b.upscale(a.scale)
	default:
		return a, b
	}
}

// upscale grows the coefficient to shrink the exponent: 1d100 -> 10d99.
func (d *Decimal) upscale(scale int32) *Decimal {
	diff := int64(scale) - int64(d.scale)
	if diff < 0 {
		panic("can't upscale to a smaller scale")
	}

	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(diff), nil)
	return &Decimal{
		coef:  new(big.Int).Mul(d.coef, pow),
		scale: scale,
	}
}

// trunc converts to an int64, dropping fractional digits.
func (d *Decimal) trunc() (int64, error) {
	ud := d
	if d.scale < 0 {
		if d.scale < -20 {
			// Definitely too big for an int64; don't burn memory proving it.
			return 0, &strconv.NumError{Func: "ParseInt", Num: d.String(), Err: strconv.ErrRange}
		}
		ud = d.upscale(0)
	}

	str := ud.coef.String()
	end := len(str) - int(ud.scale)
	if end <= 0 {
		return 0, nil
	}
	return strconv.ParseInt(str[:end], 10, 64)
}

// Truncate returns a copy limited to the given number of decimal digits of
// precision. It does not round: 19 truncated to 1 digit is 1d1.
func (d *Decimal) Truncate(precision int) *Decimal {
	if precision <= 0 {
		panic("precision must be positive")
	}

	str := d.coef.String()
	if str[0] == '-' {
		precision++
	}

	diff := len(str) - precision
	if diff <= 0 {
		return d
	}

	coef, ok := new(big.Int).SetString(str[:precision], 10)
	if !ok {
		panic("failed to parse truncated coefficient")
	}

	scale := int64(d.scale) - int64(diff)
	if scale < math.MinInt32 {
		panic("exponent out of range")
	}

	return &Decimal{
		coef:  coef,
		scale: int32(scale),
	}
}

// String formats the decimal in Ion text form.
func (d *Decimal) String() string {
	switch {
	case d.scale == 0:
		if d.negZero {
			return "-0."
		}
		return d.coef.String() + "."

	case d.scale < 0:
		// nn'd'ee with a positive exponent.
		if d.negZero {
			return fmt.Sprintf("-0d%d", -d.scale)
		}
		return fmt.Sprintf("%vd%d", d.coef, -d.scale)

	default:
		str := d.coef.String()
		if d.negZero {
			str = "-0"
		}

		point := len(str) - int(d.scale)

		lead := 1
		if str[0] == '-' {
			lead++
		}

		if point >= lead {
			return str[:point] + "." + str[point:]
		}

		// Fewer digits than the scale; zero-pad, so coefficient 1 at
		// scale 2 renders as 0.01.
		b := strings.Builder{}
		digits := str
		if digits[0] == '-' {
			b.WriteByte('-')
			digits = digits[1:]
		}
		b.WriteString("0.")
		for i := len(digits); i < int(d.scale); i++ {
			b.WriteByte('0')
		}
		b.WriteString(digits)
		return b.String()
	}
}
