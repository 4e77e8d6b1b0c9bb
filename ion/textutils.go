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
	"io"
	"math/big"
	"strconv"
	"strings"
)

// symbolNeedsQuoting reports whether a symbol must be quoted in text form.
func symbolNeedsQuoting(sym string) bool {
	switch sym {
	case "", "null", "true", "false", "nan":
		return true
	}

	if !isIdentifierStart(int(sym[0])) {
		return true
	}

	for i := 1; i < len(sym); i++ {
		if !isIdentifierPart(int(sym[i])) {
			return true
		}
	}

	return false
}

// isSymbolRef reports whether sym has the form of a symbol reference,
// $<integer>. Such text must be quoted to mean itself.
func isSymbolRef(sym string) bool {
	if len(sym) <= 1 || sym[0] != '$' {
		return false
	}

	for i := 1; i < len(sym); i++ {
		if !isDigit(int(sym[i])) {
			return false
		}
	}

	return true
}

// symbolRefID parses the id out of a $<integer> symbol reference.
func symbolRefID(sym string) (int64, error) {
	return strconv.ParseInt(sym[1:], 10, 64)
}

func isIdentifierStart(c int) bool {
	if c >= 'a' && c <= 'z' {
		return true
	}
	if c >= 'A' && c <= 'Z' {
		return true
	}
	return c == '_' || c == '$'
}

func isIdentifierPart(c int) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isHexDigit(c int) bool {
	if isDigit(c) {
		return true
	}
	if c >= 'a' && c <= 'f' {
		return true
	}
	return c >= 'A' && c <= 'F'
}

func isDigit(c int) bool {
	return c >= '0' && c <= '9'
}

// isOperatorChar reports whether c may appear in an sexp operator symbol.
func isOperatorChar(c int) bool {
	switch c {
	case '!', '#', '%', '&', '*', '+', '-', '.', '/', ';', '<', '=',
		'>', '?', '@', '^', '`', '|', '~':
		return true
	default:
		return false
	}
}

// isStopChar reports whether c ends a normal (unquoted) value. It does
// not spot the start of a comment, which takes two characters.
func isStopChar(c int) bool {
	switch c {
	case -1, '{', '}', '[', ']', '(', ')', ',', '"', '\'',
		' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

func isWhitespace(c int) bool {
	switch c {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// isProhibitedControlChar reports whether c is a control character that may
// not appear raw inside a string, even a long one.
func isProhibitedControlChar(c int) bool {
	if c < 0x00 || c > 0x1F {
		return false
	}
	return !isStringWhitespace(c) && !isNewLineChar(c)
}

func isStringWhitespace(c int) bool {
	return c == 0x09 || // horizontal tab
		c == 0x0B || // vertical tab
		c == 0x0C // form feed
}

func isNewLineChar(c int) bool {
	return c == 0x0A || c == 0x0D
}

// isASCII reports whether c is a 7-bit ASCII character.
func isASCII(c int) bool {
	return c < 0x80
}

// formatFloat formats a float64 in Ion text style: always with an
// exponent, so it can't be mistaken for a decimal.
func formatFloat(val float64) string {
	str := strconv.FormatFloat(val, 'e', -1, 64)

	switch str {
	case "NaN":
		return "nan"
	case "+Inf":
		return "+inf"
	case "-Inf":
		return "-inf"
	}

	idx := strings.Index(str, "e")
	if idx < 0 {
		str += "e0"
	} else if idx+2 < len(str) && str[idx+2] == '0' {
		// FormatFloat zero-pads single-digit exponents; strip it.
		str = str[:idx+2] + str[idx+3:]
	}

	return str
}

// writeSymbol writes a symbol's text, quoting and escaping if necessary.
func writeSymbol(sym string, out io.Writer) error {
	if symbolNeedsQuoting(sym) || isSymbolRef(sym) {
		if err := writeRawChar('\'', out); err != nil {
			return err
		}
		if err := writeEscapedSymbol(sym, out); err != nil {
			return err
		}
		return writeRawChar('\'', out)
	}
	return writeRawString(sym, out)
}

// writeEscapedSymbol writes a quoted symbol's body.
func writeEscapedSymbol(sym string, out io.Writer) error {
	for i := 0; i < len(sym); i++ {
		c := sym[i]
		if c < 32 || c == '\\' || c == '\'' {
			if err := writeEscapedChar(c, out); err != nil {
				return err
			}
		} else {
			if err := writeRawChar(c, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeEscapedString writes a quoted string's body.
func writeEscapedString(str string, out io.Writer) error {
	for i := 0; i < len(str); i++ {
		c := str[i]
		if c < 32 || c == '\\' || c == '"' {
			if err := writeEscapedChar(c, out); err != nil {
				return err
			}
		} else {
			if err := writeRawChar(c, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeEscapedChar(c byte, out io.Writer) error {
	switch c {
	case 0:
		return writeRawString("\\0", out)
	case '\a':
		return writeRawString("\\a", out)
	case '\b':
		return writeRawString("\\b", out)
	case '\t':
		return writeRawString("\\t", out)
	case '\n':
		return writeRawString("\\n", out)
	case '\f':
		return writeRawString("\\f", out)
	case '\r':
		return writeRawString("\\r", out)
	case '\v':
		return writeRawString("\\v", out)
	case '\'':
		return writeRawString("\\'", out)
	case '"':
		return writeRawString("\\\"", out)
	case '\\':
		return writeRawString("\\\\", out)
	default:
		buf := []byte{'\\', 'x', hexChars[(c>>4)&0xF], hexChars[c&0xF]}
		return writeRawChars(buf, out)
	}
}

func writeRawString(s string, out io.Writer) error {
	_, err := io.WriteString(out, s)
	return err
}

func writeRawChars(cs []byte, out io.Writer) error {
	_, err := out.Write(cs)
	return err
}

func writeRawChar(c byte, out io.Writer) error {
	_, err := out.Write([]byte{c})
	return err
}

func parseFloat(str string) (float64, error) {
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			// Overflow to an infinity is fine.
			return val, nil
		}
	}
	return val, err
}

// parseInt parses the text of an int token in the given radix, returning
// an int64 when it fits and a *big.Int otherwise.
func parseInt(str string, radix int) (interface{}, error) {
	digits := str

	switch radix {
	case 10:

	case 2, 16:
		neg := false
		if digits[0] == '-' {
			neg = true
			digits = digits[1:]
		}

		// Strip the 0b / 0x prefix.
		digits = digits[2:]
		if neg {
			digits = "-" + digits
		}

	default:
		panic("unsupported radix")
	}

	i, err := strconv.ParseInt(digits, radix, 64)
	if err == nil {
		return i, nil
	}
	if err.(*strconv.NumError).Err != strconv.ErrRange {
		return nil, err
	}

	bi, ok := new(big.Int).SetString(digits, radix)
	if !ok {
		return nil, &strconv.NumError{
			Func: "ParseInt",
			Num:  str,
			Err:  strconv.ErrSyntax,
		}
	}

	return bi, nil
}

// parseTimestamp parses the text of a timestamp token, deriving the
// precision from its shape and the timezone kind from its offset.
func parseTimestamp(val string) (Timestamp, error) {
	if len(val) < 5 {
		return invalidTimestamp(val)
	}

	year, err := strconv.ParseInt(val[:4], 10, 32)
	if err != nil || year < 1 {
		return invalidTimestamp(val)
	}
	if len(val) == 5 && (val[4] == 't' || val[4] == 'T') {
		// yyyyT
		return tryCreateDate(val, int(year), 1, 1, Year)
	}
	if val[4] != '-' || len(val) < 8 {
		return invalidTimestamp(val)
	}

	month, err := strconv.ParseInt(val[5:7], 10, 32)
	if err != nil {
		return invalidTimestamp(val)
	}
	if len(val) == 8 && (val[7] == 't' || val[7] == 'T') {
		// yyyy-mmT
		return tryCreateDate(val, int(year), int(month), 1, Month)
	}
	if val[7] != '-' || len(val) < 10 {
		return invalidTimestamp(val)
	}

	day, err := strconv.ParseInt(val[8:10], 10, 32)
	if err != nil {
		return invalidTimestamp(val)
	}
	if len(val) == 10 || (len(val) == 11 && (val[10] == 't' || val[10] == 'T')) {
		// yyyy-mm-dd or yyyy-mm-ddT
		return tryCreateDate(val, int(year), int(month), int(day), Day)
	}
	if val[10] != 't' && val[10] != 'T' {
		return invalidTimestamp(val)
	}

	// From here on there must be at least hh:mm plus an offset.
	if len(val) < 17 {
		return invalidTimestamp(val)
	}

	var offsetIdx int
	precision := Minute

	switch val[16] {
	case 'z', 'Z', '+', '-':
		offsetIdx = 16

	case ':':
		// Seconds, maybe a fraction.
		if len(val) < 20 {
			return invalidTimestamp(val)
		}
		precision = Second

		idx := 19
		if idx < len(val) && val[idx] == '.' {
			idx++
			for idx < len(val) && isDigit(int(val[idx])) {
				idx++
			}
			if idx > 20 {
				precision = Nanosecond
			}
		}

		if idx >= len(val) {
			return invalidTimestamp(val)
		}
		offsetIdx = idx

	default:
		return invalidTimestamp(val)
	}

	kind, ok := offsetKind(val, offsetIdx)
	if !ok {
		return invalidTimestamp(val)
	}

	// The layout for an unknown offset only matches -hh:mm, so normalize
	// it to parse and keep the kind on the side.
	ts, err := NewTimestampFromStr(val, precision, kind)
	if err != nil {
		return invalidTimestamp(val)
	}
	return ts, nil
}

// offsetKind classifies a timestamp's offset: Z and +00:00 mean UTC,
// -00:00 means unknown, anything else is a local offset.
func offsetKind(val string, idx int) (TimezoneKind, bool) {
	c := val[idx]
	if c == 'z' || c == 'Z' {
		return TimezoneUTC, idx == len(val)-1
	}

	// ±hh:mm
	if idx+6 != len(val) || val[idx+3] != ':' {
		return TimezoneUnspecified, false
	}

	hours, errH := strconv.ParseInt(val[idx+1:idx+3], 10, 32)
	mins, errM := strconv.ParseInt(val[idx+4:], 10, 32)
	if errH != nil || errM != nil || hours >= 24 || mins >= 60 {
		return TimezoneUnspecified, false
	}

	if hours == 0 && mins == 0 {
		if c == '-' {
			return TimezoneUnspecified, true
		}
		return TimezoneUTC, true
	}
	return TimezoneLocal, true
}

func tryCreateDate(val string, year, month, day int, precision TimestampPrecision) (Timestamp, error) {
	ts, err := tryNewTimestamp([6]int{year, month, day, 0, 0, 0}, 0, false, 0, false, precision, 0)
	if err != nil {
		return invalidTimestamp(val)
	}
	return ts, nil
}

func invalidTimestamp(val string) (Timestamp, error) {
	return Timestamp{}, fmt.Errorf("ion: invalid timestamp: %v", val)
}
