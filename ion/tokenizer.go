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
	"bufio"
	"fmt"
	"io"
	"strings"
)

// A tokenKind classifies the lexeme the tokenizer is positioned on. Most
// values are only classified, not consumed: the reader decides whether to
// materialize the text or skip it.
type tokenKind int

const (
	tokError tokenKind = iota

	tokEOF

	tokNumber        // integer, decimal, or float; not yet distinguished
	tokBinary        // 0b[01]+
	tokHex           // 0x[0-9a-fA-F]+
	tokFloatInf      // +inf
	tokFloatMinusInf // -inf
	tokTimestamp     // 2001-01-01T00:00:00.000Z

	tokSymbol         // [a-zA-Z_$][a-zA-Z0-9_$]*
	tokQuotedSymbol   // '...'
	tokOperator       // sexp operator run, e.g. +- or ==

	tokString     // "..."
	tokLongString // '''...'''

	tokDot
	tokComma
	tokColon
	tokDoubleColon

	tokOpenParen
	tokCloseParen
	tokOpenBrace
	tokCloseBrace
	tokOpenBracket
	tokCloseBracket
	tokOpenDoubleBrace
	tokCloseDoubleBrace
)

const asClob = true
const asText = false

func (t tokenKind) String() string {
	switch t {
	case tokError:
		return "<error>"
	case tokEOF:
		return "<EOF>"
	case tokNumber:
		return "<number>"
	case tokBinary:
		return "<binary>"
	case tokHex:
		return "<hex>"
	case tokFloatInf:
		return "+inf"
	case tokFloatMinusInf:
		return "-inf"
	case tokTimestamp:
		return "<timestamp>"
	case tokSymbol:
		return "<symbol>"
	case tokQuotedSymbol:
		return "<quoted-symbol>"
	case tokOperator:
		return "<operator>"
	case tokString:
		return "<string>"
	case tokLongString:
		return "<long-string>"
	case tokDot:
		return "."
	case tokComma:
		return ","
	case tokColon:
		return ":"
	case tokDoubleColon:
		return "::"
	case tokOpenParen:
		return "("
	case tokCloseParen:
		return ")"
	case tokOpenBrace:
		return "{"
	case tokCloseBrace:
		return "}"
	case tokOpenBracket:
		return "["
	case tokCloseBracket:
		return "]"
	case tokOpenDoubleBrace:
		return "{{"
	case tokCloseDoubleBrace:
		return "}}"
	default:
		return "<???>"
	}
}

// A tokenizer turns a text stream into tokens. It reads bytes, not runes;
// multibyte UTF-8 sequences pass through untouched inside strings and
// quoted symbols, which is the only place they're legal.
type tokenizer struct {
	src     *bufio.Reader
	pending []int

	tok        tokenKind
	unfinished bool
	pos        uint64
}

func newTokenizerBuf(in *bufio.Reader) *tokenizer {
	return &tokenizer{src: in}
}

// Token returns the kind of the current token.
func (t *tokenizer) Token() tokenKind {
	return t.tok
}

// Pos returns the offset of the next unread byte.
func (t *tokenizer) Pos() uint64 {
	return t.pos
}

// Next advances to the next token in the input.
func (t *tokenizer) Next() error {
	var c int
	var err error

	if t.unfinished {
		c, err = t.skipValue()
	} else {
		c, _, err = t.skipWhitespace()
	}
	if err != nil {
		return err
	}

	switch {
	case c == -1:
		return t.setToken(tokEOF, true)

	case c == ':':
		c2, err := t.peek()
		if err != nil {
			return err
		}
		if c2 == ':' {
			if _, err := t.read(); err != nil {
				return err
			}
			return t.setToken(tokDoubleColon, false)
		}
		return t.setToken(tokColon, false)

	case c == '{':
		c2, err := t.peek()
		if err != nil {
			return err
		}
		if c2 == '{' {
			if _, err := t.read(); err != nil {
				return err
			}
			return t.setToken(tokOpenDoubleBrace, true)
		}
		return t.setToken(tokOpenBrace, true)

	case c == '}':
		return t.setToken(tokCloseBrace, false)

	case c == '[':
		return t.setToken(tokOpenBracket, true)

	case c == ']':
		return t.setToken(tokCloseBracket, false)

	case c == '(':
		return t.setToken(tokOpenParen, true)

	case c == ')':
		return t.setToken(tokCloseParen, false)

	case c == ',':
		return t.setToken(tokComma, false)

	case c == '.':
		c2, err := t.peek()
		if err != nil {
			return err
		}
		if isOperatorChar(c2) {
			t.unread(c)
			return t.setToken(tokOperator, true)
		}
		if c2 == ' ' || isIdentifierPart(c2) {
			t.unread(c)
		}
		return t.setToken(tokDot, false)

	case c == '\'':
		triple, err := t.isTripleQuote()
		if err != nil {
			return err
		}
		if triple {
			return t.setToken(tokLongString, true)
		}
		return t.setToken(tokQuotedSymbol, true)

	case c == '+':
		inf, err := t.isInf(c)
		if err != nil {
			return err
		}
		if inf {
			return t.setToken(tokFloatInf, false)
		}
		t.unread(c)
		return t.setToken(tokOperator, true)

	case c == '-':
		c2, err := t.peek()
		if err != nil {
			return err
		}

		if isDigit(c2) {
			if _, err := t.read(); err != nil {
				return err
			}
			kind, err := t.scanNumericKind(c2)
			if err != nil {
				return err
			}
			if kind == tokTimestamp {
				// Timestamps cannot be negative.
				return t.invalidChar(c2)
			}
			t.unread(c2)
			t.unread(c)
			return t.setToken(kind, true)
		}

		inf, err := t.isInf(c)
		if err != nil {
			return err
		}
		if inf {
			return t.setToken(tokFloatMinusInf, false)
		}

		t.unread(c)
		return t.setToken(tokOperator, true)

	case isOperatorChar(c):
		t.unread(c)
		return t.setToken(tokOperator, true)

	case c == '"':
		return t.setToken(tokString, true)

	case isIdentifierStart(c):
		t.unread(c)
		return t.setToken(tokSymbol, true)

	case isDigit(c):
		kind, err := t.scanNumericKind(c)
		if err != nil {
			return err
		}
		t.unread(c)
		return t.setToken(kind, true)

	default:
		return t.invalidChar(c)
	}
}

func (t *tokenizer) setToken(tok tokenKind, more bool) error {
	t.tok = tok
	t.unfinished = more
	return nil
}

// SetFinished marks the current token consumed, so that Next does not skip
// over its contents. Called when the reader steps in to a container.
func (t *tokenizer) SetFinished() {
	t.unfinished = false
}

// FinishValue skips to the end of the current value if we're in the middle
// of it, reporting whether anything was skipped.
func (t *tokenizer) FinishValue() (bool, error) {
	if !t.unfinished {
		return false, nil
	}

	c, err := t.skipValue()
	if err != nil {
		return true, err
	}

	t.unread(c)
	t.unfinished = false
	return true, nil
}

// ReadValue reads the text of the current token, which must be of the
// given kind.
func (t *tokenizer) ReadValue(tok tokenKind) (string, error) {
	var str string
	var err error

	switch tok {
	case tokSymbol:
		str, err = t.readSymbol()
	case tokQuotedSymbol:
		str, err = t.readQuotedSymbol()
	case tokOperator, tokDot:
		str, err = t.readOperator()
	case tokString:
		str, err = t.readString()
	case tokLongString:
		str, err = t.readLongString()
	case tokBinary:
		str, err = t.readBinary()
	case tokHex:
		str, err = t.readHex()
	case tokTimestamp:
		str, err = t.readTimestamp()
	default:
		panic(fmt.Sprintf("unsupported token kind %v", tok))
	}

	if err != nil {
		return "", err
	}

	t.unfinished = false
	return str, nil
}

// ReadNumber reads a number token, deciding between int, decimal, and
// float as the characters arrive.
func (t *tokenizer) ReadNumber() (string, Type, error) {
	w := strings.Builder{}

	c, err := t.read()
	if err != nil {
		return "", NoType, err
	}

	if c == '-' {
		w.WriteByte('-')
		if c, err = t.read(); err != nil {
			return "", NoType, err
		}
	}

	first := c
	oldlen := w.Len()

	if c, err = t.readDigits(c, &w); err != nil {
		return "", NoType, err
	}

	if first == '0' && w.Len()-oldlen > 1 {
		return "", NoType, &SyntaxError{Msg: "invalid leading zeroes", Offset: t.pos - 1}
	}

	kind := IntType

	if c == '.' {
		w.WriteByte('.')
		kind = DecimalType

		if c, err = t.read(); err != nil {
			return "", NoType, err
		}
		if c, err = t.readDigits(c, &w); err != nil {
			return "", NoType, err
		}
	}

	switch c {
	case 'e', 'E':
		kind = FloatType
		w.WriteByte(byte(c))
		if c, err = t.readExponent(&w); err != nil {
			return "", NoType, err
		}

	case 'd', 'D':
		kind = DecimalType
		w.WriteByte(byte(c))
		if c, err = t.readExponent(&w); err != nil {
			return "", NoType, err
		}
	}

	ok, err := t.isStopChar(c)
	if err != nil {
		return "", NoType, err
	}
	if !ok {
		return "", NoType, t.invalidChar(c)
	}
	t.unread(c)

	return w.String(), kind, nil
}

func (t *tokenizer) readExponent(w io.ByteWriter) (int, error) {
	c, err := t.read()
	if err != nil {
		return 0, err
	}

	if c == '+' || c == '-' {
		if err := w.WriteByte(byte(c)); err != nil {
			return 0, err
		}
		if c, err = t.read(); err != nil {
			return 0, err
		}
	}

	return t.readDigits(c, w)
}

func (t *tokenizer) readDigits(c int, w io.ByteWriter) (int, error) {
	if !isDigit(c) {
		return c, nil
	}
	if err := w.WriteByte(byte(c)); err != nil {
		return 0, err
	}

	return t.readRadixDigits(isDigit, w)
}

// readSymbol reads an unquoted symbol.
func (t *tokenizer) readSymbol() (string, error) {
	ret := strings.Builder{}

	c, err := t.peek()
	if err != nil {
		return "", err
	}

	for isIdentifierPart(c) {
		ret.WriteByte(byte(c))
		if _, err = t.read(); err != nil {
			return "", err
		}
		if c, err = t.peek(); err != nil {
			return "", err
		}
	}

	return ret.String(), nil
}

// readQuotedSymbol reads a single-quoted symbol.
func (t *tokenizer) readQuotedSymbol() (string, error) {
	ret := strings.Builder{}

	for {
		c, err := t.read()
		if err != nil {
			return "", err
		}

		switch c {
		case -1, '\n':
			return "", t.invalidChar(c)

		case '\'':
			return ret.String(), nil

		case '\\':
			c, err = t.peek()
			if err != nil {
				return "", err
			}

			if c == '\n' {
				// An escaped newline joins two lines.
				if _, err = t.read(); err != nil {
					return "", err
				}
				continue
			}

			r, err := t.readEscapedChar(asText)
			if err != nil {
				return "", err
			}
			ret.WriteRune(r)

		default:
			ret.WriteByte(byte(c))
		}
	}
}

func (t *tokenizer) readOperator() (string, error) {
	ret := strings.Builder{}

	c, err := t.peek()
	if err != nil {
		return "", err
	}

	for isOperatorChar(c) {
		ret.WriteByte(byte(c))
		if _, err = t.read(); err != nil {
			return "", err
		}
		if c, err = t.peek(); err != nil {
			return "", err
		}
	}

	return ret.String(), nil
}

// readString reads a double-quoted string.
func (t *tokenizer) readString() (string, error) {
	ret := strings.Builder{}

	for {
		c, err := t.read()
		if err != nil {
			return "", err
		}
		if c == -1 || c == '\n' || isProhibitedControlChar(c) {
			return "", t.invalidChar(c)
		}

		switch c {
		case '"':
			return ret.String(), nil

		case '\\':
			if err := t.readStringEscape(&ret); err != nil {
				return "", err
			}

		default:
			ret.WriteByte(byte(c))
		}
	}
}

// readClob reads a double-quoted clob, which admits only ASCII.
func (t *tokenizer) readClob() ([]byte, error) {
	var ret []byte

	for {
		c, err := t.read()
		if err != nil {
			return nil, err
		}
		if c == -1 || c == '\n' || isProhibitedControlChar(c) || !isASCII(c) {
			return nil, t.invalidChar(c)
		}

		switch c {
		case '"':
			if ret == nil {
				return []byte{}, nil
			}
			return ret, nil

		case '\\':
			if err := t.readClobEscape(&ret); err != nil {
				return nil, err
			}

		default:
			ret = append(ret, byte(c))
		}
	}
}

// readLongString reads a triple-quoted string. Adjacent triple-quoted
// segments, separated only by whitespace and comments, concatenate.
func (t *tokenizer) readLongString() (string, error) {
	ret := strings.Builder{}

	for {
		c, err := t.read()
		if err != nil {
			return "", err
		}
		if c == -1 || isProhibitedControlChar(c) {
			return "", t.invalidChar(c)
		}

		switch c {
		case '\'':
			done, consumed, err := t.skipLongStringEnd(t.skipCommentsHandler)
			if err != nil {
				return "", err
			}
			if done {
				return ret.String(), nil
			}
			if !consumed {
				ret.WriteByte(byte(c))
			}

		case '\\':
			if err := t.readStringEscape(&ret); err != nil {
				return "", err
			}

		default:
			ret.WriteByte(byte(c))
		}
	}
}

// readLongClob reads a triple-quoted clob.
func (t *tokenizer) readLongClob() ([]byte, error) {
	var ret []byte

	for {
		c, err := t.read()
		if err != nil {
			return nil, err
		}
		if c == -1 || isProhibitedControlChar(c) || !isASCII(c) {
			return nil, t.invalidChar(c)
		}

		switch c {
		case '\'':
			done, consumed, err := t.skipLongStringEnd(t.rejectCommentsHandler)
			if err != nil {
				return nil, err
			}
			if done {
				if ret == nil {
					return []byte{}, nil
				}
				return ret, nil
			}
			if !consumed {
				ret = append(ret, byte(c))
			}

		case '\\':
			if err := t.readClobEscape(&ret); err != nil {
				return nil, err
			}

		default:
			ret = append(ret, byte(c))
		}
	}
}

func (t *tokenizer) readStringEscape(sb *strings.Builder) error {
	c, err := t.peek()
	if err != nil {
		return err
	}

	if c == '\n' {
		_, err = t.read()
		return err
	}

	r, err := t.readEscapedChar(asText)
	if err != nil {
		return err
	}
	sb.WriteRune(r)
	return nil
}

func (t *tokenizer) readClobEscape(ret *[]byte) error {
	c, err := t.peek()
	if err != nil {
		return err
	}

	if c == '\n' {
		_, err = t.read()
		return err
	}

	r, err := t.readEscapedChar(asClob)
	if err != nil {
		return err
	}
	*ret = append(*ret, byte(r))
	return nil
}

// readEscapedChar decodes the escape sequence after a backslash. Unicode
// escapes are not allowed in clobs, whose contents are raw bytes.
func (t *tokenizer) readEscapedChar(isClob bool) (rune, error) {
	c, err := t.read()
	if err != nil {
		return 0, err
	}

	switch c {
	case '0':
		return '\x00', nil
	case 'a':
		return '\a', nil
	case 'b':
		return '\b', nil
	case 't':
		return '\t', nil
	case 'n':
		return '\n', nil
	case 'f':
		return '\f', nil
	case 'r':
		return '\r', nil
	case 'v':
		return '\v', nil
	case '?':
		return '?', nil
	case '/':
		return '/', nil
	case '\'':
		return '\'', nil
	case '"':
		return '"', nil
	case '\\':
		return '\\', nil
	case 'U':
		if isClob {
			return 0, t.invalidChar('U')
		}
		return t.readHexEscape(8)
	case 'u':
		if isClob {
			return 0, t.invalidChar('u')
		}
		return t.readHexEscape(4)
	case 'x':
		return t.readHexEscape(2)
	}

	return 0, &SyntaxError{Msg: fmt.Sprintf("bad escape sequence '\\%c'", c), Offset: t.pos - 2}
}

func (t *tokenizer) readHexEscape(length int) (rune, error) {
	val := rune(0)

	for length > 0 {
		c, err := t.read()
		if err != nil {
			return 0, err
		}

		d, err := t.hexValue(c)
		if err != nil {
			return 0, err
		}

		val = val<<4 | rune(d)
		length--
	}

	return val, nil
}

func (t *tokenizer) hexValue(c int) (int, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return 10 + c - 'a', nil
	case c >= 'A' && c <= 'F':
		return 10 + c - 'A', nil
	}
	return 0, t.invalidChar(c)
}

func (t *tokenizer) readBinary() (string, error) {
	isB := func(c int) bool {
		return c == 'b' || c == 'B'
	}
	isBinaryDigit := func(c int) bool {
		return c == '0' || c == '1'
	}
	return t.readRadix(isB, isBinaryDigit)
}

func (t *tokenizer) readHex() (string, error) {
	isX := func(c int) bool {
		return c == 'x' || c == 'X'
	}
	return t.readRadix(isX, isHexDigit)
}

func (t *tokenizer) readRadix(isMarker, isValidDigit matcher) (string, error) {
	w := strings.Builder{}

	c, err := t.read()
	if err != nil {
		return "", err
	}

	if c == '-' {
		w.WriteByte('-')
		if c, err = t.read(); err != nil {
			return "", err
		}
	}

	if c != '0' {
		return "", t.invalidChar(c)
	}
	w.WriteByte('0')

	if c, err = t.read(); err != nil {
		return "", err
	}
	if !isMarker(c) {
		return "", t.invalidChar(c)
	}
	w.WriteByte(byte(c))

	// An underscore may separate digits but not lead them.
	next, err := t.peek()
	if err != nil {
		return "", err
	}
	if next == '_' {
		return "", t.invalidChar(c)
	}

	if c, err = t.readRadixDigits(isValidDigit, &w); err != nil {
		return "", err
	}

	ok, err := t.isStopChar(c)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", t.invalidChar(c)
	}
	t.unread(c)

	t.unfinished = false
	return w.String(), nil
}

func (t *tokenizer) readRadixDigits(isValidDigit matcher, w io.ByteWriter) (int, error) {
	for {
		c, err := t.read()
		if err != nil {
			return 0, err
		}
		if c == '_' {
			next, err := t.peek()
			if err != nil {
				return 0, err
			}
			if !isValidDigit(next) {
				return 0, t.invalidChar(c)
			}
			continue
		}
		if !isValidDigit(c) {
			return c, nil
		}
		if err := w.WriteByte(byte(c)); err != nil {
			return 0, err
		}
	}
}

// readTimestamp reads a timestamp token's text, validating its shape as it
// goes. Semantic checks (month ranges and the like) happen at parse time.
func (t *tokenizer) readTimestamp() (string, error) {
	w := strings.Builder{}

	c, err := t.readTimestampDigits(4, &w)
	if err != nil {
		return "", err
	}
	if c == 'T' {
		// yyyyT
		w.WriteByte('T')
		return w.String(), nil
	}
	if c != '-' {
		return "", t.invalidChar(c)
	}
	w.WriteByte('-')

	if c, err = t.readTimestampDigits(2, &w); err != nil {
		return "", err
	}
	if c == 'T' {
		// yyyy-mmT
		w.WriteByte('T')
		return w.String(), nil
	}
	if c != '-' {
		return "", t.invalidChar(c)
	}
	w.WriteByte('-')

	if c, err = t.readTimestampDigits(2, &w); err != nil {
		return "", err
	}
	if c != 'T' {
		// yyyy-mm-dd
		return t.readTimestampFinish(c, &w)
	}
	w.WriteByte('T')

	if c, err = t.read(); err != nil {
		return "", err
	}
	if !isDigit(c) {
		// yyyy-mm-ddT, optionally with a meaningless offset
		if c, err = t.readTimestampOffset(c, &w); err != nil {
			return "", err
		}
		return t.readTimestampFinish(c, &w)
	}
	w.WriteByte(byte(c))

	if c, err = t.readTimestampDigits(1, &w); err != nil {
		return "", err
	}
	if c != ':' {
		return "", t.invalidChar(c)
	}
	w.WriteByte(':')

	if c, err = t.readTimestampDigits(2, &w); err != nil {
		return "", err
	}
	if c != ':' {
		// yyyy-mm-ddThh:mmZ
		if c, err = t.readTimestampOffsetOrZ(c, &w); err != nil {
			return "", err
		}
		return t.readTimestampFinish(c, &w)
	}
	w.WriteByte(':')

	if c, err = t.readTimestampDigits(2, &w); err != nil {
		return "", err
	}
	if c != '.' {
		// yyyy-mm-ddThh:mm:ssZ
		if c, err = t.readTimestampOffsetOrZ(c, &w); err != nil {
			return "", err
		}
		return t.readTimestampFinish(c, &w)
	}
	w.WriteByte('.')

	// yyyy-mm-ddThh:mm:ss.sssZ
	if c, err = t.read(); err != nil {
		return "", err
	}
	if isDigit(c) {
		if c, err = t.readDigits(c, &w); err != nil {
			return "", err
		}
	}

	if c, err = t.readTimestampOffsetOrZ(c, &w); err != nil {
		return "", err
	}
	return t.readTimestampFinish(c, &w)
}

func (t *tokenizer) readTimestampOffsetOrZ(c int, w io.ByteWriter) (int, error) {
	if c == '-' || c == '+' {
		return t.readTimestampOffset(c, w)
	}
	if c == 'z' || c == 'Z' {
		if err := w.WriteByte(byte(c)); err != nil {
			return 0, err
		}
		return t.read()
	}
	return 0, t.invalidChar(c)
}

func (t *tokenizer) readTimestampOffset(c int, w io.ByteWriter) (int, error) {
	if c != '-' && c != '+' {
		return c, nil
	}
	if err := w.WriteByte(byte(c)); err != nil {
		return 0, err
	}

	c, err := t.readTimestampDigits(2, w)
	if err != nil {
		return 0, err
	}
	if c != ':' {
		return 0, t.invalidChar(c)
	}
	if err := w.WriteByte(':'); err != nil {
		return 0, err
	}
	return t.readTimestampDigits(2, w)
}

func (t *tokenizer) readTimestampDigits(n int, w io.ByteWriter) (int, error) {
	for n > 0 {
		c, err := t.read()
		if err != nil {
			return 0, err
		}
		if !isDigit(c) {
			return 0, t.invalidChar(c)
		}
		if err := w.WriteByte(byte(c)); err != nil {
			return 0, err
		}
		n--
	}
	return t.read()
}

func (t *tokenizer) readTimestampFinish(c int, w fmt.Stringer) (string, error) {
	ok, err := t.isStopChar(c)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", t.invalidChar(c)
	}
	t.unread(c)
	return w.String(), nil
}

// ReadBlob reads a base64-encoded blob body, stopping at the closing
// braces. Whitespace inside the body is ignored.
func (t *tokenizer) ReadBlob() (string, error) {
	w := strings.Builder{}

	var c int
	var err error

	for {
		if c, _, err = t.skipLobWhitespace(); err != nil {
			return "", err
		}
		if c == -1 {
			return "", t.invalidChar(c)
		}
		if c == '}' {
			break
		}
		w.WriteByte(byte(c))
	}

	if c, err = t.read(); err != nil {
		return "", err
	}
	if c != '}' {
		return "", t.invalidChar(c)
	}

	t.unfinished = false
	return w.String(), nil
}

// ReadShortClob reads a double-quoted clob and its closing braces.
func (t *tokenizer) ReadShortClob() ([]byte, error) {
	val, err := t.readClob()
	if err != nil {
		return nil, err
	}

	c, _, err := t.skipLobWhitespace()
	if err != nil {
		return nil, err
	}
	if c != '}' {
		return nil, t.invalidChar(c)
	}

	if c, err = t.read(); err != nil {
		return nil, err
	}
	if c != '}' {
		return nil, t.invalidChar(c)
	}

	t.unfinished = false
	return val, nil
}

// ReadLongClob reads a triple-quoted clob and its closing braces.
func (t *tokenizer) ReadLongClob() ([]byte, error) {
	val, err := t.readLongClob()
	if err != nil {
		return nil, err
	}

	c, _, err := t.skipLobWhitespace()
	if err != nil {
		return nil, err
	}
	if c != '}' {
		return nil, t.invalidChar(c)
	}

	if c, err = t.read(); err != nil {
		return nil, err
	}
	if c != '}' {
		return nil, t.invalidChar(c)
	}

	t.unfinished = false
	return val, nil
}

// isTripleQuote checks whether the ' just read begins a ''' sequence.
func (t *tokenizer) isTripleQuote() (bool, error) {
	cs, err := t.peekN(2)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if cs[0] == '\'' && cs[1] == '\'' {
		if err := t.skipN(2); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

// isInf checks whether the + or - just read begins an inf keyword.
func (t *tokenizer) isInf(c int) (bool, error) {
	if c != '+' && c != '-' {
		return false, nil
	}

	cs, err := t.peekN(5)
	if err != nil && err != io.EOF {
		return false, err
	}

	if len(cs) < 3 || cs[0] != 'i' || cs[1] != 'n' || cs[2] != 'f' {
		return false, nil
	}

	if len(cs) == 3 || isStopChar(cs[3]) {
		if err := t.skipN(3); err != nil {
			return false, err
		}
		return true, nil
	}

	if cs[3] == '/' && len(cs) > 4 && (cs[4] == '/' || cs[4] == '*') {
		// inf followed immediately by a comment also terminates cleanly.
		if err := t.skipN(3); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

// scanNumericKind rules out hex, binary, and timestamps by peeking at a
// handful of characters. Int, decimal, and float can't be distinguished
// without reading the whole token.
func (t *tokenizer) scanNumericKind(c int) (tokenKind, error) {
	if !isDigit(c) {
		panic("scanNumericKind with a non-digit")
	}

	cs, err := t.peekN(4)
	if err != nil && err != io.EOF {
		return tokError, err
	}

	if c == '0' && len(cs) > 0 {
		switch {
		case cs[0] == 'b' || cs[0] == 'B':
			return tokBinary, nil
		case cs[0] == 'x' || cs[0] == 'X':
			return tokHex, nil
		}
	}

	if len(cs) >= 4 {
		if isDigit(cs[0]) && isDigit(cs[1]) && isDigit(cs[2]) {
			if cs[3] == '-' || cs[3] == 'T' {
				return tokTimestamp, nil
			}
		}
	}

	return tokNumber, nil
}

// isStopChar reports whether c cleanly terminates an unquoted value. It
// peeks on '/' to spot a comment, so don't call it with a peeked char.
func (t *tokenizer) isStopChar(c int) (bool, error) {
	if isStopChar(c) {
		return true, nil
	}

	if c == '/' {
		c2, err := t.peek()
		if err != nil {
			return false, err
		}
		if c2 == '/' || c2 == '*' {
			return true, nil
		}
	}

	return false, nil
}

type matcher func(int) bool

// expect reads a byte and asserts that it matches.
func (t *tokenizer) expect(f matcher) error {
	c, err := t.read()
	if err != nil {
		return err
	}
	if !f(c) {
		return t.invalidChar(c)
	}
	return nil
}

func (t *tokenizer) invalidChar(c int) error {
	if c == -1 {
		return &UnexpectedEOFError{Offset: t.pos - 1}
	}
	return &UnexpectedRuneError{Rune: rune(c), Offset: t.pos - 1}
}

// skipN skips n already-peeked bytes.
func (t *tokenizer) skipN(n int) error {
	for i := 0; i < n; i++ {
		c, err := t.read()
		if err != nil {
			return err
		}
		if c == -1 {
			break
		}
	}
	return nil
}

// peekN peeks at the next n bytes. Unlike read and peek it does not map
// EOF to -1; it returns whatever it could see along with io.EOF.
func (t *tokenizer) peekN(n int) ([]int, error) {
	var ret []int
	var err error

	for i := 0; i < n; i++ {
		var c int
		c, err = t.read()
		if err != nil {
			break
		}
		if c == -1 {
			err = io.EOF
			break
		}
		ret = append(ret, c)
	}

	if err == io.EOF {
		t.unread(-1)
	}
	for i := len(ret) - 1; i >= 0; i-- {
		t.unread(ret[i])
	}

	return ret, err
}

// peek looks at the next byte without consuming it.
func (t *tokenizer) peek() (int, error) {
	if len(t.pending) > 0 {
		return t.pending[len(t.pending)-1], nil
	}

	c, err := t.read()
	if err != nil {
		return 0, err
	}

	t.unread(c)
	return c, nil
}

// read returns the next byte of input, with EOF mapped to -1 and \r and
// \r\n normalized to \n.
func (t *tokenizer) read() (int, error) {
	t.pos++
	if len(t.pending) > 0 {
		c := t.pending[len(t.pending)-1]
		t.pending = t.pending[:len(t.pending)-1]
		return c, nil
	}

	c, err := t.src.ReadByte()
	if err == io.EOF {
		return -1, nil
	}
	if err != nil {
		return 0, &IOError{Err: err}
	}

	if c == '\r' {
		cs, err := t.src.Peek(1)
		if err != nil && err != io.EOF {
			return 0, &IOError{Err: err}
		}
		if len(cs) > 0 && cs[0] == '\n' {
			if _, err := t.src.ReadByte(); err != nil {
				return 0, err
			}
		}
		return '\n', nil
	}

	return int(c), nil
}

// unread pushes a byte (or -1) back onto the input.
func (t *tokenizer) unread(c int) {
	t.pos--
	t.pending = append(t.pending, c)
}
