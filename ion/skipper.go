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
)

// This file holds the skipping half of the tokenizer: consuming the rest
// of a value whose contents the caller never asked for.

// SkipContainerContents skips the contents of a container of the given type,
// consuming through the closing delimiter.
func (t *tokenizer) SkipContainerContents(typ Type) error {
	var err error
	switch typ {
	case StructType:
		err = t.skipContainerBody('}')
	case ListType:
		err = t.skipContainerBody(']')
	case SexpType:
		err = t.skipContainerBody(')')
	default:
		panic(fmt.Sprintf("invalid container type: %v", typ))
	}

	if err != nil {
		return err
	}

	t.SetFinished()
	return nil
}

// SkipDoubleColon skips whitespace and a :: token if one is present,
// reporting whether it found one and whether it skipped any whitespace.
func (t *tokenizer) SkipDoubleColon() (bool, bool, error) {
	ws, err := t.skipWhitespaceUnread()
	if err != nil {
		return false, false, err
	}

	cs, err := t.peekN(2)
	if err == io.EOF {
		return false, ws, nil
	}
	if err != nil {
		return false, false, err
	}

	if cs[0] == ':' && cs[1] == ':' {
		if err := t.skipN(2); err != nil {
			return false, false, err
		}
		return true, ws, nil
	}

	return false, ws, nil
}

// SkipDot skips a dot token if one is next, leaving anything else
// unconsumed.
func (t *tokenizer) SkipDot() (bool, error) {
	c, err := t.peek()
	if err != nil {
		return false, err
	}
	if c != '.' {
		return false, nil
	}

	if _, err = t.read(); err != nil {
		return false, err
	}
	return true, nil
}

// SkipLobWhitespace skips whitespace inside a lob, where comments are not
// allowed.
func (t *tokenizer) SkipLobWhitespace() (int, error) {
	c, _, err := t.skipLobWhitespace()
	return c, err
}

// skipValue skips to the end of the current value, for callers that moved
// on without consuming it.
func (t *tokenizer) skipValue() (int, error) {
	var c int
	var err error

	switch t.tok {
	case tokNumber:
		c, err = t.skipNumber()
	case tokBinary:
		c, err = t.skipBinary()
	case tokHex:
		c, err = t.skipHex()
	case tokTimestamp:
		c, err = t.skipTimestamp()
	case tokSymbol:
		c, err = t.skipSymbol()
	case tokQuotedSymbol:
		c, err = t.skipQuotedSymbol()
	case tokOperator:
		c, err = t.skipOperator()
	case tokString:
		c, err = t.skipString()
	case tokLongString:
		c, err = t.skipLongString()
	case tokOpenDoubleBrace:
		c, err = t.skipLob()
	case tokOpenBrace:
		c, err = t.skipContainer('}')
	case tokOpenParen:
		c, err = t.skipContainer(')')
	case tokOpenBracket:
		c, err = t.skipContainer(']')
	default:
		panic(fmt.Sprintf("skipValue called with token=%v", t.tok))
	}

	if err != nil {
		return 0, err
	}

	if isWhitespace(c) {
		c, _, err = t.skipWhitespace()
		if err != nil {
			return 0, err
		}
	}

	t.unfinished = false
	return c, nil
}

// skipNumber skips a decimal-radix number of any flavor.
func (t *tokenizer) skipNumber() (int, error) {
	c, err := t.read()
	if err != nil {
		return 0, err
	}

	if c == '-' {
		if c, err = t.read(); err != nil {
			return 0, err
		}
	}

	if c, err = t.skipDigits(c); err != nil {
		return 0, err
	}

	if c == '.' {
		if c, err = t.read(); err != nil {
			return 0, err
		}
		if c, err = t.skipDigits(c); err != nil {
			return 0, err
		}
	}

	if c == 'd' || c == 'D' || c == 'e' || c == 'E' {
		if c, err = t.read(); err != nil {
			return 0, err
		}
		if c == '+' || c == '-' {
			if c, err = t.read(); err != nil {
				return 0, err
			}
		}
		if c, err = t.skipDigits(c); err != nil {
			return 0, err
		}
	}

	ok, err := t.isStopChar(c)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, t.invalidChar(c)
	}
	return c, nil
}

func (t *tokenizer) skipBinary() (int, error) {
	isB := func(c int) bool {
		return c == 'b' || c == 'B'
	}
	isBinaryDigit := func(c int) bool {
		return c == '0' || c == '1'
	}
	return t.skipRadix(isB, isBinaryDigit)
}

func (t *tokenizer) skipHex() (int, error) {
	isX := func(c int) bool {
		return c == 'x' || c == 'X'
	}
	return t.skipRadix(isX, isHexDigit)
}

func (t *tokenizer) skipRadix(isMarker, isValidDigit matcher) (int, error) {
	c, err := t.read()
	if err != nil {
		return 0, err
	}

	if c == '-' {
		if c, err = t.read(); err != nil {
			return 0, err
		}
	}

	if c != '0' {
		return 0, t.invalidChar(c)
	}
	if err = t.expect(isMarker); err != nil {
		return 0, err
	}

	for {
		if c, err = t.read(); err != nil {
			return 0, err
		}
		if !isValidDigit(c) && c != '_' {
			break
		}
	}

	ok, err := t.isStopChar(c)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, t.invalidChar(c)
	}

	return c, nil
}

// skipTimestamp skips a timestamp, validating its shape along the way.
func (t *tokenizer) skipTimestamp() (int, error) {
	c, err := t.skipTimestampDigits(4)
	if err != nil {
		return 0, err
	}
	if c == 'T' {
		// yyyyT
		return t.read()
	}
	if c != '-' {
		return 0, t.invalidChar(c)
	}

	if c, err = t.skipTimestampDigits(2); err != nil {
		return 0, err
	}
	if c == 'T' {
		// yyyy-mmT
		return t.read()
	}
	if c != '-' {
		return 0, t.invalidChar(c)
	}

	if c, err = t.skipTimestampDigits(2); err != nil {
		return 0, err
	}
	if c != 'T' {
		// yyyy-mm-dd
		return t.skipTimestampFinish(c)
	}

	if c, err = t.read(); err != nil {
		return 0, err
	}
	if !isDigit(c) {
		if c, err = t.skipTimestampOffset(c); err != nil {
			return 0, err
		}
		return t.skipTimestampFinish(c)
	}

	// First hour digit was just read.
	if c, err = t.skipTimestampDigits(1); err != nil {
		return 0, err
	}
	if c != ':' {
		return 0, t.invalidChar(c)
	}

	if c, err = t.skipTimestampDigits(2); err != nil {
		return 0, err
	}
	if c != ':' {
		// yyyy-mm-ddThh:mmZ
		if c, err = t.skipTimestampOffsetOrZ(c); err != nil {
			return 0, err
		}
		return t.skipTimestampFinish(c)
	}

	if c, err = t.skipTimestampDigits(2); err != nil {
		return 0, err
	}
	if c != '.' {
		// yyyy-mm-ddThh:mm:ssZ
		if c, err = t.skipTimestampOffsetOrZ(c); err != nil {
			return 0, err
		}
		return t.skipTimestampFinish(c)
	}

	// yyyy-mm-ddThh:mm:ss.sssZ
	if c, err = t.read(); err != nil {
		return 0, err
	}
	if isDigit(c) {
		if c, err = t.skipDigits(c); err != nil {
			return 0, err
		}
	}

	if c, err = t.skipTimestampOffsetOrZ(c); err != nil {
		return 0, err
	}
	return t.skipTimestampFinish(c)
}

func (t *tokenizer) skipTimestampOffsetOrZ(c int) (int, error) {
	if c == '-' || c == '+' {
		return t.skipTimestampOffset(c)
	}
	if c == 'z' || c == 'Z' {
		return t.read()
	}
	return 0, t.invalidChar(c)
}

func (t *tokenizer) skipTimestampOffset(c int) (int, error) {
	if c != '-' && c != '+' {
		return c, nil
	}

	c, err := t.skipTimestampDigits(2)
	if err != nil {
		return 0, err
	}
	if c != ':' {
		return 0, t.invalidChar(c)
	}
	return t.skipTimestampDigits(2)
}

func (t *tokenizer) skipTimestampDigits(n int) (int, error) {
	for n > 0 {
		if err := t.expect(func(c int) bool {
			return isDigit(c)
		}); err != nil {
			return 0, err
		}
		n--
	}
	return t.read()
}

func (t *tokenizer) skipTimestampFinish(c int) (int, error) {
	ok, err := t.isStopChar(c)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, t.invalidChar(c)
	}
	return c, nil
}

func (t *tokenizer) skipSymbol() (int, error) {
	c, err := t.read()
	if err != nil {
		return 0, err
	}

	for isIdentifierPart(c) {
		if c, err = t.read(); err != nil {
			return 0, err
		}
	}

	return c, nil
}

func (t *tokenizer) skipQuotedSymbol() (int, error) {
	if err := t.skipQuotedSymbolBody(); err != nil {
		return 0, err
	}
	return t.read()
}

func (t *tokenizer) skipQuotedSymbolBody() error {
	for {
		c, err := t.read()
		if err != nil {
			return err
		}

		switch c {
		case -1, '\n':
			return t.invalidChar(c)

		case '\'':
			return nil

		case '\\':
			if _, err := t.read(); err != nil {
				return err
			}
		}
	}
}

func (t *tokenizer) skipOperator() (int, error) {
	c, err := t.read()
	if err != nil {
		return 0, err
	}

	for isOperatorChar(c) {
		if c, err = t.read(); err != nil {
			return 0, err
		}
	}

	return c, nil
}

func (t *tokenizer) skipString() (int, error) {
	if err := t.skipStringBody(); err != nil {
		return 0, err
	}
	return t.read()
}

func (t *tokenizer) skipStringBody() error {
	for {
		c, err := t.read()
		if err != nil {
			return err
		}

		switch c {
		case -1, '\n':
			return t.invalidChar(c)

		case '"':
			return nil

		case '\\':
			if _, err := t.read(); err != nil {
				return err
			}
		}
	}
}

func (t *tokenizer) skipLongString() (int, error) {
	if err := t.skipLongStringBody(t.skipCommentsHandler); err != nil {
		return 0, err
	}
	return t.read()
}

func (t *tokenizer) skipLongStringBody(handler commentHandler) error {
	for {
		c, err := t.read()
		if err != nil {
			return err
		}

		switch c {
		case -1:
			return t.invalidChar(c)

		case '\'':
			done, _, err := t.skipLongStringEnd(handler)
			if err != nil {
				return err
			}
			if done {
				return nil
			}

		case '\\':
			if _, err = t.read(); err != nil {
				return err
			}
		}
	}
}

// skipLongStringEnd is called after a ' to determine whether the long
// string really ends here. Because adjacent long strings concatenate, a
// closing ''' followed (modulo whitespace) by another ''' does not end the
// value; in that case it returns done=false but consumed=true.
func (t *tokenizer) skipLongStringEnd(handler commentHandler) (done, consumed bool, err error) {
	cs, err := t.peekN(2)
	if err != nil && err != io.EOF {
		return false, false, err
	}

	if len(cs) < 2 || cs[0] != '\'' || cs[1] != '\'' {
		// A lone ' inside the string.
		return false, false, nil
	}

	if err = t.skipN(2); err != nil {
		return false, true, err
	}

	c, _, err := t.skipWhitespaceWith(handler)
	if err != nil {
		return false, true, err
	}

	if c == '\'' {
		triple, err := t.isTripleQuote()
		if err != nil {
			return false, true, err
		}
		if triple {
			return false, true, nil
		}
	}

	t.unread(c)
	return true, true, nil
}

func (t *tokenizer) skipLob() (int, error) {
	if err := t.skipLobBody(); err != nil {
		return 0, err
	}
	return t.read()
}

// skipLobBody skips a lob's contents, stopping after the final '}'.
func (t *tokenizer) skipLobBody() error {
	c, _, err := t.skipLobWhitespace()
	if err != nil {
		return err
	}

	for c != '}' {
		c, _, err = t.skipLobWhitespace()
		if err != nil {
			return err
		}
		if c == -1 {
			return t.invalidChar(c)
		}
	}

	return t.expect(func(c int) bool {
		return c == '}'
	})
}

// skipContainer skips a container terminated by term and returns the next
// character.
func (t *tokenizer) skipContainer(term int) (int, error) {
	if err := t.skipContainerBody(term); err != nil {
		return 0, err
	}
	return t.read()
}

// skipContainerBody skips the contents of a container terminated by term.
// Nesting is tracked with an explicit terminator stack, so input nested
// arbitrarily deep cannot exhaust the call stack.
func (t *tokenizer) skipContainerBody(term int) error {
	if term != ']' && term != ')' && term != '}' {
		panic(fmt.Sprintf("invalid container terminator %q", term))
	}

	terms := []byte{byte(term)}

	for {
		c, _, err := t.skipWhitespace()
		if err != nil {
			return err
		}

		switch c {
		case -1:
			return t.invalidChar(c)

		case int(terms[len(terms)-1]):
			terms = terms[:len(terms)-1]
			if len(terms) == 0 {
				return nil
			}

		case '"':
			if err := t.skipStringBody(); err != nil {
				return err
			}

		case '\'':
			triple, err := t.isTripleQuote()
			if err != nil {
				return err
			}
			if triple {
				if err = t.skipLongStringBody(t.skipCommentsHandler); err != nil {
					return err
				}
			} else {
				if err = t.skipQuotedSymbolBody(); err != nil {
					return err
				}
			}

		case '(':
			terms = append(terms, ')')

		case '[':
			terms = append(terms, ']')

		case '{':
			c, err := t.peek()
			if err != nil {
				return err
			}

			if c == '{' {
				if _, err := t.read(); err != nil {
					return err
				}
				if err := t.skipLobBody(); err != nil {
					return err
				}
			} else {
				terms = append(terms, '}')
			}
		}
	}
}

func (t *tokenizer) skipDigits(c int) (int, error) {
	var err error
	for err == nil && isDigit(c) {
		c, err = t.read()
	}
	return c, err
}

// skipWhitespace skips whitespace and comments in normal parsing
// territory.
func (t *tokenizer) skipWhitespace() (int, bool, error) {
	return t.skipWhitespaceWith(t.skipCommentsHandler)
}

// skipWhitespaceUnread is skipWhitespace, except it unreads the first
// non-whitespace character instead of returning it.
func (t *tokenizer) skipWhitespaceUnread() (bool, error) {
	c, ok, err := t.skipWhitespace()
	if err != nil {
		return false, err
	}
	t.unread(c)
	return ok, nil
}

// skipLobWhitespace skips whitespace inside a lob; a '/' there is base64,
// not a comment.
func (t *tokenizer) skipLobWhitespace() (int, bool, error) {
	return t.skipWhitespaceWith(stopForCommentsHandler)
}

// A commentHandler decides what a '/' means in the current context: it
// returns true if it consumed a comment, false if the '/' stands for
// itself, and an error if comments are forbidden here.
type commentHandler func() (bool, error)

// skipWhitespaceWith skips whitespace, delegating '/' to the handler. It
// returns the first interesting character and whether anything was
// actually skipped.
func (t *tokenizer) skipWhitespaceWith(handler commentHandler) (int, bool, error) {
	skipped := false
	for {
		c, err := t.read()
		if err != nil {
			return 0, skipped, err
		}

		switch c {
		case ' ', '\t', '\n', '\r':

		case '/':
			comment, err := handler()
			if err != nil {
				return 0, skipped, err
			}
			if !comment {
				return '/', skipped, nil
			}

		default:
			return c, skipped, nil
		}
		skipped = true
	}
}

func stopForCommentsHandler() (bool, error) {
	return false, nil
}

func (t *tokenizer) rejectCommentsHandler() (bool, error) {
	return false, &UnexpectedTokenError{Token: "comments are not allowed within a clob", Offset: t.Pos() - 1}
}

func (t *tokenizer) skipCommentsHandler() (bool, error) {
	// We've just read a '/'; a second '/' or a '*' makes it a comment.
	c, err := t.peek()
	if err != nil {
		return false, err
	}

	switch c {
	case '/':
		return true, t.skipSingleLineComment()
	case '*':
		return true, t.skipBlockComment()
	default:
		return false, nil
	}
}

func (t *tokenizer) skipSingleLineComment() error {
	for {
		c, err := t.read()
		if err != nil {
			return err
		}
		if c == -1 || c == '\n' {
			return nil
		}
	}
}

func (t *tokenizer) skipBlockComment() error {
	star := false
	for {
		c, err := t.read()
		if err != nil {
			return err
		}
		if c == -1 {
			return t.invalidChar(c)
		}

		if star && c == '/' {
			return nil
		}
		star = c == '*'
	}
}
