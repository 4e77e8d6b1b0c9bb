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
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
)

// trs is the state of the text reader between calls.
type trs uint8

const (
	trsDone trs = iota
	trsBeforeFieldName
	trsBeforeTypeAnnotations
	trsBeforeContainer
	trsAfterValue
)

func (s trs) String() string {
	switch s {
	case trsDone:
		return "<done>"
	case trsBeforeFieldName:
		return "<beforeFieldName>"
	case trsBeforeTypeAnnotations:
		return "<beforeTypeAnnotations>"
	case trsBeforeContainer:
		return "<beforeContainer>"
	case trsAfterValue:
		return "<afterValue>"
	default:
		return strconv.Itoa(int(s))
	}
}

// A textReader is a cursor over the text encoding.
type textReader struct {
	reader

	tok   tokenizer
	state trs
	cat   Catalog
}

func newTextReaderBuf(in *bufio.Reader, cat Catalog) Reader {
	tr := textReader{
		cat:   cat,
		tok:   tokenizer{src: in},
		state: trsBeforeTypeAnnotations,
	}
	tr.lst = V1SystemSymbolTable

	return &tr
}

// Next moves the reader to the next value.
func (t *textReader) Next() bool {
	if t.state == trsDone || t.eof {
		return false
	}

	// Skip the rest of the current value if the caller didn't read it all.
	if err := t.finishValue(); err != nil {
		t.explode(err)
		return false
	}

	t.clear()

	// Keep consuming tokens until they resolve to a value (or the end of
	// the current sequence).
	for {
		if err := t.tok.Next(); err != nil {
			t.explode(err)
			return false
		}

		var done bool
		var err error

		switch t.state {
		case trsAfterValue:
			done, err = t.nextAfterValue()
		case trsBeforeFieldName:
			done, err = t.nextBeforeFieldName()
		case trsBeforeTypeAnnotations:
			done, err = t.nextBeforeTypeAnnotations()
		default:
			panic(fmt.Sprintf("unexpected state: %v", t.state))
		}
		if err != nil {
			t.explode(err)
			return false
		}

		if done {
			return !t.eof
		}
	}
}

// nextAfterValue consumes the comma (or closing delimiter) after a value
// inside a list or struct.
func (t *textReader) nextAfterValue() (bool, error) {
	tok := t.tok.Token()
	switch tok {
	case tokComma:
		switch t.ctx.peek() {
		case ctxInStruct:
			t.state = trsBeforeFieldName
		case ctxInList:
			t.state = trsBeforeTypeAnnotations
		default:
			panic(fmt.Sprintf("unexpected context: %v", t.ctx.peek()))
		}
		return false, nil

	case tokCloseBrace:
		if t.ctx.peek() == ctxInStruct {
			t.eof = true
			return true, nil
		}
		return false, &UnexpectedTokenError{"}", t.tok.Pos() - 1}

	case tokCloseBracket:
		if t.ctx.peek() == ctxInList {
			t.eof = true
			return true, nil
		}
		return false, &UnexpectedTokenError{"]", t.tok.Pos() - 1}

	default:
		return false, &UnexpectedTokenError{tok.String(), t.tok.Pos() - 1}
	}
}

// nextBeforeFieldName reads a struct field name and its colon.
func (t *textReader) nextBeforeFieldName() (bool, error) {
	tok := t.tok.Token()
	switch tok {
	case tokCloseBrace:
		t.eof = true
		return true, nil

	case tokSymbol, tokQuotedSymbol, tokString, tokLongString:
		val, err := t.tok.ReadValue(tok)
		if err != nil {
			return false, err
		}

		switch tok {
		case tokSymbol:
			if err := t.verifyUnquotedSymbol(val, "field name"); err != nil {
				return false, err
			}
			fn := t.resolveSymbol(val)
			t.fieldName = &fn

		case tokQuotedSymbol:
			t.fieldName = &SymbolToken{Text: &val, SID: UnknownSID}

		default:
			st := newSymbolToken(t.lst, val)
			t.fieldName = &st
		}

		// The colon follows directly.
		if err = t.tok.Next(); err != nil {
			return false, err
		}
		if tok = t.tok.Token(); tok != tokColon {
			return false, &UnexpectedTokenError{tok.String(), t.tok.Pos() - 1}
		}

		t.state = trsBeforeTypeAnnotations
		return false, nil

	default:
		return false, &UnexpectedTokenError{tok.String(), t.tok.Pos() - 1}
	}
}

// nextBeforeTypeAnnotations reads annotations, if any, and then the value.
func (t *textReader) nextBeforeTypeAnnotations() (bool, error) {
	tok := t.tok.Token()
	switch tok {
	case tokEOF:
		if t.ctx.peek() == ctxAtTopLevel {
			t.eof = true
			return true, nil
		}
		return false, &UnexpectedEOFError{Offset: t.tok.Pos() - 1}

	case tokOperator, tokDot:
		if t.ctx.peek() != ctxInSexp {
			// Operators are only values inside an sexp.
			return false, &UnexpectedTokenError{tok.String(), t.tok.Pos() - 1}
		}
		fallthrough

	case tokQuotedSymbol, tokSymbol:
		val, err := t.tok.ReadValue(tok)
		if err != nil {
			return false, err
		}

		ok, ws, err := t.tok.SkipDoubleColon()
		if err != nil {
			return false, err
		}

		if ok {
			// val is an annotation on the value still to come.
			switch tok {
			case tokSymbol:
				if err := t.verifyUnquotedSymbol(val, "annotation"); err != nil {
					return false, err
				}
				t.annotations = append(t.annotations, t.resolveSymbol(val))

			case tokQuotedSymbol:
				t.annotations = append(t.annotations, SymbolToken{Text: &val, SID: UnknownSID})

			default:
				return false, &SyntaxError{
					Msg:    "annotations that include a '" + val + "' must be enclosed in quotes",
					Offset: t.tok.Pos() - 1,
				}
			}
			return false, nil
		}

		if tok == tokQuotedSymbol {
			t.state = t.stateAfterValue()
			t.valueType = SymbolType
			t.value = SymbolToken{Text: &val, SID: UnknownSID}
			return true, nil
		}

		// A bare $ion_1_0 at the top level is a version marker, not data.
		if tok == tokSymbol && val == "$ion_1_0" &&
			t.ctx.peek() == ctxAtTopLevel && len(t.annotations) == 0 {
			t.lst = V1SystemSymbolTable
			t.clear()
			return false, nil
		}

		if err := t.onSymbol(val, tok, ws); err != nil {
			return false, err
		}
		return true, nil

	case tokString, tokLongString:
		val, err := t.tok.ReadValue(tok)
		if err != nil {
			return false, err
		}

		t.state = t.stateAfterValue()
		t.valueType = StringType
		t.value = val
		return true, nil

	case tokBinary, tokHex, tokNumber, tokFloatInf, tokFloatMinusInf:
		if err := t.onNumber(tok); err != nil {
			return false, err
		}
		return true, nil

	case tokTimestamp:
		if err := t.onTimestamp(); err != nil {
			return false, err
		}
		return true, nil

	case tokOpenDoubleBrace:
		if err := t.onLob(); err != nil {
			return false, err
		}
		return true, nil

	case tokOpenBrace:
		t.state = trsBeforeContainer
		t.valueType = StructType
		t.value = StructType

		// A top-level struct annotated $ion_symbol_table is an encoding
		// artifact; install it and keep looking for a value.
		if t.ctx.peek() == ctxAtTopLevel && isIonSymbolTable(t.annotations) {
			st, err := readLocalSymbolTable(t, t.cat)
			if err != nil {
				return false, err
			}
			t.lst = st
			return false, nil
		}
		return true, nil

	case tokOpenBracket:
		t.state = trsBeforeContainer
		t.valueType = ListType
		t.value = ListType
		return true, nil

	case tokOpenParen:
		t.state = trsBeforeContainer
		t.valueType = SexpType
		t.value = SexpType
		return true, nil

	case tokCloseBracket:
		if t.ctx.peek() == ctxInList {
			t.eof = true
			return true, nil
		}
		return false, &UnexpectedTokenError{"]", t.tok.Pos() - 1}

	case tokCloseParen:
		if t.ctx.peek() == ctxInSexp {
			t.eof = true
			return true, nil
		}
		return false, &UnexpectedTokenError{")", t.tok.Pos() - 1}

	default:
		return false, &UnexpectedTokenError{tok.String(), t.tok.Pos() - 1}
	}
}

// StepIn steps in to the current container.
func (t *textReader) StepIn() error {
	if t.err != nil {
		return t.err
	}
	if t.state != trsBeforeContainer {
		return &UsageError{"Reader.StepIn", fmt.Sprintf("cannot step in to a %v", t.valueType)}
	}

	ctx := containerTypeToCtx(t.valueType)
	t.ctx.push(ctx)

	if ctx == ctxInStruct {
		t.state = trsBeforeFieldName
	} else {
		t.state = trsBeforeTypeAnnotations
	}
	t.clear()

	t.tok.SetFinished()
	return nil
}

// StepOut steps out of the current container, skipping unread children.
func (t *textReader) StepOut() error {
	if t.err != nil {
		return t.err
	}

	ctx := t.ctx.peek()
	if ctx == ctxAtTopLevel {
		return &UsageError{"Reader.StepOut", "reader is at the top level"}
	}
	ctype := ctxToContainerType(ctx)

	// Finish whatever value inside the container we're part way through.
	if _, err := t.tok.FinishValue(); err != nil {
		t.explode(err)
		return err
	}

	if !t.eof {
		if err := t.tok.SkipContainerContents(ctype); err != nil {
			t.explode(err)
			return err
		}
	}

	t.ctx.pop()
	t.state = t.stateAfterValue()
	t.clear()
	t.eof = false

	return nil
}

// verifyUnquotedSymbol rejects keywords that the tokenizer returns as
// symbols but that cannot serve as field names or annotations.
func (t *textReader) verifyUnquotedSymbol(val string, where string) error {
	switch val {
	case "null", "true", "false", "nan":
		return &SyntaxError{
			Msg:    fmt.Sprintf("unquoted keyword '%v' as %v", val, where),
			Offset: t.tok.Pos() - 1,
		}
	}
	return nil
}

// resolveSymbol turns unquoted symbol text into a token, mapping symbol
// references of the form $id through the current symbol table.
func (t *textReader) resolveSymbol(val string) SymbolToken {
	if isSymbolRef(val) {
		if id, err := symbolRefID(val); err == nil && id >= 0 {
			tok := SymbolToken{SID: id}
			if t.lst != nil {
				if text, ok := t.lst.FindByID(uint64(id)); ok && text != "" {
					tok.Text = &text
				}
			}
			return tok
		}
	}
	return newSymbolToken(t.lst, val)
}

// onSymbol classifies an unquoted symbol, which may turn out to be a
// keyword value rather than a symbol.
func (t *textReader) onSymbol(val string, tok tokenKind, ws bool) error {
	valueType := SymbolType
	var value interface{}

	switch val {
	case "null":
		vt, err := t.onNull(ws)
		if err != nil {
			return err
		}
		valueType = vt
		value = nil

	case "true":
		valueType = BoolType
		value = true

	case "false":
		valueType = BoolType
		value = false

	case "nan":
		valueType = FloatType
		value = math.NaN()

	default:
		value = t.resolveSymbol(val)
	}

	t.state = t.stateAfterValue()
	t.valueType = valueType
	t.value = value

	return nil
}

// onNull checks for a null.<type> suffix; a bare null is null.null.
func (t *textReader) onNull(ws bool) (Type, error) {
	if !ws {
		ok, err := t.tok.SkipDot()
		if err != nil {
			return NoType, err
		}
		if ok {
			return t.readNullType()
		}
	}
	return NullType, nil
}

// readNullType reads the type symbol after null. and maps it to a Type.
func (t *textReader) readNullType() (Type, error) {
	if err := t.tok.Next(); err != nil {
		return NoType, err
	}
	if t.tok.Token() != tokSymbol {
		msg := fmt.Sprintf("invalid symbol null.%v", t.tok.Token())
		return NoType, &SyntaxError{Msg: msg, Offset: t.tok.Pos() - 1}
	}

	val, err := t.tok.ReadValue(tokSymbol)
	if err != nil {
		return NoType, err
	}

	switch val {
	case "null":
		return NullType, nil
	case "bool":
		return BoolType, nil
	case "int":
		return IntType, nil
	case "float":
		return FloatType, nil
	case "decimal":
		return DecimalType, nil
	case "timestamp":
		return TimestampType, nil
	case "symbol":
		return SymbolType, nil
	case "string":
		return StringType, nil
	case "blob":
		return BlobType, nil
	case "clob":
		return ClobType, nil
	case "list":
		return ListType, nil
	case "sexp":
		return SexpType, nil
	case "struct":
		return StructType, nil
	default:
		msg := fmt.Sprintf("invalid symbol null.%v", val)
		return NoType, &SyntaxError{Msg: msg, Offset: t.tok.Pos() - 1}
	}
}

// onNumber materializes a numeric token.
func (t *textReader) onNumber(tok tokenKind) error {
	var valueType Type
	var value interface{}

	switch tok {
	case tokBinary:
		val, err := t.tok.ReadValue(tok)
		if err != nil {
			return err
		}

		valueType = IntType
		value, err = parseInt(val, 2)
		if err != nil {
			return err
		}

	case tokHex:
		val, err := t.tok.ReadValue(tok)
		if err != nil {
			return err
		}

		valueType = IntType
		value, err = parseInt(val, 16)
		if err != nil {
			return err
		}

	case tokNumber:
		val, tt, err := t.tok.ReadNumber()
		if err != nil {
			return err
		}

		valueType = tt

		switch tt {
		case IntType:
			value, err = parseInt(val, 10)
		case FloatType:
			value, err = parseFloat(val)
		case DecimalType:
			value, err = ParseDecimal(val)
		default:
			panic(fmt.Sprintf("unexpected type %v", tt))
		}

		if err != nil {
			return err
		}

	case tokFloatInf:
		valueType = FloatType
		value = math.Inf(1)

	case tokFloatMinusInf:
		valueType = FloatType
		value = math.Inf(-1)

	default:
		panic(fmt.Sprintf("unexpected token kind %v", tok))
	}

	t.state = t.stateAfterValue()
	t.valueType = valueType
	t.value = value

	return nil
}

// onTimestamp materializes a timestamp token.
func (t *textReader) onTimestamp() error {
	val, err := t.tok.ReadValue(tokTimestamp)
	if err != nil {
		return err
	}

	value, err := parseTimestamp(val)
	if err != nil {
		return err
	}

	t.state = t.stateAfterValue()
	t.valueType = TimestampType
	t.value = value

	return nil
}

// onLob reads a blob or clob between double braces.
func (t *textReader) onLob() error {
	c, err := t.tok.SkipLobWhitespace()
	if err != nil {
		return err
	}

	var valType Type
	var val []byte

	switch {
	case c == '"':
		// Short clob.
		valType = ClobType
		if val, err = t.tok.ReadShortClob(); err != nil {
			return err
		}

	case c == '\'':
		// Long clob.
		ok, err := t.tok.isTripleQuote()
		if err != nil {
			return err
		}
		if !ok {
			return t.tok.invalidChar(c)
		}

		valType = ClobType
		if val, err = t.tok.ReadLongClob(); err != nil {
			return err
		}

	default:
		valType = BlobType
		t.tok.unread(c)

		b64, err := t.tok.ReadBlob()
		if err != nil {
			return err
		}

		if val, err = base64.StdEncoding.DecodeString(b64); err != nil {
			return err
		}
	}

	t.state = t.stateAfterValue()
	t.valueType = valType
	t.value = val

	return nil
}

// finishValue skips the rest of the current value, if any.
func (t *textReader) finishValue() error {
	ok, err := t.tok.FinishValue()
	if err != nil {
		return err
	}

	if ok {
		t.state = t.stateAfterValue()
	}

	return nil
}

func (t *textReader) stateAfterValue() trs {
	switch t.ctx.peek() {
	case ctxInList, ctxInStruct:
		return trsAfterValue
	case ctxInSexp, ctxAtTopLevel:
		return trsBeforeTypeAnnotations
	default:
		panic(fmt.Sprintf("invalid ctx %v", t.ctx.peek()))
	}
}

// explode poisons the reader; further calls to Next return false.
func (t *textReader) explode(err error) {
	t.state = trsDone
	t.err = err
}
