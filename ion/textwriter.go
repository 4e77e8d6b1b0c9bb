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
	"encoding/base64"
	"fmt"
	"io"
	"math/big"
	"strconv"
)

// TextWriterOpts is a set of bit-flag options for text writers.
type TextWriterOpts uint8

const (
	// TextWriterQuietFinish suppresses the newline in Finish. Convenient
	// when only one datagram will ever be written; dangerous otherwise.
	TextWriterQuietFinish TextWriterOpts = 1

	// TextWriterPretty turns on pretty-printing.
	TextWriterPretty TextWriterOpts = 2
)

// A textWriter writes human-readable text.
type textWriter struct {
	writer
	opts           TextWriterOpts
	needsSeparator bool
	emptyContainer bool
	emptyStream    bool
	indent         int

	lstb     SymbolTableBuilder
	wroteLST bool
}

// NewTextWriter creates a writer that emits text Ion.
func NewTextWriter(out io.Writer, sts ...SharedSymbolTable) Writer {
	return NewTextWriterOpts(out, 0, sts...)
}

// NewTextWriterOpts creates a text writer with the given options.
func NewTextWriterOpts(out io.Writer, opts TextWriterOpts, sts ...SharedSymbolTable) Writer {
	return &textWriter{
		writer:      writer{out: out},
		opts:        opts,
		emptyStream: true,
		lstb:        NewSymbolTableBuilder(sts...),
	}
}

// WriteNull writes an untyped null.
func (w *textWriter) WriteNull() error {
	return w.writeString("Writer.WriteNull", textNulls[NoType])
}

// WriteNullType writes a typed null.
func (w *textWriter) WriteNullType(t Type) error {
	return w.writeString("Writer.WriteNullType", textNulls[t])
}

// WriteBool writes a boolean value.
func (w *textWriter) WriteBool(val bool) error {
	str := "false"
	if val {
		str = "true"
	}
	return w.writeString("Writer.WriteBool", str)
}

// WriteInt writes an integer value.
func (w *textWriter) WriteInt(val int64) error {
	return w.writeString("Writer.WriteInt", strconv.FormatInt(val, 10))
}

// WriteUint writes an unsigned integer value.
func (w *textWriter) WriteUint(val uint64) error {
	return w.writeString("Writer.WriteUint", strconv.FormatUint(val, 10))
}

// WriteBigInt writes an arbitrary-precision integer value.
func (w *textWriter) WriteBigInt(val *big.Int) error {
	return w.writeString("Writer.WriteBigInt", val.String())
}

// WriteFloat writes a floating-point value.
func (w *textWriter) WriteFloat(val float64) error {
	return w.writeString("Writer.WriteFloat", formatFloat(val))
}

// WriteDecimal writes an arbitrary-precision decimal value.
func (w *textWriter) WriteDecimal(val *Decimal) error {
	return w.writeString("Writer.WriteDecimal", val.String())
}

// WriteTimestamp writes a timestamp value.
func (w *textWriter) WriteTimestamp(val Timestamp) error {
	return w.writeString("Writer.WriteTimestamp", val.String())
}

// WriteSymbol writes a symbol value from a SymbolToken. A token without
// text is written as $id.
func (w *textWriter) WriteSymbol(val SymbolToken) error {
	if w.err != nil {
		return w.err
	}
	if w.err = w.beginValue("Writer.WriteSymbol"); w.err != nil {
		return w.err
	}

	if w.err = w.writeSymbolToken("Writer.WriteSymbol", val); w.err != nil {
		return w.err
	}

	w.endValue()
	return nil
}

// WriteSymbolFromString writes a symbol value from its text.
func (w *textWriter) WriteSymbolFromString(val string) error {
	if w.err != nil {
		return w.err
	}
	if w.err = w.beginValue("Writer.WriteSymbolFromString"); w.err != nil {
		return w.err
	}

	if w.err = writeSymbol(val, w.out); w.err != nil {
		return w.err
	}

	w.endValue()
	return nil
}

// WriteString writes a string.
func (w *textWriter) WriteString(val string) error {
	if w.err != nil {
		return w.err
	}
	if w.err = w.beginValue("Writer.WriteString"); w.err != nil {
		return w.err
	}

	if w.err = writeRawChar('"', w.out); w.err != nil {
		return w.err
	}
	if w.err = writeEscapedString(val, w.out); w.err != nil {
		return w.err
	}
	if w.err = writeRawChar('"', w.out); w.err != nil {
		return w.err
	}

	w.endValue()
	return nil
}

// WriteClob writes a clob.
func (w *textWriter) WriteClob(val []byte) error {
	if w.err != nil {
		return w.err
	}
	if w.err = w.beginValue("Writer.WriteClob"); w.err != nil {
		return w.err
	}

	if w.err = writeRawString("{{\"", w.out); w.err != nil {
		return w.err
	}
	for _, c := range val {
		if c < 32 || c == '\\' || c == '"' || c > 0x7F {
			if err := writeEscapedChar(c, w.out); err != nil {
				return err
			}
		} else {
			if err := writeRawChar(c, w.out); err != nil {
				return err
			}
		}
	}
	if w.err = writeRawString("\"}}", w.out); w.err != nil {
		return w.err
	}

	w.endValue()
	return nil
}

// WriteBlob writes a blob.
func (w *textWriter) WriteBlob(val []byte) error {
	if w.err != nil {
		return w.err
	}
	if w.err = w.beginValue("Writer.WriteBlob"); w.err != nil {
		return w.err
	}

	if w.err = writeRawString("{{", w.out); w.err != nil {
		return w.err
	}

	enc := base64.NewEncoder(base64.StdEncoding, w.out)
	if _, err := enc.Write(val); err != nil {
		return err
	}
	if w.err = enc.Close(); w.err != nil {
		return w.err
	}

	if w.err = writeRawString("}}", w.out); w.err != nil {
		return w.err
	}

	w.endValue()
	return nil
}

// BeginList begins writing a list.
func (w *textWriter) BeginList() error {
	if w.err == nil {
		w.err = w.begin("Writer.BeginList", ctxInList, '[')
	}
	return w.err
}

// EndList finishes writing a list.
func (w *textWriter) EndList() error {
	if w.err == nil {
		w.err = w.end("Writer.EndList", ctxInList, ']')
	}
	return w.err
}

// BeginSexp begins writing an s-expression.
func (w *textWriter) BeginSexp() error {
	if w.err == nil {
		w.err = w.begin("Writer.BeginSexp", ctxInSexp, '(')
	}
	return w.err
}

// EndSexp finishes writing an s-expression.
func (w *textWriter) EndSexp() error {
	if w.err == nil {
		w.err = w.end("Writer.EndSexp", ctxInSexp, ')')
	}
	return w.err
}

// BeginStruct begins writing a struct.
func (w *textWriter) BeginStruct() error {
	if w.err == nil {
		w.err = w.begin("Writer.BeginStruct", ctxInStruct, '{')
	}
	return w.err
}

// EndStruct finishes writing a struct.
func (w *textWriter) EndStruct() error {
	if w.err == nil {
		w.err = w.end("Writer.EndStruct", ctxInStruct, '}')
	}
	return w.err
}

// Finish finishes writing the current datagram.
func (w *textWriter) Finish() error {
	if w.err != nil {
		return w.err
	}
	if w.ctx.peek() != ctxAtTopLevel {
		return &UsageError{"Writer.Finish", "not at top level"}
	}

	if !w.emptyStream && w.opts&TextWriterQuietFinish == 0 {
		if w.err = writeRawChar('\n', w.out); w.err != nil {
			return w.err
		}
		w.needsSeparator = false
		w.emptyStream = true
	}

	w.clear()
	return nil
}

func (w *textWriter) pretty() bool {
	return w.opts&TextWriterPretty == TextWriterPretty
}

// writeString writes a value whose text form is already known.
func (w *textWriter) writeString(api string, val string) error {
	if w.err != nil {
		return w.err
	}
	if w.err = w.beginValue(api); w.err != nil {
		return w.err
	}

	if w.err = writeRawString(val, w.out); w.err != nil {
		return w.err
	}

	w.endValue()
	return nil
}

// writeSymbolToken renders a symbol token, falling back to $id form when
// the text is unknown.
func (w *textWriter) writeSymbolToken(api string, val SymbolToken) error {
	if val.Text != nil {
		return writeSymbol(*val.Text, w.out)
	}
	if val.SID < 0 {
		return &UsageError{api, "symbol token has neither text nor symbol id"}
	}
	return writeRawString(fmt.Sprintf("$%d", val.SID), w.out)
}

// beginValue writes out a value's separator, field name, and annotations.
func (w *textWriter) beginValue(api string) error {
	// Empty these before the symbol table writes through this writer.
	name := w.fieldName
	as := w.annotations
	w.clear()

	if !w.wroteLST {
		w.wroteLST = true
		lst := w.lstb.Build()
		if err := lst.WriteTo(w); err != nil {
			return err
		}
	}

	if w.needsSeparator {
		if err := w.writeSeparator(); err != nil {
			return err
		}
	}

	if w.emptyContainer && w.pretty() {
		if err := writeRawChar('\n', w.out); err != nil {
			return err
		}
	}

	if w.pretty() {
		if err := w.writeIndent(); err != nil {
			return err
		}
	}

	if w.IsInStruct() {
		if name == nil {
			return &UsageError{api, "field name not set"}
		}
		if err := w.writeFieldName(api, *name); err != nil {
			return err
		}
	}

	if len(as) > 0 {
		if err := w.writeAnnotations(api, as); err != nil {
			return err
		}
	}

	return nil
}

// writeSeparator writes whatever separates values in the current context.
func (w *textWriter) writeSeparator() error {
	var sep string

	switch w.ctx.peek() {
	case ctxInStruct, ctxInList:
		if w.pretty() {
			sep = ",\n"
		} else {
			sep = ","
		}

	case ctxInSexp:
		if w.pretty() {
			sep = "\n"
		} else {
			sep = " "
		}

	default:
		// Top-level values are separated by newlines.
		sep = "\n"
	}

	return writeRawString(sep, w.out)
}

// writeFieldName writes a field name and its colon.
func (w *textWriter) writeFieldName(api string, name SymbolToken) error {
	if err := w.writeSymbolToken(api, name); err != nil {
		return err
	}

	sep := ":"
	if w.pretty() {
		sep = ": "
	}

	return writeRawString(sep, w.out)
}

// writeAnnotations writes a value's annotations.
func (w *textWriter) writeAnnotations(api string, as []SymbolToken) error {
	for _, a := range as {
		if err := w.writeSymbolToken(api, a); err != nil {
			return err
		}
		if err := writeRawString("::", w.out); err != nil {
			return err
		}
	}
	return nil
}

// endValue marks the value written, so the next one gets a separator.
func (w *textWriter) endValue() {
	w.needsSeparator = true
	w.emptyContainer = false
	w.emptyStream = false
}

// begin starts writing a container of the given type.
func (w *textWriter) begin(api string, t ctx, c byte) error {
	if err := w.beginValue(api); err != nil {
		return err
	}

	w.ctx.push(t)
	w.indent++
	w.needsSeparator = false
	w.emptyContainer = true

	return writeRawChar(c, w.out)
}

// end finishes writing a container of the given type.
func (w *textWriter) end(api string, t ctx, c byte) error {
	if w.ctx.peek() != t {
		return &UsageError{api, "not in that kind of container"}
	}

	w.indent--

	if !w.emptyContainer && w.pretty() {
		if err := writeRawChar('\n', w.out); err != nil {
			return err
		}
		if err := w.writeIndent(); err != nil {
			return err
		}
	}

	if err := writeRawChar(c, w.out); err != nil {
		return err
	}

	w.clear()
	w.ctx.pop()
	w.endValue()

	return nil
}

func (w *textWriter) writeIndent() error {
	for i := 0; i < w.indent; i++ {
		if err := writeRawChar('\t', w.out); err != nil {
			return err
		}
	}
	return nil
}
