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
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/big"
)

// A binaryWriter writes the binary encoding.
type binaryWriter struct {
	writer
	segs segstack

	lst  SymbolTable
	lstb SymbolTableBuilder

	wroteLST bool
}

// NewBinaryWriter creates a writer that builds a local symbol table out of
// the symbols it is given, and emits it ahead of the data on Finish.
func NewBinaryWriter(out io.Writer, sts ...SharedSymbolTable) Writer {
	w := &binaryWriter{
		writer: writer{
			out: out,
		},
		lstb: NewSymbolTableBuilder(sts...),
	}
	w.segs.push(&group{})
	return w
}

// NewBinaryWriterLST creates a writer with a fixed, pre-built local symbol
// table. Symbols outside the table cannot be written.
func NewBinaryWriterLST(out io.Writer, lst SymbolTable) Writer {
	return &binaryWriter{
		writer: writer{
			out: out,
		},
		lst: lst,
	}
}

// WriteNull writes an untyped null.
func (w *binaryWriter) WriteNull() error {
	return w.writeValue("Writer.WriteNull", []byte{0x0F})
}

// WriteNullType writes a typed null.
func (w *binaryWriter) WriteNullType(t Type) error {
	return w.writeValue("Writer.WriteNullType", []byte{binaryNulls[t]})
}

// WriteBool writes a bool.
func (w *binaryWriter) WriteBool(val bool) error {
	b := byte(0x10)
	if val {
		b = 0x11
	}
	return w.writeValue("Writer.WriteBool", []byte{b})
}

// WriteInt writes an integer.
func (w *binaryWriter) WriteInt(val int64) error {
	if val == 0 {
		return w.writeValue("Writer.WriteInt", []byte{0x20})
	}

	code := byte(0x20)
	mag := uint64(val)

	if val < 0 {
		code = 0x30
		mag = uint64(-val)
	}

	length := uintLen(mag)

	buf := make([]byte, 0, length+tagLen(length))
	buf = appendTag(buf, code, length)
	buf = appendUint(buf, mag)

	return w.writeValue("Writer.WriteInt", buf)
}

// WriteUint writes an unsigned integer.
func (w *binaryWriter) WriteUint(val uint64) error {
	if val == 0 {
		return w.writeValue("Writer.WriteUint", []byte{0x20})
	}

	length := uintLen(val)

	buf := make([]byte, 0, length+tagLen(length))
	buf = appendTag(buf, 0x20, length)
	buf = appendUint(buf, val)

	return w.writeValue("Writer.WriteUint", buf)
}

// WriteBigInt writes an arbitrary-precision integer.
func (w *binaryWriter) WriteBigInt(val *big.Int) error {
	if w.err != nil {
		return w.err
	}
	if w.err = w.beginValue("Writer.WriteBigInt"); w.err != nil {
		return w.err
	}

	if w.err = w.writeBigInt(val); w.err != nil {
		return w.err
	}

	w.err = w.endValue()
	return w.err
}

func (w *binaryWriter) writeBigInt(val *big.Int) error {
	sign := val.Sign()
	if sign == 0 {
		return w.write([]byte{0x20})
	}

	code := byte(0x20)
	if sign < 0 {
		code = 0x30
	}

	bs := val.Bytes()

	bl := uint64(len(bs))
	if bl < 64 {
		buf := make([]byte, 0, bl+tagLen(bl))
		buf = appendTag(buf, code, bl)
		buf = append(buf, bs...)
		return w.write(buf)
	}

	// Large magnitude; emit the tag separately rather than copy.
	if err := w.writeTag(code, bl); err != nil {
		return err
	}
	return w.write(bs)
}

// WriteFloat writes a float, using the 4-byte form when it is lossless.
func (w *binaryWriter) WriteFloat(val float64) error {
	if val == 0 && !math.Signbit(val) {
		// Positive zero is a single byte.
		return w.writeValue("Writer.WriteFloat", []byte{0x40})
	}
	if math.IsNaN(val) {
		return w.writeValue("Writer.WriteFloat", []byte{0x44, 0x7F, 0xC0, 0x00, 0x00})
	}

	var bs []byte

	if val == float64(float32(val)) {
		bs = make([]byte, 5)
		bs[0] = 0x44
		binary.BigEndian.PutUint32(bs[1:], math.Float32bits(float32(val)))
	} else {
		bs = make([]byte, 9)
		bs[0] = 0x48
		binary.BigEndian.PutUint64(bs[1:], math.Float64bits(val))
	}

	return w.writeValue("Writer.WriteFloat", bs)
}

// WriteDecimal writes a decimal.
func (w *binaryWriter) WriteDecimal(val *Decimal) error {
	coef, exp := val.CoEx()

	// Positive 0d0 has no length or representation fields at all.
	if coef.Sign() == 0 && exp == 0 && !val.IsNegZero() {
		return w.writeValue("Writer.WriteDecimal", []byte{0x50})
	}

	vlength := varIntLen(int64(exp))

	if val.IsNegZero() {
		// A zero coefficient with the sign bit set.
		vlength++
	} else {
		vlength += bigIntLen(coef)
	}

	buf := make([]byte, 0, vlength+tagLen(vlength))

	buf = appendTag(buf, 0x50, vlength)
	buf = appendVarInt(buf, int64(exp))

	if val.IsNegZero() {
		buf = append(buf, 0x80)
	} else {
		buf = appendBigInt(buf, coef)
	}

	return w.writeValue("Writer.WriteDecimal", buf)
}

// WriteTimestamp writes a timestamp.
func (w *binaryWriter) WriteTimestamp(val Timestamp) error {
	vlength := timestampLen(val)

	buf := make([]byte, 0, vlength+tagLen(vlength))

	buf = appendTag(buf, 0x60, vlength)
	buf = appendTimestamp(buf, val)

	return w.writeValue("Writer.WriteTimestamp", buf)
}

// WriteSymbol writes a symbol from a SymbolToken, interning its text if it
// is not already in the symbol table.
func (w *binaryWriter) WriteSymbol(val SymbolToken) error {
	var id uint64
	if val.Text != nil {
		id, w.err = w.resolveFromSymbolTable("Writer.WriteSymbol", *val.Text)
		if w.err != nil {
			return w.err
		}
	} else if val.SID != UnknownSID {
		id = uint64(val.SID)
	} else {
		return &UsageError{"Writer.WriteSymbol", "symbol token has neither text nor symbol id"}
	}

	return w.writeSymbolFromID("Writer.WriteSymbol", id)
}

// WriteSymbolFromString writes a symbol from its text. Text of the form
// $id writes the raw symbol id.
func (w *binaryWriter) WriteSymbolFromString(val string) error {
	var id uint64
	id, w.err = w.resolve("Writer.WriteSymbolFromString", val)
	if w.err != nil {
		return w.err
	}

	return w.writeSymbolFromID("Writer.WriteSymbolFromString", id)
}

func (w *binaryWriter) writeSymbolFromID(api string, id uint64) error {
	vlength := uintLen(id)

	buf := make([]byte, 0, vlength+tagLen(vlength))
	buf = appendTag(buf, 0x70, vlength)
	buf = appendUint(buf, id)

	return w.writeValue(api, buf)
}

// WriteString writes a string.
func (w *binaryWriter) WriteString(val string) error {
	if len(val) == 0 {
		return w.writeValue("Writer.WriteString", []byte{0x80})
	}

	vlength := uint64(len(val))

	buf := make([]byte, 0, vlength+tagLen(vlength))
	buf = appendTag(buf, 0x80, vlength)
	buf = append(buf, val...)

	return w.writeValue("Writer.WriteString", buf)
}

// WriteClob writes a clob.
func (w *binaryWriter) WriteClob(val []byte) error {
	if w.err != nil {
		return w.err
	}
	if w.err = w.beginValue("Writer.WriteClob"); w.err != nil {
		return w.err
	}

	if w.err = w.writeLob(0x90, val); w.err != nil {
		return w.err
	}

	w.err = w.endValue()
	return w.err
}

// WriteBlob writes a blob.
func (w *binaryWriter) WriteBlob(val []byte) error {
	if w.err != nil {
		return w.err
	}
	if w.err = w.beginValue("Writer.WriteBlob"); w.err != nil {
		return w.err
	}

	if w.err = w.writeLob(0xA0, val); w.err != nil {
		return w.err
	}

	w.err = w.endValue()
	return w.err
}

func (w *binaryWriter) writeLob(code byte, val []byte) error {
	vlength := uint64(len(val))

	if vlength < 64 {
		buf := make([]byte, 0, vlength+tagLen(vlength))
		buf = appendTag(buf, code, vlength)
		buf = append(buf, val...)
		return w.write(buf)
	}

	if err := w.writeTag(code, vlength); err != nil {
		return err
	}
	return w.write(val)
}

// BeginList begins writing a list.
func (w *binaryWriter) BeginList() error {
	if w.err == nil {
		w.err = w.begin("Writer.BeginList", ctxInList, 0xB0)
	}
	return w.err
}

// EndList finishes writing a list.
func (w *binaryWriter) EndList() error {
	if w.err == nil {
		w.err = w.end("Writer.EndList", ctxInList)
	}
	return w.err
}

// BeginSexp begins writing an s-expression.
func (w *binaryWriter) BeginSexp() error {
	if w.err == nil {
		w.err = w.begin("Writer.BeginSexp", ctxInSexp, 0xC0)
	}
	return w.err
}

// EndSexp finishes writing an s-expression.
func (w *binaryWriter) EndSexp() error {
	if w.err == nil {
		w.err = w.end("Writer.EndSexp", ctxInSexp)
	}
	return w.err
}

// BeginStruct begins writing a struct.
func (w *binaryWriter) BeginStruct() error {
	if w.err == nil {
		w.err = w.begin("Writer.BeginStruct", ctxInStruct, 0xD0)
	}
	return w.err
}

// EndStruct finishes writing a struct.
func (w *binaryWriter) EndStruct() error {
	if w.err == nil {
		w.err = w.end("Writer.EndStruct", ctxInStruct)
	}
	return w.err
}

// Finish flushes buffered values, preceded by the version marker and the
// accumulated local symbol table.
func (w *binaryWriter) Finish() error {
	if w.err != nil {
		return w.err
	}
	if w.ctx.peek() != ctxAtTopLevel {
		return &UsageError{"Writer.Finish", "not at top level"}
	}

	w.clear()
	w.wroteLST = false

	seq := w.segs.peek()
	if seq != nil {
		w.segs.pop()
		if w.segs.peek() != nil {
			panic("at top level with more than one seg")
		}

		lst := w.lstb.Build()
		if err := w.writeLST(lst); err != nil {
			return err
		}
		if w.err = w.emit(seq); w.err != nil {
			return w.err
		}
	}

	return nil
}

// emit sends the segment to the output stream when at the top level, and
// appends it to the enclosing sequence otherwise.
func (w *binaryWriter) emit(seg segment) error {
	s := w.segs.peek()
	if s == nil {
		return seg.EmitTo(w.out)
	}
	s.Append(seg)
	return nil
}

func (w *binaryWriter) write(bs []byte) error {
	return w.emit(leaf(bs))
}

func (w *binaryWriter) writeValue(api string, val []byte) error {
	if w.err != nil {
		return w.err
	}
	if w.err = w.beginValue(api); w.err != nil {
		return w.err
	}

	if w.err = w.write(val); w.err != nil {
		return w.err
	}

	w.err = w.endValue()
	return w.err
}

func (w *binaryWriter) writeTag(code byte, length uint64) error {
	tag := make([]byte, 0, tagLen(length))
	tag = appendTag(tag, code, length)
	return w.write(tag)
}

func (w *binaryWriter) writeLST(lst SymbolTable) error {
	if err := w.write([]byte{0xE0, 0x01, 0x00, 0xEA}); err != nil {
		return err
	}
	return lst.WriteTo(w)
}

// beginValue writes the field name and annotations ahead of a value.
func (w *binaryWriter) beginValue(api string) error {
	// Empty these before writeLST recurses into this writer.
	name := w.fieldName
	as := w.annotations
	w.clear()

	// A fixed symbol table gets written ahead of the first value.
	if w.lst != nil && !w.wroteLST {
		w.wroteLST = true
		if err := w.writeLST(w.lst); err != nil {
			return err
		}
	}

	if w.IsInStruct() {
		if name == nil {
			return &UsageError{api, "field name not set"}
		}

		var id uint64
		if name.Text != nil {
			var err error
			id, err = w.resolve(api, *name.Text)
			if err != nil {
				return err
			}
		} else if name.SID != UnknownSID {
			id = uint64(name.SID)
		} else {
			return &UsageError{api, "field name symbol token has neither text nor symbol id"}
		}

		buf := make([]byte, 0, 10)
		buf = appendVarUint(buf, id)
		if err := w.write(buf); err != nil {
			return err
		}
	}

	if len(as) > 0 {
		ids := make([]uint64, len(as))
		idlen := uint64(0)

		for i, a := range as {
			var id uint64
			var err error

			if a.Text != nil {
				id, err = w.resolve(api, *a.Text)
				if err != nil {
					return err
				}
			} else if a.SID != UnknownSID {
				id = uint64(a.SID)
			} else {
				return &UsageError{api, "annotation symbol token has neither text nor symbol id"}
			}

			ids[i] = id
			idlen += varUintLen(id)
		}

		buf := make([]byte, 0, idlen+varUintLen(idlen))

		buf = appendVarUint(buf, idlen)
		for _, id := range ids {
			buf = appendVarUint(buf, id)
		}

		// The wrapper's length isn't known until the value is written, so
		// it buffers like a container.
		w.segs.push(&tagged{code: 0xE0})
		if err := w.write(buf); err != nil {
			return err
		}
	}

	return nil
}

// endValue closes out an annotation wrapper, if one is open.
func (w *binaryWriter) endValue() error {
	seq := w.segs.peek()
	if seq != nil {
		if t, ok := seq.(*tagged); ok && t.code == 0xE0 {
			w.segs.pop()
			return w.emit(seq)
		}
	}
	return nil
}

// begin starts a new container.
func (w *binaryWriter) begin(api string, t ctx, code byte) error {
	if err := w.beginValue(api); err != nil {
		return err
	}

	w.ctx.push(t)
	w.segs.push(&tagged{code: code})

	return nil
}

// end closes the current container, flushing its bytes up a level.
func (w *binaryWriter) end(api string, t ctx) error {
	if w.ctx.peek() != t {
		return &UsageError{api, "not in that kind of container"}
	}

	seq := w.segs.peek()
	if seq != nil {
		w.segs.pop()
		if err := w.emit(seq); err != nil {
			return err
		}
	}

	w.clear()
	w.ctx.pop()

	return w.endValue()
}

// resolve maps symbol text to an id, treating $id text as a raw id.
func (w *binaryWriter) resolve(api, sym string) (uint64, error) {
	if isSymbolRef(sym) {
		if id, err := symbolRefID(sym); err == nil {
			return uint64(id), nil
		}
	}
	return w.resolveFromSymbolTable(api, sym)
}

func (w *binaryWriter) resolveFromSymbolTable(api, sym string) (uint64, error) {
	if w.lst != nil {
		id, ok := w.lst.FindByName(sym)
		if !ok {
			return 0, &UsageError{api, fmt.Sprintf("symbol '%v' not defined", sym)}
		}
		return id, nil
	}

	id, _ := w.lstb.Add(sym)
	return id, nil
}
