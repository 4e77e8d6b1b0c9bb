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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/big"
)

type bnss uint8

const (
	bnsBeforeValue bnss = iota
	bnsOnValue
	bnsBeforeFieldID
	bnsOnFieldID
)

// A typecode identifies the kind of the tag the stream is positioned on.
// Booleans split into two codes because the tag encodes the value; ints
// split by sign because the magnitude is unsigned.
type typecode uint8

const (
	tcNone typecode = iota
	tcEOF
	tcBVM
	tcNull
	tcFalse
	tcTrue
	tcInt
	tcNegInt
	tcFloat
	tcDecimal
	tcTimestamp
	tcSymbol
	tcString
	tcClob
	tcBlob
	tcList
	tcSexp
	tcStruct
	tcFieldID
	tcAnnotation
)

func (t typecode) String() string {
	switch t {
	case tcNone:
		return "none"
	case tcEOF:
		return "eof"
	case tcBVM:
		return "bvm"
	case tcNull:
		return "null"
	case tcFalse:
		return "false"
	case tcTrue:
		return "true"
	case tcInt:
		return "int"
	case tcNegInt:
		return "negint"
	case tcFloat:
		return "float"
	case tcDecimal:
		return "decimal"
	case tcTimestamp:
		return "timestamp"
	case tcSymbol:
		return "symbol"
	case tcString:
		return "string"
	case tcClob:
		return "clob"
	case tcBlob:
		return "blob"
	case tcList:
		return "list"
	case tcSexp:
		return "sexp"
	case tcStruct:
		return "struct"
	case tcFieldID:
		return "fieldid"
	case tcAnnotation:
		return "annotation"
	default:
		return fmt.Sprintf("<invalid typecode 0x%2X>", uint8(t))
	}
}

// typecodes maps a tag byte's high nibble to its typecode.
var typecodes = []typecode{
	tcNull,       // 0x00
	tcFalse,      // 0x10
	tcInt,        // 0x20
	tcNegInt,     // 0x30
	tcFloat,      // 0x40
	tcDecimal,    // 0x50
	tcTimestamp,  // 0x60
	tcSymbol,     // 0x70
	tcString,     // 0x80
	tcClob,       // 0x90
	tcBlob,       // 0xA0
	tcList,       // 0xB0
	tcSexp,       // 0xC0
	tcStruct,     // 0xD0
	tcAnnotation, // 0xE0
}

// parseTag splits a tag byte into its typecode and length nibble.
func parseTag(c int) (typecode, uint64) {
	high := (c >> 4) & 0x0F
	low := c & 0x0F

	code := tcNone
	if high < len(typecodes) {
		code = typecodes[high]
	}

	return code, uint64(low)
}

// A binstream is the framing layer for binary input. It tracks the tag the
// stream is positioned on, the extent of every open container, and refuses
// to let a value read past its container's end.
type binstream struct {
	src    *bufio.Reader
	pos    uint64
	state  bnss
	frames frameStack

	code typecode
	null bool
	size uint64
}

// Init initializes the stream to read from in.
func (b *binstream) Init(in io.Reader) {
	b.src = bufio.NewReader(in)
}

// InitBytes initializes the stream to read from an in-memory buffer.
func (b *binstream) InitBytes(in []byte) {
	b.src = bufio.NewReader(bytes.NewReader(in))
}

// Code returns the typecode of the current tag.
func (b *binstream) Code() typecode {
	return b.code
}

// IsNull returns true if the current value is a null.
func (b *binstream) IsNull() bool {
	return b.null
}

// Pos returns the offset of the next unread byte.
func (b *binstream) Pos() uint64 {
	return b.pos
}

// Len returns the length in bytes of the current value's representation.
func (b *binstream) Len() uint64 {
	return b.size
}

// Next advances the stream to the next tag, skipping the current value if
// it was never consumed.
func (b *binstream) Next() error {
	switch b.state {
	case bnsOnValue, bnsOnFieldID:
		if err := b.SkipValue(); err != nil {
			return err
		}
	}

	// At the end of a container there is nothing more to parse until the
	// caller steps out.
	if !b.frames.empty() {
		cur := b.frames.peek()
		if b.pos == cur.end {
			b.code = tcEOF
			return nil
		}
	}

	if b.state == bnsBeforeFieldID {
		b.code = tcFieldID
		b.state = bnsOnFieldID
		return nil
	}

	c, err := b.read()
	if err != nil {
		return err
	}
	if c == -1 {
		b.code = tcEOF
		return nil
	}

	code, size := parseTag(c)
	if code == tcNone {
		return &InvalidTagByteError{Byte: byte(c), Offset: b.pos - 1}
	}

	b.state = bnsOnValue

	if code == tcAnnotation {
		switch size {
		case 0:
			// 0xE0 starts a version marker, legal only between top-level
			// values.
			if !b.frames.empty() {
				return &SyntaxError{Msg: "version marker in a container", Offset: b.pos - 1}
			}
			b.code = tcBVM
			b.size = 3
			return nil

		case 0x0F:
			// There is no null annotation wrapper.
			return &InvalidTagByteError{Byte: byte(c), Offset: b.pos - 1}
		}
	}

	// The boolean tag carries its value in the length nibble.
	if code == tcFalse {
		switch size {
		case 0, 0x0F:
		case 1:
			code = tcTrue
			size = 0
		default:
			return &InvalidTagByteError{Byte: byte(c), Offset: b.pos - 1}
		}
	}

	if size == 0x0F {
		b.code = code
		b.null = true
		b.size = 0
		return nil
	}

	pos := b.pos
	rem := b.remaining()

	if size == 0x0E {
		var lenlen uint64
		size, lenlen, err = b.readVarUintLen(rem)
		if err != nil {
			return err
		}
		rem -= lenlen
	}

	if size > rem {
		msg := fmt.Sprintf("value of length %v overruns its container (%v bytes left)", size, rem)
		return &SyntaxError{Msg: msg, Offset: pos - 1}
	}

	b.code = code
	b.size = size
	return nil
}

// SkipValue skips the representation of the current value, if any.
func (b *binstream) SkipValue() error {
	switch b.state {
	case bnsBeforeFieldID, bnsBeforeValue:
		return nil

	case bnsOnFieldID:
		if err := b.skipVarUint(); err != nil {
			return err
		}
		b.state = bnsBeforeValue

	case bnsOnValue:
		if b.size > 0 {
			if err := b.skip(b.size); err != nil {
				return err
			}
		}
		b.state = b.stateAfterValue()

	default:
		panic(fmt.Sprintf("invalid state %v", b.state))
	}

	b.clear()
	return nil
}

// StepIn enters the container the stream is positioned on.
func (b *binstream) StepIn() {
	switch b.code {
	case tcStruct:
		b.state = bnsBeforeFieldID
	case tcList, tcSexp:
		b.state = bnsBeforeValue
	default:
		panic(fmt.Sprintf("StepIn called with code=%v", b.code))
	}

	b.frames.push(b.code, b.pos+b.size)
	b.clear()
}

// StepOut leaves the current container, skipping any of its values that
// were never read.
func (b *binstream) StepOut() error {
	if b.frames.empty() {
		panic("StepOut called at top level")
	}

	cur := b.frames.peek()
	b.frames.pop()

	if cur.end < b.pos {
		panic(fmt.Sprintf("container end (%v) before pos (%v)", cur.end, b.pos))
	}

	if diff := cur.end - b.pos; diff > 0 {
		if err := b.skip(diff); err != nil {
			return err
		}
	}

	b.state = b.stateAfterValue()
	b.clear()
	return nil
}

// ReadBVM reads the remainder of a version marker, returning the major and
// minor version.
func (b *binstream) ReadBVM() (byte, byte, error) {
	if b.code != tcBVM {
		panic("not a BVM")
	}

	major, err := b.read1()
	if err != nil {
		return 0, 0, err
	}
	minor, err := b.read1()
	if err != nil {
		return 0, 0, err
	}
	end, err := b.read1()
	if err != nil {
		return 0, 0, err
	}

	if end != 0xEA {
		msg := fmt.Sprintf("invalid version marker: 0xE0 0x%02X 0x%02X 0x%02X", major, minor, end)
		return 0, 0, &SyntaxError{Msg: msg, Offset: b.pos - 4}
	}

	b.state = bnsBeforeValue
	b.clear()

	return byte(major), byte(minor), nil
}

// ReadFieldID reads the field id preceding a struct field's value.
func (b *binstream) ReadFieldID() (uint64, error) {
	if b.code != tcFieldID {
		panic("not a field id")
	}

	id, err := b.readVarUint()
	if err != nil {
		return 0, err
	}

	b.state = bnsBeforeValue
	b.code = tcNone

	return id, nil
}

// ReadAnnotationIDs reads the symbol ids from an annotation wrapper,
// leaving the stream positioned before the wrapped value.
func (b *binstream) ReadAnnotationIDs() ([]uint64, error) {
	if b.code != tcAnnotation {
		panic("not an annotation")
	}

	alen, lenlen, err := b.readVarUintLen(b.size)
	if err != nil {
		return nil, err
	}

	if b.size-lenlen <= alen {
		// The wrapped value needs at least one byte of its own.
		return nil, &SyntaxError{Msg: "malformed annotation wrapper", Offset: b.pos - lenlen}
	}

	var ids []uint64
	for alen > 0 {
		id, idlen, err := b.readVarUintLen(alen)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		alen -= idlen
	}

	b.state = bnsBeforeValue
	b.clear()

	return ids, nil
}

// ReadInt reads an integer, returning an int64 if it fits and a *big.Int
// otherwise.
func (b *binstream) ReadInt() (interface{}, error) {
	if b.code != tcInt && b.code != tcNegInt {
		panic("not an int")
	}

	bs, err := b.readN(b.size)
	if err != nil {
		return nil, err
	}

	var ret interface{}
	switch {
	case b.size == 0:
		ret = int64(0)

	case b.size < 8, b.size == 8 && bs[0]&0x80 == 0:
		i := int64(0)
		for _, c := range bs {
			i = i<<8 | int64(c)
		}
		if b.code == tcNegInt {
			if i == 0 {
				return nil, &SyntaxError{Msg: "int zero may not be negative", Offset: b.pos - b.size}
			}
			i = -i
		}
		ret = i

	default:
		i := new(big.Int).SetBytes(bs)
		if b.code == tcNegInt {
			i.Neg(i)
		}
		ret = i
	}

	b.state = b.stateAfterValue()
	b.clear()

	return ret, nil
}

// ReadFloat reads a float encoded as 0, 4, or 8 bytes of big-endian IEEE 754.
func (b *binstream) ReadFloat() (float64, error) {
	if b.code != tcFloat {
		panic("not a float")
	}

	bs, err := b.readN(b.size)
	if err != nil {
		return 0, err
	}

	var ret float64
	switch len(bs) {
	case 0:
		ret = 0
	case 4:
		ret = float64(math.Float32frombits(binary.BigEndian.Uint32(bs)))
	case 8:
		ret = math.Float64frombits(binary.BigEndian.Uint64(bs))
	default:
		return 0, &SyntaxError{Msg: "invalid float size", Offset: b.pos - b.size}
	}

	b.state = b.stateAfterValue()
	b.clear()

	return ret, nil
}

// ReadDecimal reads a decimal.
func (b *binstream) ReadDecimal() (*Decimal, error) {
	if b.code != tcDecimal {
		panic("not a decimal")
	}

	d, err := b.readDecimal(b.size)
	if err != nil {
		return nil, err
	}

	b.state = b.stateAfterValue()
	b.clear()

	return d, nil
}

// readDecimal reads a decimal representation of the given length: a VarInt
// exponent followed by an Int coefficient filling the remaining bytes.
func (b *binstream) readDecimal(size uint64) (*Decimal, error) {
	exp := int64(0)
	coef := new(big.Int)
	negZero := false

	if size > 0 {
		val, vlen, err := b.readVarIntLen(size)
		if err != nil {
			return nil, err
		}

		if val > math.MaxInt32 || val < math.MinInt32 {
			msg := fmt.Sprintf("decimal exponent out of range: %v", val)
			return nil, &SyntaxError{Msg: msg, Offset: b.pos - vlen}
		}

		exp = val
		size -= vlen
	}

	if size > 0 {
		neg, err := b.readBigInt(size, coef)
		if err != nil {
			return nil, err
		}
		negZero = neg && coef.Sign() == 0
	}

	return NewDecimal(coef, int32(exp), negZero), nil
}

// ReadTimestamp reads a timestamp, deriving its precision from how many
// components its representation carries.
func (b *binstream) ReadTimestamp() (Timestamp, error) {
	if b.code != tcTimestamp {
		panic("not a timestamp")
	}

	size := b.size

	offset, known, olen, err := b.readOffset(size)
	if err != nil {
		return Timestamp{}, err
	}
	size -= olen

	comps := [6]int{1, 1, 1, 0, 0, 0}
	read := 0
	for i := 0; size > 0 && i < 6; i++ {
		val, vlen, err := b.readVarUintLen(size)
		if err != nil {
			return Timestamp{}, err
		}
		size -= vlen
		comps[i] = int(val)
		read++
	}

	var precision TimestampPrecision
	switch read {
	case 0:
		return Timestamp{}, &SyntaxError{Msg: "timestamp missing year", Offset: b.pos}
	case 1:
		precision = Year
	case 2:
		precision = Month
	case 3:
		precision = Day
	case 4:
		return Timestamp{}, &SyntaxError{Msg: "timestamp has an hour but no minute", Offset: b.pos}
	case 5:
		precision = Minute
	case 6:
		precision = Second
	}

	nsecs := 0
	fracDigits := uint8(0)
	overflow := false

	if size > 0 {
		if precision < Second {
			return Timestamp{}, &SyntaxError{Msg: "timestamp fraction without seconds", Offset: b.pos}
		}

		frac, err := b.readDecimal(size)
		if err != nil {
			return Timestamp{}, err
		}

		_, exp := frac.CoEx()
		if exp < 0 {
			precision = Nanosecond
			fracDigits = uint8(-exp)
			if fracDigits > 9 {
				// Sub-nanosecond digits are dropped.
				fracDigits = 9
			}

			n, err := frac.ShiftL(9).trunc()
			if err != nil || n < 0 || n > 999999999 {
				msg := fmt.Sprintf("invalid timestamp fraction: %v", frac)
				return Timestamp{}, &SyntaxError{Msg: msg, Offset: b.pos}
			}
			nsecs = int(n)
		}
	}

	b.state = b.stateAfterValue()
	b.clear()

	if precision <= Day {
		known = false
	}

	return tryNewTimestamp(comps, nsecs, overflow, offset, known, precision, fracDigits)
}

// readOffset reads the timestamp offset VarInt, distinguishing negative
// zero (offset unknown) from zero (UTC).
func (b *binstream) readOffset(max uint64) (int64, bool, uint64, error) {
	if max == 0 {
		return 0, false, 0, &SyntaxError{Msg: "timestamp missing offset", Offset: b.pos}
	}

	c, err := b.read1()
	if err != nil {
		return 0, false, 0, err
	}

	neg := c&0x40 != 0
	val := int64(c & 0x3F)
	length := uint64(1)

	for c&0x80 == 0 {
		if length >= max || length >= 10 {
			return 0, false, 0, &SyntaxError{Msg: "varint too large", Offset: b.pos - length}
		}
		c, err = b.read1()
		if err != nil {
			return 0, false, 0, err
		}
		val = val<<7 | int64(c&0x7F)
		length++
	}

	if neg {
		if val == 0 {
			return 0, false, length, nil
		}
		val = -val
	}

	return val, true, length, nil
}

// ReadSymbolID reads a symbol value's id.
func (b *binstream) ReadSymbolID() (uint64, error) {
	if b.code != tcSymbol {
		panic("not a symbol")
	}

	if b.size > 8 {
		return 0, &SyntaxError{Msg: "symbol id too large", Offset: b.pos}
	}

	bs, err := b.readN(b.size)
	if err != nil {
		return 0, err
	}

	b.state = b.stateAfterValue()
	b.clear()

	ret := uint64(0)
	for _, c := range bs {
		ret = ret<<8 | uint64(c)
	}
	return ret, nil
}

// ReadString reads a string value.
func (b *binstream) ReadString() (string, error) {
	if b.code != tcString {
		panic("not a string")
	}

	bs, err := b.readN(b.size)
	if err != nil {
		return "", err
	}

	b.state = b.stateAfterValue()
	b.clear()

	return string(bs), nil
}

// ReadBytes reads a blob or clob value.
func (b *binstream) ReadBytes() ([]byte, error) {
	if b.code != tcClob && b.code != tcBlob {
		panic("not a lob")
	}

	bs, err := b.readN(b.size)
	if err != nil {
		return nil, err
	}
	if bs == nil {
		bs = []byte{}
	}

	b.state = b.stateAfterValue()
	b.clear()

	return bs, nil
}

func (b *binstream) clear() {
	b.code = tcNone
	b.null = false
	b.size = 0
}

// readBigInt reads a fixed-width Int of the given length into ret,
// reporting whether the sign bit was set.
func (b *binstream) readBigInt(size uint64, ret *big.Int) (bool, error) {
	bs, err := b.readN(size)
	if err != nil {
		return false, err
	}

	neg := bs[0]&0x80 != 0
	bs[0] &= 0x7F
	if bs[0] == 0 {
		bs = bs[1:]
	}

	ret.SetBytes(bs)
	if neg {
		ret.Neg(ret)
	}

	return neg, nil
}

func (b *binstream) readVarUint() (uint64, error) {
	val, _, err := b.readVarUintLen(b.remaining())
	return val, err
}

// readVarUintLen reads a VarUInt of at most max bytes, returning the value
// and how many bytes it took.
func (b *binstream) readVarUintLen(max uint64) (uint64, uint64, error) {
	if max > 10 {
		max = 10
	}

	val := uint64(0)
	length := uint64(0)

	for {
		if length >= max {
			return 0, 0, &SyntaxError{Msg: "varuint too large", Offset: b.pos}
		}

		c, err := b.read1()
		if err != nil {
			return 0, 0, err
		}

		val = val<<7 | uint64(c&0x7F)
		length++

		if c&0x80 != 0 {
			return val, length, nil
		}
	}
}

func (b *binstream) skipVarUint() error {
	max := b.remaining()
	if max > 10 {
		max = 10
	}

	length := uint64(0)
	for {
		if length >= max {
			return &SyntaxError{Msg: "varuint too large", Offset: b.pos - length}
		}

		c, err := b.read1()
		if err != nil {
			return err
		}
		length++

		if c&0x80 != 0 {
			return nil
		}
	}
}

// readVarIntLen reads a VarInt of at most max bytes, returning the value
// and how many bytes it took.
func (b *binstream) readVarIntLen(max uint64) (int64, uint64, error) {
	if max == 0 {
		return 0, 0, &SyntaxError{Msg: "varint too large", Offset: b.pos}
	}
	if max > 10 {
		max = 10
	}

	c, err := b.read1()
	if err != nil {
		return 0, 0, err
	}

	sign := int64(1)
	if c&0x40 != 0 {
		sign = -1
	}

	val := int64(c & 0x3F)
	length := uint64(1)

	for c&0x80 == 0 {
		if length >= max {
			return 0, 0, &SyntaxError{Msg: "varint too large", Offset: b.pos - length}
		}

		c, err = b.read1()
		if err != nil {
			return 0, 0, err
		}

		val = val<<7 | int64(c&0x7F)
		length++
	}

	return val * sign, length, nil
}

// remaining returns how many bytes are left in the current container.
func (b *binstream) remaining() uint64 {
	if b.frames.empty() {
		return math.MaxUint64
	}

	end := b.frames.peek().end
	if b.pos > end {
		panic(fmt.Sprintf("pos (%v) > end (%v)", b.pos, end))
	}

	return end - b.pos
}

func (b *binstream) stateAfterValue() bnss {
	if b.frames.peek().code == tcStruct {
		return bnsBeforeFieldID
	}
	return bnsBeforeValue
}

// readChunk bounds how much readN and skip allocate or discard per step;
// declared lengths come off the wire and can be arbitrarily larger than the
// actual input.
const readChunk = 1 << 20

// readN reads exactly n bytes from the underlying stream.
func (b *binstream) readN(n uint64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}

	var bs []byte
	for n > 0 {
		chunk := n
		if chunk > readChunk {
			chunk = readChunk
		}

		off := len(bs)
		bs = append(bs, make([]byte, chunk)...)

		actual, err := io.ReadFull(b.src, bs[off:])
		b.pos += uint64(actual)

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &UnexpectedEOFError{Offset: b.pos}
		}
		if err != nil {
			return nil, &IOError{Err: err}
		}

		n -= chunk
	}

	return bs, nil
}

// read1 reads the next byte, treating EOF as an error.
func (b *binstream) read1() (int, error) {
	c, err := b.read()
	if err != nil {
		return 0, err
	}
	if c == -1 {
		return 0, &UnexpectedEOFError{Offset: b.pos}
	}
	return c, nil
}

// read reads the next byte, returning -1 at the end of the stream.
func (b *binstream) read() (int, error) {
	c, err := b.src.ReadByte()
	b.pos++

	if err == io.EOF {
		return -1, nil
	}
	if err != nil {
		return 0, &IOError{Err: err}
	}

	return int(c), nil
}

// skip discards n bytes of input.
func (b *binstream) skip(n uint64) error {
	for n > 0 {
		chunk := n
		if chunk > readChunk {
			chunk = readChunk
		}

		actual, err := b.src.Discard(int(chunk))
		b.pos += uint64(actual)

		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &IOError{Err: err}
		}

		n -= chunk
	}

	return nil
}

// A frame records a container the stream has stepped into and the offset
// at which its representation ends.
type frame struct {
	code typecode
	end  uint64
}

type frameStack struct {
	arr []frame
}

func (f *frameStack) empty() bool {
	return len(f.arr) == 0
}

func (f *frameStack) peek() frame {
	if len(f.arr) == 0 {
		return frame{}
	}
	return f.arr[len(f.arr)-1]
}

func (f *frameStack) push(code typecode, end uint64) {
	f.arr = append(f.arr, frame{code, end})
}

func (f *frameStack) pop() {
	if len(f.arr) == 0 {
		panic("pop called on empty stack")
	}
	f.arr = f.arr[:len(f.arr)-1]
}
