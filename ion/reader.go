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
	"io"
	"math"
	"math/big"
	"strings"
)

// A Reader reads a stream of Ion values.
//
// The Reader has a logical position within the stream of values, as well as a
// current value type and, inside a container, a current field name and set of
// annotations. Next advances the Reader to the next value (or the end of the
// current container) and returns true if there is a value to read:
//
//	r := ion.NewReaderString("[foo, bar] 42")
//	for r.Next() {
//		// ...
//	}
//	if err := r.Err(); err != nil {
//		// the stream ended abnormally
//	}
//
// When positioned on a container value, StepIn moves the Reader inside it;
// subsequent calls to Next iterate the container's children. StepOut moves
// back out, skipping any children that were never read.
//
// Scalar accessors return a pointer that is nil when the current value is a
// (typed) null, and an error when the current value's type does not match.
type Reader interface {
	// SymbolTable returns the symbol table currently in effect, or nil if
	// there isn't one in effect yet.
	SymbolTable() SymbolTable

	// Next advances the Reader to the next position in the current value
	// stream. It returns true if this is the position of a value, and false
	// if it is the end of the stream or of the current container. On error
	// it returns false and makes the error available via Err.
	Next() bool

	// Err returns an error if a previous call to Next failed.
	Err() error

	// Type returns the type of the current value, or NoType if there is no
	// current value.
	Type() Type

	// IsNull returns true if the current value is an explicit null. The
	// value may still have a type other than NullType.
	IsNull() bool

	// FieldName returns the field name of the current value as a symbol
	// token, or nil if the Reader is not inside a struct.
	FieldName() (*SymbolToken, error)

	// Annotations returns the annotations of the current value, which may
	// be empty.
	Annotations() ([]SymbolToken, error)

	// IsInStruct returns true if the Reader is currently stepped into a
	// struct.
	IsInStruct() bool

	// StepIn steps in to the current value if it is a container. It returns
	// an error if the current value is not a container. On success, the
	// Reader is positioned before the first value of the container.
	StepIn() error

	// StepOut steps out of the current container. It returns an error if
	// the Reader is at the top level. On success, the Reader is positioned
	// after the container, before any subsequent values in the stream.
	StepOut() error

	// BoolValue returns the current value as a bool. The returned pointer
	// is nil if the value is null.bool.
	BoolValue() (*bool, error)

	// IntSize returns the smallest size of int that can hold the current
	// value without loss.
	IntSize() (IntSize, error)

	// IntValue returns the current value as an int.
	IntValue() (*int, error)

	// Int64Value returns the current value as an int64.
	Int64Value() (*int64, error)

	// BigIntValue returns the current value as a big.Int.
	BigIntValue() (*big.Int, error)

	// FloatValue returns the current value as a float64.
	FloatValue() (*float64, error)

	// DecimalValue returns the current value as a Decimal.
	DecimalValue() (*Decimal, error)

	// TimestampValue returns the current value as a Timestamp.
	TimestampValue() (*Timestamp, error)

	// StringValue returns the current value as a string.
	StringValue() (*string, error)

	// ByteValue returns the current value as a byte slice.
	ByteValue() ([]byte, error)

	// SymbolValue returns the current value as a symbol token. The token's
	// Text is nil if the symbol's id has no known text.
	SymbolValue() (*SymbolToken, error)
}

// NewReader creates a new Ion reader of the appropriate kind by peeking at
// the first few bytes of input for a binary version marker.
func NewReader(in io.Reader) Reader {
	return NewReaderCat(in, nil)
}

// NewReaderString creates a new reader for the given string.
func NewReaderString(str string) Reader {
	return NewReader(strings.NewReader(str))
}

// NewReaderBytes creates a new reader for the given bytes.
func NewReaderBytes(in []byte) Reader {
	return NewReader(bytes.NewReader(in))
}

// NewReaderCat creates a new reader that resolves shared symbol table
// imports using the given catalog.
func NewReaderCat(in io.Reader, cat Catalog) Reader {
	br := bufio.NewReader(in)

	bs, err := br.Peek(4)
	if err == nil && bs[0] == 0xE0 && bs[1] == 0x01 && bs[2] == 0x00 && bs[3] == 0xEA {
		return newBinaryReaderBuf(br, cat)
	}

	return newTextReaderBuf(br, cat)
}

// A reader holds the state shared by the text and binary readers: the
// container stack and the most recently parsed value.
type reader struct {
	ctx ctxstack
	eof bool
	err error

	lst SymbolTable

	fieldName   *SymbolToken
	annotations []SymbolToken
	valueType   Type
	value       interface{}
}

// SymbolTable returns the symbol table currently in effect.
func (r *reader) SymbolTable() SymbolTable {
	return r.lst
}

// Err returns the current error.
func (r *reader) Err() error {
	return r.err
}

// Type returns the current value's type.
func (r *reader) Type() Type {
	return r.valueType
}

// IsNull returns true if the current value is null.
func (r *reader) IsNull() bool {
	return r.valueType != NoType && r.value == nil
}

// FieldName returns the current value's field name.
func (r *reader) FieldName() (*SymbolToken, error) {
	return r.fieldName, nil
}

// Annotations returns the current value's annotations.
func (r *reader) Annotations() ([]SymbolToken, error) {
	return r.annotations, nil
}

// IsInStruct returns true if the reader is inside a struct.
func (r *reader) IsInStruct() bool {
	return r.ctx.peek() == ctxInStruct
}

// BoolValue returns the current value as a bool.
func (r *reader) BoolValue() (*bool, error) {
	if r.valueType != BoolType {
		return nil, &UsageError{"Reader.BoolValue", "value is not a bool"}
	}
	if r.value == nil {
		return nil, nil
	}
	val := r.value.(bool)
	return &val, nil
}

// IntSize returns the size of the current int value.
func (r *reader) IntSize() (IntSize, error) {
	if r.valueType != IntType {
		return NullInt, &UsageError{"Reader.IntSize", "value is not an int"}
	}
	if r.value == nil {
		return NullInt, nil
	}

	if i, ok := r.value.(int64); ok {
		if i > math.MaxInt32 || i < math.MinInt32 {
			return Int64, nil
		}
		return Int32, nil
	}

	return BigInt, nil
}

// IntValue returns the current value as an int.
func (r *reader) IntValue() (*int, error) {
	i, err := r.Int64Value()
	if err != nil {
		return nil, err
	}
	if i == nil {
		return nil, nil
	}
	if *i > math.MaxInt32 || *i < math.MinInt32 {
		return nil, &UsageError{"Reader.IntValue", "value out of int range"}
	}
	val := int(*i)
	return &val, nil
}

// Int64Value returns the current value as an int64.
func (r *reader) Int64Value() (*int64, error) {
	if r.valueType != IntType {
		return nil, &UsageError{"Reader.Int64Value", "value is not an int"}
	}
	if r.value == nil {
		return nil, nil
	}

	if i, ok := r.value.(int64); ok {
		return &i, nil
	}

	bi := r.value.(*big.Int)
	if bi.IsInt64() {
		val := bi.Int64()
		return &val, nil
	}

	return nil, &UsageError{"Reader.Int64Value", "value out of int64 range"}
}

// BigIntValue returns the current value as a big.Int.
func (r *reader) BigIntValue() (*big.Int, error) {
	if r.valueType != IntType {
		return nil, &UsageError{"Reader.BigIntValue", "value is not an int"}
	}
	if r.value == nil {
		return nil, nil
	}
	if i, ok := r.value.(int64); ok {
		return big.NewInt(i), nil
	}
	return r.value.(*big.Int), nil
}

// FloatValue returns the current value as a float64.
func (r *reader) FloatValue() (*float64, error) {
	if r.valueType != FloatType {
		return nil, &UsageError{"Reader.FloatValue", "value is not a float"}
	}
	if r.value == nil {
		return nil, nil
	}
	val := r.value.(float64)
	return &val, nil
}

// DecimalValue returns the current value as a Decimal.
func (r *reader) DecimalValue() (*Decimal, error) {
	if r.valueType != DecimalType {
		return nil, &UsageError{"Reader.DecimalValue", "value is not a decimal"}
	}
	if r.value == nil {
		return nil, nil
	}
	return r.value.(*Decimal), nil
}

// TimestampValue returns the current value as a Timestamp.
func (r *reader) TimestampValue() (*Timestamp, error) {
	if r.valueType != TimestampType {
		return nil, &UsageError{"Reader.TimestampValue", "value is not a timestamp"}
	}
	if r.value == nil {
		return nil, nil
	}
	val := r.value.(Timestamp)
	return &val, nil
}

// StringValue returns the current value as a string.
func (r *reader) StringValue() (*string, error) {
	switch r.valueType {
	case StringType:
		if r.value == nil {
			return nil, nil
		}
		val := r.value.(string)
		return &val, nil

	case SymbolType:
		if r.value == nil {
			return nil, nil
		}
		return r.value.(SymbolToken).Text, nil
	}
	return nil, &UsageError{"Reader.StringValue", "value is not a string"}
}

// ByteValue returns the current value as a byte slice.
func (r *reader) ByteValue() ([]byte, error) {
	if r.valueType != BlobType && r.valueType != ClobType {
		return nil, &UsageError{"Reader.ByteValue", "value is not a lob"}
	}
	if r.value == nil {
		return nil, nil
	}
	return r.value.([]byte), nil
}

// SymbolValue returns the current value as a symbol token.
func (r *reader) SymbolValue() (*SymbolToken, error) {
	if r.valueType != SymbolType {
		return nil, &UsageError{"Reader.SymbolValue", "value is not a symbol"}
	}
	if r.value == nil {
		return nil, nil
	}
	val := r.value.(SymbolToken)
	return &val, nil
}

// clear resets the current value.
func (r *reader) clear() {
	r.fieldName = nil
	r.annotations = nil
	r.valueType = NoType
	r.value = nil
}
