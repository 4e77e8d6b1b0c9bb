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

import "fmt"

// A Type represents the type of an Ion value.
type Type uint8

const (
	// NoType is returned by a Reader that is not currently positioned on a value.
	NoType Type = iota

	// NullType is the type of the unqualified Ion null value.
	NullType

	// BoolType is the type of an Ion boolean.
	BoolType

	// IntType is the type of a signed Ion integer of arbitrary size.
	IntType

	// FloatType is the type of an Ion 64-bit binary floating-point value.
	FloatType

	// DecimalType is the type of an arbitrary-precision Ion decimal value.
	DecimalType

	// TimestampType is the type of an arbitrary-precision Ion timestamp.
	TimestampType

	// SymbolType is the type of an Ion symbol: text that may be interned in a
	// SymbolTable and referenced by a small integer id.
	SymbolType

	// StringType is the type of a non-symbol Unicode string.
	StringType

	// ClobType is the type of a character large object; an arbitrary byte
	// sequence rendered in text form as an escaped-ASCII string.
	ClobType

	// BlobType is the type of a binary large object; an arbitrary byte
	// sequence rendered in text form as base64.
	BlobType

	// ListType is the type of a list of zero or more Ion values.
	ListType

	// SexpType is the type of an s-expression: an ordered sequence like a
	// list, with a lisp-like syntax in the text encoding.
	SexpType

	// StructType is the type of a collection of symbol-named Ion values.
	// Field order is not significant; duplicate names are legal.
	StructType
)

// String implements fmt.Stringer for Type.
func (t Type) String() string {
	switch t {
	case NoType:
		return "<no type>"
	case NullType:
		return "null"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case DecimalType:
		return "decimal"
	case TimestampType:
		return "timestamp"
	case SymbolType:
		return "symbol"
	case StringType:
		return "string"
	case ClobType:
		return "clob"
	case BlobType:
		return "blob"
	case ListType:
		return "list"
	case SexpType:
		return "sexp"
	case StructType:
		return "struct"
	default:
		return fmt.Sprintf("<unknown type %v>", uint8(t))
	}
}

// IsScalar reports whether t is a scalar (non-container) type.
func IsScalar(t Type) bool {
	return t >= NullType && t <= BlobType
}

// IsContainer reports whether t is a container type.
func IsContainer(t Type) bool {
	return t >= ListType && t <= StructType
}

// An IntSize classifies the smallest Go representation that holds an Ion
// integer losslessly.
type IntSize uint8

const (
	// NullInt is the size of null.int.
	NullInt IntSize = iota
	// Int32 fits in an int32.
	Int32
	// Int64 fits in an int64 but not an int32.
	Int64
	// BigInt requires a math/big.Int.
	BigInt
)

// String implements fmt.Stringer for IntSize.
func (i IntSize) String() string {
	switch i {
	case NullInt:
		return "null.int"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case BigInt:
		return "big.Int"
	default:
		return fmt.Sprintf("<unknown size %v>", uint8(i))
	}
}
