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
)

// A binaryReader is a cursor over the binary encoding. The binstream
// handles framing; this layer resolves symbol ids, installs local symbol
// tables, and skips padding.
type binaryReader struct {
	reader
	bits binstream
	cat  Catalog
}

func newBinaryReader(in io.Reader, cat Catalog) Reader {
	return newBinaryReaderBuf(bufio.NewReader(in), cat)
}

func newBinaryReaderBuf(in *bufio.Reader, cat Catalog) Reader {
	r := &binaryReader{cat: cat}
	r.bits.Init(in)
	return r
}

// Next moves the reader to the next value.
func (r *binaryReader) Next() bool {
	if r.eof || r.err != nil {
		return false
	}

	r.clear()

	done := false
	for !done {
		done, r.err = r.next()
		if r.err != nil {
			return false
		}
	}

	return !r.eof
}

// next makes one attempt to move the reader to the next value; it returns
// false if it hits a symbol table or padding and needs to try again.
func (r *binaryReader) next() (bool, error) {
	if err := r.bits.Next(); err != nil {
		return false, err
	}

	code := r.bits.Code()

	if code == tcFieldID {
		if err := r.readFieldName(); err != nil {
			return false, err
		}
		code = r.bits.Code()
	}

	if code == tcAnnotation {
		if err := r.readAnnotations(); err != nil {
			return false, err
		}
		code = r.bits.Code()
	}

	switch code {
	case tcEOF:
		r.eof = true
		return true, nil

	case tcBVM:
		err := r.readBVM()
		return false, err

	case tcNull:
		if !r.bits.IsNull() {
			// NOP padding fills space between values; there is no value
			// here, keep looking.
			if len(r.annotations) > 0 {
				return false, &SyntaxError{Msg: "padding inside an annotation wrapper", Offset: r.bits.Pos()}
			}
			if err := r.bits.SkipValue(); err != nil {
				return false, err
			}
			r.clear()
			return false, nil
		}
		r.valueType = NullType
		return true, nil

	case tcFalse, tcTrue:
		r.valueType = BoolType
		if !r.bits.IsNull() {
			r.value = code == tcTrue
			if err := r.bits.SkipValue(); err != nil {
				return false, err
			}
		}
		return true, nil

	case tcInt, tcNegInt:
		r.valueType = IntType
		if !r.bits.IsNull() {
			val, err := r.bits.ReadInt()
			if err != nil {
				return false, err
			}
			r.value = val
		}
		return true, nil

	case tcFloat:
		r.valueType = FloatType
		if !r.bits.IsNull() {
			val, err := r.bits.ReadFloat()
			if err != nil {
				return false, err
			}
			r.value = val
		}
		return true, nil

	case tcDecimal:
		r.valueType = DecimalType
		if !r.bits.IsNull() {
			val, err := r.bits.ReadDecimal()
			if err != nil {
				return false, err
			}
			r.value = val
		}
		return true, nil

	case tcTimestamp:
		r.valueType = TimestampType
		if !r.bits.IsNull() {
			val, err := r.bits.ReadTimestamp()
			if err != nil {
				return false, err
			}
			r.value = val
		}
		return true, nil

	case tcSymbol:
		r.valueType = SymbolType
		if !r.bits.IsNull() {
			id, err := r.bits.ReadSymbolID()
			if err != nil {
				return false, err
			}
			r.value = r.resolve(id)
		}
		return true, nil

	case tcString:
		r.valueType = StringType
		if !r.bits.IsNull() {
			val, err := r.bits.ReadString()
			if err != nil {
				return false, err
			}
			r.value = val
		}
		return true, nil

	case tcClob:
		r.valueType = ClobType
		if !r.bits.IsNull() {
			val, err := r.bits.ReadBytes()
			if err != nil {
				return false, err
			}
			r.value = val
		}
		return true, nil

	case tcBlob:
		r.valueType = BlobType
		if !r.bits.IsNull() {
			val, err := r.bits.ReadBytes()
			if err != nil {
				return false, err
			}
			r.value = val
		}
		return true, nil

	case tcList:
		r.valueType = ListType
		if !r.bits.IsNull() {
			r.value = ListType
		}
		return true, nil

	case tcSexp:
		r.valueType = SexpType
		if !r.bits.IsNull() {
			r.value = SexpType
		}
		return true, nil

	case tcStruct:
		r.valueType = StructType
		if !r.bits.IsNull() {
			r.value = StructType
		}

		// A top-level struct annotated $ion_symbol_table is an encoding
		// artifact, not data; install it and keep looking for a value.
		if isIonSymbolTable(r.annotations) && r.ctx.peek() == ctxAtTopLevel && !r.bits.IsNull() {
			err := r.readLocalSymbolTable()
			return false, err
		}
		return true, nil
	}

	panic(fmt.Sprintf("unsupported typecode %v", code))
}

func isIonSymbolTable(as []SymbolToken) bool {
	return len(as) > 0 && as[0].Text != nil && *as[0].Text == ionSymbolTableText
}

// readBVM consumes a version marker and resets the symbol table.
func (r *binaryReader) readBVM() error {
	major, minor, err := r.bits.ReadBVM()
	if err != nil {
		return err
	}

	if major != 1 || minor != 0 {
		return &UnsupportedVersionError{int(major), int(minor), r.bits.Pos() - 4}
	}

	r.lst = V1SystemSymbolTable
	r.clear()
	return nil
}

func (r *binaryReader) readLocalSymbolTable() error {
	lst, err := readLocalSymbolTable(r, r.cat)
	if err != nil {
		return err
	}

	r.lst = lst
	r.clear()
	return nil
}

func (r *binaryReader) readFieldName() error {
	id, err := r.bits.ReadFieldID()
	if err != nil {
		return err
	}

	r.fieldName = r.resolveP(id)

	return r.bits.Next()
}

func (r *binaryReader) readAnnotations() error {
	ids, err := r.bits.ReadAnnotationIDs()
	if err != nil {
		return err
	}

	as := make([]SymbolToken, len(ids))
	for i, id := range ids {
		as[i] = r.resolve(id)
	}
	r.annotations = as

	return r.bits.Next()
}

// resolve maps a symbol id to a token, leaving the text unknown when the
// id is not covered by the current symbol table. Unknown ids are data, not
// errors; they print as $id.
func (r *binaryReader) resolve(id uint64) SymbolToken {
	tok := SymbolToken{SID: int64(id)}
	if r.lst != nil {
		if text, ok := r.lst.FindByID(id); ok && text != "" {
			tok.Text = &text
		}
	}
	return tok
}

func (r *binaryReader) resolveP(id uint64) *SymbolToken {
	tok := r.resolve(id)
	return &tok
}

// StepIn steps in to the current container.
func (r *binaryReader) StepIn() error {
	if r.err != nil {
		return r.err
	}

	if !IsContainer(r.valueType) {
		return &UsageError{"Reader.StepIn", fmt.Sprintf("cannot step in to a %v", r.valueType)}
	}
	if r.value == nil {
		return &UsageError{"Reader.StepIn", "cannot step in to a null container"}
	}

	r.bits.StepIn()
	r.ctx.push(containerTypeToCtx(r.valueType))
	r.clear()
	r.eof = false

	return nil
}

// StepOut steps out of the current container.
func (r *binaryReader) StepOut() error {
	if r.err != nil {
		return r.err
	}
	if r.ctx.peek() == ctxAtTopLevel {
		return &UsageError{"Reader.StepOut", "reader is at the top level"}
	}

	if err := r.bits.StepOut(); err != nil {
		r.err = err
		return err
	}

	r.ctx.pop()
	r.clear()
	r.eof = false

	return nil
}
