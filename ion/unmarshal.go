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
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
)

// ErrNoInput is returned when there is no input left to decode.
var ErrNoInput = errors.New("ion: no input to decode")

var typesAcceptableKinds = map[Type][]reflect.Kind{
	IntType: {reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint, reflect.Uint64, reflect.Uintptr},
	FloatType: {reflect.Float32, reflect.Float64},
	BlobType:  {reflect.Slice, reflect.Array},
	ListType:  {reflect.Slice, reflect.Array},
}

// Unmarshaler is the interface implemented by types that can unmarshal
// themselves from Ion.
type Unmarshaler interface {
	UnmarshalIon(r Reader) error
}

// Unmarshal decodes the Ion data into the given object:
//
//	var val bool
//	err := Unmarshal([]byte{0xE0, 0x01, 0x00, 0xEA, 0x11}, &val)
//
// Ion types map to Go types the way you'd expect: bool to bool, int to any
// integer type (or big.Int when it's large), float to float64, decimal to
// ion.Decimal, timestamp to ion.Timestamp or time.Time, string and symbol
// to string, lobs to []byte, lists and sexps to slices, and structs to Go
// structs or map[string]interface{}.
//
// To capture a value's annotations, decode into a struct with exactly two
// fields, one of them a []SymbolToken tagged `ion:",annotations"`:
//
//	type foo struct {
//		Value       int
//		Annotations []SymbolToken `ion:",annotations"`
//	}
//
//	var val foo
//	err := UnmarshalString("age::10", &val)
func Unmarshal(data []byte, v interface{}, ssts ...SharedSymbolTable) error {
	catalog := NewCatalog(ssts...)
	return NewDecoder(NewReaderCat(bytes.NewReader(data), catalog)).DecodeTo(v)
}

// UnmarshalString decodes Ion text into the given object.
func UnmarshalString(data string, v interface{}) error {
	return Unmarshal([]byte(data), v)
}

// UnmarshalFrom decodes the given reader's next value into the object.
func UnmarshalFrom(r Reader, v interface{}) error {
	d := Decoder{r: r}
	return d.DecodeTo(v)
}

// A Decoder decodes Go values from an Ion reader.
type Decoder struct {
	r Reader
}

// NewDecoder creates a new decoder.
func NewDecoder(r Reader) *Decoder {
	return &Decoder{r: r}
}

// NewTextDecoder creates a decoder with no shared symbol tables. It reads
// binary too, as long as the binary doesn't import any.
func NewTextDecoder(in io.Reader) *Decoder {
	return NewDecoder(NewReader(in))
}

// Decode decodes the next value with no expectations about its type.
// Structs become map[string]interface{}, lists and sexps []interface{}.
func (d *Decoder) Decode() (interface{}, error) {
	if !d.r.Next() {
		if d.r.Err() != nil {
			return nil, d.r.Err()
		}
		return nil, ErrNoInput
	}

	return d.decode()
}

// decode is the post-Next half of Decode.
func (d *Decoder) decode() (interface{}, error) {
	if d.r.IsNull() {
		return nil, nil
	}

	switch d.r.Type() {
	case BoolType:
		val, err := d.r.BoolValue()
		if err != nil {
			return nil, err
		}
		return *val, nil

	case IntType:
		return d.decodeInt()

	case FloatType:
		val, err := d.r.FloatValue()
		if err != nil {
			return nil, err
		}
		return *val, nil

	case DecimalType:
		return d.r.DecimalValue()

	case TimestampType:
		val, err := d.r.TimestampValue()
		if err != nil {
			return nil, err
		}
		return *val, nil

	case StringType:
		val, err := d.r.StringValue()
		if err != nil {
			return nil, err
		}
		return *val, nil

	case SymbolType:
		val, err := d.r.SymbolValue()
		if err != nil {
			return nil, err
		}
		return *val, nil

	case BlobType, ClobType:
		return d.r.ByteValue()

	case StructType:
		return d.decodeMap()

	case ListType, SexpType:
		return d.decodeSlice()

	default:
		panic("unrecognized ion type")
	}
}

func (d *Decoder) decodeInt() (interface{}, error) {
	size, err := d.r.IntSize()
	if err != nil {
		return nil, err
	}

	switch size {
	case NullInt:
		return nil, nil
	case Int32:
		val, err := d.r.IntValue()
		if err != nil {
			return nil, err
		}
		return *val, nil
	case Int64:
		val, err := d.r.Int64Value()
		if err != nil {
			return nil, err
		}
		return *val, nil
	default:
		return d.r.BigIntValue()
	}
}

// decodeMap decodes a struct into a Go map.
func (d *Decoder) decodeMap() (map[string]interface{}, error) {
	if err := d.r.StepIn(); err != nil {
		return nil, err
	}

	result := map[string]interface{}{}

	for d.r.Next() {
		fieldName, err := d.r.FieldName()
		if err != nil {
			return nil, err
		}
		if fieldName != nil && fieldName.Text != nil {
			name := *fieldName.Text
			value, err := d.decode()
			if err != nil {
				return nil, err
			}
			result[name] = value
		}
	}

	if err := d.r.StepOut(); err != nil {
		return nil, err
	}

	return result, nil
}

// decodeSlice decodes a list or sexp into a Go slice.
func (d *Decoder) decodeSlice() ([]interface{}, error) {
	if err := d.r.StepIn(); err != nil {
		return nil, err
	}

	var result []interface{}

	for d.r.Next() {
		value, err := d.decode()
		if err != nil {
			return nil, err
		}
		result = append(result, value)
	}

	if err := d.r.StepOut(); err != nil {
		return nil, err
	}

	return result, nil
}

// DecodeTo decodes the next value into the given object.
func (d *Decoder) DecodeTo(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return errors.New("ion: v must be a pointer")
	}
	if rv.IsNil() {
		return errors.New("ion: v must not be nil")
	}

	if !d.r.Next() {
		if d.r.Err() != nil {
			return d.r.Err()
		}
		return ErrNoInput
	}

	return d.decodeTo(rv)
}

var unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()

func (d *Decoder) decodeTo(v reflect.Value) error {
	if !v.IsValid() {
		// Nowhere to put this value; skip it.
		return nil
	}

	isNull := d.r.IsNull()
	v = indirect(v, isNull)
	if isNull {
		v.Set(reflect.Zero(v.Type()))
		if v.Type().Kind() == reflect.Struct {
			return d.attachAnnotations(v)
		}
		return nil
	}

	t := v.Type()
	if t.Kind() != reflect.Ptr && v.CanAddr() && reflect.PtrTo(t).Implements(unmarshalerType) {
		return v.Addr().Interface().(Unmarshaler).UnmarshalIon(d.r)
	}

	switch d.r.Type() {
	case BoolType:
		return d.decodeBoolTo(v)

	case IntType:
		return d.decodeIntTo(v)

	case FloatType:
		return d.decodeFloatTo(v)

	case DecimalType:
		return d.decodeDecimalTo(v)

	case TimestampType:
		return d.decodeTimestampTo(v)

	case StringType:
		return d.decodeStringTo(v)

	case SymbolType:
		return d.decodeSymbolTo(v)

	case BlobType, ClobType:
		return d.decodeLobTo(v)

	case StructType:
		return d.decodeStructTo(v)

	case ListType, SexpType:
		return d.decodeSliceTo(v)

	default:
		panic("unrecognized ion type")
	}
}

func (d *Decoder) decodeBoolTo(v reflect.Value) error {
	val, err := d.r.BoolValue()
	if err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(*val)
		return nil

	case reflect.Struct:
		return d.decodeToAnnotatedStruct(v, reflect.Bool)

	case reflect.Interface:
		if v.NumMethod() == 0 {
			if val != nil {
				v.Set(reflect.ValueOf(*val))
			}
			return nil
		}
	}
	return fmt.Errorf("ion: cannot decode bool to %v", v.Type().String())
}

func (d *Decoder) decodeIntTo(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := d.r.Int64Value()
		if err != nil {
			return err
		}
		if v.OverflowInt(*val) {
			return fmt.Errorf("ion: value %v won't fit in type %v", *val, v.Type().String())
		}
		v.SetInt(*val)
		return nil

	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		val, err := d.r.Int64Value()
		if err != nil {
			return err
		}
		if *val < 0 || v.OverflowUint(uint64(*val)) {
			return fmt.Errorf("ion: value %v won't fit in type %v", *val, v.Type().String())
		}
		v.SetUint(uint64(*val))
		return nil

	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		val, err := d.r.BigIntValue()
		if err != nil {
			return err
		}
		if !val.IsUint64() {
			return fmt.Errorf("ion: value %v won't fit in type %v", val, v.Type().String())
		}
		uiv := val.Uint64()
		if v.OverflowUint(uiv) {
			return fmt.Errorf("ion: value %v won't fit in type %v", val, v.Type().String())
		}
		v.SetUint(uiv)
		return nil

	case reflect.Struct:
		if v.Type() == bigIntType {
			val, err := d.r.BigIntValue()
			if err != nil {
				return err
			}
			if val != nil {
				v.Set(reflect.ValueOf(*val))
			}
			return nil
		}
		return d.decodeToAnnotatedStruct(v, typesAcceptableKinds[IntType]...)

	case reflect.Interface:
		if v.NumMethod() == 0 {
			val, err := d.decodeInt()
			if err != nil {
				return err
			}
			v.Set(reflect.ValueOf(val))
			return nil
		}
	}
	return fmt.Errorf("ion: cannot decode int to %v", v.Type().String())
}

func (d *Decoder) decodeFloatTo(v reflect.Value) error {
	val, err := d.r.FloatValue()
	if err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		if v.OverflowFloat(*val) {
			return fmt.Errorf("ion: value %v won't fit in type %v", *val, v.Type().String())
		}
		v.SetFloat(*val)
		return nil

	case reflect.Struct:
		if v.Type() == decimalType {
			flt := strconv.FormatFloat(*val, 'g', -1, 64)
			dec, err := ParseDecimal(strings.Replace(flt, "e", "d", 1))
			if err != nil {
				return err
			}
			v.Set(reflect.ValueOf(*dec))
			return d.attachAnnotations(v)
		}
		return d.decodeToAnnotatedStruct(v, typesAcceptableKinds[FloatType]...)

	case reflect.Interface:
		if v.NumMethod() == 0 {
			if val != nil {
				v.Set(reflect.ValueOf(*val))
			}
			return nil
		}
	}
	return fmt.Errorf("ion: cannot decode float to %v", v.Type().String())
}

func (d *Decoder) decodeDecimalTo(v reflect.Value) error {
	val, err := d.r.DecimalValue()
	if err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.Struct:
		if v.Type() == decimalType {
			if val != nil {
				v.Set(reflect.ValueOf(*val))
			}
			return d.attachAnnotations(v)
		}
		return d.decodeToAnnotatedStruct(v, decimalType.Kind())

	case reflect.Interface:
		if v.NumMethod() == 0 {
			if val != nil {
				v.Set(reflect.ValueOf(val))
			}
			return nil
		}
	}
	return fmt.Errorf("ion: cannot decode decimal to %v", v.Type().String())
}

func (d *Decoder) decodeTimestampTo(v reflect.Value) error {
	val, err := d.r.TimestampValue()
	if err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.Struct:
		switch v.Type() {
		case timestampType:
			if val != nil {
				v.Set(reflect.ValueOf(*val))
			}
			return d.attachAnnotations(v)
		case timeType:
			if val != nil {
				v.Set(reflect.ValueOf(val.DateTime))
			}
			return d.attachAnnotations(v)
		default:
			return d.decodeToAnnotatedStruct(v, timestampType.Kind())
		}

	case reflect.Interface:
		if v.NumMethod() == 0 {
			if val != nil {
				v.Set(reflect.ValueOf(*val))
			}
			return nil
		}
	}
	return fmt.Errorf("ion: cannot decode timestamp to %v", v.Type().String())
}

func (d *Decoder) decodeSymbolTo(v reflect.Value) error {
	val, err := d.r.SymbolValue()
	if err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.String:
		if val != nil && val.Text != nil {
			v.SetString(*val.Text)
		}
		return nil

	case reflect.Struct:
		if v.Type() == symbolTokenType {
			if val != nil {
				v.Set(reflect.ValueOf(*val))
			}
			return d.attachAnnotations(v)
		}
		return d.decodeToAnnotatedStruct(v, symbolTokenType.Kind())

	case reflect.Interface:
		if v.NumMethod() == 0 {
			if val != nil {
				v.Set(reflect.ValueOf(*val))
			}
			return nil
		}
	}
	return fmt.Errorf("ion: cannot decode symbol to %v", v.Type().String())
}

func (d *Decoder) decodeStringTo(v reflect.Value) error {
	val, err := d.r.StringValue()
	if err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.String:
		if val != nil {
			v.SetString(*val)
		}
		return nil

	case reflect.Struct:
		return d.decodeToAnnotatedStruct(v, reflect.String)

	case reflect.Interface:
		if v.NumMethod() == 0 {
			if val != nil {
				v.Set(reflect.ValueOf(*val))
			}
			return nil
		}
	}
	return fmt.Errorf("ion: cannot decode string to %v", v.Type().String())
}

func (d *Decoder) decodeLobTo(v reflect.Value) error {
	val, err := d.r.ByteValue()
	if err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			v.SetBytes(val)
			return nil
		}

	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			i := reflect.Copy(v, reflect.ValueOf(val))
			for ; i < v.Len(); i++ {
				v.Index(i).SetUint(0)
			}
			return nil
		}

	case reflect.Struct:
		return d.decodeToAnnotatedStruct(v, typesAcceptableKinds[BlobType]...)

	case reflect.Interface:
		if v.NumMethod() == 0 {
			v.Set(reflect.ValueOf(val))
			return nil
		}
	}
	return fmt.Errorf("ion: cannot decode lob to %v", v.Type().String())
}

func (d *Decoder) decodeStructTo(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		return d.decodeStructToStruct(v)

	case reflect.Map:
		return d.decodeStructToMap(v)

	case reflect.Interface:
		if v.NumMethod() == 0 {
			m, err := d.decodeMap()
			if err != nil {
				return err
			}
			v.Set(reflect.ValueOf(m))
			return nil
		}
	}
	return fmt.Errorf("ion: cannot decode struct to %v", v.Type().String())
}

func (d *Decoder) decodeStructToStruct(v reflect.Value) error {
	fields := fieldsFor(v.Type())

	if err := d.attachAnnotations(v); err != nil {
		return err
	}

	if err := d.r.StepIn(); err != nil {
		return err
	}

	for d.r.Next() {
		fieldName, err := d.r.FieldName()
		if err != nil {
			return err
		}
		if fieldName != nil && fieldName.Text != nil {
			f := findField(fields, *fieldName.Text)
			if f != nil {
				subv, err := findSubvalue(v, f)
				if err != nil {
					return err
				}

				if err := d.decodeTo(subv); err != nil {
					return err
				}
			}
		}
	}

	return d.r.StepOut()
}

// findField matches a field name, preferring an exact match but accepting
// a case-insensitive one.
func findField(fields []field, name string) *field {
	var f *field
	for i := range fields {
		ff := &fields[i]
		if ff.name == name {
			return ff
		}
		if f == nil && strings.EqualFold(ff.name, name) {
			f = ff
		}
	}
	return f
}

func findSubvalue(v reflect.Value, f *field) (reflect.Value, error) {
	for _, i := range f.path {
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, fmt.Errorf("ion: cannot set embedded pointer to unexported struct: %v", v.Type().Elem())
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v, nil
}

func (d *Decoder) decodeStructToMap(v reflect.Value) error {
	t := v.Type()
	if t.Key().Kind() != reflect.String {
		return fmt.Errorf("ion: cannot decode struct to %v", t.String())
	}

	if v.IsNil() {
		v.Set(reflect.MakeMap(t))
	}

	if err := d.r.StepIn(); err != nil {
		return err
	}

	for d.r.Next() {
		subv := reflect.New(t.Elem()).Elem()

		fieldName, err := d.r.FieldName()
		if err != nil {
			return err
		}

		if fieldName != nil && fieldName.Text != nil {
			name := *fieldName.Text

			if err := d.decodeTo(subv); err != nil {
				return err
			}

			v.SetMapIndex(reflect.ValueOf(name), subv)
		}
	}

	return d.r.StepOut()
}

func (d *Decoder) decodeSliceTo(v reflect.Value) error {
	k := v.Kind()

	// With no more information than "an interface{}", decode an
	// []interface{} typed by the value stream.
	if k == reflect.Interface && v.NumMethod() == 0 {
		s, err := d.decodeSlice()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(s))
		return nil
	}

	if k == reflect.Struct {
		return d.decodeToAnnotatedStruct(v, typesAcceptableKinds[ListType]...)
	}

	if k != reflect.Array && k != reflect.Slice {
		return fmt.Errorf("ion: cannot unmarshal slice to %v", v.Type().String())
	}

	if err := d.r.StepIn(); err != nil {
		return err
	}

	i := 0

	for d.r.Next() {
		if v.Kind() == reflect.Slice {
			// Grow the slice as needed.
			if i >= v.Cap() {
				newcap := v.Cap() + v.Cap()/2
				if newcap < 4 {
					newcap = 4
				}
				newv := reflect.MakeSlice(v.Type(), v.Len(), newcap)
				reflect.Copy(newv, v)
				v.Set(newv)
			}
			if i >= v.Len() {
				v.SetLen(i + 1)
			}
		}

		if i < v.Len() {
			if err := d.decodeTo(v.Index(i)); err != nil {
				return err
			}
		}

		i++
	}

	if err := d.r.StepOut(); err != nil {
		return err
	}

	if i < v.Len() {
		if v.Kind() == reflect.Array {
			// Zero out the tail.
			z := reflect.Zero(v.Type().Elem())
			for ; i < v.Len(); i++ {
				v.Index(i).Set(z)
			}
		} else {
			v.SetLen(i)
		}
	}

	// An empty list decodes to an empty slice, not a nil one.
	if i == 0 && v.Kind() == reflect.Slice && v.IsNil() {
		v.Set(reflect.MakeSlice(v.Type(), 0, 0))
	}

	return nil
}

// indirect digs through pointers, allocating as it goes, to find the value
// to set. When wantPtr is true it stops at a pointer to the final value so
// that the pointer itself can be set to nil.
func indirect(v reflect.Value, wantPtr bool) reflect.Value {
	for {
		if v.Kind() == reflect.Interface && !v.IsNil() {
			e := v.Elem()
			if e.Kind() == reflect.Ptr && !e.IsNil() && (!wantPtr || e.Elem().Kind() == reflect.Ptr) {
				v = e
				continue
			}
		}

		if v.Kind() != reflect.Ptr {
			break
		}

		if v.Elem().Kind() != reflect.Ptr && wantPtr && v.CanSet() {
			break
		}

		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}

		v = v.Elem()
	}

	return v
}

// decodeToAnnotatedStruct decodes into a two-field annotation-capturing
// wrapper struct.
func (d *Decoder) decodeToAnnotatedStruct(v reflect.Value, acceptable ...reflect.Kind) error {
	ok, err := isAnnotatableStruct(v, acceptable)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ion: cannot decode %v into %v", v, v.Type().String())
	}

	if err := d.attachAnnotations(v); err != nil {
		return err
	}

	fields := fieldsFor(v.Type())
	for i := range fields {
		f := &fields[i]
		if f.annotations {
			continue
		}

		subv, err := findSubvalue(v, f)
		if err != nil {
			return err
		}

		if err := d.decodeTo(subv); err != nil {
			return err
		}
		break
	}
	return nil
}

// attachAnnotations copies the current value's annotations into the
// struct's `ion:",annotations"` field, if it has one.
func (d *Decoder) attachAnnotations(v reflect.Value) error {
	fields := fieldsFor(v.Type())
	for i := range fields {
		f := &fields[i]
		if f.annotations {
			subv, err := findSubvalue(v, f)
			if err != nil {
				return err
			}

			annotations, err := d.r.Annotations()
			if err != nil {
				return err
			}
			subv.Set(reflect.ValueOf(annotations))
			break
		}
	}
	return nil
}

// isAnnotatableStruct reports whether v is a two-field wrapper struct with
// an annotations field and a value field of an acceptable kind.
func isAnnotatableStruct(v reflect.Value, kinds []reflect.Kind) (bool, error) {
	fields := fieldsFor(v.Type())
	if len(fields) != 2 {
		return false, nil
	}

	hasAnnotations := false
	acceptableValue := false

	for i := range fields {
		f := &fields[i]
		subv, err := findSubvalue(v, f)
		if err != nil {
			return false, err
		}
		if f.annotations {
			hasAnnotations = true
			continue
		}
		if isAcceptableKind(kinds, subv.Type().Kind()) {
			acceptableValue = true
		}
	}

	return hasAnnotations && acceptableValue, nil
}

func isAcceptableKind(kinds []reflect.Kind, k reflect.Kind) bool {
	for _, kind := range kinds {
		if kind == k || k == reflect.Interface {
			return true
		}
	}
	return false
}
