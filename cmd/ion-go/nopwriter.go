package main

import (
	"math/big"

	"github.com/ion-works/ion-go/ion"
)

// A nopWriter discards everything written to it. Backing the "none" output
// format, it turns process into a pure validation pass.
type nopWriter struct{}

func newNopWriter() ion.Writer {
	return nopWriter{}
}

func (nopWriter) FieldName(ion.SymbolToken) error        { return nil }
func (nopWriter) Annotation(ion.SymbolToken) error       { return nil }
func (nopWriter) Annotations(...ion.SymbolToken) error   { return nil }
func (nopWriter) WriteNull() error                       { return nil }
func (nopWriter) WriteNullType(ion.Type) error           { return nil }
func (nopWriter) WriteBool(bool) error                   { return nil }
func (nopWriter) WriteInt(int64) error                   { return nil }
func (nopWriter) WriteUint(uint64) error                 { return nil }
func (nopWriter) WriteBigInt(*big.Int) error             { return nil }
func (nopWriter) WriteFloat(float64) error               { return nil }
func (nopWriter) WriteDecimal(*ion.Decimal) error        { return nil }
func (nopWriter) WriteTimestamp(ion.Timestamp) error     { return nil }
func (nopWriter) WriteSymbol(ion.SymbolToken) error      { return nil }
func (nopWriter) WriteSymbolFromString(string) error     { return nil }
func (nopWriter) WriteString(string) error               { return nil }
func (nopWriter) WriteClob([]byte) error                 { return nil }
func (nopWriter) WriteBlob([]byte) error                 { return nil }
func (nopWriter) BeginList() error                       { return nil }
func (nopWriter) EndList() error                         { return nil }
func (nopWriter) BeginSexp() error                       { return nil }
func (nopWriter) EndSexp() error                         { return nil }
func (nopWriter) BeginStruct() error                     { return nil }
func (nopWriter) EndStruct() error                       { return nil }
func (nopWriter) Finish() error                          { return nil }
func (nopWriter) IsInStruct() bool                       { return false }
