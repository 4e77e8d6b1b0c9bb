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

// readLocalSymbolTable decodes a $ion_symbol_table struct the reader is
// currently positioned on and returns the local table it declares. Imports
// are resolved against cat; unresolvable imports become placeholders that
// reserve their max_id slots.
func readLocalSymbolTable(r Reader, cat Catalog) (SymbolTable, error) {
	if err := r.StepIn(); err != nil {
		return nil, err
	}

	var imps []SharedSymbolTable
	var syms []string
	seenImports := false
	seenSymbols := false

	for r.Next() {
		name, err := r.FieldName()
		if err != nil {
			return nil, err
		}
		if name == nil || name.Text == nil {
			return nil, &SyntaxError{Msg: "symbol table field has no name"}
		}

		switch *name.Text {
		case "imports":
			if seenImports {
				return nil, &SyntaxError{Msg: "multiple imports fields in symbol table"}
			}
			seenImports = true
			imps, err = readImports(r, cat)
		case "symbols":
			if seenSymbols {
				return nil, &SyntaxError{Msg: "multiple symbols fields in symbol table"}
			}
			seenSymbols = true
			syms, err = readSymbolList(r)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := r.StepOut(); err != nil {
		return nil, err
	}

	return NewLocalSymbolTable(imps, syms), nil
}

// readImports decodes the imports field. The symbol $ion_symbol_table (or
// id 3) means "extend the current table": the active table's imports and
// local symbols are carried over so already-assigned ids stay stable.
func readImports(r Reader, cat Catalog) ([]SharedSymbolTable, error) {
	if r.Type() == SymbolType {
		tok, err := r.SymbolValue()
		if err != nil {
			return nil, err
		}
		if tok != nil && isSymbolTableMarker(*tok) {
			cur := r.SymbolTable()
			if cur == nil || cur == SymbolTable(V1SystemSymbolTable) {
				return nil, nil
			}
			carry := NewSharedSymbolTable("", 0, cur.Symbols())
			return append(cur.Imports(), carry), nil
		}
	}

	if r.Type() != ListType || r.IsNull() {
		return nil, nil
	}
	if err := r.StepIn(); err != nil {
		return nil, err
	}

	var imps []SharedSymbolTable
	for r.Next() {
		imp, err := readImport(r, cat)
		if err != nil {
			return nil, err
		}
		if imp != nil {
			imps = append(imps, imp)
		}
	}

	err := r.StepOut()
	return imps, err
}

func isSymbolTableMarker(tok SymbolToken) bool {
	if tok.Text != nil {
		return *tok.Text == ionSymbolTableText
	}
	return tok.SID == symbolIDSymbolTable
}

// readImport decodes one import descriptor struct.
func readImport(r Reader, cat Catalog) (SharedSymbolTable, error) {
	if r.Type() != StructType || r.IsNull() {
		return nil, nil
	}
	if err := r.StepIn(); err != nil {
		return nil, err
	}

	name := ""
	version := -1
	maxID := int64(-1)

	for r.Next() {
		f, err := r.FieldName()
		if err != nil {
			return nil, err
		}
		if f == nil || f.Text == nil {
			continue
		}

		switch *f.Text {
		case "name":
			if r.Type() == StringType && !r.IsNull() {
				val, err := r.StringValue()
				if err != nil {
					return nil, err
				}
				if val != nil {
					name = *val
				}
			}
		case "version":
			if r.Type() == IntType && !r.IsNull() {
				val, err := r.Int64Value()
				if err != nil {
					return nil, err
				}
				version = int(*val)
			}
		case "max_id":
			if r.Type() == IntType && !r.IsNull() {
				val, err := r.Int64Value()
				if err != nil {
					return nil, err
				}
				maxID = *val
			}
		}
	}

	if err := r.StepOut(); err != nil {
		return nil, err
	}

	if name == "" || name == symbolTextIon {
		return nil, nil
	}
	if version < 1 {
		version = 1
	}

	var imp SharedSymbolTable
	if cat != nil {
		imp = cat.FindExact(name, version)
		if imp == nil {
			imp = cat.FindLatest(name)
		}
	}

	if maxID < 0 {
		// Without max_id the importer cannot assign stable ids unless it
		// has the exact table on hand.
		if imp == nil || imp.Version() != version {
			return nil, fmt.Errorf("ion: import %v/%v has no max_id and no exact catalog match", name, version)
		}
		maxID = int64(imp.MaxID())
	}

	if imp == nil {
		return &placeholderSST{name: name, version: version, maxID: uint64(maxID)}, nil
	}
	return imp.Adjust(uint64(maxID)), nil
}

// readSymbolList decodes the symbols field. Non-string entries and null
// strings claim an id but have unknown text.
func readSymbolList(r Reader) ([]string, error) {
	if r.Type() != ListType || r.IsNull() {
		return nil, nil
	}
	if err := r.StepIn(); err != nil {
		return nil, err
	}

	var syms []string
	for r.Next() {
		if r.Type() == StringType && !r.IsNull() {
			val, err := r.StringValue()
			if err != nil {
				return nil, err
			}
			if val != nil {
				syms = append(syms, *val)
				continue
			}
		}
		syms = append(syms, "")
	}

	err := r.StepOut()
	return syms, err
}
