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

// UnknownSID marks a SymbolToken that carries no symbol id.
const UnknownSID = -1

// An ImportSource names the slot of a shared symbol table that a symbol
// token was imported from.
type ImportSource struct {
	// Table is the name of the shared symbol table.
	Table string
	// SID is the id of the symbol text within that shared table.
	SID int64
}

// Equal reports whether two import sources name the same slot.
func (is *ImportSource) Equal(o *ImportSource) bool {
	if is == nil || o == nil {
		return is == o
	}
	return is.Table == o.Table && is.SID == o.SID
}

// A SymbolToken is the symbolic value used for annotations, struct field
// names, and symbol values. Text is nil when the token's text is unknown:
// either symbol zero ($0) or an id that the current symbol table cannot
// resolve. Such tokens are data, not errors; they round-trip as $<sid>.
type SymbolToken struct {
	// Text of the token, or nil if unknown.
	Text *string
	// SID is the local symbol id, or UnknownSID.
	SID int64
	// Source is the shared-table slot this token was imported from, if any.
	Source *ImportSource
}

// symbolTokenUndefined is the sentinel for "no token here"; note that the
// zero SymbolToken is $0, which is a legal value.
var symbolTokenUndefined = SymbolToken{SID: UnknownSID}

// NewSymbolTokenFromString makes a token with the given text and no id.
func NewSymbolTokenFromString(text string) SymbolToken {
	return SymbolToken{Text: &text, SID: UnknownSID}
}

// newSymbolToken makes a token with the given text, carrying the id the
// given symbol table assigns to that text (if any).
func newSymbolToken(st SymbolTable, text string) SymbolToken {
	if st != nil {
		if sid, ok := st.FindByName(text); ok {
			return SymbolToken{Text: &text, SID: int64(sid)}
		}
	}
	return SymbolToken{Text: &text, SID: UnknownSID}
}

// String implements fmt.Stringer for SymbolToken.
func (st SymbolToken) String() string {
	text := "nil"
	if st.Text != nil {
		text = fmt.Sprintf("%q", *st.Text)
	}
	if st.Source == nil {
		return fmt.Sprintf("{%v %v nil}", text, st.SID)
	}
	return fmt.Sprintf("{%v %v {%q %v}}", text, st.SID, st.Source.Table, st.Source.SID)
}

// Equal reports whether two tokens denote the same symbol. Tokens with known
// text compare by text alone; tokens without text compare by id and source.
func (st SymbolToken) Equal(o SymbolToken) bool {
	if st.Text != nil && o.Text != nil {
		return *st.Text == *o.Text
	}
	if st.Text == nil && o.Text == nil {
		return st.SID == o.SID && st.Source.Equal(o.Source)
	}
	return false
}
