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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFindByName(t *testing.T, st SymbolTable, sym string, expected uint64) {
	t.Run("FindByName("+sym+")", func(t *testing.T) {
		actual, ok := st.FindByName(sym)
		if expected == 0 {
			require.False(t, ok)
		} else {
			require.True(t, ok)
			assert.Equal(t, expected, actual)
		}
	})
}

func testFindByID(t *testing.T, st SymbolTable, id uint64, expected string) {
	t.Run(fmt.Sprintf("FindByID(%v)", id), func(t *testing.T) {
		actual, ok := st.FindByID(id)
		if expected == "" {
			require.False(t, ok)
		} else {
			require.True(t, ok)
			assert.Equal(t, expected, actual)
		}
	})
}

func testFind(t *testing.T, st SymbolTable, sym string, expected *SymbolToken) {
	t.Run("Find("+sym+")", func(t *testing.T) {
		actual := st.Find(sym)
		if expected == nil {
			assert.Nil(t, actual)
		} else {
			require.NotNil(t, actual)
			assert.True(t, expected.Equal(*actual))
		}
	})
}

func testString(t *testing.T, st SymbolTable, expected string) {
	t.Run("String()", func(t *testing.T) {
		assert.Equal(t, expected, st.String())
	})
}

func TestSharedSymbolTable(t *testing.T) {
	st := NewSharedSymbolTable("test", 2, []string{
		"abc",
		"def",
		"foo'bar",
		"null",
		"def",
		"ghi",
	})

	assert.Equal(t, "test", st.Name())
	assert.Equal(t, 2, st.Version())
	assert.Equal(t, uint64(6), st.MaxID())

	testFindByName(t, st, "def", 2)
	testFindByName(t, st, "null", 4)
	testFindByName(t, st, "bogus", 0)

	testFindByID(t, st, 0, "")
	testFindByID(t, st, 2, "def")
	testFindByID(t, st, 4, "null")
	testFindByID(t, st, 7, "")

	tok := NewSymbolTokenFromString("def")
	testFind(t, st, "def", &tok)
	testFind(t, st, "bogus", nil)

	testString(t, st, `$ion_shared_symbol_table::{name:"test",version:2,symbols:["abc","def","foo'bar","null","def","ghi"]}`)
}

func TestSharedSymbolTableAdjust(t *testing.T) {
	st := NewSharedSymbolTable("test", 1, []string{"abc", "def", "ghi"})

	truncated := st.Adjust(2)
	assert.Equal(t, uint64(2), truncated.MaxID())
	testFindByName(t, truncated, "abc", 1)
	testFindByName(t, truncated, "ghi", 0)

	padded := st.Adjust(5)
	assert.Equal(t, uint64(5), padded.MaxID())
	testFindByName(t, padded, "ghi", 3)
	testFindByID(t, padded, 5, "")
}

func TestLocalSymbolTable(t *testing.T) {
	st := NewLocalSymbolTable(nil, []string{"foo", "bar"})

	assert.Equal(t, uint64(11), st.MaxID())

	testFindByName(t, st, "$ion", 1)
	testFindByName(t, st, "foo", 10)
	testFindByName(t, st, "bar", 11)
	testFindByName(t, st, "bogus", 0)

	testFindByID(t, st, 0, "")
	testFindByID(t, st, 1, "$ion")
	testFindByID(t, st, 10, "foo")
	testFindByID(t, st, 11, "bar")
	testFindByID(t, st, 12, "")

	testString(t, st, `$ion_symbol_table::{symbols:["foo","bar"]}`)
}

func TestLocalSymbolTableWithImports(t *testing.T) {
	shared := NewSharedSymbolTable("shared", 1, []string{
		"foo",
		"bar",
	})
	imports := []SharedSymbolTable{shared}

	st := NewLocalSymbolTable(imports, []string{
		"foo2",
		"bar2",
	})

	assert.Equal(t, uint64(13), st.MaxID())

	testFindByName(t, st, "$ion", 1)
	testFindByName(t, st, "$ion_shared_symbol_table", 9)
	testFindByName(t, st, "foo", 10)
	testFindByName(t, st, "bar", 11)
	testFindByName(t, st, "foo2", 12)
	testFindByName(t, st, "bar2", 13)
	testFindByName(t, st, "bogus", 0)

	testFindByID(t, st, 0, "")
	testFindByID(t, st, 1, "$ion")
	testFindByID(t, st, 9, "$ion_shared_symbol_table")
	testFindByID(t, st, 10, "foo")
	testFindByID(t, st, 11, "bar")
	testFindByID(t, st, 12, "foo2")
	testFindByID(t, st, 13, "bar2")
	testFindByID(t, st, 14, "")

	testString(t, st, `$ion_symbol_table::{imports:[{name:"shared",version:1,max_id:2}],symbols:["foo2","bar2"]}`)
}

func TestSymbolTableBuilder(t *testing.T) {
	b := NewSymbolTableBuilder()

	id, ok := b.Add("foo")
	assert.True(t, ok)
	assert.Equal(t, uint64(10), id)

	id, ok = b.Add("bar")
	assert.True(t, ok)
	assert.Equal(t, uint64(11), id)

	// Adding an existing symbol returns its id without growing the table.
	id, ok = b.Add("foo")
	assert.False(t, ok)
	assert.Equal(t, uint64(10), id)

	// System symbols resolve without being re-interned.
	id, ok = b.Add("name")
	assert.False(t, ok)
	assert.Equal(t, uint64(4), id)

	st := b.Build()
	assert.Equal(t, uint64(11), st.MaxID())
	testFindByName(t, st, "foo", 10)
	testFindByName(t, st, "bar", 11)
}

func TestEmptyLocalSymbolTableWriteTo(t *testing.T) {
	st := NewLocalSymbolTable(nil, nil)

	// With nothing beyond the system import there is nothing worth writing.
	assert.Equal(t, "", st.String())
}
