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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicCatalog(t *testing.T) {
	v1 := NewSharedSymbolTable("test", 1, []string{"a"})
	v2 := NewSharedSymbolTable("test", 2, []string{"a", "b"})

	cat := NewCatalog(v1, v2)

	assert.Equal(t, v1, cat.FindExact("test", 1))
	assert.Equal(t, v2, cat.FindExact("test", 2))
	assert.Nil(t, cat.FindExact("test", 3))
	assert.Nil(t, cat.FindExact("bogus", 1))

	assert.Equal(t, v2, cat.FindLatest("test"))
	assert.Nil(t, cat.FindLatest("bogus"))
}

func TestSharedCatalog(t *testing.T) {
	v1 := NewSharedSymbolTable("test", 1, []string{"a"})

	cat := NewSharedCatalog(v1)
	assert.Equal(t, v1, cat.FindExact("test", 1))
	assert.Equal(t, v1, cat.FindLatest("test"))

	v2 := NewSharedSymbolTable("test", 2, []string{"a", "b"})
	cat.Add(v2)
	assert.Equal(t, v2, cat.FindLatest("test"))
	assert.Equal(t, v1, cat.FindExact("test", 1))
}

func TestSharedCatalogConcurrent(t *testing.T) {
	cat := NewSharedCatalog()

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(version int) {
			defer wg.Done()
			cat.Add(NewSharedSymbolTable("test", version, []string{"a"}))
		}(i)
	}
	wg.Wait()

	for i := 1; i <= 8; i++ {
		assert.NotNil(t, cat.FindExact("test", i))
	}
	require.NotNil(t, cat.FindLatest("test"))
	assert.Equal(t, 8, cat.FindLatest("test").Version())
}

func TestCatalogReadValue(t *testing.T) {
	shared := NewSharedSymbolTable("shared", 1, []string{"foo", "bar"})

	// A binary stream whose local symbol table imports "shared".
	buf := writeCatalogStream(t, shared)

	r := NewReaderCat(bytes.NewReader(buf), NewCatalog(shared))
	require.True(t, r.Next())

	sym, err := r.SymbolValue()
	require.NoError(t, err)
	require.NotNil(t, sym.Text)
	assert.Equal(t, "bar", *sym.Text)

	assert.False(t, r.Next())
	require.NoError(t, r.Err())
}

func TestSystem(t *testing.T) {
	shared := NewSharedSymbolTable("shared", 1, []string{"foo", "bar"})
	sys := System{Catalog: NewCatalog(shared)}

	buf := writeCatalogStream(t, shared)

	var sym SymbolToken
	require.NoError(t, sys.Unmarshal(buf, &sym))
	require.NotNil(t, sym.Text)
	assert.Equal(t, "bar", *sym.Text)

	r := sys.NewReaderString("42")
	require.True(t, r.Next())
	assert.Equal(t, IntType, r.Type())
}

func writeCatalogStream(t *testing.T, ssts ...SharedSymbolTable) []byte {
	buf := bytes.Buffer{}
	w := NewBinaryWriter(&buf, ssts...)
	require.NoError(t, w.WriteSymbolFromString("bar"))
	require.NoError(t, w.Finish())
	return buf.Bytes()
}
