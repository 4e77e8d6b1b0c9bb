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
	"fmt"
	"io"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

// A Catalog supplies shared symbol tables to readers that encounter
// imports by reference.
type Catalog interface {
	// FindExact returns the table with the given name and version, or nil.
	FindExact(name string, version int) SharedSymbolTable
	// FindLatest returns the highest-versioned table with the given name,
	// or nil.
	FindLatest(name string) SharedSymbolTable
}

// A basicCatalog is a fixed in-memory catalog.
type basicCatalog struct {
	ssts   map[string]SharedSymbolTable
	latest map[string]SharedSymbolTable
}

// NewCatalog creates an immutable catalog holding the given tables.
func NewCatalog(ssts ...SharedSymbolTable) Catalog {
	cat := &basicCatalog{
		ssts:   make(map[string]SharedSymbolTable),
		latest: make(map[string]SharedSymbolTable),
	}
	for _, sst := range ssts {
		key := catalogKey(sst.Name(), sst.Version())
		cat.ssts[key] = sst

		cur, ok := cat.latest[sst.Name()]
		if !ok || sst.Version() > cur.Version() {
			cat.latest[sst.Name()] = sst
		}
	}
	return cat
}

func (c *basicCatalog) FindExact(name string, version int) SharedSymbolTable {
	return c.ssts[catalogKey(name, version)]
}

func (c *basicCatalog) FindLatest(name string) SharedSymbolTable {
	return c.latest[name]
}

func catalogKey(name string, version int) string {
	return fmt.Sprintf("%v/%v", name, version)
}

// A SharedCatalog is a catalog that may be populated while readers on
// other goroutines are resolving imports against it. Each reader still
// owns its own stream state; only table lookup is shared.
type SharedCatalog struct {
	ssts   *xsync.Map[string, SharedSymbolTable]
	latest *xsync.Map[string, SharedSymbolTable]
}

var _ Catalog = &SharedCatalog{}

// NewSharedCatalog creates a mutable, concurrency-safe catalog holding the
// given tables.
func NewSharedCatalog(ssts ...SharedSymbolTable) *SharedCatalog {
	cat := &SharedCatalog{
		ssts:   xsync.NewMap[string, SharedSymbolTable](),
		latest: xsync.NewMap[string, SharedSymbolTable](),
	}
	for _, sst := range ssts {
		cat.Add(sst)
	}
	return cat
}

// Add registers a shared symbol table.
func (c *SharedCatalog) Add(sst SharedSymbolTable) {
	c.ssts.Store(catalogKey(sst.Name(), sst.Version()), sst)

	c.latest.Compute(sst.Name(),
		func(cur SharedSymbolTable, loaded bool) (SharedSymbolTable, xsync.ComputeOp) {
			if loaded && cur.Version() >= sst.Version() {
				return cur, xsync.CancelOp
			}
			return sst, xsync.UpdateOp
		})
}

// FindExact returns the table with the given name and version, or nil.
func (c *SharedCatalog) FindExact(name string, version int) SharedSymbolTable {
	sst, _ := c.ssts.Load(catalogKey(name, version))
	return sst
}

// FindLatest returns the highest-versioned table with the given name, or nil.
func (c *SharedCatalog) FindLatest(name string) SharedSymbolTable {
	sst, _ := c.latest.Load(name)
	return sst
}

// A System bundles a catalog with reader and decoder constructors so that
// callers resolving against the same shared tables don't have to thread
// the catalog everywhere.
type System struct {
	Catalog Catalog
}

// NewReader creates a reader resolving imports against this system's catalog.
func (s System) NewReader(in io.Reader) Reader {
	return NewReaderCat(in, s.Catalog)
}

// NewReaderString creates a reader over a string.
func (s System) NewReaderString(in string) Reader {
	return NewReaderCat(strings.NewReader(in), s.Catalog)
}

// NewReaderBytes creates a reader over a byte slice.
func (s System) NewReaderBytes(in []byte) Reader {
	return NewReaderCat(bytes.NewReader(in), s.Catalog)
}

// Unmarshal decodes Ion data into v using this system's catalog.
func (s System) Unmarshal(data []byte, v interface{}) error {
	return NewDecoder(s.NewReaderBytes(data)).DecodeTo(v)
}

// UnmarshalString decodes Ion text into v using this system's catalog.
func (s System) UnmarshalString(data string, v interface{}) error {
	return NewDecoder(s.NewReaderString(data)).DecodeTo(v)
}
