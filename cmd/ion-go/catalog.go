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

package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"

	"github.com/ion-works/ion-go/ion"
)

// A catalogManifest declares the shared symbol tables available when
// decoding inputs, e.g.
//
//	[[table]]
//	name = "com.example.app"
//	version = 2
//	symbols = ["id", "name", "created_at"]
type catalogManifest struct {
	Tables []tableManifest `toml:"table"`
}

type tableManifest struct {
	Name    string   `toml:"name"`
	Version int      `toml:"version"`
	Symbols []string `toml:"symbols"`
}

// loadCatalog reads a TOML manifest and builds a catalog from the shared
// symbol tables it declares.
func loadCatalog(path string) (ion.Catalog, error) {
	var manifest catalogManifest
	if _, err := toml.DecodeFile(path, &manifest); err != nil {
		return nil, fmt.Errorf("reading catalog manifest %v: %w", path, err)
	}

	var ssts []ion.SharedSymbolTable
	for _, t := range manifest.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("catalog manifest %v: table with no name", path)
		}
		if t.Version < 1 {
			t.Version = 1
		}
		ssts = append(ssts, ion.NewSharedSymbolTable(t.Name, t.Version, t.Symbols))
		log.Debug().
			Str("name", t.Name).
			Int("version", t.Version).
			Int("symbols", len(t.Symbols)).
			Msg("loaded shared symbol table")
	}

	return ion.NewCatalog(ssts...), nil
}
