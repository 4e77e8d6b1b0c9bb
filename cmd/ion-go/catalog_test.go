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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeManifest(t, `
[[table]]
name = "com.example.app"
version = 2
symbols = ["id", "name", "created_at"]

[[table]]
name = "other"
symbols = ["x"]
`)

	cat, err := loadCatalog(path)
	require.NoError(t, err)

	st := cat.FindExact("com.example.app", 2)
	require.NotNil(t, st)
	assert.Equal(t, uint64(3), st.MaxID())

	// A table with no version defaults to version 1.
	st = cat.FindLatest("other")
	require.NotNil(t, st)
	assert.Equal(t, 1, st.Version())
}

func TestLoadCatalogUnnamedTable(t *testing.T) {
	path := writeManifest(t, `
[[table]]
symbols = ["x"]
`)

	_, err := loadCatalog(path)
	assert.Error(t, err)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := loadCatalog(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
