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
	"reflect"
	"strings"
)

// A field describes one reflectively-accessed field of a struct type.
type field struct {
	name        string
	typ         reflect.Type
	path        []int
	omitEmpty   bool
	hint        Type
	annotations bool
}

// applyOpts applies the comma-separated options from an ion tag.
func (f *field) applyOpts(opts string) {
	for opts != "" {
		var o string

		if i := strings.Index(opts, ","); i >= 0 {
			o, opts = opts[:i], opts[i+1:]
		} else {
			o, opts = opts, ""
		}

		switch o {
		case "omitempty":
			f.omitEmpty = true
		case "symbol":
			f.hint = SymbolType
		case "clob":
			f.hint = ClobType
		case "sexp":
			f.hint = SexpType
		case "annotations":
			f.annotations = true
		}
	}
}

// A fieldWalker collects the fields of a type, flattening embedded structs.
type fieldWalker struct {
	fields []field
	seen   map[string]bool
}

// fieldsFor returns the serializable fields of the given struct type.
func fieldsFor(t reflect.Type) []field {
	fw := fieldWalker{seen: map[string]bool{}}
	fw.walk(t, nil)
	return fw.fields
}

func (fw *fieldWalker) walk(t reflect.Type, path []int) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !visible(&sf) {
			continue
		}

		tag := sf.Tag.Get("ion")
		if tag == "-" {
			continue
		}
		name, opts := splitIonTag(tag)

		newpath := make([]int, len(path)+1)
		copy(newpath, path)
		newpath[len(path)] = i

		ft := sf.Type
		if ft.Name() == "" && ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}

		if name == "" && sf.Anonymous && ft.Kind() == reflect.Struct {
			// Flatten the embedded struct's fields into this one.
			fw.walk(ft, newpath)
			continue
		}

		if name == "" {
			name = sf.Name
		}

		if fw.seen[name] {
			panic(fmt.Sprintf("too many fields named %v", name))
		}
		fw.seen[name] = true

		f := field{
			name: name,
			typ:  ft,
			path: newpath,
		}
		f.applyOpts(opts)

		fw.fields = append(fw.fields, f)
	}
}

// visible reports whether the given field shows up in the output.
func visible(sf *reflect.StructField) bool {
	if sf.Anonymous {
		t := sf.Type
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t.Kind() == reflect.Struct {
			// Embedded structs contribute their fields even when the
			// struct type itself is unexported.
			return true
		}
	}
	return sf.PkgPath == ""
}

// splitIonTag splits an `ion:"..."` tag into its name and options.
func splitIonTag(tag string) (string, string) {
	if idx := strings.Index(tag, ","); idx != -1 {
		return tag[:idx], tag[idx+1:]
	}
	return tag, ""
}
