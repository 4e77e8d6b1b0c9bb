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

// Package ion implements a streaming codec for the Ion data serialization
// format, in both its human-readable text form and its compact binary form.
//
// A Reader is a pull-based cursor over a stream of Ion values. It exposes the
// type, annotations, and (inside a struct) field name of the current value
// before the value itself is materialized; container values are navigated
// with StepIn and StepOut rather than being decoded eagerly.
//
//	r := ion.NewReaderString("foo::{a: 1, b: [true, null]}")
//	for r.Next() {
//		// inspect r.Type(), r.Annotations(), scalar accessors...
//	}
//	if err := r.Err(); err != nil {
//		// handle it
//	}
//
// A Writer is the mirror image; NewTextWriter and NewBinaryWriter construct
// writers for the two encodings. Marshal, Unmarshal, Encoder and Decoder
// provide reflection-based bindings between Ion data and Go values on top of
// the streaming layer.
//
// Symbol tables are handled transparently: readers install local symbol
// tables encountered in the stream (resolving shared-table imports against
// an optional Catalog), and binary writers intern symbols into a local table
// that is emitted ahead of the data.
package ion
