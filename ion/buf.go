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
	"io"
)

// Binary values are prefixed by their length, and the length itself is
// variable-width, so neither can be written until the value is complete.
// Rather than shuffle bytes around, the binary writer serializes into a
// tree of segments and emits the whole thing once the lengths are known.

// A segment is a node in the partially-serialized tree.
type segment interface {
	Len() uint64
	EmitTo(w io.Writer) error
}

// A segseq is a segment that other segments can be appended to.
type segseq interface {
	segment
	Append(s segment)
}

var _ segment = leaf([]byte{})
var _ segseq = &group{}
var _ segseq = &tagged{}

// A leaf is fully serialized and can be emitted as-is.
type leaf []byte

func (l leaf) Len() uint64 {
	return uint64(len(l))
}

func (l leaf) EmitTo(w io.Writer) error {
	_, err := w.Write(l)
	return err
}

// A group is a run of segments emitted back to back. Top-level values sit
// in a group while the local symbol table is still accumulating.
type group struct {
	len  uint64
	kids []segment
}

func (g *group) Append(s segment) {
	g.len += s.Len()
	g.kids = append(g.kids, s)
}

func (g *group) Len() uint64 {
	return g.len
}

func (g *group) EmitTo(w io.Writer) error {
	for _, kid := range g.kids {
		if err := kid.EmitTo(w); err != nil {
			return err
		}
	}
	return nil
}

// A tagged group is preceded by a code+length tag.
type tagged struct {
	code byte
	group
}

func (t *tagged) Len() uint64 {
	if t.len < 0x0E {
		return t.len + 1
	}
	return t.len + varUintLen(t.len) + 1
}

func (t *tagged) EmitTo(w io.Writer) error {
	var arr [11]byte
	buf := arr[:0]
	buf = appendTag(buf, t.code, t.len)

	if _, err := w.Write(buf); err != nil {
		return err
	}
	return t.group.EmitTo(w)
}

// A segstack tracks open containers; the top of the stack is the sequence
// values are currently appended to. Popping a sequence appends it to the
// one below.
type segstack struct {
	arr []segseq
}

func (s *segstack) peek() segseq {
	if len(s.arr) == 0 {
		return nil
	}
	return s.arr[len(s.arr)-1]
}

func (s *segstack) push(seq segseq) {
	s.arr = append(s.arr, seq)
}

func (s *segstack) pop() {
	if len(s.arr) == 0 {
		panic("pop called on an empty stack")
	}
	s.arr = s.arr[:len(s.arr)-1]
}
