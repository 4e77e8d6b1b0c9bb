package ion

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaf(t *testing.T) {
	l := leaf([]byte{0x10, 0x11})
	assert.Equal(t, uint64(2), l.Len())

	buf := bytes.Buffer{}
	require.NoError(t, l.EmitTo(&buf))
	assert.Equal(t, []byte{0x10, 0x11}, buf.Bytes())
}

func TestGroup(t *testing.T) {
	g := &group{}
	assert.Equal(t, uint64(0), g.Len())

	g.Append(leaf([]byte{0x20}))
	g.Append(leaf([]byte{0x21, 0xFF}))
	assert.Equal(t, uint64(3), g.Len())

	buf := bytes.Buffer{}
	require.NoError(t, g.EmitTo(&buf))
	assert.Equal(t, []byte{0x20, 0x21, 0xFF}, buf.Bytes())
}

func TestTaggedShort(t *testing.T) {
	c := &tagged{code: 0xB0}
	c.Append(leaf([]byte{0x20}))
	c.Append(leaf([]byte{0x21, 0xFF}))

	// One tag byte plus three bytes of contents.
	assert.Equal(t, uint64(4), c.Len())

	buf := bytes.Buffer{}
	require.NoError(t, c.EmitTo(&buf))
	assert.Equal(t, []byte{0xB3, 0x20, 0x21, 0xFF}, buf.Bytes())
}

func TestTaggedLong(t *testing.T) {
	c := &tagged{code: 0xB0}
	for i := 0; i < 7; i++ {
		c.Append(leaf([]byte{0x21, byte(i)}))
	}

	// Contents too long for the tag nibble; a VarUInt length follows it.
	assert.Equal(t, uint64(16), c.Len())

	buf := bytes.Buffer{}
	require.NoError(t, c.EmitTo(&buf))
	assert.Equal(t, []byte{0xBE, 0x8E}, buf.Bytes()[:2])
	assert.Equal(t, 16, buf.Len())
}

func TestNestedTagged(t *testing.T) {
	inner := &tagged{code: 0xB0}
	inner.Append(leaf([]byte{0x20}))

	outer := &tagged{code: 0xD0}
	outer.Append(leaf([]byte{0x84}))
	outer.Append(inner)

	assert.Equal(t, uint64(4), outer.Len())

	buf := bytes.Buffer{}
	require.NoError(t, outer.EmitTo(&buf))
	assert.Equal(t, []byte{0xD3, 0x84, 0xB1, 0x20}, buf.Bytes())
}

func TestSegstack(t *testing.T) {
	s := segstack{}
	assert.Nil(t, s.peek())

	g := &group{}
	s.push(g)
	assert.Equal(t, segseq(g), s.peek())

	c := &tagged{code: 0xB0}
	s.push(c)
	assert.Equal(t, segseq(c), s.peek())

	s.pop()
	assert.Equal(t, segseq(g), s.peek())

	s.pop()
	assert.Nil(t, s.peek())

	assert.Panics(t, func() {
		s.pop()
	})
}
