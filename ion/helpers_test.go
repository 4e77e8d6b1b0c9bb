package ion

import (
	"encoding/hex"
	"strings"
)

func newString(s string) *string {
	return &s
}

func fmtbytes(bs []byte) string {
	buf := strings.Builder{}
	buf.WriteByte('[')
	for i, b := range bs {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(hex.EncodeToString([]byte{b}))
	}
	buf.WriteByte(']')
	return buf.String()
}
