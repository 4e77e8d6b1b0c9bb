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
	"math/big"
	"time"
)

// This file holds the primitive encoders for the binary format: fixed-width
// big-endian UInts and sign-magnitude Ints, variable-length VarUInts and
// VarInts (7 bits per byte, high bit set on the final byte), and the
// type-descriptor tag. Each encoder has a matching length function so the
// writer can size containers before emitting them.

// uintLen returns the length in bytes of the UInt encoding of v.
func uintLen(v uint64) uint64 {
	length := uint64(1)
	v >>= 8

	for v > 0 {
		length++
		v >>= 8
	}

	return length
}

// appendUint appends a big-endian UInt to b.
func appendUint(b []byte, v uint64) []byte {
	var buf [8]byte

	i := 8
	for {
		i--
		buf[i] = byte(v & 0xFF)
		v >>= 8
		if v == 0 {
			break
		}
	}

	return append(b, buf[i:]...)
}

// intLen returns the length in bytes of the Int encoding of n. Zero
// encodes in zero bytes.
func intLen(n int64) uint64 {
	if n == 0 {
		return 0
	}

	mag := uint64(n)
	if n < 0 {
		mag = uint64(-n)
	}

	length := uintLen(mag)

	// If the high bit of the magnitude is set, the sign needs a byte of
	// its own.
	if mag>>(8*(length-1)) >= 0x80 {
		length++
	}

	return length
}

// appendInt appends a big-endian sign-magnitude Int to b.
func appendInt(b []byte, n int64) []byte {
	if n == 0 {
		return b
	}

	neg := false
	mag := uint64(n)

	if n < 0 {
		neg = true
		mag = uint64(-n)
	}

	var buf [9]byte
	bits := buf[:0]

	if mag>>(8*(uintLen(mag)-1)) >= 0x80 {
		bits = append(bits, 0)
	}
	bits = appendUint(bits, mag)

	if neg {
		bits[0] |= 0x80
	}

	return append(b, bits...)
}

// bigIntLen returns the length in bytes of the Int encoding of v.
func bigIntLen(v *big.Int) uint64 {
	if v.Sign() == 0 {
		return 0
	}

	length := uint64(len(v.Bytes()))
	if v.Bytes()[0] >= 0x80 {
		length++
	}

	return length
}

// appendBigInt appends a big-endian sign-magnitude Int to b.
func appendBigInt(b []byte, v *big.Int) []byte {
	if v.Sign() == 0 {
		return b
	}

	bits := v.Bytes()

	start := len(b)
	if bits[0] >= 0x80 {
		b = append(b, 0)
	}
	b = append(b, bits...)

	if v.Sign() < 0 {
		b[start] |= 0x80
	}

	return b
}

// varUintLen returns the length in bytes of the VarUInt encoding of v.
func varUintLen(v uint64) uint64 {
	length := uint64(1)
	v >>= 7

	for v > 0 {
		length++
		v >>= 7
	}

	return length
}

// appendVarUint appends a VarUInt to b; the high bit marks the final byte.
func appendVarUint(b []byte, v uint64) []byte {
	var buf [10]byte

	i := 10
	buf[9] = 0x80 | byte(v&0x7F)
	v >>= 7
	i--

	for v > 0 {
		i--
		buf[i] = byte(v & 0x7F)
		v >>= 7
	}

	return append(b, buf[i:]...)
}

// varIntLen returns the length in bytes of the VarInt encoding of v. The
// first byte holds the sign bit and six bits of magnitude.
func varIntLen(v int64) uint64 {
	mag := uint64(v)
	if v < 0 {
		mag = uint64(-v)
	}

	length := uint64(1)
	mag >>= 6

	for mag > 0 {
		length++
		mag >>= 7
	}

	return length
}

// appendVarInt appends a VarInt to b.
func appendVarInt(b []byte, v int64) []byte {
	if v == 0 {
		return append(b, 0x80)
	}

	signbit := byte(0)
	mag := uint64(v)
	if v < 0 {
		signbit = 0x40
		mag = uint64(-v)
	}

	if mag < 0x40 {
		return append(b, 0x80|signbit|byte(mag))
	}

	var buf [10]byte

	i := 10
	i--
	buf[i] = 0x80 | byte(mag&0x7F)
	mag >>= 7

	for mag >= 0x40 {
		i--
		buf[i] = byte(mag & 0x7F)
		mag >>= 7
	}

	i--
	buf[i] = signbit | byte(mag)

	return append(b, buf[i:]...)
}

// tagLen returns the length in bytes of a tag with the given value length.
func tagLen(length uint64) uint64 {
	if length < 0x0E {
		return 1
	}
	return 1 + varUintLen(length)
}

// appendTag appends a tag byte (high nibble from code, low nibble the
// length) to b, followed by a VarUInt length for long values.
func appendTag(b []byte, code byte, length uint64) []byte {
	if length < 0x0E {
		return append(b, code|byte(length))
	}

	b = append(b, code|0x0E)
	return appendVarUint(b, length)
}

// timestampLen returns the length in bytes of the timestamp encoding,
// exclusive of its tag.
func timestampLen(ts Timestamp) uint64 {
	utc := ts.DateTime.In(time.UTC)

	// Offset VarInt (negative zero for unknown) plus the year.
	length := uint64(1)
	if ts.kind != TimezoneUnspecified {
		_, offset := ts.DateTime.Zone()
		length = varIntLen(int64(offset / 60))
	}
	length += varUintLen(uint64(utc.Year()))

	if ts.precision >= Month {
		length += varUintLen(uint64(utc.Month()))
	}
	if ts.precision >= Day {
		length += varUintLen(uint64(utc.Day()))
	}
	if ts.precision >= Minute {
		length += varUintLen(uint64(utc.Hour()))
		length += varUintLen(uint64(utc.Minute()))
	}
	if ts.precision >= Second {
		length += varUintLen(uint64(utc.Second()))
	}

	if ts.precision >= Nanosecond {
		ns := ts.TruncatedNanoseconds()
		if ts.fracDigits > 0 || ns > 0 {
			length += varIntLen(int64(ts.fracDigits))
			length += intLen(int64(ns))
		}
	}

	return length
}

// appendTimestamp appends the timestamp encoding to b: offset in minutes,
// then as many time components as the precision calls for, then the
// fractional seconds as an exponent-coefficient pair.
func appendTimestamp(b []byte, ts Timestamp) []byte {
	utc := ts.DateTime.In(time.UTC)

	if ts.kind == TimezoneUnspecified {
		// Negative-zero offset: the local offset is unknown.
		b = append(b, 0xC0)
	} else {
		_, offset := ts.DateTime.Zone()
		b = appendVarInt(b, int64(offset/60))
	}

	b = appendVarUint(b, uint64(utc.Year()))

	if ts.precision >= Month {
		b = appendVarUint(b, uint64(utc.Month()))
	}
	if ts.precision >= Day {
		b = appendVarUint(b, uint64(utc.Day()))
	}
	if ts.precision >= Minute {
		b = appendVarUint(b, uint64(utc.Hour()))
		b = appendVarUint(b, uint64(utc.Minute()))
	}
	if ts.precision >= Second {
		b = appendVarUint(b, uint64(utc.Second()))
	}

	if ts.precision >= Nanosecond {
		ns := ts.TruncatedNanoseconds()
		if ts.fracDigits > 0 || ns > 0 {
			b = appendVarInt(b, -int64(ts.fracDigits))
			b = appendInt(b, int64(ns))
		}
	}

	return b
}
