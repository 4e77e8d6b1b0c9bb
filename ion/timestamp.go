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
	"strings"
	"time"
)

// A TimestampPrecision marks the least-significant component an Ion
// timestamp actually carries; everything finer is unspecified rather
// than zero.
type TimestampPrecision uint8

const (
	// NoPrecision is the precision of an invalid or null timestamp.
	NoPrecision TimestampPrecision = iota
	// Year precision: 2006T.
	Year
	// Month precision: 2006-01T.
	Month
	// Day precision: 2006-01-02.
	Day
	// Minute precision: 2006-01-02T15:04Z.
	Minute
	// Second precision: 2006-01-02T15:04:05Z.
	Second
	// Nanosecond precision: seconds with a decimal fraction.
	Nanosecond
)

func (tp TimestampPrecision) String() string {
	switch tp {
	case NoPrecision:
		return "<no precision>"
	case Year:
		return "Year"
	case Month:
		return "Month"
	case Day:
		return "Day"
	case Minute:
		return "Minute"
	case Second:
		return "Second"
	case Nanosecond:
		return "Nanosecond"
	default:
		return fmt.Sprintf("<unknown precision %v>", uint8(tp))
	}
}

// layout returns the time.Format layout for this precision.
func (tp TimestampPrecision) layout(kind TimezoneKind, fracDigits uint8) string {
	switch tp {
	case Year:
		return "2006T"
	case Month:
		return "2006-01T"
	case Day:
		return "2006-01-02T"
	case Minute:
		if kind == TimezoneUnspecified {
			return "2006-01-02T15:04-07:00"
		}
		return "2006-01-02T15:04Z07:00"
	case Second:
		if kind == TimezoneUnspecified {
			return "2006-01-02T15:04:05-07:00"
		}
		return "2006-01-02T15:04:05Z07:00"
	case Nanosecond:
		layout := "2006-01-02T15:04:05"

		if fracDigits > 9 {
			fracDigits = 9
		}
		if fracDigits > 0 {
			layout += "." + strings.Repeat("9", int(fracDigits))
		}

		if kind == TimezoneUnspecified {
			return layout + "-07:00"
		}
		return layout + "Z07:00"
	}
	return time.RFC3339Nano
}

// A TimezoneKind distinguishes the three offset flavors a timestamp can
// carry in text form.
type TimezoneKind uint8

const (
	// TimezoneUnspecified marks timestamps with no known offset: dates of
	// day precision or coarser, and times with the negative-zero offset
	// (-00:00).
	TimezoneUnspecified TimezoneKind = iota

	// TimezoneUTC marks times with a Z or +00:00 offset.
	TimezoneUTC

	// TimezoneLocal marks times with a nonzero offset from UTC.
	TimezoneLocal
)

// A Timestamp is an Ion timestamp: a point (or span, at coarse precision)
// in time with an explicit precision and offset flavor. Two timestamps
// denoting the same instant at different precisions are distinct values.
type Timestamp struct {
	// DateTime carries the timestamp's components; components finer than
	// the precision are zero.
	DateTime   time.Time
	precision  TimestampPrecision
	kind       TimezoneKind
	fracDigits uint8
}

// NewDateTimestamp creates a timestamp of Day or coarser precision.
func NewDateTimestamp(dateTime time.Time, precision TimestampPrecision) Timestamp {
	return Timestamp{DateTime: dateTime, precision: precision, kind: TimezoneUnspecified}
}

// NewTimestamp creates a timestamp of the given precision.
func NewTimestamp(dateTime time.Time, precision TimestampPrecision, kind TimezoneKind) Timestamp {
	if precision <= Day {
		// Dates carry no timezone.
		kind = TimezoneUnspecified
	}
	return Timestamp{DateTime: dateTime, precision: precision, kind: kind}
}

// NewTimestampWithFractionalSeconds creates a sub-second-precision
// timestamp that remembers how many fractional digits it carries.
func NewTimestampWithFractionalSeconds(dateTime time.Time, precision TimestampPrecision, kind TimezoneKind, fracDigits uint8) Timestamp {
	if fracDigits > 9 {
		fracDigits = 9
	}
	return Timestamp{DateTime: dateTime, precision: precision, kind: kind, fracDigits: fracDigits}
}

// NewTimestampFromStr parses str at the given precision and kind.
func NewTimestampFromStr(str string, precision TimestampPrecision, kind TimezoneKind) (Timestamp, error) {
	fracDigits := uint8(0)

	if precision >= Nanosecond {
		if idx := strings.LastIndex(str, "."); idx != -1 {
			for i := idx + 1; i < len(str) && isDigit(int(str[i])); i++ {
				fracDigits++
			}
		}
	}

	dateTime, err := time.Parse(precision.layout(kind, fracDigits), str)
	if err != nil {
		return Timestamp{}, err
	}

	return NewTimestampWithFractionalSeconds(dateTime, precision, kind, fracDigits), nil
}

// tryNewTimestamp builds a timestamp from raw components, rejecting
// out-of-range values. time.Date silently normalizes (2000-01-32 becomes
// 2000-02-01), so the round trip is checked.
func tryNewTimestamp(comps [6]int, nsecs int, overflow bool, offsetMinutes int64, offsetKnown bool, precision TimestampPrecision, fracDigits uint8) (Timestamp, error) {
	date := time.Date(comps[0], time.Month(comps[1]), comps[2], comps[3], comps[4], comps[5], nsecs, time.UTC)
	if comps[0] != date.Year() || time.Month(comps[1]) != date.Month() || comps[2] != date.Day() ||
		comps[3] != date.Hour() || comps[4] != date.Minute() || comps[5] != date.Second() {
		return Timestamp{}, fmt.Errorf("ion: invalid timestamp component")
	}

	if overflow {
		date = date.Add(time.Second)
	}

	date = date.In(time.FixedZone("fixed", int(offsetMinutes)*60))

	switch {
	case precision <= Day:
		return NewDateTimestamp(date, precision), nil
	case !offsetKnown:
		return NewTimestampWithFractionalSeconds(date, precision, TimezoneUnspecified, fracDigits), nil
	case offsetMinutes == 0:
		return NewTimestampWithFractionalSeconds(date, precision, TimezoneUTC, fracDigits), nil
	default:
		return NewTimestampWithFractionalSeconds(date, precision, TimezoneLocal, fracDigits), nil
	}
}

// Precision returns the timestamp's precision.
func (ts Timestamp) Precision() TimestampPrecision {
	return ts.precision
}

// Kind returns the timestamp's timezone kind.
func (ts Timestamp) Kind() TimezoneKind {
	return ts.kind
}

// NumFractionalSeconds returns how many fractional-second digits the
// timestamp carries.
func (ts Timestamp) NumFractionalSeconds() uint8 {
	return ts.fracDigits
}

// String formats the timestamp in Ion text form.
func (ts Timestamp) String() string {
	out := ts.DateTime.Format(ts.precision.layout(ts.kind, ts.fracDigits))

	// time.Format drops an all-zero fraction; restore it so precision
	// survives the round trip.
	if ts.precision >= Nanosecond && ts.fracDigits > 0 && ts.DateTime.Nanosecond() == 0 {
		tIdx := strings.IndexAny(out, "Tt")
		if tIdx == -1 {
			return out
		}

		end := strings.LastIndexAny(out, "Z+")
		if end < tIdx {
			end = strings.LastIndex(out, "-")
		}
		if end > tIdx {
			out = out[:end] + "." + strings.Repeat("0", int(ts.fracDigits)) + out[end:]
		}
	}

	return out
}

// Equal reports component-wise equality: instant, precision, timezone
// kind, and fractional digit count all match.
func (ts Timestamp) Equal(o Timestamp) bool {
	return ts.DateTime.Equal(o.DateTime) &&
		ts.precision == o.precision &&
		ts.kind == o.kind &&
		ts.fracDigits == o.fracDigits
}

// Equivalent reports whether two timestamps share an instant and precision,
// ignoring timezone kind and digit count.
func (ts Timestamp) Equivalent(o Timestamp) bool {
	return ts.DateTime.Equal(o.DateTime) && ts.precision == o.precision
}

// TruncatedNanoseconds returns the nanosecond component with trailing
// zeros beyond the carried digits removed, for the binary encoding.
func (ts Timestamp) TruncatedNanoseconds() int {
	nsecs := ts.DateTime.Nanosecond()
	for i := uint8(0); i < 9-ts.fracDigits && nsecs > 0 && nsecs%10 == 0; i++ {
		nsecs /= 10
	}
	return nsecs
}
