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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampString(t *testing.T) {
	test := func(ts Timestamp, expected string) {
		t.Run(expected, func(t *testing.T) {
			assert.Equal(t, expected, ts.String())
		})
	}

	date := time.Date(2000, 5, 6, 7, 8, 9, 0, time.UTC)

	test(NewDateTimestamp(date, Year), "2000T")
	test(NewDateTimestamp(date, Month), "2000-05T")
	test(NewDateTimestamp(date, Day), "2000-05-06T")

	test(NewTimestamp(date, Minute, TimezoneUTC), "2000-05-06T07:08Z")
	test(NewTimestamp(date, Second, TimezoneUTC), "2000-05-06T07:08:09Z")

	local := date.In(time.FixedZone("fixed", 8*3600))
	test(NewTimestamp(local, Second, TimezoneLocal), "2000-05-06T15:08:09+08:00")

	frac := time.Date(2000, 5, 6, 7, 8, 9, 123000000, time.UTC)
	test(NewTimestampWithFractionalSeconds(frac, Nanosecond, TimezoneUTC, 3), "2000-05-06T07:08:09.123Z")

	// time.Format drops an all-zero fraction; String restores it.
	test(NewTimestampWithFractionalSeconds(date, Nanosecond, TimezoneUTC, 3), "2000-05-06T07:08:09.000Z")
}

func TestParseTimestamp(t *testing.T) {
	test := func(str string, eprecision TimestampPrecision, ekind TimezoneKind, efrac uint8) {
		t.Run(str, func(t *testing.T) {
			ts, err := parseTimestamp(str)
			require.NoError(t, err)

			assert.Equal(t, eprecision, ts.Precision())
			assert.Equal(t, ekind, ts.Kind())
			assert.Equal(t, efrac, ts.NumFractionalSeconds())
		})
	}

	test("2000T", Year, TimezoneUnspecified, 0)
	test("2000-05T", Month, TimezoneUnspecified, 0)
	test("2000-05-06", Day, TimezoneUnspecified, 0)
	test("2000-05-06T", Day, TimezoneUnspecified, 0)

	test("2000-05-06T07:08Z", Minute, TimezoneUTC, 0)
	test("2000-05-06T07:08+00:00", Minute, TimezoneUTC, 0)
	test("2000-05-06T07:08-00:00", Minute, TimezoneUnspecified, 0)
	test("2000-05-06T07:08+08:45", Minute, TimezoneLocal, 0)

	test("2000-05-06T07:08:09Z", Second, TimezoneUTC, 0)
	test("2000-05-06T07:08:09-05:00", Second, TimezoneLocal, 0)

	test("2000-05-06T07:08:09.1Z", Nanosecond, TimezoneUTC, 1)
	test("2000-05-06T07:08:09.12Z", Nanosecond, TimezoneUTC, 2)
	test("2000-05-06T07:08:09.123Z", Nanosecond, TimezoneUTC, 3)
	test("2000-05-06T07:08:09.000Z", Nanosecond, TimezoneUTC, 3)
}

func TestParseTimestampErrors(t *testing.T) {
	test := func(str string) {
		t.Run(str, func(t *testing.T) {
			_, err := parseTimestamp(str)
			assert.Error(t, err)
		})
	}

	test("")
	test("2000")
	test("0000T")
	test("2000-13T")
	test("2000-02-30")
	test("2000-05-06T07:08")
	test("2000-05-06T07:08:09")
	test("2000-05-06T07:08:09.123")
	test("2000-05-06T07:08Z0")
	test("2000-05-06T07:08+24:00")
	test("2000-05-06T07:08+08:60")
}

func TestTimestampEqual(t *testing.T) {
	date := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	a := NewTimestamp(date, Second, TimezoneUTC)
	b := NewTimestamp(date, Second, TimezoneUTC)
	c := NewTimestamp(date, Minute, TimezoneUTC)
	d := NewTimestampWithFractionalSeconds(date, Nanosecond, TimezoneUTC, 3)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))

	assert.True(t, a.Equivalent(b))
	assert.False(t, a.Equivalent(c))
}

func TestTruncatedNanoseconds(t *testing.T) {
	date := time.Date(2000, 1, 1, 0, 0, 0, 863494000, time.UTC)

	assert.Equal(t, 863494, NewTimestampWithFractionalSeconds(date, Nanosecond, TimezoneUTC, 6).TruncatedNanoseconds())
	assert.Equal(t, 863494000, NewTimestampWithFractionalSeconds(date, Nanosecond, TimezoneUTC, 9).TruncatedNanoseconds())
}
