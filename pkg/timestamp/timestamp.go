// Package timestamp is the wire-time convention for the platform: every
// timestamp that crosses a message boundary is an int64 of milliseconds
// since the Unix epoch, UTC. Zero means "not set"; every function treats it
// that way rather than as the epoch instant.
//
// The message envelope serializes through ToUnixMs/ToTime and decodes
// foreign payloads through Parse, which accepts the representations seen on
// real streams (unix seconds, unix millis, RFC3339 strings, time.Time).
package timestamp

import (
	"strconv"
	"time"
)

// unixMsThreshold separates second-resolution from millisecond-resolution
// numeric timestamps. 1e12 ms is September 2001; 1e12 s is the year 33658.
// Any plausible live value above it is already in milliseconds.
const unixMsThreshold = 1e12

// Now returns the current time in unix milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}

// ToUnixMs converts a time.Time to unix milliseconds. The zero time maps to
// 0, keeping "not set" stable across the round trip.
func ToUnixMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromUnixMs converts unix milliseconds to a time.Time. 0 maps to the zero
// time.
func FromUnixMs(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// ToTime is FromUnixMs under the name call sites read better with.
func ToTime(ms int64) time.Time {
	return FromUnixMs(ms)
}

// Format renders a timestamp as RFC3339 UTC for logs and HTTP responses.
// Unset timestamps render as the empty string.
func Format(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// IsZero reports whether a timestamp is unset.
func IsZero(ms int64) bool {
	return ms == 0
}

// Parse coerces the timestamp representations found in decoded payloads to
// unix milliseconds: int64/float64/int/int32 (seconds below unixMsThreshold,
// milliseconds above), numeric strings, RFC3339 strings, time.Time and
// *time.Time. Unparseable or nil input yields 0: ingestion treats a bad
// timestamp as absent, not as an error.
func Parse(input any) int64 {
	switch v := input.(type) {
	case nil:
		return 0

	case int64:
		return fromNumeric(v)

	case int:
		return fromNumeric(int64(v))

	case int32:
		return fromNumeric(int64(v))

	case float64:
		if v > unixMsThreshold {
			return int64(v)
		}
		return int64(v * 1000)

	case string:
		if v == "" {
			return 0
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return ToUnixMs(t)
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return fromNumeric(n)
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return Parse(f)
		}
		return 0

	case time.Time:
		return ToUnixMs(v)

	case *time.Time:
		if v == nil {
			return 0
		}
		return ToUnixMs(*v)

	default:
		return 0
	}
}

func fromNumeric(v int64) int64 {
	if v == 0 {
		return 0
	}
	if v > unixMsThreshold {
		return v
	}
	return v * 1000
}
