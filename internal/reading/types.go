package reading

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is a single immutable sensor measurement.
//
// Records are created once by the Coordinator and never modified. The zero
// Record is not valid; use the Coordinator or construct all fields explicitly.
type Record struct {
	// ID uniquely identifies the reading for the lifetime of the store.
	ID string `json:"id"`

	// DeviceID is the device that owns the sensor.
	DeviceID string `json:"device_id"`

	// SensorID is the sensor that produced the measurement.
	SensorID string `json:"sensor_id"`

	// Value is the measurement payload.
	Value Value `json:"value"`

	// Timestamp is when the measurement was taken (UTC).
	Timestamp time.Time `json:"timestamp"`
}

// Bounds of a timestamp that fits in int64 Unix nanoseconds (1677 to 2262).
var (
	MinTimestamp = time.Unix(0, math.MinInt64).UTC()
	MaxTimestamp = time.Unix(0, math.MaxInt64).UTC()
)

// ValidTimestamp reports whether ts lies within [MinTimestamp, MaxTimestamp].
func ValidTimestamp(ts time.Time) bool {
	return !ts.Before(MinTimestamp) && !ts.After(MaxTimestamp)
}

// unixNanoClamped converts ts for storage comparisons, clamping instants
// outside the representable range to its bounds.
func unixNanoClamped(ts time.Time) int64 {
	switch {
	case ts.Before(MinTimestamp):
		return math.MinInt64
	case ts.After(MaxTimestamp):
		return math.MaxInt64
	}
	return ts.UnixNano()
}

// Kind distinguishes numeric payloads from free text.
type Kind string

// Value kinds.
const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
)

// Value is a tagged measurement payload.
//
// Sensors report text on the wire. A payload that parses as a finite real
// number is numeric and can take part in correlation; anything else is kept
// verbatim as text.
type Value struct {
	kind   Kind
	number float64
	raw    string
}

// ParseValue classifies a raw payload.
//
// Surrounding whitespace is ignored for the numeric check but the original
// text is preserved for String().
func ParseValue(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Value{kind: KindNumeric, number: f, raw: raw}
	}
	return Value{kind: KindText, raw: raw}
}

// NumericValue builds a numeric Value from a float.
func NumericValue(f float64) Value {
	return Value{kind: KindNumeric, number: f, raw: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Kind returns the payload kind.
func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindText
	}
	return v.kind
}

// IsNumeric reports whether the payload is a real number.
func (v Value) IsNumeric() bool {
	return v.kind == KindNumeric
}

// Float returns the numeric payload. ok is false for text payloads.
func (v Value) Float() (f float64, ok bool) {
	if v.kind != KindNumeric {
		return 0, false
	}
	return v.number, true
}

// String returns the payload as originally received.
func (v Value) String() string {
	return v.raw
}

// MarshalText implements encoding.TextMarshaler so records serialise the
// payload as a plain string.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Value) UnmarshalText(text []byte) error {
	*v = ParseValue(string(text))
	return nil
}
