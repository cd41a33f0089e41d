package contracts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Float is an optional float64. The zero value is absent.
// Absent is a first-class state: an absent Float never satisfies
// numeric comparisons, so missing data cannot masquerade as zero.
type Float struct {
	Float64 float64
	Valid   bool
}

// NewFloat creates a present Float. NaN and ±Inf collapse to absent
// so malformed upstream values can never enter a computation.
func NewFloat(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{Float64: v, Valid: true}
}

// AbsentFloat returns an absent Float.
func AbsentFloat() Float {
	return Float{}
}

// Positive reports whether the value is present and strictly positive.
func (f Float) Positive() bool {
	return f.Valid && f.Float64 > 0
}

// Or returns f if present, otherwise the fallback.
func (f Float) Or(fallback Float) Float {
	if f.Valid {
		return f
	}
	return fallback
}

// Sanitize re-applies the NaN/Inf guard. Useful at stage boundaries
// where a Float may have been built directly rather than via NewFloat.
func (f Float) Sanitize() Float {
	if !f.Valid {
		return Float{}
	}
	return NewFloat(f.Float64)
}

// String renders the value, or "" when absent (used for CSV cells).
func (f Float) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}

// MarshalJSON renders absent values as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Float64)
}

// UnmarshalJSON accepts numbers, null, and numeric strings.
// Anything unparseable becomes absent rather than an error; the
// upstream feed is unreliable and a bad field must not sink the row.
func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = Float{}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = NewFloat(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := strconv.ParseFloat(s, 64); err == nil {
			*f = NewFloat(parsed)
			return nil
		}
	}

	*f = Float{}
	return nil
}
