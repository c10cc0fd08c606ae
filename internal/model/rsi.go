package model

import (
	"errors"
	"fmt"
)

// errRSIUnset is the reason reported by a zero RSIValue.
var errRSIUnset = errors.New("rsi not computed")

// RSIValue is either a number in [0, 100] or unavailable.
// The zero value is unavailable.
type RSIValue struct {
	value  float64
	ok     bool
	reason error
}

// NewRSI wraps a computed indicator value.
func NewRSI(v float64) RSIValue {
	return RSIValue{value: v, ok: true}
}

// UnavailableRSI marks the indicator as not computable, keeping the cause.
func UnavailableRSI(reason error) RSIValue {
	if reason == nil {
		reason = errRSIUnset
	}
	return RSIValue{reason: reason}
}

// Value returns the number and whether it is available.
func (r RSIValue) Value() (float64, bool) { return r.value, r.ok }

// Available reports whether the value is numeric.
func (r RSIValue) Available() bool { return r.ok }

// Reason explains why the value is unavailable; nil when available.
func (r RSIValue) Reason() error {
	if r.ok {
		return nil
	}
	if r.reason == nil {
		return errRSIUnset
	}
	return r.reason
}

func (r RSIValue) String() string {
	if !r.ok {
		return "unavailable"
	}
	return fmt.Sprintf("%.2f", r.value)
}
