package types

import (
	"fmt"
	"math"
	"reflect"
)

// ToInt64 converts any Go integer kind to int64.
// The second return value is false for non-integers and for unsigned values above math.MaxInt64.
func ToInt64(v interface{}) (int64, bool) {
	switch i := v.(type) {
	case int64:
		return i, true
	case int:
		return int64(i), true
	case int32:
		return int64(i), true
	case int16:
		return int64(i), true
	case int8:
		return int64(i), true
	case uint:
		if uint64(i) > math.MaxInt64 {
			return 0, false
		}
		return int64(i), true
	case uint64:
		if i > math.MaxInt64 {
			return 0, false
		}
		return int64(i), true
	case uint32:
		return int64(i), true
	case uint16:
		return int64(i), true
	case uint8:
		return int64(i), true
	default:
		return 0, false
	}
}

// KeyOf normalizes a column value into a comparable map key.
//
// Integers of every width collapse to int64 and []byte collapses to string, so the
// same identifier scanned by different drivers groups together. Values whose dynamic
// type is not comparable are keyed by their %#v rendering.
func KeyOf(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	if i, ok := ToInt64(v); ok {
		return i
	}
	switch k := v.(type) {
	case string, bool, float64, float32:
		return k
	case []byte:
		return string(k)
	}
	if reflect.TypeOf(v).Comparable() {
		return v
	}
	return fmt.Sprintf("%#v", v)
}
