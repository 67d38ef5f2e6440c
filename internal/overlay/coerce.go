// SPDX-License-Identifier: MIT

package overlay

import (
	"fmt"
	"strconv"
	"strings"
)

// AsInt coerces arbitrary JSON/form values to int, returning def when the
// value cannot be interpreted as a number.
func AsInt(value any, def int) int {
	switch v := value.(type) {
	case nil:
		return def
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return def
	default:
		return def
	}
}

// AsFloat coerces arbitrary JSON/form values to float64. Strings may use a
// comma as the decimal separator.
func AsFloat(value any, def float64) float64 {
	switch v := value.(type) {
	case nil:
		return def
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return def
	default:
		if f, err := strconv.ParseFloat(fmt.Sprint(value), 64); err == nil {
			return f
		}
		return def
	}
}
