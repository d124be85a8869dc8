package export

import (
	"fmt"
	"strconv"
)

// FormatValue renders a record value as table text.
// Floats use the shortest decimal form that round-trips, without exponents.
func FormatValue(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(n)
	}
}
