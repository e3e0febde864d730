// pkg/normalizer/coerce.go
package normalizer

import (
	"strconv"
	"strings"
)

// coerceMeasure converts one raw cell to a non-negative integer measure.
// Thousands separators are tolerated since INE exports format large counts
// with commas. Blank cells are null measures: dropped, never zeroed.
func coerceMeasure(raw string) (int64, *CoercionError) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &CoercionError{Value: raw, Reason: "empty cell"}
	}

	s = strings.ReplaceAll(s, ",", "")

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some exports render counts as "123.0"; accept integral floats.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, &CoercionError{Value: raw, Reason: "not numeric"}
		}
		n = int64(f)
		if float64(n) != f {
			return 0, &CoercionError{Value: raw, Reason: "not an integer"}
		}
	}

	if n < 0 {
		return 0, &CoercionError{Value: raw, Reason: "negative count"}
	}
	return n, nil
}
