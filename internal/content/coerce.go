package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotNumeric is returned by Idx for values that do not denote an integer.
var ErrNotNumeric = errors.New("not a numeric idx")

// Idx coerces a decoded value to a placeholder idx. Integers and integral
// strings are taken as is, floats are truncated and booleans count as 1 or 0.
func Idx(v any) (int, error) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			if n > math.MaxInt32 || n < -math.MaxInt32 {
				return 0, fmt.Errorf("%s: %w", x, ErrNotNumeric)
			}
			return int(n), nil
		}
		f, err := x.Float64()
		if err != nil || !inIdxRange(f) {
			return 0, fmt.Errorf("%s: %w", x, ErrNotNumeric)
		}
		return int(f), nil
	case float64:
		if !inIdxRange(x) {
			return 0, fmt.Errorf("%v: %w", x, ErrNotNumeric)
		}
		return int(x), nil
	case int:
		return x, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil || n > math.MaxInt32 || n < -math.MaxInt32 {
			return 0, fmt.Errorf("%q: %w", x, ErrNotNumeric)
		}
		return n, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case nil:
		return 0, fmt.Errorf("null: %w", ErrNotNumeric)
	default:
		return 0, fmt.Errorf("%s: %w", Text(v), ErrNotNumeric)
	}
}

// inIdxRange reports whether f converts to an index without overflow.
func inIdxRange(f float64) bool {
	return !math.IsNaN(f) && math.Abs(f) <= math.MaxInt32
}

// Text renders a decoded value as slide text. Strings are verbatim, numbers
// keep their JSON spelling, null is empty and containers become compact JSON.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := compactJSON(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func compactJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
