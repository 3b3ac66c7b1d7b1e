package geoarrow

import (
	"encoding/json"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// sliceValues picks the attribute values belonging to one group, in the
// group's recorded row order.
func sliceValues(values []any, rows []int) []any {
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, values[row])
	}
	return out
}

// inferNumeric samples up to sampleSize leading values of an already sliced
// column and reports whether every sampled non-null value is a native
// number. Numeric-looking strings do not count: values like "007" stay
// text so that formatted codes are never reinterpreted as numbers.
func inferNumeric(values []any, sampleSize int) bool {
	n := len(values)
	if n > sampleSize {
		n = sampleSize
	}
	for _, v := range values[:n] {
		if v == nil {
			continue
		}
		if _, ok := toFloat64(v); !ok {
			return false
		}
	}
	return true
}

// buildAttributeColumn encodes one attribute column for a group, already
// sliced to the group's rows. All-numeric samples produce a Float64 column
// where null or non-numeric values become NaN; anything else produces a
// Utf8 column where null becomes the empty string and non-string values
// are stringified. There is no validity bitmap in either case.
func buildAttributeColumn(mem memory.Allocator, values []any, sampleSize int) arrow.Array {
	if inferNumeric(values, sampleSize) {
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.Reserve(len(values))
		for _, v := range values {
			f, ok := toFloat64(v)
			if !ok {
				f = math.NaN()
			}
			b.Append(f)
		}
		return b.NewArray()
	}

	b := array.NewStringBuilder(mem)
	defer b.Release()
	for _, v := range values {
		b.Append(toString(v))
	}
	return b.NewArray()
}

// toFloat64 converts native numeric values. Strings never convert, even
// when they look numeric.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		// For other types, use JSON encoding.
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
