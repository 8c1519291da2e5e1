package storage

import "strconv"

// Column coercion helpers. Drivers disagree on the concrete Go type they
// hand back for numeric aggregates (int64 vs float64, []byte vs string), so
// readers go through these instead of type-asserting directly.

// Int64 returns the named column as int64, 0 when absent or NULL.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Float64 returns the named column as float64, 0 when absent or NULL.
func (r Row) Float64(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// String returns the named column as a string, "" when absent or NULL.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// IsNull reports whether the named column is absent or NULL.
func (r Row) IsNull(col string) bool {
	v, ok := r[col]
	return !ok || v == nil
}
