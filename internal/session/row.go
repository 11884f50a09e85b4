package session

import "strconv"

// Int64 reads a column as int64, tolerating the driver's numeric and text
// representations. ok=false when the column is absent or unparseable.
func (r Row) Int64(key string) (int64, bool) {
	v, present := r[key]
	if !present || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case []byte:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// String reads a column as a string. Absent or NULL columns yield "".
func (r Row) String(key string) string {
	v, present := r[key]
	if !present || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}
