package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field is a form value. The form posts strings, but numbers, booleans and
// null are accepted and kept in their string form (null becomes empty).
type Field string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("order field: empty value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
	case 'n':
		*f = ""
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*f = Field(strconv.FormatBool(b))
	case '{', '[':
		return fmt.Errorf("order field: expected scalar, got %s", data[:1])
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = Field(formatNumber(n))
	}
	return nil
}

// String returns the raw value.
func (f Field) String() string {
	return string(f)
}

// formatNumber renders a JSON number the way the browser would stringify it:
// 2 -> "2", 2.50 -> "2.5", 1e3 -> "1000".
func formatNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if v, err := n.Float64(); err == nil {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return n.String()
}
