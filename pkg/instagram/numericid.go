package instagram

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// NumericID tolerates the feed API's habit of sending identifiers as
// either JSON numbers or strings, and normalizes them to a string.
type NumericID string

// UnmarshalJSON accepts a string, a number, or null
func (n *NumericID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericID(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = NumericID(num.String())
	return nil
}

// String returns the identifier as a plain string
func (n NumericID) String() string {
	return string(n)
}

// Int64 returns the numeric value, or 0 when empty or non-numeric
func (n NumericID) Int64() int64 {
	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
