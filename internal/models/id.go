package models

import (
	"bytes"
	"fmt"
	"strconv"
)

// ID identifies every persisted entity. It travels as a JSON string so clients
// never lose precision on 64-bit values.
type ID int64

func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.String())), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	raw := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("invalid id %s: %w", raw, err)
		}
		raw = unquoted
	}
	parsed, err := ParseID(raw)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = parsed
	return nil
}
