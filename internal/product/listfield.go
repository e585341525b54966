package product

import (
	"encoding/json"
	"strings"
)

// ParseList normalises a list-valued field. Clients send it as a JSON array,
// as a string holding a JSON array, or as a comma separated string. The result
// keeps input order with blanks dropped and values trimmed.
func ParseList(raw json.RawMessage) ([]string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []string{}, nil
	}

	var arr []string
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return nil, err
		}
		return clean(arr), nil
	}

	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			return clean(arr), nil
		}
	}
	return clean(strings.Split(s, ",")), nil
}

func clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
