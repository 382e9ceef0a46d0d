// services/pinsvc/util.go
package pinsvc

import "encoding/json"

// DecodeJSON accepts raw JSON, a JSON string, or any JSON-like value
// (typed struct, map) and decodes it into dst.
func DecodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case T:
		*dst = v
		return nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}

func asInt(v any) (int, bool) {
	i, ok := v.(int)
	return i, ok
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
