package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap is a helper for storing JSON data in text columns. Case records keep
// their structured sub-objects (physical description, judicial info, vehicle
// specs) as opaque blobs keyed by name; the hierarchy core never interprets
// their contents.
type JSONMap map[string]interface{}

func (j JSONMap) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = JSONMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("unsupported type for JSONMap scan")
	}
}
