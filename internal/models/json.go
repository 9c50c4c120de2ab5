package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON type for flexible storage
type JSON map[string]interface{}

// ToJSON converts a struct into a JSON map through its json tags.
func ToJSON(v interface{}) (JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var j JSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return j, nil
}

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	data, err := scanBytes(value)
	if err != nil || data == nil {
		return err
	}
	return json.Unmarshal(data, j)
}

// FeeBreakdown is the persisted list of enabled fee rows.
type FeeBreakdown []CalculatedFee

// Value implements the driver.Valuer interface
func (b FeeBreakdown) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	return json.Marshal(b)
}

// Scan implements the sql.Scanner interface
func (b *FeeBreakdown) Scan(value interface{}) error {
	data, err := scanBytes(value)
	if err != nil || data == nil {
		return err
	}
	return json.Unmarshal(data, b)
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column type %T", value)
	}
}
