package kafka

import (
	"encoding/json"
	"fmt"
)

// JSONSerializer encodes payloads with encoding/json.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize to JSON: %w", err)
	}
	return b, nil
}
