package mocks

import "encoding/json"

// Serialización igual que los adapters reales (Redis guarda JSON).
func jsonMarshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func jsonUnmarshal(data []byte, dest interface{}) error {
	return json.Unmarshal(data, dest)
}
