package state

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes state for session storage.
func Marshal(state AppState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("state: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal decodes state saved by Marshal. Fields missing from data keep
// their InitialState defaults.
func Unmarshal(data []byte) (AppState, error) {
	out := InitialState()
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return InitialState(), fmt.Errorf("state: unmarshal: %w", err)
	}
	return out, nil
}
