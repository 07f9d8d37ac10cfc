package utils

import (
	"encoding/json"
	"os"
)

// WriteJSONFile writes input as indented JSON, for CLI exports.
func WriteJSONFile[T any](path string, input T) error {
	jsonData, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, jsonData, 0o644)
}
