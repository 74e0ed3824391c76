package utils

import (
	"encoding/json"
	"os"

	"bizradar/models"
)

// WriteJSON writes the records into a single indented JSON array. Returns the
// number of records written.
func WriteJSON(filename string, records []models.BusinessRecord) (int, error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return 0, err
	}

	return len(records), nil
}
