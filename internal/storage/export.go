package storage

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"taskflow/internal/model"
)

// ExportVersion is the interchange format version written to exports.
const ExportVersion = "1.0"

// ErrInvalidFormat reports an import payload whose top-level items field
// is missing or not an array. The existing collection is left untouched.
var ErrInvalidFormat = errors.New("invalid import format")

type exportEnvelope struct {
	Items      []model.Task `json:"items"`
	ExportedAt time.Time    `json:"exportedAt"`
	Version    string       `json:"version"`
}

// Export encodes the collection in the interchange format, indented for
// human inspection.
func Export(items []model.Task) ([]byte, error) {
	env := exportEnvelope{
		Items:      items,
		ExportedAt: time.Now().UTC(),
		Version:    ExportVersion,
	}
	return json.MarshalIndent(env, "", "  ")
}

// Import parses an export payload. Malformed JSON or a missing/non-array
// items field rejects the whole payload. Individual records lacking a
// non-empty id, title, or type are dropped; the survivors are returned
// for the caller to normalize and swap in.
func Import(data []byte) ([]model.Task, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrInvalidFormat
	}
	itemsRaw, ok := raw["items"]
	if !ok {
		return nil, ErrInvalidFormat
	}
	var items []model.Task
	if err := json.Unmarshal(itemsRaw, &items); err != nil {
		return nil, ErrInvalidFormat
	}
	// A JSON null decodes cleanly into a nil slice; only a real array
	// counts as a valid items field.
	if items == nil {
		return nil, ErrInvalidFormat
	}
	valid := make([]model.Task, 0, len(items))
	for _, t := range items {
		if t.ID == "" || t.Title == "" || t.Type == "" {
			continue
		}
		valid = append(valid, t)
	}
	return valid, nil
}

func ExportToFile(items []model.Task, path string) error {
	data, err := Export(items)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func ImportFromFile(path string) ([]model.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Import(data)
}
