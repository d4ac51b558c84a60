package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// ConvertSort converts a MongoDB sort document into an ORDER BY fragment:
// {"created_at": -1, "name": 1} becomes `created_at DESC, name ASC`.
// Directions must be 1 or -1. Key order is taken from the JSON text
// itself. Empty input yields an empty string.
func (c *Converter) ConvertSort(sort []byte) (string, error) {
	if len(bytes.TrimSpace(sort)) == 0 {
		return "", nil
	}

	entries, err := decodeSortDocument(sort)
	if err != nil {
		return "", err
	}
	return c.convertSortEntries(entries)
}

// ConvertSortBSON is ConvertSort for a bson.D document.
func (c *Converter) ConvertSortBSON(sort bson.D) (string, error) {
	return c.convertSortEntries(bsonEntries(sort))
}

func (c *Converter) convertSortEntries(entries []docEntry) (string, error) {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := c.checkField(entry.key); err != nil {
			return "", err
		}
		direction, err := sortDirection(entry.key, entry.value)
		if err != nil {
			return "", err
		}
		parts = append(parts, entry.key+" "+direction)
	}
	return strings.Join(parts, ", "), nil
}

func sortDirection(field string, value any) (string, error) {
	var direction float64
	switch v := value.(type) {
	case float64:
		direction = v
	case int:
		direction = float64(v)
	case int32:
		direction = float64(v)
	case int64:
		direction = float64(v)
	default:
		return "", InvalidOrderDirectionError{Field: field, Value: value}
	}

	switch direction {
	case 1:
		return "ASC", nil
	case -1:
		return "DESC", nil
	}
	return "", InvalidOrderDirectionError{Field: field, Value: value}
}

// decodeSortDocument reads a flat JSON object keeping key order, which a
// map round-trip would lose and ORDER BY depends on.
func decodeSortDocument(data []byte) ([]docEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("sort document must be a JSON object")
	}

	var entries []docEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("sort document must be a JSON object")
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		entries = append(entries, docEntry{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}
