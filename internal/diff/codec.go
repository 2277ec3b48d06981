package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Encode writes the result as indented JSON
func Encode(w io.Writer, r *CompareResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode compare result: %w", err)
	}
	return nil
}

// Marshal encodes the result as indented JSON. Identical results always
// encode to identical bytes.
func Marshal(r *CompareResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a result document. Missing or null top-level sections
// are restored as empty arrays.
func Unmarshal(data []byte) (*CompareResult, error) {
	var r CompareResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode compare result: %w", err)
	}
	if r.AddedSchemas == nil {
		r.AddedSchemas = []SchemaInfo{}
	}
	if r.RemovedSchemas == nil {
		r.RemovedSchemas = []SchemaInfo{}
	}
	if r.ModifiedSchemas == nil {
		r.ModifiedSchemas = []SchemaChanges{}
	}
	for i := range r.AddedSchemas {
		if r.AddedSchemas[i].Tables == nil {
			r.AddedSchemas[i].Tables = []TableInfo{}
		}
	}
	for i := range r.RemovedSchemas {
		if r.RemovedSchemas[i].Tables == nil {
			r.RemovedSchemas[i].Tables = []TableInfo{}
		}
	}
	return &r, nil
}
