package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one named cell of a Document.
type Field struct {
	Name  string
	Value Value
}

// Document is one materialized row. Fields keep the schema's column order,
// so JSON output is stable without sorting.
type Document []Field

// Get returns the value stored under name.
func (d Document) Get(name string) (Value, bool) {
	for _, f := range d {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns field names in document order.
func (d Document) Names() []string {
	names := make([]string, len(d))
	for i, f := range d {
		names[i] = f.Name
	}
	return names
}

// Native converts the document into a map of database/sql native values.
func (d Document) Native() map[string]any {
	out := make(map[string]any, len(d))
	for _, f := range d {
		out[f.Name] = Native(f.Value)
	}
	return out
}

// MarshalJSON encodes the document as a JSON object in field order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(f.Name)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", f.Name, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", f.Name, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
