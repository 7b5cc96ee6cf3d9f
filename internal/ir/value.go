package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Value is a sealed interface over the scalar kinds a caller can supply as a
// literal or read back from a materialized row.
// Only String, Int, Real, and Bool implement it.
type Value interface {
	irValue() // Sealed - only these types implement it
	Kind() Kind
}

// Kind names the variant held by a Value.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindReal
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindReal:
		return "real"
	case KindBool:
		return "boolean"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// String is a text value.
type String string

func (String) irValue()   {}
func (String) Kind() Kind { return KindString }

// Int is a 64-bit signed integer value.
type Int int64

func (Int) irValue()   {}
func (Int) Kind() Kind { return KindInt }

// Real is a 64-bit floating point value.
type Real float64

func (Real) irValue()   {}
func (Real) Kind() Kind { return KindReal }

// Bool is a boolean value. No column type accepts it today; it exists so the
// wire decoder can report a precise mismatch instead of a parse error.
type Bool bool

func (Bool) irValue()   {}
func (Bool) Kind() Kind { return KindBool }

// Native returns the Go value handed to database/sql for v.
func Native(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Real:
		return float64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// DecodeLiteral decodes a single JSON scalar into a Value.
//
// Numbers without a fraction or exponent that fit in int64 become Int; every
// other number becomes Real. null, arrays, and objects are rejected.
func DecodeLiteral(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode literal: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode literal: trailing data after %s", string(data))
	}
	return FromAny(raw)
}

// FromAny converts a decoded Go scalar (from encoding/json with UseNumber,
// yaml.v3, or plain Go code) into a Value.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not a valid literal")
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", val)
		}
		return Int(val), nil
	case float32:
		return Real(val), nil
	case float64:
		return Real(val), nil
	case json.Number:
		return numberToValue(val)
	case []any:
		return nil, fmt.Errorf("arrays are not valid literals")
	case map[string]any:
		return nil, fmt.Errorf("objects are not valid literals")
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", v)
	}
}

func numberToValue(n json.Number) (Value, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("number %s out of range", s)
	}
	return Real(f), nil
}

// MarshalValue marshals a Value to JSON bytes.
// NOTE: This is NOT canonical marshaling. Use MarshalCanonical for hashing
// and golden output.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case String:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Real:
		return json.Marshal(float64(val))
	case Bool:
		return json.Marshal(bool(val))
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}
