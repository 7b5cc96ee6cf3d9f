package query

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/notesql/internal/ir"
)

// Wire encoding:
//
//	Condition: ["title", "=", "Test"]
//	Filter:    [[["title", "=", "Test"], "AND"], [["pub_date", ">", 0], ""]]
//	Updater:   {"set": {"pub_date": -2000}, "at": <Filter>}

// UnmarshalJSON decodes a [column, operator, literal] triple.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewMalformedFilterError("condition must be an array: %v", err)
	}
	if len(raw) != 3 {
		return NewMalformedFilterError("condition must have 3 elements, got %d", len(raw))
	}

	var column, op string
	if err := json.Unmarshal(raw[0], &column); err != nil {
		return NewMalformedFilterError("condition column must be a string")
	}
	if err := json.Unmarshal(raw[1], &op); err != nil {
		return NewMalformedFilterError("condition operator must be a string")
	}
	value, err := ir.DecodeLiteral(raw[2])
	if err != nil {
		return NewMalformedLiteralError(column, err)
	}

	*c = Condition{Column: column, Op: Operator(op), Value: value}
	return nil
}

// MarshalJSON encodes c as a [column, operator, literal] triple.
func (c Condition) MarshalJSON() ([]byte, error) {
	lit, err := ir.MarshalValue(c.Value)
	if err != nil {
		return nil, fmt.Errorf("condition %s: %w", c.Column, err)
	}
	col, _ := json.Marshal(c.Column)
	op, _ := json.Marshal(string(c.Op))

	var buf bytes.Buffer
	buf.WriteByte('[')
	buf.Write(col)
	buf.WriteByte(',')
	buf.Write(op)
	buf.WriteByte(',')
	buf.Write(lit)
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a [condition, connector] pair.
func (cl *Clause) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewMalformedFilterError("clause must be an array: %v", err)
	}
	if len(raw) != 2 {
		return NewMalformedFilterError("clause must have 2 elements, got %d", len(raw))
	}

	var cond Condition
	if err := json.Unmarshal(raw[0], &cond); err != nil {
		return err
	}
	var conn string
	if err := json.Unmarshal(raw[1], &conn); err != nil {
		return NewMalformedFilterError("connector must be a string")
	}

	*cl = Clause{Condition: cond, Connector: Connector(conn)}
	return nil
}

// MarshalJSON encodes cl as a [condition, connector] pair.
func (cl Clause) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{cl.Condition, string(cl.Connector)})
}

// MarshalJSON encodes a nil Filter as [] rather than null.
func (f Filter) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Clause(f))
}

type wireUpdater struct {
	Set map[string]json.RawMessage `json:"set"`
	At  Filter                     `json:"at"`
}

// UnmarshalJSON decodes {"set": {...}, "at": [...]}.
// An absent or empty "set" decodes successfully; Validate rejects it.
func (u *Updater) UnmarshalJSON(data []byte) error {
	var raw wireUpdater
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		if _, ok := CodeOf(err); ok {
			return err
		}
		return NewMalformedFilterError("updater: %v", err)
	}

	set := make(map[string]ir.Value, len(raw.Set))
	for col, lit := range raw.Set {
		v, err := ir.DecodeLiteral(lit)
		if err != nil {
			return NewMalformedLiteralError(col, err)
		}
		set[col] = v
	}

	*u = Updater{Set: set, At: raw.At}
	return nil
}

// MarshalJSON encodes u in wire form with set keys sorted.
func (u Updater) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"set":{`)
	for i, col := range u.Columns() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(col)
		val, err := ir.MarshalValue(u.Set[col])
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", col, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString(`},"at":`)
	at, err := u.At.MarshalJSON()
	if err != nil {
		return nil, err
	}
	buf.Write(at)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseFilter decodes a wire-encoded Filter. An empty input or JSON null
// yields the empty (match-all) filter.
func ParseFilter(data []byte) (Filter, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Filter{}, nil
	}
	var f Filter
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, asQueryError(err)
	}
	if f == nil {
		f = Filter{}
	}
	return f, nil
}

// ParseUpdater decodes a wire-encoded Updater.
func ParseUpdater(data []byte) (Updater, error) {
	var u Updater
	if err := json.Unmarshal(data, &u); err != nil {
		return Updater{}, asQueryError(err)
	}
	return u, nil
}

// ParseValues decodes a {"column": literal, ...} object, as used by inserts
// and the CLI's --set flag.
func ParseValues(data []byte) (map[string]ir.Value, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, NewMalformedFilterError("values must be a JSON object: %v", err)
	}
	out := make(map[string]ir.Value, len(raw))
	for col, lit := range raw {
		v, err := ir.DecodeLiteral(lit)
		if err != nil {
			return nil, NewMalformedLiteralError(col, err)
		}
		out[col] = v
	}
	return out, nil
}

// asQueryError keeps typed errors from the decoders and tags everything
// else (syntax errors, wrong top-level shape) as a malformed filter.
func asQueryError(err error) error {
	if _, ok := CodeOf(err); ok {
		return err
	}
	return NewMalformedFilterError("%v", err)
}
