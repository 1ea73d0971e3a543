package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Cursor identifies the last record of a fetched page: its ID plus the values of
// the listing's order fields at the time it was read.
type Cursor struct {
	DocumentID string
	Values     map[string]interface{}
}

// NewCursor captures rec as a cursor over the given order fields.
func NewCursor(rec Record, fields []string) Cursor {
	values := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		if f == FieldID {
			continue
		}
		if v, ok := rec.Fields[f]; ok {
			values[f] = v
		}
	}
	return Cursor{DocumentID: rec.ID, Values: values}
}

// Value returns the cursor position for an order field.
func (c Cursor) Value(field string) (interface{}, bool) {
	if field == FieldID {
		return c.DocumentID, true
	}
	v, ok := c.Values[field]
	return v, ok
}

type cursorJSON struct {
	ID     string                `json:"id"`
	Values map[string]typedValue `json:"values,omitempty"`
}

type typedValue struct {
	Kind  string          `json:"k"`
	Value json.RawMessage `json:"v"`
}

// MarshalJSON keeps value types so a cursor loaded from a session store compares
// the same way as one built in-process.
func (c Cursor) MarshalJSON() ([]byte, error) {
	out := cursorJSON{ID: c.DocumentID, Values: make(map[string]typedValue, len(c.Values))}
	for k, v := range c.Values {
		tv, err := encodeTyped(v)
		if err != nil {
			return nil, fmt.Errorf("cursor field %s: %w", k, err)
		}
		out.Values[k] = tv
	}
	return json.Marshal(out)
}

func (c *Cursor) UnmarshalJSON(data []byte) error {
	var in cursorJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.DocumentID = in.ID
	c.Values = make(map[string]interface{}, len(in.Values))
	for k, tv := range in.Values {
		v, err := decodeTyped(tv)
		if err != nil {
			return fmt.Errorf("cursor field %s: %w", k, err)
		}
		c.Values[k] = v
	}
	return nil
}

func encodeTyped(v interface{}) (typedValue, error) {
	var kind string
	switch x := v.(type) {
	case nil:
		kind = "null"
	case time.Time:
		kind = "time"
		v = x.UTC().Format(time.RFC3339Nano)
	case string:
		kind = "string"
	case bool:
		kind = "bool"
	case int, int32, int64:
		kind = "int"
	case float32, float64:
		kind = "float"
	default:
		return typedValue{}, fmt.Errorf("unsupported cursor value %T", v)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return typedValue{}, err
	}
	return typedValue{Kind: kind, Value: raw}, nil
}

func decodeTyped(tv typedValue) (interface{}, error) {
	switch tv.Kind {
	case "null":
		return nil, nil
	case "time":
		var s string
		if err := json.Unmarshal(tv.Value, &s); err != nil {
			return nil, err
		}
		return time.Parse(time.RFC3339Nano, s)
	case "string":
		var s string
		err := json.Unmarshal(tv.Value, &s)
		return s, err
	case "bool":
		var b bool
		err := json.Unmarshal(tv.Value, &b)
		return b, err
	case "int":
		var n int64
		err := json.Unmarshal(tv.Value, &n)
		return n, err
	case "float":
		var f float64
		err := json.Unmarshal(tv.Value, &f)
		return f, err
	}
	return nil, fmt.Errorf("unknown cursor value kind %q", tv.Kind)
}

// CursorChain maps page number to the cursor of that page for one listing in one session.
// The cursor for page N exists only when pages 1..N were fetched in order.
type CursorChain struct {
	SessionID string
	Listing   string
	Cursors   map[int]Cursor
}

// NewCursorChain returns an empty chain.
func NewCursorChain(sessionID, listing string) *CursorChain {
	return &CursorChain{SessionID: sessionID, Listing: listing, Cursors: make(map[int]Cursor)}
}

// After returns the cursor recorded for page, or nil.
func (c *CursorChain) After(page int) *Cursor {
	if c == nil || c.Cursors == nil {
		return nil
	}
	cur, ok := c.Cursors[page]
	if !ok {
		return nil
	}
	return &cur
}

// Record stores the last record of page.
func (c *CursorChain) Record(page int, cur Cursor) {
	if c.Cursors == nil {
		c.Cursors = make(map[int]Cursor)
	}
	c.Cursors[page] = cur
}

// Restart drops every recorded cursor.
func (c *CursorChain) Restart() {
	c.Cursors = make(map[int]Cursor)
}

// Len is the number of recorded pages.
func (c *CursorChain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Cursors)
}
