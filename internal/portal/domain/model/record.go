package model

import (
	"encoding/json"
	"time"
)

// Field names shared across entities.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldRead      = "read"
)

// serverTimestamp is a sentinel the store replaces with its own clock on write.
type serverTimestamp struct{}

// ServerTimestamp marks a field to be set to the store's time when the write is applied.
var ServerTimestamp interface{} = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v interface{}) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// ResolveServerTimestamps returns a deep copy of fields with every top-level
// sentinel replaced by now.
func ResolveServerTimestamps(fields map[string]interface{}, now time.Time) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if IsServerTimestamp(v) {
			out[k] = now
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Record is a stored document: a store-assigned ID plus its fields.
type Record struct {
	ID     string
	Fields map[string]interface{}
}

// NewRecord creates a record with a copy of fields.
func NewRecord(id string, fields map[string]interface{}) Record {
	return Record{ID: id, Fields: cloneFields(fields)}
}

// Get returns the raw value of a field. FieldID resolves to the record ID.
func (r Record) Get(field string) (interface{}, bool) {
	if field == FieldID {
		return r.ID, true
	}
	v, ok := r.Fields[field]
	return v, ok
}

// String returns a string field or "".
func (r Record) String(field string) string {
	v, _ := r.Get(field)
	s, _ := v.(string)
	return s
}

// Bool returns a boolean field or false.
func (r Record) Bool(field string) bool {
	b, _ := r.Fields[field].(bool)
	return b
}

// Time returns a time field or the zero time.
func (r Record) Time(field string) time.Time {
	t, _ := r.Fields[field].(time.Time)
	return t
}

// CreatedAt is the server-assigned creation time.
func (r Record) CreatedAt() time.Time {
	return r.Time(FieldCreatedAt)
}

// Clone returns a deep copy; nested maps and slices are not shared.
func (r Record) Clone() Record {
	return Record{ID: r.ID, Fields: cloneFields(r.Fields)}
}

// Merge returns a copy of r with fields overlaid.
func (r Record) Merge(fields map[string]interface{}) Record {
	out := r.Clone()
	for k, v := range fields {
		out.Fields[k] = v
	}
	return out
}

// MarshalJSON flattens the record into one object carrying "id".
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(r.Fields)+1)
	for k, v := range r.Fields {
		flat[k] = v
	}
	flat[FieldID] = r.ID
	return json.Marshal(flat)
}

func cloneFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if t == nil {
			return t
		}
		return cloneFields(t)
	case []interface{}:
		if t == nil {
			return t
		}
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		if t == nil {
			return t
		}
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}
