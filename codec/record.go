// Package codec implements the CSV<->JSON Codec (spec §4.C): pure
// transforms between ordered Records and raw CSV Rows — field escaping
// (RFC 4180, CSV-injection guard), row<->object materialization with header
// rules, rename/template projection, and value coercion.
package codec

import (
	"bytes"
	"encoding/json"

	"github.com/rowkit/csvjson/value"
)

// Record is the ordered mapping from header name to Value from spec §3,
// preserving the column order from the first emitted header row. Unlike a
// plain map[string]interface{}, iterating Keys() and marshaling to JSON
// both honor that order.
type Record struct {
	keys   []string
	index  map[string]int
	values []value.Value
}

// NewRecord builds an empty Record.
func NewRecord() *Record {
	return &Record{index: make(map[string]int)}
}

// Keys returns the header names in column order.
func (r *Record) Keys() []string { return r.keys }

// Len reports the number of populated fields.
func (r *Record) Len() int { return len(r.keys) }

// Get returns the value for key and whether it was present.
func (r *Record) Get(key string) (value.Value, bool) {
	i, ok := r.index[key]
	if !ok {
		return value.Value{}, false
	}
	return r.values[i], true
}

// Set assigns key to v, appending key to the order if it is new.
func (r *Record) Set(key string, v value.Value) {
	if i, ok := r.index[key]; ok {
		r.values[i] = v
		return
	}
	r.index[key] = len(r.keys)
	r.keys = append(r.keys, key)
	r.values = append(r.values, v)
}

// Map renders the Record into a plain map[string]interface{} for callers
// that don't need to preserve order (e.g. passing to a JS runtime value).
func (r *Record) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r.keys))
	for i, k := range r.keys {
		out[k] = r.values[i].Interface()
	}
	return out
}

// MarshalJSON renders the Record as a JSON object with keys in column
// order, since Go's map[string]interface{} marshaling would otherwise
// silently re-sort them alphabetically and violate the header-order
// invariant (spec §3).
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RecordFromMap builds a Record from a generic map, taking its keys in the
// caller-supplied keyOrder rather than Go's (undefined) map iteration order.
// Only keys listed in keyOrder are copied; a listed key absent from m is set
// from a nil value.
func RecordFromMap(m map[string]interface{}, keyOrder []string) *Record {
	r := NewRecord()
	for _, k := range keyOrder {
		r.Set(k, value.FromInterface(m[k]))
	}
	return r
}
