package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rowkit/csvjson/value"
)

// DecodeOrderedRecords parses a top-level JSON array of objects into
// Records, preserving each object's own key order the way a JS engine's
// object would — something encoding/json's map[string]interface{} decoding
// does not give you, since it sorts keys on the way back out. This follows
// the teacher's own token-by-token array consumption (streamloader's
// LoadJSON: consume '[' token, loop on dec.More(), consume ']' token) one
// level deeper, token-walking each element's object too.
func DecodeOrderedRecords(data []byte) ([]*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("expected a JSON array, got %v", tok)
	}

	var records []*Record
	for dec.More() {
		rec, err := decodeOrderedObject(dec)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeOrderedObject(dec *json.Decoder) (*Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	rec := NewRecord()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string object key, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		rec.Set(key, value.FromInterface(v))
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rec, nil
}
