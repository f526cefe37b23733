package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// OrderedRecordDecoder pulls one Record at a time from a top-level JSON
// array, reusing decodeOrderedObject's key-order-preserving object walk so
// the streaming path and the eager DecodeOrderedRecords path never drift
// apart on semantics (spec §8: "the emitted record sequence is identical
// to the eager parse's output").
type OrderedRecordDecoder struct {
	dec     *json.Decoder
	started bool
	done    bool
}

// NewOrderedRecordDecoder wraps r, which must yield a single top-level JSON
// array of objects. The opening '[' token is consumed lazily, on the first
// call to Next, so an empty source never has to produce valid JSON.
func NewOrderedRecordDecoder(r io.Reader) *OrderedRecordDecoder {
	return &OrderedRecordDecoder{dec: json.NewDecoder(r)}
}

// Next returns the next Record, or io.EOF once the array's closing ']' has
// been consumed.
func (d *OrderedRecordDecoder) Next() (*Record, error) {
	if d.done {
		return nil, io.EOF
	}
	if !d.started {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			return nil, fmt.Errorf("expected a JSON array, got %v", tok)
		}
		d.started = true
	}

	if !d.dec.More() {
		if _, err := d.dec.Token(); err != nil {
			return nil, err
		}
		d.done = true
		return nil, io.EOF
	}
	return decodeOrderedObject(d.dec)
}

// NDJSONRecordDecoder reads one JSON object per line (newline-delimited
// JSON): unlike array framing, there is no shared bracket/comma scaffold to
// track, so each line is decoded independently through the same
// key-order-preserving object walk. This is safe as a plain line scan
// because a valid JSON string value never contains a raw newline byte —
// any '\n' inside a string is escaped as "\\n".
type NDJSONRecordDecoder struct {
	scanner *bufio.Scanner
}

// NewNDJSONRecordDecoder wraps r, one JSON object expected per line.
func NewNDJSONRecordDecoder(r io.Reader) *NDJSONRecordDecoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &NDJSONRecordDecoder{scanner: scanner}
}

// Next returns the next line's Record, skipping blank lines, or io.EOF.
func (d *NDJSONRecordDecoder) Next() (*Record, error) {
	for d.scanner.Scan() {
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		return decodeOrderedObject(dec)
	}
	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
