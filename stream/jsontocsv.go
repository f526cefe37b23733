package stream

import (
	"context"
	"io"

	"github.com/rowkit/csvjson/codec"
	"github.com/rowkit/csvjson/option"
)

// InputFraming selects how JsonToCsvStream's source is framed.
type InputFraming int

const (
	// FramingArray expects a single top-level JSON array of objects.
	FramingArray InputFraming = iota
	// FramingNDJSON expects one JSON object per line.
	FramingNDJSON
)

// JsonStreamOptions configures JsonToCsvStream.
type JsonStreamOptions struct {
	Conv    option.Options
	Framing InputFraming
}

// LineIterator is JsonToCsvStream's pull handle: each Next call produces
// one rendered CSV line (the header line first, when opt.Conv.IncludeHeaders
// is set), following the same Next/Text/Err/Close shape as RecordIterator.
type LineIterator interface {
	Next(ctx context.Context) bool
	Text() string
	Err() error
	Close() error
}

type jsonLineIterator struct {
	*Control

	closer io.Closer
	opt    JsonStreamOptions

	recordsNext func() (*codec.Record, error)

	headers       []string
	headerEmitted bool
	pendingFirst  *codec.Record
	haveFirst     bool

	cur       string
	err       error
	exhausted bool
}

// JsonToCsvStream builds a lazy JSON->CSV line stream (spec §4.F). source
// is adapted to an io.Reader for the JSON decoders, so this direction reads
// through the same ChunkSource abstraction as the CSV->JSON stream.
func JsonToCsvStream(source ChunkSource, opt JsonStreamOptions) LineIterator {
	r := newChunkSourceReader(source)
	it := &jsonLineIterator{Control: newControl(), closer: source, opt: opt}

	switch opt.Framing {
	case FramingNDJSON:
		dec := codec.NewNDJSONRecordDecoder(r)
		it.recordsNext = dec.Next
	default:
		dec := codec.NewOrderedRecordDecoder(r)
		it.recordsNext = dec.Next
	}
	return it
}

func (it *jsonLineIterator) Text() string { return it.cur }
func (it *jsonLineIterator) Err() error   { return it.err }
func (it *jsonLineIterator) Close() error { return it.closer.Close() }

func (it *jsonLineIterator) Next(ctx context.Context) bool {
	if it.exhausted {
		return false
	}
	if err := it.Control.waitIfPaused(ctx); err != nil {
		it.err = err
		it.exhausted = true
		return false
	}

	if !it.haveFirst {
		rec, err := it.recordsNext()
		if err != nil {
			if err == io.EOF {
				it.exhausted = true
				return false
			}
			it.err = err
			it.exhausted = true
			return false
		}
		it.pendingFirst = rec
		it.haveFirst = true
		it.headers = codec.DeriveStreamHeaders(rec, it.opt.Conv)
	}

	if it.opt.Conv.IncludeHeaders && !it.headerEmitted {
		it.headerEmitted = true
		it.cur = codec.RenderHeaderLine(it.headers, it.opt.Conv)
		return true
	}

	var rec *codec.Record
	if it.pendingFirst != nil {
		rec = it.pendingFirst
		it.pendingFirst = nil
	} else {
		next, err := it.recordsNext()
		if err != nil {
			if err == io.EOF {
				it.exhausted = true
				return false
			}
			it.err = err
			it.exhausted = true
			return false
		}
		rec = next
	}

	it.cur = codec.RenderRecordLine(rec, it.headers, it.opt.Conv)
	return true
}

// chunkSourceReader adapts a ChunkSource to io.Reader so encoding/json's
// own incremental Decoder can pull from it directly, the same pairing
// Carlodf-cetl's transform package uses an io.Reader underneath its
// Extractor for.
type chunkSourceReader struct {
	ctx    context.Context
	source ChunkSource
	buf    []byte
	err    error
}

func newChunkSourceReader(source ChunkSource) *chunkSourceReader {
	return &chunkSourceReader{ctx: context.Background(), source: source}
}

func (r *chunkSourceReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		chunk, err := r.source.Next(r.ctx)
		r.buf = append(r.buf, chunk...)
		if err != nil {
			r.err = err
		}
		if len(r.buf) == 0 && r.err != nil {
			return 0, r.err
		}
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
