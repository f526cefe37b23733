package stream

import (
	"context"
	"io"
	"strings"

	"golang.org/x/time/rate"

	"github.com/rowkit/csvjson/codec"
	"github.com/rowkit/csvjson/csverr"
	"github.com/rowkit/csvjson/delim"
	"github.com/rowkit/csvjson/fastpath"
	"github.com/rowkit/csvjson/option"
)

// ProgressFunc reports cumulative rows emitted and bytes consumed (spec
// §4.F: "Row count and byte count are reported via a progress callback at
// configurable intervals").
type ProgressFunc func(rowsEmitted, bytesConsumed int64)

// OnRowErrorFunc lets a caller recover from a per-row parse failure mid
// stream (spec §4.F): returning (nil, true) skips the row (incrementing
// SkippedRows); returning (rec, true) substitutes rec for the failed row;
// returning handled == false keeps the error terminal. A nil OnRowErrorFunc
// makes any row-level error terminal.
type OnRowErrorFunc func(err error, rowText string, rowNumber int64) (replacement *codec.Record, handled bool)

// CsvStreamOptions configures CsvToJsonStream.
type CsvStreamOptions struct {
	Conv option.Options

	// ProgressEveryRows reports every Nth row; <= 0 reports every row.
	ProgressEveryRows int64
	OnProgress        ProgressFunc

	// RateLimiter, if set, paces row emission (spec §4.F backpressure).
	RateLimiter *rate.Limiter

	OnRowError OnRowErrorFunc
}

// RecordIterator is the pull-based stream handle of spec §4.F, shaped
// after Carlodf-cetl's RecordIterator (Next/Record/Err/Close): the
// consumer calling Next is itself the backpressure mechanism — no row is
// produced before the previous one was accepted.
type RecordIterator interface {
	Next(ctx context.Context) bool
	Record() *codec.Record
	Err() error
	Close() error
	SkippedRows() int64
}

type csvRecordIterator struct {
	*Control

	source ChunkSource
	opt    CsvStreamOptions
	engine *fastpath.Engine
	cache  *delim.Cache

	delimiter        rune
	headers          []string
	projectedHeaders []string
	headersResolved  bool

	carry   string
	pending []string
	line    int64

	rowsEmitted   int64
	bytesConsumed int64
	skippedRows   int64

	cur       *codec.Record
	err       error
	exhausted bool
}

// CsvToJsonStream builds a lazy, chunked CSV->JSON record stream (spec
// §4.F). engine/cache may be nil to use the package defaults.
func CsvToJsonStream(source ChunkSource, opt CsvStreamOptions, engine *fastpath.Engine, cache *delim.Cache) RecordIterator {
	if engine == nil {
		engine = fastpath.Default()
	}
	if cache == nil {
		cache = delim.Default()
	}
	return &csvRecordIterator{
		Control: newControl(),
		source:  source,
		opt:     opt,
		engine:  engine,
		cache:   cache,
	}
}

func (it *csvRecordIterator) Err() error            { return it.err }
func (it *csvRecordIterator) Record() *codec.Record { return it.cur }
func (it *csvRecordIterator) Close() error          { return it.source.Close() }
func (it *csvRecordIterator) SkippedRows() int64    { return it.skippedRows }

// Next advances to the next record (spec §4.F). It returns false on clean
// end-of-stream, on a terminal error (check Err), or once Cancel has fired.
func (it *csvRecordIterator) Next(ctx context.Context) bool {
	if it.exhausted {
		return false
	}
	if err := it.Control.waitIfPaused(ctx); err != nil {
		it.err = err
		it.exhausted = true
		return false
	}

	for {
		if len(it.pending) > 0 {
			rowText := it.pending[0]
			it.pending = it.pending[1:]
			it.line++

			rec, skip, err := it.materialize(rowText)
			if err != nil {
				it.err = err
				it.exhausted = true
				return false
			}
			if skip {
				continue
			}
			it.cur = rec
			it.rowsEmitted++
			it.reportProgress()
			if it.opt.RateLimiter != nil {
				if err := it.opt.RateLimiter.Wait(ctx); err != nil {
					it.err = err
					it.exhausted = true
					return false
				}
			}
			return true
		}

		if err := it.Control.waitIfPaused(ctx); err != nil {
			it.err = err
			it.exhausted = true
			return false
		}

		chunk, readErr := it.source.Next(ctx)
		it.bytesConsumed += int64(len(chunk))
		if len(chunk) > 0 {
			rows, remainder, _ := extractCompleteRows(it.carry + string(chunk))
			it.carry = remainder
			it.pending = append(it.pending, rows...)
		}

		if readErr == nil {
			continue
		}
		if readErr != io.EOF {
			it.err = readErr
			it.exhausted = true
			return false
		}

		// EOF: flush the carry buffer as a final row, or fail on an
		// unclosed quote (spec §4.F).
		_, _, insideQuotes := extractCompleteRows(it.carry)
		if insideQuotes {
			it.err = csverr.UnclosedQuotes(int(it.line) + 1)
			it.exhausted = true
			return false
		}
		if strings.TrimSpace(it.carry) != "" {
			it.pending = append(it.pending, it.carry)
			it.carry = ""
			continue
		}
		it.exhausted = true
		return false
	}
}

func (it *csvRecordIterator) reportProgress() {
	if it.opt.OnProgress == nil {
		return
	}
	every := it.opt.ProgressEveryRows
	if every <= 0 || it.rowsEmitted%every == 0 {
		it.opt.OnProgress(it.rowsEmitted, it.bytesConsumed)
	}
}

// materialize resolves the delimiter/header set from the first row seen,
// splits rowText into fields via the Fast-Path Engine, and returns the
// materialized Record (skip == true means the caller should drop this
// row and keep going: the header row, a blank row, or a row an OnRowError
// handler chose to skip; only the last counts toward SkippedRows).
func (it *csvRecordIterator) materialize(rowText string) (*codec.Record, bool, error) {
	if !it.headersResolved {
		it.delimiter = it.opt.Conv.Delimiter
		if it.delimiter == 0 {
			it.delimiter = codec.ResolveDelimiter(rowText, it.opt.Conv, it.cache)
		}
	}

	fields, err := it.engine.Parse(rowText, fastpath.Options{
		Delimiter:        it.delimiter,
		Trim:             it.opt.Conv.Trim,
		RFC4180Compliant: it.opt.Conv.RFC4180Compliant,
	})
	if err != nil {
		return it.recoverRow(err, rowText)
	}
	if len(fields) == 0 {
		return nil, true, nil
	}
	row := fields[0]

	if !it.headersResolved {
		it.headersResolved = true
		if it.opt.Conv.HasHeaders {
			it.headers = codec.RenameHeaders(row, it.opt.Conv.RenameMap)
			it.setProjectedHeaders()
			return nil, true, nil
		}
		it.headers = codec.SynthesizeColumnHeaders(len(row))
		it.setProjectedHeaders()
	}

	rec := codec.MaterializeRow(row, it.headers, it.projectedHeaders, it.opt.Conv)
	return rec, false, nil
}

func (it *csvRecordIterator) setProjectedHeaders() {
	if option.HasTemplate(it.opt.Conv.Template) {
		it.projectedHeaders = option.TemplateKeys(it.opt.Conv.Template)
		return
	}
	it.projectedHeaders = it.headers
}

func (it *csvRecordIterator) recoverRow(err error, rowText string) (*codec.Record, bool, error) {
	if it.opt.OnRowError == nil {
		return nil, false, err
	}
	rec, handled := it.opt.OnRowError(err, rowText, it.line)
	if !handled {
		return nil, false, err
	}
	if rec == nil {
		it.skippedRows++
		return nil, true, nil
	}
	return rec, false, nil
}
