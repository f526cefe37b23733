package stream

import (
	"context"

	"github.com/rowkit/csvjson/codec"
)

// Tee duplicates a RecordIterator's output into two independent consumers
// — spec §4.F: "used by UIs for preview + download" — by running one
// goroutine that pulls from src and fans each record out to two
// channel-backed iterators, the same goroutine+channel shape urbint-ingest's
// Streamer uses to fan a single input channel into a worker loop.
//
// Both returned iterators must be drained (or Closed) by the caller; Tee's
// internal goroutine blocks on whichever branch is slower; if a consumer
// isn't going to finish draining, Close it so Tee's goroutine isn't stuck
// writing to it forever.
func Tee(ctx context.Context, src RecordIterator) (RecordIterator, RecordIterator) {
	const bufSize = 16
	a := &teeIterator{ch: make(chan teeItem, bufSize), done: make(chan struct{})}
	b := &teeIterator{ch: make(chan teeItem, bufSize), done: make(chan struct{})}

	go func() {
		defer close(a.ch)
		defer close(b.ch)
		defer src.Close()

		aLive, bLive := true, true
		for aLive || bLive {
			if !src.Next(ctx) {
				break
			}
			item := teeItem{rec: src.Record()}
			if aLive && !sendTee(ctx, a, item) {
				aLive = false
			}
			if bLive && !sendTee(ctx, b, item) {
				bLive = false
			}
		}
		if err := src.Err(); err != nil {
			item := teeItem{err: err}
			if aLive {
				sendTee(ctx, a, item)
			}
			if bLive {
				sendTee(ctx, b, item)
			}
		}
	}()

	return a, b
}

type teeItem struct {
	rec *codec.Record
	err error
}

func sendTee(ctx context.Context, it *teeIterator, item teeItem) bool {
	select {
	case it.ch <- item:
		return true
	case <-it.done:
		return false
	case <-ctx.Done():
		return false
	}
}

type teeIterator struct {
	ch   chan teeItem
	done chan struct{}

	cur         *codec.Record
	err         error
	skippedRows int64
	closed      bool
}

func (t *teeIterator) Next(ctx context.Context) bool {
	select {
	case item, ok := <-t.ch:
		if !ok {
			return false
		}
		if item.err != nil {
			t.err = item.err
			return false
		}
		t.cur = item.rec
		return true
	case <-ctx.Done():
		t.err = ctx.Err()
		return false
	}
}

func (t *teeIterator) Record() *codec.Record { return t.cur }
func (t *teeIterator) Err() error            { return t.err }
func (t *teeIterator) SkippedRows() int64    { return t.skippedRows }

func (t *teeIterator) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.done)
	return nil
}
