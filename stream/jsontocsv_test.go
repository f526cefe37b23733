package stream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowkit/csvjson/option"
)

func collectLines(t *testing.T, it LineIterator) []string {
	t.Helper()
	var out []string
	for it.Next(context.Background()) {
		out = append(out, it.Text())
	}
	require.NoError(t, it.Err())
	return out
}

func TestJsonToCsvStream_ArrayFraming(t *testing.T) {
	input := `[{"name":"Ada","age":36},{"name":"Grace","age":85}]`
	opt := option.Default()
	src := newFakeChunkSource(splitIntoChunks(input, 7))

	it := JsonToCsvStream(src, JsonStreamOptions{Conv: opt, Framing: FramingArray})
	lines := collectLines(t, it)

	require.Len(t, lines, 3)
	assert.Equal(t, "name,age", lines[0])
	assert.Equal(t, "Ada,36", lines[1])
	assert.Equal(t, "Grace,85", lines[2])
}

func TestJsonToCsvStream_NDJSONFraming(t *testing.T) {
	input := "{\"name\":\"Ada\",\"age\":36}\n{\"name\":\"Grace\",\"age\":85}\n"
	opt := option.Default()
	src := newFakeChunkSource(splitIntoChunks(input, 5))

	it := JsonToCsvStream(src, JsonStreamOptions{Conv: opt, Framing: FramingNDJSON})
	lines := collectLines(t, it)

	require.Len(t, lines, 3)
	assert.Equal(t, "name,age", lines[0])
	assert.Equal(t, "Ada,36", lines[1])
	assert.Equal(t, "Grace,85", lines[2])
}

func TestJsonToCsvStream_NoHeadersOmitsHeaderLine(t *testing.T) {
	input := `[{"a":1},{"a":2}]`
	opt := option.Default()
	opt.IncludeHeaders = false
	src := newFakeChunkSource(splitIntoChunks(input, 4))

	it := JsonToCsvStream(src, JsonStreamOptions{Conv: opt, Framing: FramingArray})
	lines := collectLines(t, it)

	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0])
	assert.Equal(t, "2", lines[1])
}

func TestJsonToCsvStream_EmptyArrayYieldsNoLines(t *testing.T) {
	opt := option.Default()
	src := newFakeChunkSource(splitIntoChunks(`[]`, 1))

	it := JsonToCsvStream(src, JsonStreamOptions{Conv: opt, Framing: FramingArray})
	lines := collectLines(t, it)
	assert.Empty(t, lines)
}

func splitIntoChunks(s string, size int) [][]byte {
	var out [][]byte
	for len(s) > 0 {
		n := size
		if n > len(s) {
			n = len(s)
		}
		out = append(out, []byte(s[:n]))
		s = s[n:]
	}
	if out == nil {
		out = append(out, []byte(""))
	}
	return out
}
