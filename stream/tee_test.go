package stream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowkit/csvjson/option"
)

func TestTee_BothBranchesSeeEveryRecord(t *testing.T) {
	opt := option.Default()
	src := newFakeChunkSource([][]byte{[]byte("a,b\n1,2\n3,4\n5,6\n")})
	base := CsvToJsonStream(src, CsvStreamOptions{Conv: opt}, nil, nil)

	ctx := context.Background()
	a, b := Tee(ctx, base)

	wantA := collectRecords(t, a)
	wantB := collectRecords(t, b)

	require.Len(t, wantA, 3)
	require.Len(t, wantB, 3)
	for i := range wantA {
		assert.Equal(t, recordToMap(wantA[i]), recordToMap(wantB[i]))
	}
}

func TestTee_ClosingOneBranchDoesNotHangTheOther(t *testing.T) {
	opt := option.Default()
	src := newFakeChunkSource([][]byte{[]byte("a,b\n1,2\n3,4\n5,6\n")})
	base := CsvToJsonStream(src, CsvStreamOptions{Conv: opt}, nil, nil)

	ctx := context.Background()
	a, b := Tee(ctx, base)
	require.NoError(t, a.Close())

	recs := collectRecords(t, b)
	assert.Len(t, recs, 3)
}
