package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOrderedRecords_PreservesKeyOrder(t *testing.T) {
	records, err := DecodeOrderedRecords([]byte(`[{"z":1,"a":2,"m":3}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"z", "a", "m"}, records[0].Keys())
}

func TestDecodeOrderedRecords_NestedValueFlattensToCompactJSON(t *testing.T) {
	records, err := DecodeOrderedRecords([]byte(`[{"a":{"b":1},"c":[1,2,3]}]`))
	require.NoError(t, err)
	v, ok := records[0].Get("a")
	require.True(t, ok)
	assert.Equal(t, `{"b":1}`, v.String())
}
