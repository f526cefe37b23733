package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceFromText_Numbers(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		opt  CoerceOptions
		want Value
	}{
		{"int", "42", CoerceOptions{ParseNumbers: true}, FromInt(42)},
		{"float", "3.14", CoerceOptions{ParseNumbers: true}, FromFloat(3.14)},
		{"leading zero stays text", "007", CoerceOptions{ParseNumbers: true}, FromText("007")},
		{"plus sign stays text", "+5", CoerceOptions{ParseNumbers: true}, FromText("+5")},
		{"numbers off", "42", CoerceOptions{ParseNumbers: false}, FromText("42")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CoerceFromText(tc.raw, tc.opt)
			assert.Equal(t, tc.want.Kind(), got.Kind())
			assert.Equal(t, tc.want.String(), got.String())
		})
	}
}

func TestCoerceFromText_Booleans(t *testing.T) {
	got := CoerceFromText("TRUE", CoerceOptions{ParseBooleans: true})
	require.Equal(t, KindBool, got.Kind())
	b, ok := got.Bool()
	require.True(t, ok)
	assert.True(t, b)

	got = CoerceFromText("TRUE", CoerceOptions{ParseBooleans: false})
	assert.Equal(t, KindText, got.Kind())
}

func TestCoerceFromText_TrimHappensOnText(t *testing.T) {
	got := CoerceFromText("  hello  ", CoerceOptions{Trim: true})
	s, ok := got.Text()
	require.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestValue_StringRendering(t *testing.T) {
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "true", FromBool(true).String())
	assert.Equal(t, "false", FromBool(false).String())
	assert.Equal(t, "42", FromInt(42).String())
	assert.Equal(t, "3.14", FromFloat(3.14).String())
	assert.Equal(t, "hi", FromText("hi").String())
}

func TestFromInterface(t *testing.T) {
	assert.Equal(t, KindNull, FromInterface(nil).Kind())
	assert.Equal(t, KindBool, FromInterface(true).Kind())
	assert.Equal(t, KindFloat, FromInterface(float64(1.5)).Kind())
	assert.Equal(t, KindText, FromInterface("x").Kind())
}
