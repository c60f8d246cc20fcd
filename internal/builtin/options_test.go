package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Defaults(t *testing.T) {
	var o Options
	s, err := o.String("x", "def")
	require.NoError(t, err)
	assert.Equal(t, "def", s)
	n, err := o.Int("n", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	b, err := o.Bool("b", true)
	require.NoError(t, err)
	assert.True(t, b)
	l, err := o.Strings("l")
	require.NoError(t, err)
	assert.Empty(t, l)
}

func TestOptions_Conversions(t *testing.T) {
	o := Options{
		"n":    float64(3),
		"i64":  int64(4),
		"list": []any{"a", "b"},
		"one":  "c",
		"env":  map[string]any{"K": "V"},
		"sub":  map[string]any{"timeoutMs": 10},
	}
	n, err := o.Int("n", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = o.Int("i64", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	l, err := o.Strings("list")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, l)
	l, err = o.Strings("one")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, l)
	m, err := o.StringMap("env")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"K": "V"}, m)
	sub, err := o.Sub("sub")
	require.NoError(t, err)
	n, err = sub.Int("timeoutMs", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestOptions_InvalidType(t *testing.T) {
	o := Options{"s": 1, "n": "x", "b": "yes"}
	_, err := o.String("s", "")
	assert.EqualError(t, err, "invalid type for option: s (expected string)")
	_, err = o.Int("n", 0)
	assert.Error(t, err)
	_, err = o.Bool("b", false)
	assert.Error(t, err)
}
