package prop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "alice", String("alice")},
		{"int", 42, Int(42)},
		{"int64", int64(-3), Int(-3)},
		{"bool", true, Bool(true)},
		{"integral float", float64(100), Int(100)},
		{"slice", []any{"a", 1}, Array{String("a"), Int(1)}},
		{"map", map[string]any{"k": "v"}, Object{"k": String("v")}},
		{
			"nested",
			map[string]any{"props": map[string]any{"level": 10}},
			Object{"props": Object{"level": Int(10)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAny_RejectsFractionalFloat(t *testing.T) {
	_, err := FromAny(1.5)
	assert.Error(t, err)
}

func TestFromAny_YAMLStyleMap(t *testing.T) {
	got, err := FromAny(map[any]any{"level": 10})
	require.NoError(t, err)
	assert.Equal(t, Object{"level": Int(10)}, got)
}

func TestToAny_RoundTrip(t *testing.T) {
	obj := Object{
		"name":  String("hero"),
		"level": Int(10),
		"vip":   Bool(true),
		"note":  Null{},
		"gear":  Array{String("sword")},
		"meta":  Object{"zone": String("endgame")},
	}

	plain := obj.ToMap()
	back, err := ObjectFromAny(plain)
	require.NoError(t, err)
	assert.True(t, obj.Equal(back))
}
