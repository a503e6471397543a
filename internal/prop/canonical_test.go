package prop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"null", Null{}, `null`},
		{"string", String("hello"), `"hello"`},
		{"int", Int(42), `42`},
		{"negative int", Int(-7), `-7`},
		{"true", Bool(true), `true`},
		{"false", Bool(false), `false`},
		{"empty array", Array{}, `[]`},
		{"empty object", Object{}, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_ObjectKeyOrder(t *testing.T) {
	obj := Object{
		"b": Int(2),
		"a": Int(1),
		"c": Int(3),
	}

	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical(String("<a> & </a>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a> & </a>"`, string(got))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// e + combining acute accent normalizes to precomposed U+00E9.
	decomposed := String("e\u0301")
	got, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonical_LineSeparatorsUnescaped(t *testing.T) {
	got, err := MarshalCanonical(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(got))
}

func TestMarshalCanonical_EscapedBackslashU2028Preserved(t *testing.T) {
	// A literal backslash followed by the text "u2028" must stay escaped.
	got, err := MarshalCanonical(String(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(got))
}

func TestMarshalCanonical_Nested(t *testing.T) {
	obj := Object{
		"entity": String("account:alice"),
		"props": Object{
			"balance": Int(-50),
			"tags":    Array{String("overdraft"), Bool(true)},
		},
	}

	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"entity":"account:alice","props":{"balance":-50,"tags":["overdraft",true]}}`, string(got))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	obj := Object{"z": Int(1), "a": Array{Object{"k": String("v")}}, "m": Bool(false)}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalCanonical_UntypedNilRejected(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)
}
