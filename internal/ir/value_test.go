package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Real(1.5)
	var _ Value = Bool(true)
}

func TestDecodeLiteral(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"string", `"Test"`, String("Test")},
		{"integer", `42`, Int(42)},
		{"negative integer", `-2000`, Int(-2000)},
		{"real", `1.25`, Real(1.25)},
		{"exponent is real", `1e3`, Real(1000)},
		{"integral with fraction is real", `3.0`, Real(3)},
		{"beyond int64 is real", `9223372036854775808`, Real(9223372036854775808)},
		{"bool", `true`, Bool(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLiteral([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeLiteral_Rejects(t *testing.T) {
	for _, input := range []string{`null`, `[1]`, `{"a":1}`, ``, `"a" "b"`} {
		t.Run(input, func(t *testing.T) {
			_, err := DecodeLiteral([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(7)
	require.NoError(t, err)
	assert.Equal(t, Int(7), v)

	v, err = FromAny(json.Number("2.5"))
	require.NoError(t, err)
	assert.Equal(t, Real(2.5), v)

	_, err = FromAny(nil)
	assert.Error(t, err)

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestNative(t *testing.T) {
	assert.Equal(t, "a", Native(String("a")))
	assert.Equal(t, int64(3), Native(Int(3)))
	assert.Equal(t, 0.5, Native(Real(0.5)))
	assert.Equal(t, true, Native(Bool(true)))
}

func TestDocument_MarshalJSONKeepsOrder(t *testing.T) {
	doc := Document{
		{Name: "title", Value: String("Test")},
		{Name: "pub_date", Value: Int(0)},
		{Name: "score", Value: Real(0.5)},
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Test","pub_date":0,"score":0.5}`, string(data))
}

func TestDocument_Get(t *testing.T) {
	doc := Document{{Name: "title", Value: String("Test")}}

	v, ok := doc.Get("title")
	require.True(t, ok)
	assert.Equal(t, String("Test"), v)

	_, ok = doc.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"title"}, doc.Names())
	assert.Equal(t, map[string]any{"title": "Test"}, doc.Native())
}
