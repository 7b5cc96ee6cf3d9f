package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/notesql/internal/ir"
)

func TestParseFilter_Wire(t *testing.T) {
	f, err := ParseFilter([]byte(`[[["title","=","Test"],"AND"],[["pub_date",">",-5],"OR"],[["rating","<=",4.5],""]]`))
	require.NoError(t, err)

	want := Where(Cond("title", OpEq, ir.String("Test"))).
		And(Cond("pub_date", OpGt, ir.Int(-5))).
		Or(Cond("rating", OpLe, ir.Real(4.5)))
	assert.Equal(t, want, f)
}

func TestParseFilter_EmptyMeansMatchAll(t *testing.T) {
	for _, in := range []string{``, `  `, `[]`, `null`} {
		f, err := ParseFilter([]byte(in))
		require.NoError(t, err, "input %q", in)
		assert.NotNil(t, f)
		assert.Empty(t, f)
	}
}

func TestParseFilter_KeepsUnknownOperatorForValidation(t *testing.T) {
	f, err := ParseFilter([]byte(`[[["title","LIKE","T%"],""]]`))
	require.NoError(t, err)
	assert.Equal(t, Operator("LIKE"), f[0].Condition.Op)
	assert.False(t, f.Valid(notesSchema(t)))
}

func TestParseFilter_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  Code
	}{
		{"not an array", `{"title":"x"}`, ErrCodeMalformedFilter},
		{"condition too short", `[[["title","="],""]]`, ErrCodeMalformedFilter},
		{"clause too long", `[[["title","=","a"],"","x"]]`, ErrCodeMalformedFilter},
		{"column not string", `[[[1,"=","a"],""]]`, ErrCodeMalformedFilter},
		{"connector not string", `[[["title","=","a"],1]]`, ErrCodeMalformedFilter},
		{"null literal", `[[["title","=",null],""]]`, ErrCodeMalformedLiteral},
		{"object literal", `[[["title","=",{"a":1}],""]]`, ErrCodeMalformedLiteral},
		{"syntax error", `[[["title","=","a"],""`, ErrCodeMalformedFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilter([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestFilter_MarshalJSON(t *testing.T) {
	f := Where(Cond("title", OpEq, ir.String("Test"))).And(Cond("pub_date", OpLt, ir.Int(3)))
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `[[["title","=","Test"],"AND"],[["pub_date","<",3],""]]`, string(data))

	data, err = json.Marshal(Filter(nil))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestParseUpdater_Wire(t *testing.T) {
	u, err := ParseUpdater([]byte(`{"set":{"pub_date":-2000},"at":[[["title","=","Test"],""]]}`))
	require.NoError(t, err)

	assert.Equal(t, map[string]ir.Value{"pub_date": ir.Int(-2000)}, u.Set)
	assert.Equal(t, Where(Cond("title", OpEq, ir.String("Test"))), u.At)
}

func TestParseUpdater_EmptySetDecodesButFailsValidation(t *testing.T) {
	u, err := ParseUpdater([]byte(`{"set":{},"at":[]}`))
	require.NoError(t, err)
	assert.True(t, IsCode(u.Validate(notesSchema(t)), ErrCodeEmptyUpdateSet))
}

func TestParseUpdater_Malformed(t *testing.T) {
	_, err := ParseUpdater([]byte(`{"set":{"pub_date":null}}`))
	assert.True(t, IsCode(err, ErrCodeMalformedLiteral))

	_, err = ParseUpdater([]byte(`{"set":{"pub_date":1},"where":[]}`))
	assert.True(t, IsCode(err, ErrCodeMalformedFilter), "unknown field")

	_, err = ParseUpdater([]byte(`{"set":{"pub_date":1},"at":[[["title","=",[1]],""]]}`))
	assert.True(t, IsCode(err, ErrCodeMalformedLiteral), "literal error inside at keeps its code")

	_, err = ParseUpdater([]byte(`[]`))
	assert.True(t, IsCode(err, ErrCodeMalformedFilter))
}

func TestUpdater_MarshalJSON(t *testing.T) {
	u := Updater{
		Set: map[string]ir.Value{"title": ir.String("New"), "pub_date": ir.Int(1)},
	}
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Equal(t, `{"set":{"pub_date":1,"title":"New"},"at":[]}`, string(data))
}

func TestParseValues(t *testing.T) {
	vals, err := ParseValues([]byte(`{"title":"Test","pub_date":0}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]ir.Value{"title": ir.String("Test"), "pub_date": ir.Int(0)}, vals)

	_, err = ParseValues([]byte(`["title"]`))
	assert.True(t, IsCode(err, ErrCodeMalformedFilter))

	_, err = ParseValues([]byte(`{"title":null}`))
	assert.True(t, IsCode(err, ErrCodeMalformedLiteral))
}
