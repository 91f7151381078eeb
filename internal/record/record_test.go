package record

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Text(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), ""},
		{"string keeps spaces", String("  a "), "  a "},
		{"integer number", Number(5), "5"},
		{"fraction trims zeros", Number(5.50), "5.5"},
		{"negative", Number(-12.25), "-12.25"},
		{"large integer", Number(1234567890123), "1234567890123"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Text())
		})
	}
}

func TestValue_Normalized(t *testing.T) {
	assert.Equal(t, "5", String(" 5 ").Normalized())
	assert.Equal(t, String(" 5 ").Normalized(), Number(5).Normalized())
	assert.Equal(t, "", Null().Normalized())
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Number(5).Equal(Number(5)))
	assert.False(t, Number(5).Equal(String("5")), "exact equality is kind-sensitive")
	assert.True(t, Null().Equal(Value{}))
	assert.False(t, Bool(true).Equal(Bool(false)))
}

func TestInfer(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{"", Null()},
		{"   ", Null()},
		{"42", Number(42)},
		{"-3.5", Number(-3.5)},
		{"1e3", Number(1000)},
		{".5", Number(0.5)},
		{"0", Number(0)},
		{"0.25", Number(0.25)},
		{"007", String("007")},
		{"9007199254740991", Number(9007199254740991)},
		{"9007199254740992", String("9007199254740992")},
		{"-9007199254740993", String("-9007199254740993")},
		{"123456789012345678901234", String("123456789012345678901234")},
		{"9007199254740993.5", Number(9007199254740993.5)},
		{"TRUE", Bool(true)},
		{"false", Bool(false)},
		{"Project A", String("Project A")},
		{"12abc", String("12abc")},
		{"2024-01-15", String("2024-01-15")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Infer(tt.raw)
			assert.Truef(t, got.Equal(tt.want), "Infer(%q) = %v (%s), want %v (%s)",
				tt.raw, got.Text(), got.Kind(), tt.want.Text(), tt.want.Kind())
		})
	}
}

func TestRecord_SetKeepsInsertionOrder(t *testing.T) {
	var r Record
	r.Set("b", Number(1))
	r.Set("a", Number(2))
	r.Set("b", Number(3))

	assert.Equal(t, []string{"b", "a"}, r.Keys())
	v, ok := r.Get("b")
	require.True(t, ok)
	assert.True(t, v.Equal(Number(3)))
	assert.Equal(t, 2, r.Len())
}

func TestRecord_HasNullColumn(t *testing.T) {
	r := New("id", nil, "name", "A")
	assert.True(t, r.Has("id"))
	assert.False(t, r.Has("missing"))
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	r := New("id", 1)
	c := r.Clone()
	c.Set("id", Number(2))
	c.Set("extra", Null())

	v, _ := r.Get("id")
	assert.True(t, v.Equal(Number(1)))
	assert.Equal(t, 1, r.Len())
}

func TestRecord_JSONPreservesColumnOrder(t *testing.T) {
	input := `{"zeta":1,"alpha":"x","mid":null,"flag":true}`

	var r Record
	require.NoError(t, r.UnmarshalJSON([]byte(input)))
	assert.Equal(t, []string{"zeta", "alpha", "mid", "flag"}, r.Keys())

	out, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestRecord_UnmarshalRejectsNested(t *testing.T) {
	var r Record
	err := r.UnmarshalJSON([]byte(`{"id":1,"tags":["a","b"]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tags")
}

func TestDecodeSet(t *testing.T) {
	t.Run("empty input is an empty set", func(t *testing.T) {
		set, err := DecodeSet(bytes.NewReader(nil))
		require.NoError(t, err)
		assert.NotNil(t, set)
		assert.Empty(t, set)
	})

	t.Run("null document is an empty set", func(t *testing.T) {
		set, err := DecodeSet(bytes.NewReader([]byte("null")))
		require.NoError(t, err)
		assert.Empty(t, set)
	})

	t.Run("records in order", func(t *testing.T) {
		set, err := DecodeSet(bytes.NewReader([]byte(`[{"id":1},{"sku":"X","qty":5}]`)))
		require.NoError(t, err)
		require.Len(t, set, 2)
		assert.Equal(t, []string{"sku", "qty"}, set[1].Keys())
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := DecodeSet(bytes.NewReader([]byte(`[{"id":`)))
		assert.Error(t, err)
	})
}

func TestEncodeSet_NilIsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeSet(&buf, nil))
	assert.Equal(t, "[]", buf.String())
}

func TestEncodeSet_Indented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeSet(&buf, Set{New("id", 1, "name", "A")}))
	assert.Equal(t, "[\n  {\n    \"id\": 1,\n    \"name\": \"A\"\n  }\n]", buf.String())
}
