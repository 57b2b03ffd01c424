package camunda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/medcart/internal/apperr"
)

func vars(name string, value any) Variables {
	return Variables{name: Variable{Value: value}}
}

func TestFloatDecodeLadder(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  float64
	}{
		{"native number", 9.0, 9},
		{"string number", "9", 9},
		{"quoted string number", `"9"`, 9},
		{"double quoted", `""9""`, 9},
		{"fraction", "2.5", 2.5},
		{"padded", " 7 ", 7},
		{"int", 3, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := vars("amount", tc.value).Float("amount")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFloatDecodeError(t *testing.T) {
	for _, bad := range []any{"abc", true, nil, []any{1}} {
		_, err := vars("amount", bad).Float("amount")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindDecoding))
		assert.Contains(t, err.Error(), "Invalid amount format")
	}
}

func TestIntDecodeLadder(t *testing.T) {
	cases := []struct {
		value any
		want  int64
	}{
		{42.0, 42},
		{"42", 42},
		{`"42"`, 42},
		{int64(7), 7},
	}
	for _, tc := range cases {
		got, err := vars("cart_id", tc.value).Int("cart_id")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := vars("cart_id", "n/a").Int("cart_id")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindDecoding))
}

func TestString(t *testing.T) {
	assert.Equal(t, "opioid-001", vars("id", "opioid-001").String("id"))
	assert.Equal(t, "opioid-001", vars("id", `"opioid-001"`).String("id"))
	assert.Equal(t, "", vars("id", nil).String("id"))
	assert.Equal(t, "", Variables{}.String("missing"))
	assert.Equal(t, "7", vars("id", 7).String("id"))
}

func TestBool(t *testing.T) {
	assert.True(t, vars("f", true).Bool("f"))
	assert.True(t, vars("f", "true").Bool("f"))
	assert.True(t, vars("f", `"true"`).Bool("f"))
	assert.True(t, vars("f", 1.0).Bool("f"))
	assert.True(t, vars("f", "yes").Bool("f")) // непустая строка истинна

	assert.False(t, vars("f", false).Bool("f"))
	assert.False(t, vars("f", "false").Bool("f"))
	assert.False(t, vars("f", 0.0).Bool("f"))
	assert.False(t, vars("f", "").Bool("f"))
	assert.False(t, vars("f", nil).Bool("f"))
	assert.False(t, Variables{}.Bool("missing"))
}

func TestList(t *testing.T) {
	parsed := []any{map[string]any{"name": "Fentanyl"}}
	got, err := vars("checklist", parsed).List("checklist")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Fentanyl", got[0]["name"])

	got, err = vars("checklist", `[{"name":"Propofol"}]`).List("checklist")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Propofol", got[0]["name"])

	got, err = vars("checklist", nil).List("checklist")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = vars("checklist", "not json").List("checklist")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindDecoding))

	_, err = vars("checklist", []any{"scalar"}).List("checklist")
	require.Error(t, err)
}

func TestNewVariablesTyping(t *testing.T) {
	out := NewVariables(map[string]any{
		"ok":     true,
		"name":   "cart",
		"count":  3,
		"id":     int64(9),
		"amount": 2.5,
		"cart":   map[string]any{"id": 1},
		"none":   nil,
	})

	assert.Equal(t, Variable{Value: true, Type: "Boolean"}, out["ok"])
	assert.Equal(t, Variable{Value: "cart", Type: "String"}, out["name"])
	assert.Equal(t, Variable{Value: 3, Type: "Integer"}, out["count"])
	assert.Equal(t, Variable{Value: int64(9), Type: "Long"}, out["id"])
	assert.Equal(t, Variable{Value: 2.5, Type: "Double"}, out["amount"])
	assert.Equal(t, Variable{Value: `{"id":1}`, Type: "Json"}, out["cart"])
	assert.Equal(t, Variable{Type: "Null"}, out["none"])
}

func TestHas(t *testing.T) {
	assert.True(t, vars("x", "v").Has("x"))
	assert.False(t, vars("x", nil).Has("x"))
	assert.False(t, Variables{}.Has("x"))
}
