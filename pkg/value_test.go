package maqui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueEqual(t *testing.T) {
	cases := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"nil equals nil", Nil, Nil, true},
		{"same integer", Integer(3), Integer(3), true},
		{"different integer", Integer(3), Integer(4), false},
		{"integer and equal-valued float differ", Integer(3), Float(3), false},
		{"same string", String("a"), String("a"), true},
		{"different string", String("a"), String("b"), false},
		{"same boolean", Boolean(true), Boolean(true), true},
		{"different boolean", Boolean(true), Boolean(false), false},
		{"different type never equal", Nil, Boolean(false), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.equal, c.a.Equal(c.b))
		})
	}
}

func TestValueTableEqualityIsByIdentity(t *testing.T) {
	t1 := NewTable(0, 0)
	t2 := NewTable(0, 0)

	a := TableValue(t1)
	b := TableValue(t1)
	c := TableValue(t2)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestValueDisplay(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Nil, "nil"},
		{Boolean(true), "true"},
		{Boolean(false), "false"},
		{Integer(42), "42"},
		{Float(150), "150.0"},
		{Float(3.14), "3.14"},
		{String("hello, world!"), "'hello, world!'"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, c.v.Display())
	}
}

func TestValueAsAccessorsRoundTrip(t *testing.T) {
	assert.Equal(t, true, Boolean(true).AsBool())
	assert.Equal(t, int64(7), Integer(7).AsInt())
	assert.Equal(t, 2.5, Float(2.5).AsFloat())
	assert.Equal(t, "s", String("s").AsString())

	tbl := NewTable(0, 0)
	assert.Same(t, tbl, TableValue(tbl).AsTable())
}

func TestValueIsNil(t *testing.T) {
	assert.True(t, Nil.IsNil())
	assert.False(t, Integer(0).IsNil())
	assert.False(t, Boolean(false).IsNil())
}
