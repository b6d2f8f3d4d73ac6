package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := map[string]Money{
		"80000":    8000000,
		"80000.00": 8000000,
		"12.5":     1250,
		"-3.07":    -307,
		" 0.01 ":   1,
	}
	for in, want := range cases {
		got, err := ParseMoney(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "abc", "1.234", "1.", ".5", "12.-5", "1.+5", "--1", "+-1", "-", "1 .5"} {
		_, err := ParseMoney(bad)
		assert.ErrorIs(t, err, ErrInvalidMoney, bad)
	}
}

func TestMoneyHalfRoundsUp(t *testing.T) {
	assert.Equal(t, Money(4000000), Money(8000000).Half())
	assert.Equal(t, Money(51), Money(101).Half())
	assert.Equal(t, Money(0), Money(0).Half())
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "80000.00", Money(8000000).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-1.20", Money(-120).String())
}

func TestMoneyJSONAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"10.50","b":7}`), &v))
	assert.Equal(t, Money(1050), v.A)
	assert.Equal(t, Money(700), v.B)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"10.50","b":"7.00"}`, string(out))
}
