package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUIDelegatedAmount(t *testing.T) {
	tests := []struct {
		name     string
		token    Token
		expected string
	}{
		{name: "no decimals", token: Token{DelegatedAmount: "1000"}, expected: "1000"},
		{name: "six decimals", token: Token{DelegatedAmount: "1500000", Decimals: 6}, expected: "1.5"},
		{name: "max u64 keeps precision", token: Token{DelegatedAmount: "18446744073709551615", Decimals: 9}, expected: "18446744073.709551615"},
		{name: "not a number", token: Token{DelegatedAmount: "n/a", Decimals: 6}, expected: "n/a"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.token.UIDelegatedAmount())
		})
	}
}
