package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFee(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
		ok       bool
	}{
		{name: "plain integer", raw: "150", expected: 150, ok: true},
		{name: "plain decimal", raw: "1200.50", expected: 1200.5, ok: true},
		{name: "dot thousands with currency suffix", raw: "500.000 VND", expected: 500000, ok: true},
		{name: "multiple dot groups", raw: "1.234.567", expected: 1234567, ok: true},
		{name: "comma thousands", raw: "12,500", expected: 12500, ok: true},
		{name: "comma thousands dot decimals", raw: "1,200.50", expected: 1200.5, ok: true},
		{name: "dot thousands comma decimals", raw: "1.200,50", expected: 1200.5, ok: true},
		{name: "comma decimals", raw: "99,95", expected: 99.95, ok: true},
		{name: "currency prefix", raw: "NGN 25000", expected: 25000, ok: true},
		{name: "unparseable text", raw: "N/A", ok: false},
		{name: "empty", raw: "", ok: false},
		{name: "no digits", raw: "free", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ParseFee(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, value, 0.001)
			}
		})
	}
}
