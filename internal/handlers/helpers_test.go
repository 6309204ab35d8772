package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		cents   int64
		wantErr bool
	}{
		{"150.50", 15_050, false},
		{"0.01", 1, false},
		{"1000000", 100_000_000, false},
		{"10.5", 1_050, false},
		{"10.999", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		cents, err := parseAmount(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.cents, cents, tc.in)
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "150.50", formatCents(15_050))
	assert.Equal(t, "0.01", formatCents(1))
	assert.Equal(t, "0.00", formatCents(0))
	assert.Equal(t, "-25.00", formatCents(-2_500))
}
