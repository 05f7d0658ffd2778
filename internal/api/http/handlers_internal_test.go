package http

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldservice-backend/internal/domain"
)

func TestParseCents(t *testing.T) {
	valid := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"150", 15000},
		{"150.5", 15050},
		{"150.50", 15050},
		{".75", 75},
		{"-2.5", -250},
		{"99999999.99", 9999999999},
		{"000000000012.00", 1200},
	}
	for _, tt := range valid {
		got, err := parseCents(json.Number(tt.in))
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}

	invalid := []string{
		"100000000",
		"184467440737095517",
		"92233720368547758.07",
		"1.234",
		"1.-5",
		"1.+5",
		"+5",
		"1e5",
		"abc",
	}
	for _, in := range invalid {
		_, err := parseCents(json.Number(in))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "input %q", in)
	}
}
