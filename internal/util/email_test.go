package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-market-auth/internal/model"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "bob@example.com", "bob@example.com"},
		{"uppercase folded", "Bob@Example.COM", "bob@example.com"},
		{"surrounding whitespace", "  bob@example.com \n", "bob@example.com"},
		{"plus addressing kept", "bob+tag@example.com", "bob+tag@example.com"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeEmail(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeEmailRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not-an-email", "bob@", "@example.com", "Bob <bob@example.com>"} {
		t.Run(input, func(t *testing.T) {
			_, err := NormalizeEmail(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidInput))
		})
	}
}
