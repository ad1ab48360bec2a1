package mutation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		name, err := ValidateName("  Groceries ")

		assert.NoError(t, err)
		assert.Equal(t, "Groceries", name)
	})

	t.Run("rejects blank names", func(t *testing.T) {
		for _, name := range []string{"", "   ", "\t\n"} {
			_, err := ValidateName(name)
			assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
		}
	})
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
		valid    bool
	}{
		{"whole number", "3", 3, true},
		{"zero", "0", 0, true},
		{"padded", " 12 ", 12, true},
		{"empty", "", 0, false},
		{"words", "a few", 0, false},
		{"decimal", "1.5", 0, false},
		{"negative", "-2", 0, false},
		{"trailing text", "2kg", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, err := ParseQuantity(tt.text)
			if tt.valid {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, qty)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidQuantity)
		})
	}
}

func TestRequireID(t *testing.T) {
	assert.NoError(t, requireID("01HX2Z"))
	assert.ErrorIs(t, requireID(""), ErrInvalidID)
	assert.ErrorIs(t, requireID("  "), ErrInvalidID)
	assert.ErrorIs(t, requireID("L1/items/I1"), ErrInvalidID)
}
