package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchemaName(t *testing.T) {
	valid := []string{
		"t_acme_12ab34cd",
		"public",
		"_leading_underscore",
		"a",
		strings.Repeat("a", 63),
	}
	for _, schema := range valid {
		assert.NoError(t, ValidateSchemaName(schema), schema)
	}

	invalid := []string{
		"",
		"1starts_with_digit",
		"UpperCase",
		"has-dash",
		"has space",
		"has;semicolon",
		`has"quote`,
		"trailing,comma",
		strings.Repeat("a", 64),
	}
	for _, schema := range invalid {
		assert.Error(t, ValidateSchemaName(schema), schema)
	}
}

func TestNewSchemaName(t *testing.T) {
	t.Run("derived names always validate", func(t *testing.T) {
		for _, display := range []string{
			"Acme Ltda",
			"Loja do João!!!",
			"--- ???",
			"",
			strings.Repeat("Very Long Company Name ", 10),
		} {
			name := NewSchemaName(display)
			require.NoError(t, ValidateSchemaName(name), "display %q produced %q", display, name)
			assert.True(t, strings.HasPrefix(name, "t_"), name)
		}
	})

	t.Run("names do not collide", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			name := NewSchemaName("Acme Ltda")
			require.False(t, seen[name], "duplicate schema name %q", name)
			seen[name] = true
		}
	})
}
