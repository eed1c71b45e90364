package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bootstrap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadBootstrapConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeConfig(t, `
companyName: Lojista HQ
email: admin@lojista.example
password: supersecret
maxSessions: 5
`)
		cfg, err := LoadBootstrapConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "Lojista HQ", cfg.CompanyName)
		assert.Equal(t, "admin@lojista.example", cfg.Email)
		assert.Equal(t, 5, cfg.MaxSessions)
	})

	t.Run("defaults max sessions", func(t *testing.T) {
		path := writeConfig(t, `
companyName: Lojista HQ
email: admin@lojista.example
password: supersecret
`)
		cfg, err := LoadBootstrapConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.MaxSessions)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadBootstrapConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "companyName: [unclosed")
		_, err := LoadBootstrapConfig(path)
		require.Error(t, err)
	})

	tests := []struct {
		name    string
		content string
	}{
		{"missing company", "email: a@b.c\npassword: supersecret\n"},
		{"bad email", "companyName: Acme\nemail: nope\npassword: supersecret\n"},
		{"short password", "companyName: Acme\nemail: a@b.c\npassword: short\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := LoadBootstrapConfig(path)
			require.Error(t, err)
		})
	}
}
