package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("REPORT_OUTPUT_DIR", "")
	t.Setenv("API_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, "./reports.db", cfg.SQLitePath)
	assert.Equal(t, "./reports", cfg.OutputDir)
	assert.Equal(t, "8080", cfg.APIPort)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "postgres")
	t.Setenv("POSTGRES_URL", "postgres://localhost/reports")
	t.Setenv("REPORT_OUTPUT_DIR", "/var/reports")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.StorageType)
	assert.Equal(t, "postgres://localhost/reports", cfg.PostgresURL)
	assert.Equal(t, "/var/reports", cfg.OutputDir)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite", Config{StorageType: "sqlite"}, false},
		{"postgres with url", Config{StorageType: "postgres", PostgresURL: "postgres://x"}, false},
		{"postgres without url", Config{StorageType: "postgres"}, true},
		{"unknown storage", Config{StorageType: "etcd"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
