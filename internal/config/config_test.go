package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/models"
)

func TestLoadConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SHAREIT_TEST_DB", "shareit-test.db")

	yamlContent := `
database:
  path: "${SHAREIT_TEST_DB}"
api:
  auth:
    enabled: true
    api_keys:
      - key: "k1"
        name: "gateway"
        permissions: ["read", "write"]
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "shareit-test.db" {
		t.Errorf("expected expanded database path, got %s", cfg.Database.Path)
	}

	if len(cfg.API.Auth.APIKeys) != 1 || cfg.API.Auth.APIKeys[0].Name != "gateway" {
		t.Errorf("expected 1 api key for gateway")
	}

	if cfg.API.ActorHeader != "X-Sharer-User-Id" {
		t.Errorf("expected default actor header, got %s", cfg.API.ActorHeader)
	}
}

func TestLoadConfig_WithDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("database:\n  path: \"${SHAREIT_DOTENV_DB}\"\n"), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	// Mock .env file
	if err := os.WriteFile(".env", []byte("SHAREIT_DOTENV_DB=from-dotenv.db\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	defer os.Remove(".env")
	defer os.Unsetenv("SHAREIT_DOTENV_DB")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Database.Path != "from-dotenv.db" {
		t.Errorf("expected path from .env, got %s", cfg.Database.Path)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("expected error for missing config file")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{Database: DatabaseConfig{Path: "path"}},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "redis without address",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Redis:    RedisConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "auth without keys",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				API:      APIConfig{Auth: APIAuthConfig{Enabled: true}},
			},
			wantErr: true,
		},
		{
			name: "actor limit without window",
			cfg: Config{
				Database:       DatabaseConfig{Path: "path"},
				ActorRateLimit: ActorRateLimitConfig{Enabled: true, Limit: 5},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default HTTP port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.ActorRateLimit.Limit != models.DefaultRateLimitRequests {
		t.Errorf("expected default actor limit %d, got %d", models.DefaultRateLimitRequests, cfg.ActorRateLimit.Limit)
	}
	if cfg.ActorRateLimit.Window() != time.Duration(models.DefaultRateLimitWindow)*time.Second {
		t.Errorf("unexpected default window %s", cfg.ActorRateLimit.Window())
	}
	if cfg.Exports.SheetName != models.DefaultExportSheetName {
		t.Errorf("expected default sheet name, got %s", cfg.Exports.SheetName)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
}

func TestValidateAPIKeys(t *testing.T) {
	tests := []struct {
		name    string
		keys    []APIClientKey
		wantErr bool
	}{
		{
			name:    "Valid keys",
			keys:    []APIClientKey{{Key: "a", Name: "one"}, {Key: "b", Name: "two"}},
			wantErr: false,
		},
		{
			name:    "Duplicate key",
			keys:    []APIClientKey{{Key: "a", Name: "one"}, {Key: "a", Name: "two"}},
			wantErr: true,
		},
		{
			name:    "Empty key",
			keys:    []APIClientKey{{Key: "", Name: "one"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKeys(tt.keys)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKeys() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
