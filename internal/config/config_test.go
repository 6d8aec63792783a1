package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/validation"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"reference": "master.tex",
		"store": "postgres",
		"limit": 12,
		"tolerance": {"max_drop": 3, "max_add": 0},
		"statuses": {"queued": "Queued"},
		"compiler": {"engine": "pdflatex", "max_pages": 2},
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "master.tex", cfg.Reference)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, 12, cfg.Limit)
	assert.Equal(t, validation.Tolerance{MaxDrop: 3, MaxAdd: 0}, cfg.Tolerance)
	assert.Equal(t, "Queued", cfg.Statuses.Queued)
	assert.Equal(t, "pdflatex", cfg.Compiler.Engine)
	assert.Equal(t, 2, cfg.Compiler.MaxPages)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
reference: master.tex
required_sections:
  - \section*{SUMMARY}
  - \section*{PROJECTS}
tolerance:
  max_drop: 1
  max_add: 1
storage:
  backend: azure
  container: resumes
fetch_missing_jd: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{`\section*{SUMMARY}`, `\section*{PROJECTS}`}, cfg.RequiredSections)
	assert.Equal(t, validation.Tolerance{MaxDrop: 1, MaxAdd: 1}, cfg.Tolerance)
	assert.Equal(t, StorageAzure, cfg.Storage.Backend)
	assert.Equal(t, "resumes", cfg.Storage.Container)
	assert.True(t, cfg.FetchMissingJD)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "config.json", `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "config.yml", "limit: [unterminated"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestApplyEnv(t *testing.T) {
	cfg := Defaults()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"GEMINI_API_KEY":                  "gk",
		"NOTION_TOKEN":                    "secret",
		"NOTION_DB_ID":                    "db123",
		"DATABASE_URL":                    "postgres://localhost/jobs",
		"AZURE_STORAGE_CONNECTION_STRING": "UseDevelopmentStorage=true",
		"LIMIT":                           " 7 ",
		"MODEL_NAME":                      "gemini-2.5-pro",
		"PROMPT_VERSION":                  "v2",
		"DRIVE_ROOT":                      "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "gk", cfg.APIKey)
	assert.Equal(t, "secret", cfg.Notion.Token)
	assert.Equal(t, "db123", cfg.Notion.DatabaseID)
	assert.Equal(t, "postgres://localhost/jobs", cfg.DatabaseURL)
	assert.Equal(t, "UseDevelopmentStorage=true", cfg.Storage.ConnectionString)
	assert.Equal(t, 7, cfg.Limit)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, "v2", cfg.PromptVersion)
	assert.Equal(t, "JobApps", cfg.Storage.Root, "empty variables do not override")
}

func TestApplyEnv_BadLimit(t *testing.T) {
	cfg := Defaults()
	err := cfg.ApplyEnv(envMap(map[string]string{"LIMIT": "five"}))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "LIMIT must be an integer")
}

func validConfig() Config {
	cfg := Defaults()
	cfg.Notion.Token = "secret"
	cfg.Notion.DatabaseID = "db"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults with credentials", func(*Config) {}, ""},
		{"negative limit", func(c *Config) { c.Limit = -1 }, "Limit"},
		{"limit too large", func(c *Config) { c.Limit = 1000 }, "Limit"},
		{"unknown store", func(c *Config) { c.Store = "sheets" }, "Store"},
		{"unknown engine", func(c *Config) { c.Compiler.Engine = "lualatex" }, "Engine"},
		{"negative tolerance", func(c *Config) { c.Tolerance.MaxDrop = -1 }, "MaxDrop"},
		{"missing status", func(c *Config) { c.Statuses.Done = "" }, "Done"},
		{"basename with slash", func(c *Config) { c.Basename = "a/b" }, "Basename"},
		{"notion without token", func(c *Config) { c.Notion.Token = "" }, "NOTION_TOKEN"},
		{"postgres without url", func(c *Config) { c.Store = StorePostgres }, "DATABASE_URL"},
		{"postgres with url", func(c *Config) { c.Store = StorePostgres; c.DatabaseURL = "postgres://x" }, ""},
		{"azure without container", func(c *Config) {
			c.Storage.Backend = StorageAzure
			c.Storage.ConnectionString = "cs"
		}, "azure storage"},
		{"bad notion url", func(c *Config) { c.Notion.BaseURL = "not a url" }, "BaseURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		Reference: "custom.tex",
		Limit:     3,
		Statuses:  Statuses{Queued: "Ready"},
		Storage:   Storage{Backend: StorageAzure},
	}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "custom.tex", merged.Reference)
	assert.Equal(t, 3, merged.Limit)
	assert.Equal(t, "Ready", merged.Statuses.Queued)
	assert.Equal(t, "Applied", merged.Statuses.Done)
	assert.Equal(t, "Error", merged.Statuses.Failed)
	assert.Equal(t, StorageAzure, merged.Storage.Backend)
	assert.Equal(t, "JobApps", merged.Storage.Root)
	assert.Equal(t, validation.DefaultTolerance, merged.Tolerance)
	assert.Equal(t, "tectonic", merged.Compiler.Engine)
	assert.Equal(t, 1, merged.Compiler.MaxPages)
	assert.Equal(t, "Resume", merged.Basename)

	// Original should be unchanged
	assert.Equal(t, "", cfg.Statuses.Done)
}
