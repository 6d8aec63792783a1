// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-tailor/internal/validation"
)

// Record store backends
const (
	StoreNotion   = "notion"
	StorePostgres = "postgres"
)

// Artifact storage backends
const (
	StorageNone  = "none"
	StorageLocal = "local"
	StorageAzure = "azure"
)

// Statuses are the record-store values that drive the pipeline
type Statuses struct {
	Queued string `json:"queued,omitempty" yaml:"queued,omitempty" validate:"required"`
	Done   string `json:"done,omitempty" yaml:"done,omitempty" validate:"required"`
	Failed string `json:"failed,omitempty" yaml:"failed,omitempty" validate:"required"`
}

// Notion configures the Notion record store
type Notion struct {
	Token      string `json:"token,omitempty" yaml:"token,omitempty"`
	DatabaseID string `json:"database_id,omitempty" yaml:"database_id,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Compiler configures the LaTeX engine
type Compiler struct {
	Engine         string `json:"engine,omitempty" yaml:"engine,omitempty" validate:"omitempty,oneof=tectonic pdflatex"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"gte=0"`
	MaxPages       int    `json:"max_pages,omitempty" yaml:"max_pages,omitempty" validate:"gte=0"`
}

// Storage configures where compiled artifacts are published
type Storage struct {
	Backend          string `json:"backend,omitempty" yaml:"backend,omitempty" validate:"omitempty,oneof=none local azure"`
	Root             string `json:"root,omitempty" yaml:"root,omitempty"`
	LocalDir         string `json:"local_dir,omitempty" yaml:"local_dir,omitempty"`
	Container        string `json:"container,omitempty" yaml:"container,omitempty"`
	ConnectionString string `json:"connection_string,omitempty" yaml:"connection_string,omitempty"`
	// PublicBaseURL replaces the container URL in returned links, e.g. a CDN in front of the container
	PublicBaseURL string `json:"public_base_url,omitempty" yaml:"public_base_url,omitempty" validate:"omitempty,url"`
}

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults, environment variables or CLI flags.
type Config struct {
	// Reference document
	Reference        string   `json:"reference,omitempty" yaml:"reference,omitempty"`
	RequiredSections []string `json:"required_sections,omitempty" yaml:"required_sections,omitempty"`

	// Gate
	Tolerance validation.Tolerance `json:"tolerance" yaml:"tolerance"`

	// Record store
	Store       string   `json:"store,omitempty" yaml:"store,omitempty" validate:"omitempty,oneof=notion postgres"`
	Statuses    Statuses `json:"statuses" yaml:"statuses"`
	Limit       int      `json:"limit,omitempty" yaml:"limit,omitempty" validate:"gte=0,lte=100"`
	Notion      Notion   `json:"notion" yaml:"notion"`
	DatabaseURL string   `json:"database_url,omitempty" yaml:"database_url,omitempty"`

	// Generation
	APIKey        string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model         string `json:"model,omitempty" yaml:"model,omitempty"`
	PromptVersion string `json:"prompt_version,omitempty" yaml:"prompt_version,omitempty"`

	// Artifacts
	ArtifactDir string   `json:"artifact_dir,omitempty" yaml:"artifact_dir,omitempty"`
	Basename    string   `json:"basename,omitempty" yaml:"basename,omitempty" validate:"omitempty,excludesall=/\\"`
	Compiler    Compiler `json:"compiler" yaml:"compiler"`
	Storage     Storage  `json:"storage" yaml:"storage"`

	// Behavior
	FetchMissingJD bool `json:"fetch_missing_jd,omitempty" yaml:"fetch_missing_jd,omitempty"`
	UseBrowser     bool `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`
	Verbose        bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Reference: "reference.tex",
		Tolerance: validation.DefaultTolerance,
		Store:     StoreNotion,
		Statuses: Statuses{
			Queued: "Not Applied",
			Done:   "Applied",
			Failed: "Error",
		},
		Limit:         5,
		Notion:        Notion{BaseURL: "https://api.notion.com", Version: "2022-06-28"},
		Model:         "gemini-2.5-flash",
		PromptVersion: "v1",
		ArtifactDir:   "artifacts",
		Basename:      "Resume",
		Compiler:      Compiler{Engine: "tectonic", TimeoutSeconds: 120, MaxPages: 1},
		Storage:       Storage{Backend: StorageLocal, Root: "JobApps", LocalDir: "published"},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables that are set and non-empty
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"GEMINI_API_KEY", &c.APIKey},
		{"NOTION_TOKEN", &c.Notion.Token},
		{"NOTION_DB_ID", &c.Notion.DatabaseID},
		{"DATABASE_URL", &c.DatabaseURL},
		{"AZURE_STORAGE_CONNECTION_STRING", &c.Storage.ConnectionString},
		{"MODEL_NAME", &c.Model},
		{"PROMPT_VERSION", &c.PromptVersion},
		{"DRIVE_ROOT", &c.Storage.Root},
	}
	for _, s := range strs {
		if v, ok := get(s.key); ok {
			*s.dst = v
		}
	}

	if v, ok := get("LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: LIMIT must be an integer, got %q", v)
		}
		c.Limit = n
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration has valid values.
// Credentials are only required for the backends that are selected.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: %s failed '%s' check", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if err := c.Tolerance.Check(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	switch c.Store {
	case StoreNotion:
		if c.Notion.Token == "" || c.Notion.DatabaseID == "" {
			return fmt.Errorf("config error: notion store requires NOTION_TOKEN and NOTION_DB_ID")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: postgres store requires DATABASE_URL")
		}
	}

	if c.Storage.Backend == StorageAzure && (c.Storage.ConnectionString == "" || c.Storage.Container == "") {
		return fmt.Errorf("config error: azure storage requires a connection string and a container")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Bools cannot distinguish unset from false, so they are not merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}

	fill(&result.Reference, defaults.Reference)
	fill(&result.Store, defaults.Store)
	fill(&result.Statuses.Queued, defaults.Statuses.Queued)
	fill(&result.Statuses.Done, defaults.Statuses.Done)
	fill(&result.Statuses.Failed, defaults.Statuses.Failed)
	fill(&result.Notion.Token, defaults.Notion.Token)
	fill(&result.Notion.DatabaseID, defaults.Notion.DatabaseID)
	fill(&result.Notion.BaseURL, defaults.Notion.BaseURL)
	fill(&result.Notion.Version, defaults.Notion.Version)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.Model, defaults.Model)
	fill(&result.PromptVersion, defaults.PromptVersion)
	fill(&result.ArtifactDir, defaults.ArtifactDir)
	fill(&result.Basename, defaults.Basename)
	fill(&result.Compiler.Engine, defaults.Compiler.Engine)
	fill(&result.Storage.Backend, defaults.Storage.Backend)
	fill(&result.Storage.Root, defaults.Storage.Root)
	fill(&result.Storage.LocalDir, defaults.Storage.LocalDir)
	fill(&result.Storage.Container, defaults.Storage.Container)
	fill(&result.Storage.ConnectionString, defaults.Storage.ConnectionString)
	fill(&result.Storage.PublicBaseURL, defaults.Storage.PublicBaseURL)

	if len(result.RequiredSections) == 0 {
		result.RequiredSections = append([]string(nil), defaults.RequiredSections...)
	}
	if result.Tolerance == (validation.Tolerance{}) {
		result.Tolerance = defaults.Tolerance
	}
	if result.Limit == 0 {
		result.Limit = defaults.Limit
	}
	if result.Compiler.TimeoutSeconds == 0 {
		result.Compiler.TimeoutSeconds = defaults.Compiler.TimeoutSeconds
	}
	if result.Compiler.MaxPages == 0 {
		result.Compiler.MaxPages = defaults.Compiler.MaxPages
	}

	return result
}
