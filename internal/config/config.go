package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/soligraph/soligraph/pkg/dfg"
)

// Config holds all configuration for soligraph
type Config struct {
	// OutputMode selects the graph filtering preset
	// (compact, standard, verbose, custom)
	OutputMode string `yaml:"output_mode" env:"SOLIGRAPH_OUTPUT_MODE"`

	// Node filtering toggles, applied in custom mode
	SkipKeywords     bool `yaml:"skip_keywords" env:"SOLIGRAPH_SKIP_KEYWORDS"`
	SkipTypeNames    bool `yaml:"skip_type_names" env:"SOLIGRAPH_SKIP_TYPE_NAMES"`
	SkipOperators    bool `yaml:"skip_operators" env:"SOLIGRAPH_SKIP_OPERATORS"`
	SkipPunctuation  bool `yaml:"skip_punctuation" env:"SOLIGRAPH_SKIP_PUNCTUATION"`
	SkipLiteralNodes bool `yaml:"skip_literal_nodes" env:"SOLIGRAPH_SKIP_LITERAL_NODES"`

	// Serialization detail
	IncludeNodeText    bool `yaml:"include_node_text" env:"SOLIGRAPH_INCLUDE_NODE_TEXT"`
	IncludeASTMetadata bool `yaml:"include_ast_metadata" env:"SOLIGRAPH_INCLUDE_AST_METADATA"`
	TextMaxLength      int  `yaml:"text_max_length" env:"SOLIGRAPH_TEXT_MAX_LENGTH"`

	// Output settings
	OutputDir string `yaml:"output_dir" env:"SOLIGRAPH_OUTPUT_DIR"`

	// DefaultSolidityVersion is assumed when no pragma is present
	DefaultSolidityVersion string `yaml:"default_solidity_version" env:"SOLIGRAPH_DEFAULT_SOLIDITY_VERSION"`

	// Cache settings
	CacheEnabled bool   `yaml:"cache_enabled" env:"SOLIGRAPH_CACHE_ENABLED"`
	CacheDir     string `yaml:"cache_dir" env:"SOLIGRAPH_CACHE_DIR"`

	// Graph size limits
	MaxNodes int `yaml:"max_nodes" env:"SOLIGRAPH_MAX_NODES"`
	MaxEdges int `yaml:"max_edges" env:"SOLIGRAPH_MAX_EDGES"`

	// Logging
	Verbose bool `yaml:"verbose" env:"SOLIGRAPH_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputMode:             string(dfg.ModeStandard),
		SkipKeywords:           true,
		SkipTypeNames:          true,
		SkipOperators:          true,
		SkipPunctuation:        true,
		SkipLiteralNodes:       false,
		IncludeNodeText:        false,
		IncludeASTMetadata:     false,
		TextMaxLength:          100,
		OutputDir:              "output",
		DefaultSolidityVersion: "0.4.0",
		CacheEnabled:           true,
		CacheDir:               defaultCacheDir(),
		MaxNodes:               10000,
		MaxEdges:               20000,
		Verbose:                false,
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".soligraph/cache"
	}
	return filepath.Join(home, ".soligraph", "cache")
}

// globalConfigFilePath returns the global config file path (~/.soligraph/config.yaml)
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".soligraph/config.yaml"
	}
	return filepath.Join(home, ".soligraph", "config.yaml")
}

// projectConfigFilePath returns the project-level config file path (./.soligraph/config.yaml)
func projectConfigFilePath() string {
	return ".soligraph/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.soligraph/config.yaml)
// 3. Global config (~/.soligraph/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalConfigPath := globalConfigFilePath()
	if data, err := os.ReadFile(globalConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", globalConfigPath, err)
		}
	}

	projectConfigPath := projectConfigFilePath()
	if data, err := os.ReadFile(projectConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", projectConfigPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SOLIGRAPH_OUTPUT_MODE"); v != "" {
		cfg.OutputMode = v
	}
	if v := os.Getenv("SOLIGRAPH_SKIP_KEYWORDS"); v != "" {
		cfg.SkipKeywords = parseBool(v)
	}
	if v := os.Getenv("SOLIGRAPH_SKIP_TYPE_NAMES"); v != "" {
		cfg.SkipTypeNames = parseBool(v)
	}
	if v := os.Getenv("SOLIGRAPH_SKIP_OPERATORS"); v != "" {
		cfg.SkipOperators = parseBool(v)
	}
	if v := os.Getenv("SOLIGRAPH_SKIP_PUNCTUATION"); v != "" {
		cfg.SkipPunctuation = parseBool(v)
	}
	if v := os.Getenv("SOLIGRAPH_SKIP_LITERAL_NODES"); v != "" {
		cfg.SkipLiteralNodes = parseBool(v)
	}
	if v := os.Getenv("SOLIGRAPH_INCLUDE_NODE_TEXT"); v != "" {
		cfg.IncludeNodeText = parseBool(v)
	}
	if v := os.Getenv("SOLIGRAPH_INCLUDE_AST_METADATA"); v != "" {
		cfg.IncludeASTMetadata = parseBool(v)
	}
	if v := os.Getenv("SOLIGRAPH_TEXT_MAX_LENGTH"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.TextMaxLength = i
		}
	}
	if v := os.Getenv("SOLIGRAPH_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("SOLIGRAPH_DEFAULT_SOLIDITY_VERSION"); v != "" {
		cfg.DefaultSolidityVersion = v
	}
	if v := os.Getenv("SOLIGRAPH_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = parseBool(v)
	}
	if v := os.Getenv("SOLIGRAPH_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("SOLIGRAPH_MAX_NODES"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.MaxNodes = i
		}
	}
	if v := os.Getenv("SOLIGRAPH_MAX_EDGES"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.MaxEdges = i
		}
	}
	if v := os.Getenv("SOLIGRAPH_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	switch dfg.OutputMode(c.OutputMode) {
	case dfg.ModeCompact, dfg.ModeStandard, dfg.ModeVerbose, dfg.ModeCustom:
		// Valid
	default:
		return fmt.Errorf("invalid output_mode: %s (must be 'compact', 'standard', 'verbose' or 'custom')", c.OutputMode)
	}

	if c.TextMaxLength < 0 {
		return fmt.Errorf("text_max_length must be non-negative")
	}
	if c.MaxNodes <= 0 {
		return fmt.Errorf("max_nodes must be positive")
	}
	if c.MaxEdges <= 0 {
		return fmt.Errorf("max_edges must be positive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}

	return nil
}

// GraphConfig derives the graph filtering configuration. Canned modes use
// their preset; custom mode applies the individual toggles on top of the
// standard baseline.
func (c *Config) GraphConfig() dfg.Config {
	mode := dfg.ParseOutputMode(c.OutputMode)
	gc := dfg.ForMode(mode)

	if mode == dfg.ModeCustom {
		gc.SkipKeywords = c.SkipKeywords
		gc.SkipTypeNames = c.SkipTypeNames
		gc.SkipOperators = c.SkipOperators
		gc.SkipPunctuation = c.SkipPunctuation
		gc.SkipLiteralNodes = c.SkipLiteralNodes
		gc.IncludeNodeText = c.IncludeNodeText
		gc.IncludeASTMetadata = c.IncludeASTMetadata
	}

	if c.TextMaxLength > 0 {
		gc.TextMaxLength = c.TextMaxLength
	}
	gc.MaxNodes = c.MaxNodes
	gc.MaxEdges = c.MaxEdges

	return gc
}

// parseBool interprets common truthy spellings
func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0
	}
	return i
}
