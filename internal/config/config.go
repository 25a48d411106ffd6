// Package config handles loading, validation, and merging of stratsite configuration files.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultConfigPath is looked up in the working directory when no --config is given
const DefaultConfigPath = "stratsite.toml"

// Rendering modes
const (
	ModeDynamic = "dynamic"
	ModeStatic  = "static"
)

// Publish targets
const (
	PublishLocal = "local"
	PublishS3    = "s3"
)

// Fixed directory names inside a date folder
const (
	OutputDirName  = "output"
	ForwardDirName = "forward"
)

// DefaultDescription is shown for strategies missing from the description table
const DefaultDescription = "No description available."

// Config represents the complete stratsite configuration
type Config struct {
	Site       SiteConfig    `toml:"site"`
	Scan       ScanConfig    `toml:"scan"`
	Strategies StrategyTable `toml:"strategies"`
	Publish    PublishConfig `toml:"publish"`
}

// SiteConfig holds output settings
type SiteConfig struct {
	// Root of the strategy tree; generated files are written here too
	Root string `toml:"root" doc:"Root of the strategy tree; generated files are written here too"`
	// Page title used by the dynamic shell and static pages
	Title string `toml:"title" doc:"Page title used by the dynamic shell and static pages"`
	// Renderers to run
	Modes []string `toml:"modes" doc:"Renderers to run" enum:"dynamic,static"`
	// Index document written in dynamic mode
	Manifest string `toml:"manifest" doc:"Index document written in dynamic mode, relative to root"`
	// Shell page written in dynamic mode
	Shell string `toml:"shell" doc:"Shell page written in dynamic mode, relative to root"`
	// File name of every static page
	PageName string `toml:"pageName" doc:"File name of every page written in static mode"`
	// Prometheus textfile written after each build
	MetricsFile string `toml:"metricsFile" doc:"Prometheus textfile written after each build (optional)"`
	// Plain-text copy of the console summary
	SummaryFile string `toml:"summaryFile" doc:"Plain-text copy of the console build summary (optional)"`
}

// ScanConfig controls how the strategy tree is discovered
type ScanConfig struct {
	// Strategy directories to look for, in display order
	Strategies []string `toml:"strategies" doc:"Strategy directories to look for, in display order"`
	// Result file name inside <date>/output
	ResultFile string `toml:"resultFile" doc:"Result file name inside <date>/output"`
	// Glob for gallery images inside <date>/forward
	ImagePattern string `toml:"imagePattern" doc:"Glob for gallery images inside <date>/forward"`
}

// StrategyInfo is the display metadata for one strategy key
type StrategyInfo struct {
	// Display name
	Title string `toml:"title" doc:"Display name"`
	// HTML description shown above the report
	Description string `toml:"description" doc:"HTML description shown above the report"`
}

// StrategyTable maps strategy keys to display metadata
type StrategyTable map[string]StrategyInfo

// Lookup returns the display name and description for key, falling back to the
// raw key and DefaultDescription
func (t StrategyTable) Lookup(key string) (name, description string) {
	name, description = key, DefaultDescription
	info, ok := t[key]
	if !ok {
		return name, description
	}
	if info.Title != "" {
		name = info.Title
	}
	if info.Description != "" {
		description = info.Description
	}
	return name, description
}

// PublishConfig selects where generated files go
type PublishConfig struct {
	// Publish target: local or s3
	Type string `toml:"type" doc:"Publish target: local or s3" enum:"local,s3"`
	// S3 settings, used when type is s3
	S3 S3Config `toml:"s3"`
}

// S3Config holds S3 connection configuration
type S3Config struct {
	// Bucket name
	Bucket string `toml:"bucket" doc:"Bucket name"`
	// Custom endpoint for S3-compatible services
	Endpoint string `toml:"endpoint" doc:"Custom endpoint for S3-compatible services such as MinIO"`
	// Region
	Region string `toml:"region" doc:"Bucket region"`
	// Access key id
	AccessKey string `toml:"accessKey" doc:"Static access key id"`
	// Secret access key
	SecretKey string `toml:"secretKey" doc:"Static secret access key"`
	// Key prefix
	Prefix string `toml:"prefix" doc:"Key prefix for every uploaded object"`
}

// LoadConfig loads configuration from a TOML file.
// A missing default file is not an error: it returns nil so callers fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	explicitPath := path != ""
	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicitPath {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, nil
	}

	var cfg Config
	metadata, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	undecoded := metadata.Undecoded()
	if len(undecoded) > 0 {
		var unknownFields []string
		for _, key := range undecoded {
			unknownFields = append(unknownFields, key.String())
		}
		return nil, fmt.Errorf("unknown fields in config: %s", strings.Join(unknownFields, ", "))
	}

	return &cfg, nil
}

// GetDefaults returns the default configuration
func GetDefaults() Config {
	return Config{
		Site: SiteConfig{
			Root:     ".",
			Title:    "Stock Analysis Dashboard",
			Modes:    []string{ModeDynamic},
			Manifest: "manifest.json",
			Shell:    "index.html",
			PageName: "index.html",
		},
		Scan: ScanConfig{
			Strategies:   BuiltInStrategyOrder(),
			ResultFile:   "output.json",
			ImagePattern: "*.png",
		},
		Strategies: BuiltInStrategies(),
		Publish: PublishConfig{
			Type: PublishLocal,
		},
	}
}

// MergeWithDefaults merges loaded config with defaults
func MergeWithDefaults(cfg *Config) Config {
	defaults := GetDefaults()

	if cfg == nil {
		return defaults
	}

	if cfg.Site.Root == "" {
		cfg.Site.Root = defaults.Site.Root
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = defaults.Site.Title
	}
	if len(cfg.Site.Modes) == 0 {
		cfg.Site.Modes = defaults.Site.Modes
	}
	if cfg.Site.Manifest == "" {
		cfg.Site.Manifest = defaults.Site.Manifest
	}
	if cfg.Site.Shell == "" {
		cfg.Site.Shell = defaults.Site.Shell
	}
	if cfg.Site.PageName == "" {
		cfg.Site.PageName = defaults.Site.PageName
	}

	if len(cfg.Scan.Strategies) == 0 {
		cfg.Scan.Strategies = defaults.Scan.Strategies
	}
	if cfg.Scan.ResultFile == "" {
		cfg.Scan.ResultFile = defaults.Scan.ResultFile
	}
	if cfg.Scan.ImagePattern == "" {
		cfg.Scan.ImagePattern = defaults.Scan.ImagePattern
	}

	// Built-in descriptions fill listed keys the file does not describe
	merged := make(StrategyTable, len(cfg.Strategies)+len(cfg.Scan.Strategies))
	for key, info := range defaults.Strategies {
		if contains(cfg.Scan.Strategies, key) {
			merged[key] = info
		}
	}
	for key, info := range cfg.Strategies {
		merged[key] = info
	}
	cfg.Strategies = merged

	if cfg.Publish.Type == "" {
		cfg.Publish.Type = defaults.Publish.Type
	}

	return *cfg
}

// HasMode reports whether the given renderer is enabled
func (c *Config) HasMode(mode string) bool {
	return contains(c.Site.Modes, mode)
}
