package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult holds the results of config validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// Err returns the first validation error, or nil when the config is valid
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid || len(r.Errors) == 0 {
		return nil
	}
	if len(r.Errors) == 1 {
		return r.Errors[0]
	}
	return fmt.Errorf("%w (and %d more)", r.Errors[0], len(r.Errors)-1)
}

func (r *ValidationResult) addError(field, format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarning(field, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateConfig validates an already-merged config
func ValidateConfig(cfg *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	if cfg == nil {
		return result
	}

	validateSite(&cfg.Site, result)
	validateScan(&cfg.Scan, result)
	validateGeneratedNames(cfg, result)
	validateStrategies(cfg, result)
	validatePublish(&cfg.Publish, result)

	return result
}

// ValidateConfigFile validates a TOML config file
func ValidateConfigFile(path string) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	metadata, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		result.addError("", "Invalid TOML syntax: %v", err)
		return result, nil
	}

	for _, key := range metadata.Undecoded() {
		result.addError(key.String(), "Unknown configuration field")
	}

	merged := MergeWithDefaults(&cfg)
	semantic := ValidateConfig(&merged)
	if !semantic.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, semantic.Errors...)
	result.Warnings = append(result.Warnings, semantic.Warnings...)

	return result, nil
}

func validateSite(site *SiteConfig, result *ValidationResult) {
	validModes := []string{ModeDynamic, ModeStatic}
	if len(site.Modes) == 0 {
		result.addError("site.modes", "At least one mode is required. Valid options: %s", strings.Join(validModes, ", "))
	}
	seen := make(map[string]bool)
	for _, mode := range site.Modes {
		if !contains(validModes, mode) {
			result.addError("site.modes", "Invalid mode '%s'. Valid options: %s", mode, strings.Join(validModes, ", "))
			continue
		}
		if seen[mode] {
			result.addWarning("site.modes", "Mode '%s' is listed more than once", mode)
		}
		seen[mode] = true
	}

	if contains(site.Modes, ModeDynamic) && contains(site.Modes, ModeStatic) && strings.Contains(site.Shell, "/") {
		result.addWarning("site.shell", "Shell page '%s' is nested; it may collide with a static strategy page", site.Shell)
	}
	if site.Manifest == site.Shell {
		result.addError("site.manifest", "Manifest and shell must be different files")
	}
	if strings.ContainsAny(site.PageName, `/\`) {
		result.addError("site.pageName", "Page name must be a plain file name")
	}
}

func validateScan(scan *ScanConfig, result *ValidationResult) {
	if scan.ResultFile == "" {
		result.addError("scan.resultFile", "Result file name is required")
	} else if strings.ContainsAny(scan.ResultFile, `/\`) {
		result.addError("scan.resultFile", "Result file '%s' must be a plain file name", scan.ResultFile)
	}

	if !doublestar.ValidatePattern(scan.ImagePattern) {
		result.addError("scan.imagePattern", "Invalid glob pattern '%s'", scan.ImagePattern)
	} else if strings.Contains(scan.ImagePattern, "/") {
		result.addWarning("scan.imagePattern", "Only files directly inside the forward folder are listed; '%s' contains a path separator", scan.ImagePattern)
	}

	seen := make(map[string]bool)
	for _, key := range scan.Strategies {
		field := fmt.Sprintf("scan.strategies[%s]", key)
		switch {
		case key == "":
			result.addError("scan.strategies", "Strategy key must not be empty")
		case strings.ContainsAny(key, `/\`):
			result.addError(field, "Strategy key must be a plain directory name")
		case contains(ReservedDirNames(), key):
			result.addError(field, "'%s' is a reserved directory name", key)
		case seen[key]:
			result.addError(field, "Duplicate strategy key")
		}
		seen[key] = true
	}
}

// validateGeneratedNames rejects static page names that would overwrite a
// result file or be picked up as an image on the next scan.
func validateGeneratedNames(cfg *Config, result *ValidationResult) {
	page := cfg.Site.PageName
	if page == "" {
		return
	}
	if cfg.Scan.ResultFile == page {
		result.addError("scan.resultFile", "Result file '%s' is the same as site.pageName; static pages would overwrite it", page)
	}
	if matched, err := doublestar.Match(cfg.Scan.ImagePattern, page); err == nil && matched {
		result.addError("scan.imagePattern", "Image pattern '%s' matches site.pageName '%s'; generated pages would be listed as images", cfg.Scan.ImagePattern, page)
	}
}

func validateStrategies(cfg *Config, result *ValidationResult) {
	keys := make([]string, 0, len(cfg.Strategies))
	for key := range cfg.Strategies {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		info := cfg.Strategies[key]
		if !contains(cfg.Scan.Strategies, key) {
			result.addWarning("strategies."+key, "Described but not listed in scan.strategies")
		}
		if info.Title == "" {
			result.addWarning("strategies."+key+".title", "No title; the key will be shown instead")
		}
	}
}

func validatePublish(publish *PublishConfig, result *ValidationResult) {
	validTypes := []string{PublishLocal, PublishS3}
	if !contains(validTypes, publish.Type) {
		result.addError("publish.type", "Invalid publish type '%s'. Valid options: %s", publish.Type, strings.Join(validTypes, ", "))
		return
	}

	if publish.Type != PublishS3 {
		return
	}
	if publish.S3.Bucket == "" {
		result.addError("publish.s3.bucket", "Bucket is required when publish type is s3")
	}
	if publish.S3.Region == "" && publish.S3.Endpoint == "" {
		result.addWarning("publish.s3.region", "Neither region nor endpoint is set")
	}
	if (publish.S3.AccessKey == "") != (publish.S3.SecretKey == "") {
		result.addError("publish.s3", "accessKey and secretKey must be set together")
	}
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// PrintValidationResult prints the validation result in a human-readable format
func PrintValidationResult(w io.Writer, path string, result *ValidationResult) {
	fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintf(w, "📋 Validating: %s\n", path)

	if result.Valid && len(result.Warnings) == 0 {
		fmt.Fprintln(w, "✅ Configuration is valid!")
		fmt.Fprintln(w)
		return
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\n❌ Found %d error(s):\n", len(result.Errors))
		for _, err := range result.Errors {
			if err.Field != "" {
				fmt.Fprintf(w, "  • [%s] %s\n", err.Field, err.Message)
			} else {
				fmt.Fprintf(w, "  • %s\n", err.Message)
			}
		}
		fmt.Fprintln(w)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "⚠️  Found %d warning(s):\n", len(result.Warnings))
		for _, warn := range result.Warnings {
			if warn.Field != "" {
				fmt.Fprintf(w, "  • [%s] %s\n", warn.Field, warn.Message)
			} else {
				fmt.Fprintf(w, "  • %s\n", warn.Message)
			}
		}
		fmt.Fprintln(w)
	}

	if !result.Valid {
		fmt.Fprintln(w, "❌ Configuration is INVALID")
	} else {
		fmt.Fprintln(w, "✅ Configuration is valid (with warnings)")
	}
	fmt.Fprintln(w)
}
