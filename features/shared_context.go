package features

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"github.com/drew/stratsite/internal/config"
	"github.com/drew/stratsite/internal/site"
)

// sharedContext holds ALL state for a scenario - used by all step definitions
type sharedContext struct {
	tempDir    string
	configPath string
	strategies []string

	report   *site.Report
	buildErr error

	validation    *config.ValidationResult
	validationErr error
}

func (c *sharedContext) ensureTempDir() error {
	if c.tempDir != "" {
		return nil
	}
	dir, err := os.MkdirTemp("", "stratsite-feature-*")
	if err != nil {
		return err
	}
	c.tempDir = dir
	return nil
}

// writeFile creates rel under the scenario directory
func (c *sharedContext) writeFile(rel, content string) error {
	if err := c.ensureTempDir(); err != nil {
		return err
	}
	full := filepath.Join(c.tempDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), 0644)
}

func (c *sharedContext) readFile(rel string) ([]byte, error) {
	return os.ReadFile(filepath.Join(c.tempDir, filepath.FromSlash(rel)))
}

// aStrategyTreeWith writes every (path, content) row of the table
func (c *sharedContext) aStrategyTreeWith(table *godog.Table) error {
	if err := c.ensureTempDir(); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		if len(row.Cells) != 2 {
			return fmt.Errorf("row %d: expected path and content", i)
		}
		if err := c.writeFile(row.Cells[0].Value, row.Cells[1].Value); err != nil {
			return err
		}
	}
	return nil
}

func (c *sharedContext) aConfigFile(doc *godog.DocString) error {
	if err := c.writeFile(config.DefaultConfigPath, doc.Content); err != nil {
		return err
	}
	c.configPath = filepath.Join(c.tempDir, config.DefaultConfigPath)
	return nil
}

func (c *sharedContext) theScanCoversStrategies(list string) error {
	c.strategies = splitList(list)
	return nil
}

// loadConfig mirrors the CLI: file (if any) merged with defaults, rooted at the scenario directory
func (c *sharedContext) loadConfig() (config.Config, error) {
	var loaded *config.Config
	if c.configPath != "" {
		var err error
		loaded, err = config.LoadConfig(c.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}
	cfg := config.MergeWithDefaults(loaded)
	cfg.Site.Root = c.tempDir
	if len(c.strategies) > 0 {
		cfg.Scan.Strategies = c.strategies
	}
	return cfg, nil
}

func (c *sharedContext) iBuildTheSiteInMode(modes string) error {
	if err := c.ensureTempDir(); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		c.buildErr = err
		return nil
	}
	cfg.Site.Modes = splitList(modes)
	c.build(cfg)
	return nil
}

func (c *sharedContext) iBuildTheSite() error {
	if err := c.ensureTempDir(); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		c.buildErr = err
		return nil
	}
	c.build(cfg)
	return nil
}

func (c *sharedContext) build(cfg config.Config) {
	if err := config.ValidateConfig(&cfg).Err(); err != nil {
		c.buildErr = err
		return
	}
	pipeline, err := site.NewPipeline(cfg)
	if err != nil {
		c.buildErr = err
		return
	}
	c.report, c.buildErr = pipeline.Run(context.Background())
}

func (c *sharedContext) theBuildShouldSucceed() error {
	if c.buildErr != nil {
		return fmt.Errorf("expected build to succeed, got: %v", c.buildErr)
	}
	return nil
}

func (c *sharedContext) theBuildShouldFailWith(expected string) error {
	if c.buildErr == nil {
		return fmt.Errorf("expected build to fail")
	}
	if !strings.Contains(c.buildErr.Error(), expected) {
		return fmt.Errorf("expected error to contain %q, got: %v", expected, c.buildErr)
	}
	return nil
}

func (c *sharedContext) theFileShouldExist(rel string) error {
	if _, err := os.Stat(filepath.Join(c.tempDir, filepath.FromSlash(rel))); err != nil {
		return fmt.Errorf("expected %s to exist: %v", rel, err)
	}
	return nil
}

func (c *sharedContext) theFileShouldNotExist(rel string) error {
	if _, err := os.Stat(filepath.Join(c.tempDir, filepath.FromSlash(rel))); err == nil {
		return fmt.Errorf("expected %s not to exist", rel)
	}
	return nil
}

// cleanup removes temporary directories
func (c *sharedContext) cleanup() {
	if c.tempDir != "" {
		_ = os.RemoveAll(c.tempDir)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
