package features

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/drew/stratsite/internal/config"
)

func (c *sharedContext) iValidateTheConfig() error {
	if c.configPath == "" {
		return fmt.Errorf("configPath not set")
	}
	c.validation, c.validationErr = config.ValidateConfigFile(c.configPath)
	return nil
}

func (c *sharedContext) theConfigShouldBeValid() error {
	if c.validationErr != nil {
		return c.validationErr
	}
	if !c.validation.Valid {
		return fmt.Errorf("expected config to be valid, got errors: %v", c.validation.Errors)
	}
	return nil
}

func (c *sharedContext) theConfigShouldBeInvalid() error {
	if c.validationErr != nil {
		return c.validationErr
	}
	if c.validation.Valid {
		return fmt.Errorf("expected config to be invalid")
	}
	return nil
}

func mentions(list []config.ValidationError, expected string) bool {
	for _, e := range list {
		if strings.Contains(e.Error(), expected) {
			return true
		}
	}
	return false
}

func (c *sharedContext) theValidationErrorsShouldMention(expected string) error {
	if c.validation == nil {
		return fmt.Errorf("config was not validated")
	}
	if !mentions(c.validation.Errors, expected) {
		return fmt.Errorf("expected an error mentioning %q, got: %v", expected, c.validation.Errors)
	}
	return nil
}

func (c *sharedContext) theValidationWarningsShouldMention(expected string) error {
	if c.validation == nil {
		return fmt.Errorf("config was not validated")
	}
	if !mentions(c.validation.Warnings, expected) {
		return fmt.Errorf("expected a warning mentioning %q, got: %v", expected, c.validation.Warnings)
	}
	return nil
}

func InitializeConfigValidationScenario(sc *godog.ScenarioContext, shared *sharedContext) {
	sc.Step(`^a config file:$`, shared.aConfigFile)
	sc.Step(`^I validate the config$`, shared.iValidateTheConfig)
	sc.Step(`^the config should be valid$`, shared.theConfigShouldBeValid)
	sc.Step(`^the config should be invalid$`, shared.theConfigShouldBeInvalid)
	sc.Step(`^the validation errors should mention "([^"]*)"$`, shared.theValidationErrorsShouldMention)
	sc.Step(`^the validation warnings should mention "([^"]*)"$`, shared.theValidationWarningsShouldMention)
}
