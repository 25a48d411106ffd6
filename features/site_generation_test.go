package features

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cucumber/godog"
	"github.com/tidwall/gjson"

	"github.com/drew/stratsite/internal/config"
)

func (c *sharedContext) manifest() (gjson.Result, error) {
	data, err := c.readFile("manifest.json")
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("manifest.json is not valid JSON")
	}
	return gjson.ParseBytes(data), nil
}

func (c *sharedContext) theIndexShouldListStrategies(expected string) error {
	m, err := c.manifest()
	if err != nil {
		return err
	}
	var keys []string
	m.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	if got := strings.Join(keys, ","); got != expected {
		return fmt.Errorf("expected strategies %q, got %q", expected, got)
	}
	return nil
}

func (c *sharedContext) theIndexDatesForShouldBe(key, expected string) error {
	m, err := c.manifest()
	if err != nil {
		return err
	}
	var dates []string
	for _, d := range m.Get(gjson.Escape(key) + ".dates").Array() {
		dates = append(dates, d.Get("date").String())
	}
	if got := strings.Join(dates, ","); got != expected {
		return fmt.Errorf("expected dates %q for %s, got %q", expected, key, got)
	}
	return nil
}

func (c *sharedContext) indexEntry(key, date string) (gjson.Result, error) {
	m, err := c.manifest()
	if err != nil {
		return gjson.Result{}, err
	}
	for _, d := range m.Get(gjson.Escape(key) + ".dates").Array() {
		if d.Get("date").String() == date {
			return d, nil
		}
	}
	return gjson.Result{}, fmt.Errorf("no index entry for %s/%s", key, date)
}

func (c *sharedContext) theIndexEntryShouldHaveNoOutputFile(key, date string) error {
	entry, err := c.indexEntry(key, date)
	if err != nil {
		return err
	}
	if entry.Get("has_output").Bool() || entry.Get("output_file").Type != gjson.Null {
		return fmt.Errorf("expected no output for %s/%s, got %s", key, date, entry.Raw)
	}
	return nil
}

func (c *sharedContext) theIndexEntryShouldHaveImages(key, date, expected string) error {
	entry, err := c.indexEntry(key, date)
	if err != nil {
		return err
	}
	var images []string
	for _, img := range entry.Get("images").Array() {
		images = append(images, img.String())
	}
	if got := strings.Join(images, ","); got != expected {
		return fmt.Errorf("expected images %q, got %q", expected, got)
	}
	return nil
}

func (c *sharedContext) theStrategyShouldBeNamed(key, expected string) error {
	m, err := c.manifest()
	if err != nil {
		return err
	}
	if got := m.Get(gjson.Escape(key) + ".name").String(); got != expected {
		return fmt.Errorf("expected %s to be named %q, got %q", key, expected, got)
	}
	return nil
}

func (c *sharedContext) theStrategyShouldHaveTheDefaultDescription(key string) error {
	m, err := c.manifest()
	if err != nil {
		return err
	}
	if got := m.Get(gjson.Escape(key) + ".description").String(); got != config.DefaultDescription {
		return fmt.Errorf("expected default description for %s, got %q", key, got)
	}
	return nil
}

func (c *sharedContext) page(rel string) (*goquery.Document, error) {
	data, err := c.readFile(rel)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(data))
}

func (c *sharedContext) thePageShouldHaveElementsMatching(rel string, count int, selector string) error {
	doc, err := c.page(rel)
	if err != nil {
		return err
	}
	if got := doc.Find(selector).Length(); got != count {
		return fmt.Errorf("expected %d elements matching %q in %s, got %d", count, selector, rel, got)
	}
	return nil
}

func (c *sharedContext) theTextOfInPageShouldBe(selector, rel, expected string) error {
	doc, err := c.page(rel)
	if err != nil {
		return err
	}
	if got := strings.TrimSpace(doc.Find(selector).First().Text()); got != expected {
		return fmt.Errorf("expected %q text in %s to be %q, got %q", selector, rel, expected, got)
	}
	return nil
}

func (c *sharedContext) thePageShouldContain(rel, expected string) error {
	doc, err := c.page(rel)
	if err != nil {
		return err
	}
	if !strings.Contains(doc.Text(), expected) {
		return fmt.Errorf("expected %s to contain %q", rel, expected)
	}
	return nil
}

func (c *sharedContext) theBuildShouldReportParseErrors(count int) error {
	if c.report == nil {
		return fmt.Errorf("no build report")
	}
	if c.report.ParseErrors != count {
		return fmt.Errorf("expected %d parse errors, got %d", count, c.report.ParseErrors)
	}
	return nil
}

func InitializeSiteGenerationScenario(sc *godog.ScenarioContext, shared *sharedContext) {
	sc.Step(`^a strategy tree with:$`, shared.aStrategyTreeWith)
	sc.Step(`^the scan covers strategies "([^"]*)"$`, shared.theScanCoversStrategies)
	sc.Step(`^I build the site in "([^"]*)" mode$`, shared.iBuildTheSiteInMode)
	sc.Step(`^I build the site$`, shared.iBuildTheSite)
	sc.Step(`^the build should succeed$`, shared.theBuildShouldSucceed)
	sc.Step(`^the build should fail with "([^"]*)"$`, shared.theBuildShouldFailWith)
	sc.Step(`^the build should report (\d+) parse errors?$`, shared.theBuildShouldReportParseErrors)
	sc.Step(`^the file "([^"]*)" should exist$`, shared.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, shared.theFileShouldNotExist)
	sc.Step(`^the index should list strategies "([^"]*)"$`, shared.theIndexShouldListStrategies)
	sc.Step(`^the index dates for "([^"]*)" should be "([^"]*)"$`, shared.theIndexDatesForShouldBe)
	sc.Step(`^the index entry "([^"]*)" "([^"]*)" should have no output file$`, shared.theIndexEntryShouldHaveNoOutputFile)
	sc.Step(`^the index entry "([^"]*)" "([^"]*)" should have images "([^"]*)"$`, shared.theIndexEntryShouldHaveImages)
	sc.Step(`^the strategy "([^"]*)" should be named "([^"]*)"$`, shared.theStrategyShouldBeNamed)
	sc.Step(`^the strategy "([^"]*)" should have the default description$`, shared.theStrategyShouldHaveTheDefaultDescription)
	sc.Step(`^the page "([^"]*)" should have (\d+) elements? matching "([^"]*)"$`, shared.thePageShouldHaveElementsMatching)
	sc.Step(`^the text of "([^"]*)" in page "([^"]*)" should be "([^"]*)"$`, shared.theTextOfInPageShouldBe)
	sc.Step(`^the page "([^"]*)" should contain "([^"]*)"$`, shared.thePageShouldContain)
}
