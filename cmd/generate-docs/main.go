// Copyright 2025 Andrew Khoury
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// generate-docs generates documentation from config structs using reflection
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/drew/stratsite/internal/config"
)

// FieldDoc represents documentation for a single field
type FieldDoc struct {
	Name        string
	Type        string
	Default     any
	Description string
	ValidValues []string
}

// SectionDoc represents documentation for a config section
type SectionDoc struct {
	Name        string
	Description string
	Fields      []FieldDoc
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--help" {
		fmt.Println("Usage: generate-docs [output-dir]")
		fmt.Println("Generates documentation from config structs:")
		fmt.Println("  - stratsite.example.toml")
		fmt.Println("  - stratsite.schema.json")
		fmt.Println("  - docs/configuration.md")
		return
	}

	outDir := "."
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}

	docs := buildDocumentation()

	steps := []struct {
		file string
		fn   func(string, []SectionDoc) error
	}{
		{"stratsite.example.toml", generateExampleTOML},
		{"stratsite.schema.json", generateJSONSchema},
		{"docs/configuration.md", generateMarkdownDocs},
	}
	for _, step := range steps {
		if err := step.fn(outDir, docs); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", step.file, err)
			os.Exit(1)
		}
		fmt.Printf("✓ Generated %s\n", step.file)
	}
}

func buildDocumentation() []SectionDoc {
	defaults := config.GetDefaults()

	return []SectionDoc{
		extractSection("site", "Output settings", defaults.Site),
		extractSection("scan", "How the strategy tree is discovered", defaults.Scan),
		extractSection("strategies.<key>", "Display metadata for one strategy directory. Keys without an entry show the raw key and a default description.", config.StrategyInfo{}),
		extractSection("publish", "Where generated files are written", defaults.Publish),
		extractSection("publish.s3", "S3-compatible bucket used when publish.type is s3", defaults.Publish.S3),
	}
}

// extractSection uses reflection to extract field documentation from struct tags
func extractSection(name, description string, value any) SectionDoc {
	section := SectionDoc{
		Name:        name,
		Description: description,
		Fields:      []FieldDoc{},
	}

	t := reflect.TypeOf(value)
	v := reflect.ValueOf(value)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		// Nested sections have no doc tag
		docTag := field.Tag.Get("doc")
		if docTag == "" {
			continue
		}

		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		fieldDoc := FieldDoc{
			Name:        tomlTag,
			Type:        getFieldType(field.Type),
			Default:     v.Field(i).Interface(),
			Description: docTag,
		}

		if enumTag := field.Tag.Get("enum"); enumTag != "" {
			fieldDoc.ValidValues = strings.Split(enumTag, ",")
		}

		section.Fields = append(section.Fields, fieldDoc)
	}

	return section
}

// getFieldType returns a string representation of the field type
func getFieldType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "[]" + getFieldType(t.Elem())
	case reflect.Ptr:
		return getFieldType(t.Elem())
	default:
		return t.String()
	}
}

// tomlValue renders a default as a TOML literal, or "" when it is unset
func tomlValue(v any) string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return ""
		}
		return fmt.Sprintf("%q", val)
	case []string:
		if len(val) == 0 {
			return ""
		}
		quoted := make([]string, len(val))
		for i, s := range val {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	case bool:
		return fmt.Sprintf("%t", val)
	case int:
		return fmt.Sprintf("%d", val)
	default:
		return ""
	}
}

func writeFile(outDir, name string, data []byte) error {
	path := filepath.Join(outDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func generateExampleTOML(outDir string, docs []SectionDoc) error {
	var sb strings.Builder

	sb.WriteString(`# =============================================================================
# stratsite Configuration Reference
# =============================================================================
# This is a comprehensive example showing ALL available configuration options.
# Copy the sections you need to stratsite.toml next to your strategy tree.
#
# Quick Start:
#   [site]
#   modes = ["dynamic", "static"]
# =============================================================================

`)

	for _, section := range docs {
		sb.WriteString("# -----------------------------------------------------------------------------\n")
		sb.WriteString(fmt.Sprintf("# [%s] - %s\n", section.Name, section.Description))
		sb.WriteString("# -----------------------------------------------------------------------------\n\n")

		if section.Name == "strategies.<key>" {
			sb.WriteString("# Example strategy entry:\n")
			sb.WriteString("[strategies.dma]\n")
		} else {
			sb.WriteString(fmt.Sprintf("[%s]\n", section.Name))
		}

		for _, field := range section.Fields {
			sb.WriteString(fmt.Sprintf("# %s\n", field.Description))
			value := tomlValue(field.Default)
			if value != "" {
				sb.WriteString(fmt.Sprintf("# Default: %s\n", value))
			}
			if len(field.ValidValues) > 0 {
				sb.WriteString(fmt.Sprintf("# Valid values: %s\n", strings.Join(field.ValidValues, ", ")))
			}

			if value == "" {
				sb.WriteString(fmt.Sprintf("# %s = \n", field.Name))
			} else {
				sb.WriteString(fmt.Sprintf("%s = %s\n", field.Name, value))
			}
			sb.WriteString("\n")
		}

		sb.WriteString("\n")
	}

	return writeFile(outDir, "stratsite.example.toml", []byte(sb.String()))
}

func fieldSchema(field FieldDoc) map[string]any {
	schema := map[string]any{
		"description": field.Description,
	}

	switch field.Type {
	case "string":
		schema["type"] = "string"
	case "int":
		schema["type"] = "integer"
	case "bool":
		schema["type"] = "boolean"
	case "[]string":
		items := map[string]any{"type": "string"}
		if len(field.ValidValues) > 0 {
			items["enum"] = field.ValidValues
		}
		schema["type"] = "array"
		schema["items"] = items
	}

	if tomlValue(field.Default) != "" {
		schema["default"] = field.Default
	}
	if len(field.ValidValues) > 0 && field.Type != "[]string" {
		schema["enum"] = field.ValidValues
	}

	return schema
}

func objectSchema(section SectionDoc) map[string]any {
	props := make(map[string]any)
	for _, field := range section.Fields {
		props[field.Name] = fieldSchema(field)
	}
	return map[string]any{
		"type":                 "object",
		"description":          section.Description,
		"properties":           props,
		"additionalProperties": false,
	}
}

func generateJSONSchema(outDir string, docs []SectionDoc) error {
	sections := make(map[string]SectionDoc)
	for _, s := range docs {
		sections[s.Name] = s
	}

	publish := objectSchema(sections["publish"])
	publish["properties"].(map[string]any)["s3"] = objectSchema(sections["publish.s3"])

	schema := map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "stratsite Configuration",
		"description": "Configuration schema for the stratsite report site generator",
		"type":        "object",
		"properties": map[string]any{
			"site": objectSchema(sections["site"]),
			"scan": objectSchema(sections["scan"]),
			"strategies": map[string]any{
				"type":                 "object",
				"additionalProperties": objectSchema(sections["strategies.<key>"]),
			},
			"publish": publish,
		},
		"additionalProperties": false,
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}

	return writeFile(outDir, "stratsite.schema.json", data)
}

func generateMarkdownDocs(outDir string, docs []SectionDoc) error {
	var sb strings.Builder

	sb.WriteString("# Configuration\n\n")
	sb.WriteString("stratsite reads `" + config.DefaultConfigPath + "` from the working directory, or the file given with `--config`.\n")
	sb.WriteString("Every field is optional. Run `stratsite validate` to check a file.\n\n")

	for _, section := range docs {
		sb.WriteString("### `[" + section.Name + "]`\n\n")
		sb.WriteString(section.Description + "\n\n")

		sb.WriteString("| Field | Type | Default | Description |\n")
		sb.WriteString("|-------|------|---------|-------------|\n")

		for _, field := range section.Fields {
			defaultVal := tomlValue(field.Default)
			if defaultVal == "" {
				defaultVal = "-"
			}
			desc := field.Description
			if len(field.ValidValues) > 0 {
				desc += fmt.Sprintf(" (valid: `%s`)", strings.Join(field.ValidValues, "`, `"))
			}
			sb.WriteString(fmt.Sprintf("| `%s` | %s | `%s` | %s |\n",
				field.Name, field.Type, defaultVal, desc))
		}

		sb.WriteString("\n")
	}

	sb.WriteString("## Built-in strategies\n\n")
	sb.WriteString("These entries are used for listed strategies that the file does not describe.\n\n")
	sb.WriteString("| Key | Title |\n")
	sb.WriteString("|-----|-------|\n")
	builtIn := config.BuiltInStrategies()
	for _, key := range config.BuiltInStrategyOrder() {
		sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", key, builtIn[key].Title))
	}
	sb.WriteString("\n")

	return writeFile(outDir, "docs/configuration.md", []byte(sb.String()))
}
