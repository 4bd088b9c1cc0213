// Package manifest is an optional, schema-validated run configuration
// (SPEC_FULL.md ambient stack "Configuration"): rather than inventing a
// bespoke flag-parsing layer, a JSON manifest can describe a whole
// hashtab/rules.md/diff-root run in one file, validated against a JSON
// Schema the way opal/core's types.Validator validates parameter schemas.
package manifest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaDoc = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["root"],
	"properties": {
		"root": {"type": "string", "minLength": 1},
		"version": {"type": "string"},
		"hashtab": {"type": "string"},
		"rules": {"type": "string"},
		"disableSlots": {"type": "boolean"},
		"output": {"type": "string"}
	},
	"additionalProperties": false
}`

const schemaURL = "qmldiff://run-manifest.json"

var schema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaDoc)); err != nil {
		panic(fmt.Sprintf("manifest: invalid embedded schema: %v", err))
	}
	s, err := compiler.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("manifest: invalid embedded schema: %v", err))
	}
	return s
}

// Manifest is a single qmldiff run's configuration: a diff root to build
// changes from, an optional pinned version, an optional hashtab/rules pair,
// and whether slot/template expansion should be skipped.
type Manifest struct {
	Root         string `json:"root"`
	Version      string `json:"version,omitempty"`
	Hashtab      string `json:"hashtab,omitempty"`
	Rules        string `json:"rules,omitempty"`
	DisableSlots bool   `json:"disableSlots,omitempty"`
	Output       string `json:"output,omitempty"`
}

// Load validates data against the manifest schema and decodes it.
func Load(data []byte) (*Manifest, error) {
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("manifest: invalid JSON: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return &m, nil
}
