package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// buildCatalogSchema returns the JSON-Schema the rule catalog document must satisfy.
func buildCatalogSchema() map[string]any {
	matchList := map[string]any{
		"type":     "array",
		"minItems": 1,
		"items":    map[string]any{"type": "string", "minLength": 1, "pattern": `\S`},
	}
	rule := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"match"},
		"properties": map[string]any{
			"match":    matchList,
			"category": map[string]any{"type": "string"},
			"iva_rate": map[string]any{"type": "number", "minimum": 0, "exclusiveMaximum": 1},
			"unit":     map[string]any{"type": "string"},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"supplier_alias"},
		"properties": map[string]any{
			"supplier_alias": map[string]any{
				"type":                 "object",
				"minProperties":        1,
				"additionalProperties": matchList,
			},
			"product_rules": map[string]any{
				"type":  "array",
				"items": rule,
			},
		},
	}
}

func catalogSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		b, err := json.Marshal(buildCatalogSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("catalog.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("catalog.json")
	})
	return compiledSchema, compileErr
}

// validateDocument checks a JSON-encoded catalog document against the schema.
func validateDocument(data []byte) error {
	schema, err := catalogSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("catalog does not match schema: %w", err)
	}
	return nil
}
