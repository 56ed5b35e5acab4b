package parser

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema names a structured result shape that feeds a downstream stage.
type Schema string

const (
	SchemaNutritionReport Schema = "nutrition_report"
	SchemaFoodAnalysis    Schema = "food_analysis"
	SchemaComparison      Schema = "comparison"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	compileOnce sync.Once
	compiled    map[Schema]*jsonschema.Schema
	compileErr  error
)

func compileAll() {
	compiled = make(map[Schema]*jsonschema.Schema)
	compiler := jsonschema.NewCompiler()
	names := []Schema{SchemaNutritionReport, SchemaFoodAnalysis, SchemaComparison}
	for _, name := range names {
		b, err := schemaFS.ReadFile("schemas/" + string(name) + ".json")
		if err != nil {
			compileErr = fmt.Errorf("read schema %s: %w", name, err)
			return
		}
		if err := compiler.AddResource(string(name)+".json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema %s: %w", name, err)
			return
		}
	}
	for _, name := range names {
		s, err := compiler.Compile(string(name) + ".json")
		if err != nil {
			compileErr = fmt.Errorf("compile schema %s: %w", name, err)
			return
		}
		compiled[name] = s
	}
}

// Validate checks a decoded JSON value against the named schema.
func Validate(schema Schema, value any) error {
	compileOnce.Do(compileAll)
	if compileErr != nil {
		return compileErr
	}
	s, ok := compiled[schema]
	if !ok {
		return fmt.Errorf("unknown schema %q", schema)
	}
	if err := s.Validate(value); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ParseValidated is ParseObject followed by Validate.
func ParseValidated(raw string, schema Schema) (map[string]any, error) {
	obj, err := ParseObject(raw)
	if err != nil {
		return nil, err
	}
	if err := Validate(schema, obj); err != nil {
		return nil, err
	}
	return obj, nil
}
