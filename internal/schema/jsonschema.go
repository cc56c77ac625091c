package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// coarseObjectSchema rejects non-object documents (arrays, scalars, null)
// before the keyword-level validator runs, the same division of labor as
// the source repo's validate_config.go: gojsonschema catches gross
// structural mistakes, the keyword tables catch everything domain-specific.
const coarseObjectSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object"
}`

// Prevalidate runs decoded JSON through a minimal structural schema, catching
// the case where a config file parses as valid JSON but isn't a JSON object
// (e.g. a bare list or string) before section-by-section validation begins.
func Prevalidate(decoded any) error {
	schemaLoader := gojsonschema.NewStringLoader(coarseObjectSchema)
	docLoader := gojsonschema.NewGoLoader(decoded)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema prevalidation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("document is not a config object: %v", msgs)
	}
	return nil
}

// GenerateSchema reflects a typed config struct (e.g. config.Machine,
// config.Process) into a JSON schema document, for publishing alongside the
// keyword tables so editors and CI can offer structural autocomplete without
// depending on this package at build time.
func GenerateSchema(prototype any) *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: false,
	}
	return reflector.Reflect(prototype)
}

// WriteSchema generates and writes the schema for prototype to
// <outputDir>/<name>.json, creating the directory if needed.
func WriteSchema(prototype any, outputDir, name string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating schema output dir: %w", err)
	}
	doc := GenerateSchema(prototype)
	data, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling schema for %s: %w", name, err)
	}
	path := filepath.Join(outputDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing schema file %s: %w", path, err)
	}
	return nil
}
