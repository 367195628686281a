package services

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	evaluationSchema = mustLoadSchema("schemas/evaluation.json")
	questionsSchema  = mustLoadSchema("schemas/questions.json")
)

func mustLoadSchema(name string) *gojsonschema.Schema {
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

// SchemaError lists every violation found in a model response.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "response does not match schema: " + strings.Join(e.Violations, "; ")
}

// validateJSON checks document against schema. Malformed JSON is reported as
// an error as well.
func validateJSON(schema *gojsonschema.Schema, document string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Violations: make([]string, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Violations = append(schemaErr.Violations, field+": "+desc.Description())
	}
	return schemaErr
}
