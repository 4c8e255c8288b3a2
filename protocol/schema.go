package protocol

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
)

var (
	schemaOnce sync.Once
	schemaJSON []byte
	schemaErr  error
)

// SchemaJSON returns the JSON Schema describing the Protocol document shape,
// derived by reflection and cached after the first call. Clients use it to
// validate drafts before submitting them for freezing.
func SchemaJSON() ([]byte, error) {
	schemaOnce.Do(func() {
		reflector := &jsonschema.Reflector{
			// Inline all definitions so the schema is self-contained.
			DoNotReference: true,
			ExpandedStruct: true,
		}
		schema := reflector.Reflect(&Protocol{})
		schema.Title = "Protocol"
		schema.Description = "Systematic review protocol document"

		schemaJSON, schemaErr = json.MarshalIndent(schema, "", "  ")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("reflect protocol schema: %w", schemaErr)
		}
	})
	return schemaJSON, schemaErr
}
