package value

import "github.com/invopop/jsonschema"

// JSONSchema describes the wire shape of a Value for schema export.
func (Value) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Description: "Tagged property value: an object with exactly one key naming the variant " +
			"(String, Number, Boolean, Array, EntityReference, ComponentReference). " +
			"Other keys are preserved opaquely.",
	}
}
