package scene

import "github.com/invopop/jsonschema"

// EntitySchema returns the JSON Schema of a select-entity push, for engine
// authors who produce payloads outside this repository.
func EntitySchema() *jsonschema.Schema {
	r := jsonschema.Reflector{AllowAdditionalProperties: true}
	s := r.Reflect(new(Entity))
	s.Title = "runebridge selected entity"
	s.Description = "Payload of the select_entity entry point"
	return s
}

// HierarchySchema returns the JSON Schema of a set-hierarchy push.
func HierarchySchema() *jsonschema.Schema {
	r := jsonschema.Reflector{AllowAdditionalProperties: true}
	s := r.Reflect(new(Hierarchy))
	s.Title = "runebridge hierarchy"
	s.Description = "Payload of the set_hierarchy entry point"
	return s
}
