package config

import "github.com/invopop/jsonschema"

// Schema returns the JSON Schema of the configuration file, for editor
// completion of runebridge.yaml.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{FieldNameTag: "yaml", DoNotReference: true}
	s := r.Reflect(new(Config))
	s.Title = "runebridge configuration"
	return s
}
