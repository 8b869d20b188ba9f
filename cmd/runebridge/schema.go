package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/dshills/runebridge/internal/config"
	"github.com/dshills/runebridge/internal/scene"
)

var schemas = map[string]func() *jsonschema.Schema{
	"entity":    scene.EntitySchema,
	"hierarchy": scene.HierarchySchema,
	"config":    config.Schema,
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema {entity|hierarchy|config}",
		Short:     "Print the JSON Schema of an engine payload or the config file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"entity", "hierarchy", "config"},
		RunE: func(cmd *cobra.Command, args []string) error {
			build, ok := schemas[args[0]]
			if !ok {
				return fmt.Errorf("unknown schema %q", args[0])
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(build())
		},
	}
}
