// Schema Generator
//
// Generates JSON Schema files for the run-state records, the output sidecar,
// the lookup table document and the admin API types, so consumers of the
// generated files and the HTTP API can validate what they read.
//
// Usage:
//
//	go run ./cmd/schema-gen [output-dir]
//
// Output (default ./schemas):
//
//	schemas/output.json
//	schemas/tables.json
//	schemas/admin.json
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/emitter"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/handlers"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/tables"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// SchemaGroup represents a group of related schemas
type SchemaGroup struct {
	Name   string
	Types  []any
	Output string
}

func main() {
	outputDir := "./schemas"
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	groups := []SchemaGroup{
		{
			Name: "output",
			Types: []any{
				emitter.Sidecar{},
				types.RunResult{},
				types.NormalizedProduct{},
			},
			Output: "output.json",
		},
		{
			Name: "tables",
			Types: []any{
				tables.Document{},
			},
			Output: "tables.json",
		},
		{
			Name: "admin",
			Types: []any{
				// Request types
				handlers.ListRunsRequest{},
				// Response types
				handlers.ListRunsResponse{},
				handlers.SupplierInfo{},
				handlers.BuildStartedResponse{},
				handlers.HealthResponse{},
			},
			Output: "admin.json",
		},
	}

	for _, group := range groups {
		schema := generateGroupSchema(group)
		outputPath := filepath.Join(outputDir, group.Output)

		if err := writeSchema(schema, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", group.Output, err)
			os.Exit(1)
		}

		fmt.Printf("Generated %s\n", outputPath)
	}

	fmt.Println("Schema generation complete!")
}

// generateGroupSchema creates a combined schema with all types in a group
func generateGroupSchema(group SchemaGroup) map[string]any {
	reflector := &jsonschema.Reflector{}

	definitions := make(map[string]any)
	for _, t := range group.Types {
		schema := reflector.Reflect(t)
		for name, def := range schema.Definitions {
			definitions[name] = def
		}
	}

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"$id":         fmt.Sprintf("https://wholesale-feeds.local/schemas/%s.json", group.Name),
		"title":       fmt.Sprintf("%s Types", capitalize(group.Name)),
		"description": fmt.Sprintf("JSON Schema for %s types generated from Go structs", group.Name),
		"$defs":       definitions,
	}
}

// writeSchema writes a schema to a JSON file
func writeSchema(schema map[string]any, path string) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
