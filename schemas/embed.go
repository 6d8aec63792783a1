// Package schemas holds the JSON Schemas for the structured documents the pipeline exchanges.
package schemas

import (
	"embed"
	"fmt"
)

// Schema file names
const (
	ApplyPack = "apply_pack.schema.json"
	RunLog    = "run_log.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Load returns the content of an embedded schema file
func Load(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("schema %s not found: %w", name, err)
	}
	return string(data), nil
}
