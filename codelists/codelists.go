// Package codelists resolves I14Y codelist ids from normalized value-set
// names. The built-in table covers the EPR value sets published by eHealth
// Suisse and can be replaced by a mapping file from configuration.
package codelists

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

//go:embed codelists.json
var defaultMapping []byte

// Registry maps normalized concept names to registry codelist ids. An
// unmapped name is a normal miss, never an error.
type Registry struct {
	ids map[string]string
}

// NewRegistry returns a Registry backed by the built-in mapping table.
func NewRegistry() *Registry {
	var ids map[string]string
	if err := json.Unmarshal(defaultMapping, &ids); err != nil {
		// the table ships inside the binary, a parse failure is a build defect
		panic(fmt.Sprintf("codelists: built-in mapping is invalid: %v", err))
	}
	return &Registry{ids: ids}
}

// NewRegistryFromFile returns a Registry loaded from a JSON mapping file of
// the form {"<concept name>": "<codelist id>", ...}.
func NewRegistryFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read codelist mapping %s: %w", path, err)
	}
	var ids map[string]string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse codelist mapping %s: %w", path, err)
	}
	return &Registry{ids: ids}, nil
}

// Lookup returns the codelist id registered under the normalized concept
// name and whether the name is mapped at all.
func (r *Registry) Lookup(name string) (string, bool) {
	id, ok := r.ids[name]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Len returns the number of mapped names.
func (r *Registry) Len() int {
	return len(r.ids)
}

// ConceptNameFromArtifact derives the normalized concept name from a
// transformed artifact filename, undoing the transformer's naming scheme
// <concept>[_<registryId>]_transformed.json.
func ConceptNameFromArtifact(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, ".json")
	name = strings.TrimSuffix(name, "_transformed")
	if i := strings.LastIndex(name, "_"); i >= 0 {
		if _, err := uuid.Parse(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	return name
}
