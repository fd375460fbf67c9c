package i14yapi

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ehealth-suisse/i14y-transformer/codelists"
)

// ImportCodelistFolder pushes every *_transformed.json document in dir into
// the concept the registry mapping assigns to it. Files without a mapping and
// files the API rejects are skipped so one bad document does not block the
// rest. It returns the paths that were imported.
func (c *Client) ImportCodelistFolder(ctx context.Context, dir string, registry *codelists.Registry) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*_transformed.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	c.log.Info().Int("count", len(files)).Str("dir", dir).Msg("found codelist files to process")

	var imported []string
	for _, file := range files {
		name := codelists.ConceptNameFromArtifact(filepath.Base(file))
		conceptID, ok := registry.Lookup(name)
		if !ok {
			c.log.Warn().Str("file", file).Str("concept", name).Msg("no concept id mapped, skipping")
			continue
		}
		if err := c.ReplaceCodeListEntries(ctx, file, conceptID); err != nil {
			c.log.Error().Err(err).Str("file", file).Str("concept", conceptID).Msg("failed to import codelist entries")
			continue
		}
		imported = append(imported, file)
	}
	return imported, nil
}

// CreateConceptFolder posts every *.json concept document in dir. Rejected
// files are logged and skipped. It returns the paths that were created.
func (c *Client) CreateConceptFolder(ctx context.Context, dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	c.log.Info().Int("count", len(files)).Str("dir", dir).Msg("found concept files to process")

	var created []string
	for _, file := range files {
		if err := c.CreateConcept(ctx, file); err != nil {
			c.log.Error().Err(err).Str("file", file).Msg("failed to post concept")
			continue
		}
		created = append(created, file)
	}
	return created, nil
}
