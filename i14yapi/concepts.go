package i14yapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
)

// ConceptSummary is the slice of a registry concept the transformer needs.
type ConceptSummary struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Version    string `json:"version"`
}

type conceptListResponse struct {
	Data []ConceptSummary `json:"data"`
}

// ConceptByIdentifier returns the registry concepts carrying a source OID as
// identifier. An empty result is a normal outcome, not an error.
func (c *Client) ConceptByIdentifier(ctx context.Context, identifier string) ([]ConceptSummary, error) {
	var list conceptListResponse
	if err := c.get(ctx, "concepts?identifier="+url.QueryEscape(identifier), &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// LookupConcept resolves a registry id from a source OID. It satisfies the
// concept lookup consumed by the parsers: a miss returns found=false.
func (c *Client) LookupConcept(ctx context.Context, identifier string) (string, bool, error) {
	concepts, err := c.ConceptByIdentifier(ctx, identifier)
	if err != nil {
		return "", false, err
	}
	if len(concepts) == 0 || concepts[0].ID == "" {
		return "", false, nil
	}
	return concepts[0].ID, true, nil
}

// CreateConcept posts a concept document produced by the transformer.
func (c *Client) CreateConcept(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var payload json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%s is not valid JSON: %w", path, err)
	}
	c.log.Info().Str("file", filepath.Base(path)).Msg("posting concept")
	return c.post(ctx, "concepts", payload, nil)
}

// ImportCodeListEntries uploads a codelist-entries document into an existing
// concept as a multipart JSON file.
func (c *Client) ImportCodeListEntries(ctx context.Context, path, conceptID string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", "application/json")
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return err
	}

	endpoint, err := url.JoinPath(c.baseURL, "concepts", conceptID, "codelist-entries", "imports", "json")
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "*/*")
	if err := c.signRequest(req); err != nil {
		return err
	}
	c.log.Info().Str("file", filepath.Base(path)).Str("concept", conceptID).Msg("importing codelist entries")
	return c.sendRequest(req, nil)
}

// DeleteCodeListEntries removes every codelist entry of a concept.
func (c *Client) DeleteCodeListEntries(ctx context.Context, conceptID string) error {
	endpoint, err := url.JoinPath("concepts", conceptID, "codelist-entries")
	if err != nil {
		return err
	}
	c.log.Info().Str("concept", conceptID).Msg("deleting codelist entries")
	return c.delete(ctx, endpoint, nil)
}

// ReplaceCodeListEntries deletes a concept's entries and imports the given
// document, the registry's way of replacing all entries.
func (c *Client) ReplaceCodeListEntries(ctx context.Context, path, conceptID string) error {
	if err := c.DeleteCodeListEntries(ctx, conceptID); err != nil {
		return err
	}
	return c.ImportCodeListEntries(ctx, path, conceptID)
}
