package i14yapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the registry, carrying the title and
// detail of its problem document when one was returned.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("i14y responded %d %s: %s", e.StatusCode, e.Title, strings.TrimSpace(e.Detail))
	}
	return fmt.Sprintf("i14y responded with status %d", e.StatusCode)
}

// IsAlreadyExists reports whether the registry rejected a concept because it
// is already registered. Callers may delete its codelist entries and re-post.
func (e *APIError) IsAlreadyExists() bool {
	return strings.Contains(e.Detail, "already exists")
}

// newAPIError builds an APIError from a response, parsing the registry's
// problem document when the body holds one and falling back to the raw body.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return apiErr
	}
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &problem); err == nil && (problem.Title != "" || problem.Detail != "") {
		apiErr.Title = problem.Title
		apiErr.Detail = problem.Detail
		return apiErr
	}
	apiErr.Detail = string(body)
	return apiErr
}
