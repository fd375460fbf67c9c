// Package i14yapi is the REST client for the I14Y interoperability platform.
// It acquires OAuth2 client-credential tokens and pushes the transformer's
// concept and codelist-entries documents to the registry.
package i14yapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// Config carries the credential set of one API environment.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Client talks to the I14Y partner API. It caches its bearer token and is
// safe for concurrent use.
type Client struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	log          zerolog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a Client with a retrying HTTP transport.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.Logger = nil
	retryClient.HTTPClient = &http.Client{
		Jar:     jar,
		Timeout: 60 * time.Second,
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   retryClient.StandardClient(),
		log:          log,
	}
}

// get wraps do using http.MethodGet
func (c *Client) get(ctx context.Context, endpoint string, response any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, response)
}

// post wraps do using http.MethodPost
func (c *Client) post(ctx context.Context, endpoint string, body, response any) error {
	return c.do(ctx, http.MethodPost, endpoint, body, response)
}

// delete wraps do using http.MethodDelete
func (c *Client) delete(ctx context.Context, endpoint string, response any) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, response)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, response any) error {
	req, err := c.prepareRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if err := c.signRequest(req); err != nil {
		return err
	}
	return c.sendRequest(req, response)
}

// prepareRequest returns a new HTTP request given a method, I14Y endpoint
// (which may carry a query string), and optional JSON body.
func (c *Client) prepareRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	path, query, _ := strings.Cut(endpoint, "?")
	uri, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, err
	}
	if query != "" {
		uri += "?" + query
	}
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	req.Header.Set("Accept", "application/json; charset=utf-8")
	return req, nil
}

// signRequest attaches a bearer token, requesting one first if needed.
func (c *Client) signRequest(req *http.Request) error {
	token, err := c.Token(req.Context())
	if err != nil {
		return fmt.Errorf("failed to acquire access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// sendRequest sends an HTTP request and stores the HTTP response body in the
// value pointed to by response. Non-2xx statuses surface as *APIError.
func (c *Client) sendRequest(req *http.Request, response any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("status", resp.Status).Msg("i14y request")
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(resp)
	}
	if response != nil {
		if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
