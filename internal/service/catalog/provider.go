// internal/service/catalog/provider.go

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"localvibe/internal/domain/experience"
)

// ErrUnknownProvider is returned when a sync names an unregistered provider
var ErrUnknownProvider = errors.New("unknown catalog provider")

// Provider defines a third-party experience catalog
type Provider interface {
	// Name returns the provider name used in admin routes
	Name() string

	// Fetch returns the provider's raw records for a city
	Fetch(ctx context.Context, city string) ([]experience.RawRecord, error)
}

// ClientConfig holds the connection settings shared by the HTTP providers
type ClientConfig struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Timeout  time.Duration
}

type httpClient struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	PageSize   int
}

func newHTTPClient(config ClientConfig, defaultBaseURL string) httpClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.PageSize <= 0 {
		config.PageSize = 50
	}

	return httpClient{
		HTTPClient: &http.Client{Timeout: config.Timeout},
		BaseURL:    config.BaseURL,
		APIKey:     config.APIKey,
		PageSize:   config.PageSize,
	}
}

// getJSON issues a GET and decodes a 200 response into out
func (c httpClient) getJSON(ctx context.Context, provider, path string, query url.Values, header http.Header, out interface{}) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "localvibe/1.0")
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to %s API: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s API returned status code %d", provider, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s API response: %w", provider, err)
	}
	return nil
}

// record builds a RawRecord, dropping empty string fields so the normalizer
// falls back to its defaults
func record(source experience.Source, fields map[string]interface{}) experience.RawRecord {
	for k, v := range fields {
		if s, ok := v.(string); ok && s == "" {
			delete(fields, k)
		}
		if v == nil {
			delete(fields, k)
		}
	}
	return experience.RawRecord{Source: source, Fields: fields}
}

// prefixedID namespaces a provider id so it cannot collide with internal rows
func prefixedID(source experience.Source, id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s_%s", source, id)
}
