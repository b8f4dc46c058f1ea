package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/xskills/xskills/pkg/logger"
)

// DefaultURL is the packaged default registry location, used when neither
// the --registry flag nor the environment override is set.
const DefaultURL = "https://raw.githubusercontent.com/xskills/registry/main/registry"

const indexFileName = "index.json"

// ResolveURL returns the registry base URL honoring the precedence chain
// flag > environment > packaged default. Pure: both inputs are plain
// strings, so precedence is testable without environment mutation.
func ResolveURL(flagValue, envValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue != "" {
		return envValue
	}
	return DefaultURL
}

// Client fetches registry documents over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a registry client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchIndex retrieves and parses the registry index document.
func (c *Client) FetchIndex(ctx context.Context) (*Index, error) {
	url := c.baseURL + "/" + indexFileName

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building registry request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching registry index from %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching registry index from %s: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading registry index")
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, errors.Wrap(err, "parsing registry index")
	}

	logger.G(ctx).WithField("skills", len(index.Skills)).Debug("fetched registry index")
	return &index, nil
}
