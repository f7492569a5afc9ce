package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FirstLeaseAgent/template-pdf/config"
	"github.com/FirstLeaseAgent/template-pdf/model"
)

// maxTemplateSize caps remote template downloads at 20 MB.
const maxTemplateSize = 20 << 20

// Fetcher downloads canonical templates from a remote source so an instance
// can be provisioned without a manual upload.
type Fetcher struct {
	config     *config.RemoteConfig
	httpClient *http.Client
}

func NewFetcher(cfg *config.RemoteConfig) *Fetcher {
	return &Fetcher{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Fetch downloads the template at rawURL. Any failure wraps
// model.ErrRemoteFetch and is fatal to the request that triggered the fetch:
// without a template there is nothing to operate on.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRemoteFetch, err)
	}
	if f.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+f.config.APIToken)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRemoteFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", model.ErrRemoteFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRemoteFetch, err)
	}
	if len(data) > maxTemplateSize {
		return nil, fmt.Errorf("%w: template exceeds %d bytes", model.ErrRemoteFetch, maxTemplateSize)
	}
	return data, nil
}
