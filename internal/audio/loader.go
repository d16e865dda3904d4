package audio

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Loader fetches and decodes reference assets. Assets are static files served
// by URL or sitting on disk; the loader trusts their duration and loudness
// matching without verifying it.
type Loader struct {
	client *http.Client
}

// NewLoader creates a loader using the given HTTP client (nil for the default).
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client}
}

// Load fetches url and decodes it. http(s) URLs go over the network; anything
// else is treated as a local file path. There is no retry and no timeout
// beyond what the HTTP client carries.
func (l *Loader) Load(ctx context.Context, url string) (*Buffer, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return l.loadHTTP(ctx, url)
	}
	return l.loadFile(url)
}

func (l *Loader) loadHTTP(ctx context.Context, url string) (*Buffer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %s", url, resp.Status)
	}

	buf, err := DecodeWAV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return buf, nil
}

func (l *Loader) loadFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	buf, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return buf, nil
}
