// Package npm is the registry client for the flat npm-style package registry.
//
// It fetches full package records and weekly download counts over HTTP,
// keeping a process-scoped in-memory record cache: once a package record has
// been fetched it is never re-fetched for the lifetime of the process (no
// eviction, no TTL). Download counts are not cached here; the resolver keeps
// a run-scoped download cache of its own.
package npm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/httputil"
	"github.com/depscope/depscope/pkg/observability"
)

// Default endpoints and timeouts. Both timeouts are independently
// configurable via [Config].
const (
	DefaultRegistryURL  = "https://registry.npmjs.org"
	DefaultDownloadsURL = "https://api.npmjs.org/downloads/point/last-week"

	DefaultMetadataTimeout  = 15 * time.Second
	DefaultDownloadsTimeout = 5 * time.Second
)

// Config configures a registry Client. Zero values fall back to defaults.
type Config struct {
	RegistryURL      string
	DownloadsURL     string
	MetadataTimeout  time.Duration
	DownloadsTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.RegistryURL == "" {
		c.RegistryURL = DefaultRegistryURL
	}
	if c.DownloadsURL == "" {
		c.DownloadsURL = DefaultDownloadsURL
	}
	if c.MetadataTimeout <= 0 {
		c.MetadataTimeout = DefaultMetadataTimeout
	}
	if c.DownloadsTimeout <= 0 {
		c.DownloadsTimeout = DefaultDownloadsTimeout
	}
	return c
}

// Client fetches package metadata and download counts from the registry.
// It is safe for concurrent use; the record cache is guarded by a mutex.
type Client struct {
	registryURL  string
	downloadsURL string
	metaHTTP     *http.Client
	dlHTTP       *http.Client

	mu      sync.Mutex
	records map[string]*Record // process-lifetime record cache, keyed by package name
}

// NewClient creates a registry Client with the given configuration.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		registryURL:  strings.TrimSuffix(cfg.RegistryURL, "/"),
		downloadsURL: strings.TrimSuffix(cfg.DownloadsURL, "/"),
		metaHTTP:     &http.Client{Timeout: cfg.MetadataTimeout},
		dlHTTP:       &http.Client{Timeout: cfg.DownloadsTimeout},
		records:      make(map[string]*Record),
	}
}

// PackageMetadata retrieves the full registry record for a package name,
// serving from the in-process cache when available. Failures are classified:
// 404 → ErrCodePackageNotFound, 5xx and connection errors → ErrCodeNetwork
// (retried with backoff), client timeouts → ErrCodeTimeout, undecodable
// payloads → ErrCodeMalformed.
func (c *Client) PackageMetadata(ctx context.Context, name string) (*Record, error) {
	c.mu.Lock()
	rec, ok := c.records[name]
	c.mu.Unlock()
	if ok {
		observability.Cache().OnCacheHit(ctx, "registry")
		return rec, nil
	}
	observability.Cache().OnCacheMiss(ctx, "registry")

	endpoint := c.registryURL + "/" + url.PathEscape(name)
	rec = &Record{}
	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.getJSON(ctx, c.metaHTTP, endpoint, rec)
	})
	if err != nil {
		return nil, classifyFetchError(err, name)
	}

	c.mu.Lock()
	c.records[name] = rec
	c.mu.Unlock()
	observability.Cache().OnCacheSet(ctx, "registry")
	return rec, nil
}

// WeeklyDownloads retrieves the weekly download count for a package name.
// Any failure (network, non-2xx, malformed payload) yields -1; this call
// never returns an error.
func (c *Client) WeeklyDownloads(ctx context.Context, name string) int {
	endpoint := c.downloadsURL + "/" + url.PathEscape(name)

	var payload struct {
		Downloads int `json:"downloads"`
	}
	if err := c.getJSON(ctx, c.dlHTTP, endpoint, &payload); err != nil {
		return -1
	}
	return payload.Downloads
}

func (c *Client) getJSON(ctx context.Context, hc *http.Client, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	u := req.URL
	observability.HTTP().OnRequest(ctx, http.MethodGet, u.Host, u.Path)
	start := time.Now()

	resp, err := hc.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		if isTimeout(err) {
			return errors.Wrap(errors.ErrCodeTimeout, err, "request to %s timed out", u.Host)
		}
		return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "request to %s failed", u.Host)}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeMalformed, err, "decoding response from %s", u.Host)
	}
	return nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodePackageNotFound, "registry returned status %d", code)
	case code >= 500:
		return &httputil.RetryableError{Err: errors.New(errors.ErrCodeNetwork, "registry returned status %d", code)}
	default:
		return errors.New(errors.ErrCodeNetwork, "registry returned status %d", code)
	}
}

// classifyFetchError preserves structured codes set by getJSON and tags
// anything else (including exhausted retries) as a fetch failure for name.
func classifyFetchError(err error, name string) error {
	if code := errors.GetCode(err); code != "" {
		if code == errors.ErrCodePackageNotFound {
			return errors.Wrap(code, err, "package %s not found", name)
		}
		return err
	}
	if err == context.DeadlineExceeded || err == context.Canceled {
		return err
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "fetching %s", name)
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeout); ok && t.Timeout() {
			return true
		}
		unwrapper, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = unwrapper.Unwrap()
	}
	return false
}
