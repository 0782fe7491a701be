// Package registry implements the crates.io index client used to detect
// already-published versions and to confirm a publish has become visible.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/matzehuels/towline/pkg/cache"
	"github.com/matzehuels/towline/pkg/errors"
	"github.com/matzehuels/towline/pkg/httputil"
)

const (
	defaultBaseURL = "https://crates.io/api/v1"
	userAgent      = "towline/1.0 (https://github.com/matzehuels/towline)"

	// graceSleepEnv names an optional extra settle delay applied after the
	// index first reports a version visible, for mirrors that lag the API.
	graceSleepEnv = "PUBLISH_GRACE_SLEEP"
)

// Client queries the crates.io API. Responses are cached through the
// configured cache backend; visibility polling always bypasses the cache.
//
// crates.io requires a User-Agent header; the client sets one.
type Client struct {
	http         *http.Client
	cache        cache.Cache
	cacheTTL     time.Duration
	baseURL      string
	pollInterval time.Duration
}

// NewClient creates a crates.io client with the given cache backend. Use
// cache.NewNullCache() to disable response caching.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		http:         &http.Client{Timeout: 30 * time.Second},
		cache:        backend,
		cacheTTL:     cacheTTL,
		baseURL:      defaultBaseURL,
		pollInterval: time.Second,
	}
}

// IsPublished reports whether the exact version of the crate is visible in
// the index. A crate that does not exist at all is simply not published.
// With refresh, the response cache is bypassed.
func (c *Client) IsPublished(ctx context.Context, name, version string, refresh bool) (bool, error) {
	versions, err := c.versions(ctx, name, refresh)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return false, nil
		}
		return false, err
	}
	for _, v := range versions {
		if v == version {
			return true, nil
		}
	}
	return false, nil
}

// WaitForPublish polls the index until the version becomes visible or
// timeout elapses. The poll interval is one second; expiry is fatal. After
// the version appears, an optional PUBLISH_GRACE_SLEEP delay (in seconds)
// lets lagging mirrors catch up before the run continues.
func (c *Client) WaitForPublish(ctx context.Context, name, version string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		published, err := c.IsPublished(ctx, name, version, true)
		if err != nil {
			return err
		}
		if published {
			c.graceSleep(ctx)
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New(errors.ErrCodeTimeout,
				"%s %s did not appear in the registry within %s", name, version, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) graceSleep(ctx context.Context) {
	raw := os.Getenv(graceSleepEnv)
	if raw == "" {
		return
	}
	var seconds int
	if _, err := fmt.Sscanf(raw, "%d", &seconds); err != nil || seconds <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(seconds) * time.Second):
	}
}

// versions fetches the published version list of a crate, cached under the
// crate name.
func (c *Client) versions(ctx context.Context, name string, refresh bool) ([]string, error) {
	key := "crates:versions:" + name

	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			var cached []string
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var out []string
	err := httputil.RetryWithBackoff(ctx, func() error {
		fetched, err := c.fetchVersions(ctx, name)
		if err != nil {
			return err
		}
		out = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(out); err == nil {
		_ = c.cache.Set(ctx, key, data, c.cacheTTL)
	}
	return out, nil
}

func (c *Client) fetchVersions(ctx context.Context, name string) ([]string, error) {
	url := fmt.Sprintf("%s/crates/%s/versions", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "building request for %s", name)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &httputil.RetryableError{
			Err: errors.Wrap(errors.ErrCodeNetwork, err, "querying registry for %s", name),
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "crate %s not found in registry", name)
	case resp.StatusCode >= 500:
		return nil, &httputil.RetryableError{
			Err: errors.New(errors.ErrCodeNetwork, "registry returned status %d for %s", resp.StatusCode, name),
		}
	default:
		return nil, errors.New(errors.ErrCodeNetwork, "registry returned status %d for %s", resp.StatusCode, name)
	}

	var data struct {
		Versions []struct {
			Num string `json:"num"`
		} `json:"versions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "decoding registry response for %s", name)
	}

	versions := make([]string, 0, len(data.Versions))
	for _, v := range data.Versions {
		versions = append(versions, v.Num)
	}
	return versions, nil
}
