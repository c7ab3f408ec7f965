// Package hub fetches model artifacts from a HuggingFace-style hub into a
// local cache directory.
package hub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/woocode/qwend/internal/logger"
)

const defaultBaseURL = "https://huggingface.co"

type Client struct {
	// BaseURL of the hub; defaults to huggingface.co.
	BaseURL string
	// HTTP client used for downloads. Artifact downloads are large, so the
	// default has no overall timeout; cancellation comes from the context.
	HTTP *http.Client
	Log  logger.Logger
}

func NewClient(log logger.Logger) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		HTTP:    &http.Client{},
		Log:     log,
	}
}

// Fetch ensures repo's file is present under destDir and returns its local
// path. Existing files are reused without a network round trip. Downloads
// go through a .partial file and are renamed into place only on success.
func (c *Client) Fetch(ctx context.Context, repo, filename, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	dest := filepath.Join(destDir, filename)
	if st, err := os.Stat(dest); err == nil && st.Size() > 0 {
		c.log().Debug("artifact cached", "path", dest)
		return dest, nil
	}

	url := fmt.Sprintf("%s/%s/resolve/main/%s", c.baseURL(), repo, filename)
	c.log().Info("downloading artifact", "repo", repo, "file", filename)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	partial := dest + ".partial"
	f, err := os.Create(partial)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(partial)
		return "", fmt.Errorf("download %s: %w", filename, err)
	}
	if err := os.Rename(partial, dest); err != nil {
		_ = os.Remove(partial)
		return "", err
	}

	c.log().Info("artifact downloaded", "file", filename, "bytes", n,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return dest, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) log() logger.Logger {
	if c.Log != nil {
		return c.Log
	}
	return logger.Default()
}
