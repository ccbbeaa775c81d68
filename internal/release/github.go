// Package release fetches dataset releases from GitHub and refreshes the
// local copy.
package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultRepo publishes browser-compat-data releases.
const DefaultRepo = "mdn/browser-compat-data"

// DefaultAsset is the release asset holding the full dataset.
const DefaultAsset = "data.json"

const defaultBaseURL = "https://api.github.com"

// ErrAssetNotFound is returned when a release lacks the requested asset.
var ErrAssetNotFound = errors.New("release asset not found")

// Release models the subset of GitHub Releases API fields pat uses.
type Release struct {
	TagName     string    `json:"tag_name"`
	Draft       bool      `json:"draft"`
	Pre         bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

// Asset models one downloadable file of a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// ProgressFunc is called while downloading with the bytes received so far
// and the expected total, which is -1 when unknown.
type ProgressFunc func(downloaded, total int64)

// Client talks to the GitHub Releases API.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	Token     string
	UserAgent string
}

// NewClient returns a client for api.github.com. token may be empty.
func NewClient(token string) *Client {
	return &Client{
		HTTP:      &http.Client{},
		BaseURL:   defaultBaseURL,
		Token:     token,
		UserAgent: "pat-cli",
	}
}

func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	return req, nil
}

// SplitRepo splits "owner/name".
func SplitRepo(s string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo %q (expected owner/name)", s)
	}
	return parts[0], parts[1], nil
}

// Latest retrieves the latest published release of repo.
func (c *Client) Latest(ctx context.Context, repo string) (*Release, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimRight(c.BaseURL, "/"), owner, name)

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github api request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return nil, fmt.Errorf("github api request failed: %s\n%s", resp.Status, strings.TrimSpace(string(body)))
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("cannot decode release response: %w", err)
	}
	return &rel, nil
}

// SelectAsset finds the asset called name.
func SelectAsset(rel *Release, name string) (*Asset, error) {
	for i := range rel.Assets {
		if rel.Assets[i].Name == name {
			return &rel.Assets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s in release %s", ErrAssetNotFound, name, rel.TagName)
}

// Download fetches url into memory, reporting progress if progress is set.
func (c *Client) Download(ctx context.Context, url string, progress ProgressFunc) ([]byte, error) {
	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return nil, fmt.Errorf("download failed: %s\n%s", resp.Status, strings.TrimSpace(string(body)))
	}

	total := resp.ContentLength
	out := make([]byte, 0, max(total, 0))
	buf := make([]byte, 32*1024)
	lastReport := time.Now()
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			if progress != nil && time.Since(lastReport) > 200*time.Millisecond {
				progress(int64(len(out)), total)
				lastReport = time.Now()
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("download read failed: %w", rerr)
		}
	}
	if progress != nil {
		progress(int64(len(out)), total)
	}
	return out, nil
}

// HumanBytes formats a byte count in a human-friendly binary unit.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	prefix := "KMGTPE"[exp]
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), prefix)
}
