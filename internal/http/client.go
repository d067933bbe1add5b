package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultUserAgent is sent when no other User-Agent is configured.
const DefaultUserAgent = "sheet-export"

// MaxJSONSize caps the body GetJSON decodes.
const MaxJSONSize = 1 << 20

// StatusError reports a response other than 200 OK.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Client fetches release manifests and release files.
//
// Example usage:
//
//	client := NewClient(WithUserAgent("sheet-export/1.4.0"))
//
//	var m update.Manifest
//	err := client.GetJSON(ctx, "https://example.com/releases/latest.json", &m)
//
//	err = client.DownloadFile(ctx, m.URL, "/tmp/sheet-export.zip", func(written, total int64) {
//	    fmt.Printf("%d / %d\n", written, total)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the request timeout, download included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a Client with a 60 second timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// progressWriter counts bytes on their way to w.
type progressWriter struct {
	w        io.Writer
	total    int64
	written  int64
	onUpdate func(written, total int64)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)
	pw.onUpdate(pw.written, pw.total)
	return n, err
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	return resp, nil
}

// GetJSON decodes the JSON document at url into v. Bodies over MaxJSONSize
// are rejected.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxJSONSize+1))
	if err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}
	if len(body) > MaxJSONSize {
		return fmt.Errorf("read %s: document larger than %d bytes", url, MaxJSONSize)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// DownloadFile saves the file at url to destPath. onProgress, if not nil,
// is called with the bytes written so far and the Content-Length (-1 when
// unknown).
//
// The body is streamed to destPath + ".part" and renamed onto destPath once
// complete: a failed download leaves destPath untouched.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	part := destPath + ".part"
	file, err := os.Create(part)
	if err != nil {
		return err
	}

	var w io.Writer = file
	if onProgress != nil {
		w = &progressWriter{w: file, total: resp.ContentLength, onUpdate: onProgress}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		file.Close()
		os.Remove(part)
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(part)
		return err
	}
	return os.Rename(part, destPath)
}
