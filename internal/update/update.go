package update

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	httpclient "github.com/handiism/sheet-exporter/internal/http"
	ioutils "github.com/handiism/sheet-exporter/internal/io"
)

var (
	ErrInvalidVersion = errors.New("invalid version")
	ErrChecksum       = errors.New("checksum mismatch")
)

// Manifest describes the latest release.
type Manifest struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	SHA256  string `json:"sha256,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Release is the outcome of a check.
type Release struct {
	Manifest
	Current string
	// Available is set when Version is newer than Current.
	Available bool
}

// Checker checks a manifest URL.
type Checker struct {
	client   *httpclient.Client
	manifest string
	current  string
	logger   *zap.Logger
}

// NewChecker returns a Checker for the running version current.
func NewChecker(client *httpclient.Client, manifestURL, current string, logger *zap.Logger) *Checker {
	if client == nil {
		client = httpclient.NewClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{client: client, manifest: manifestURL, current: current, logger: logger}
}

// Canonical returns v as a canonical semantic version with a "v" prefix,
// or "" when v is not one.
func Canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// Newer reports whether candidate is a newer version than current.
func Newer(candidate, current string) (bool, error) {
	c, cur := Canonical(candidate), Canonical(current)
	if c == "" {
		return false, fmt.Errorf("%w: %q", ErrInvalidVersion, candidate)
	}
	if cur == "" {
		return false, fmt.Errorf("%w: %q", ErrInvalidVersion, current)
	}
	return semver.Compare(c, cur) > 0, nil
}

// Check fetches the manifest and compares it with the running version.
func (c *Checker) Check(ctx context.Context) (*Release, error) {
	var m Manifest
	if err := c.client.GetJSON(ctx, c.manifest, &m); err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}

	newer, err := Newer(m.Version, c.current)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("update checked",
		zap.String("current", c.current),
		zap.String("latest", m.Version),
		zap.Bool("available", newer))

	return &Release{Manifest: m, Current: c.current, Available: newer}, nil
}

// Download fetches the release into dir and verifies its checksum when the
// manifest carries one. It returns the downloaded file path.
func (c *Checker) Download(ctx context.Context, rel *Release, dir string, onProgress func(written, total int64)) (string, error) {
	u, err := url.Parse(rel.URL)
	if err != nil || rel.URL == "" {
		return "", fmt.Errorf("release url %q: invalid", rel.URL)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "sheet-export-" + strings.TrimPrefix(Canonical(rel.Version), "v")
	}
	dest := filepath.Join(dir, name)

	if err := ioutils.EnsureDir(dir); err != nil {
		return "", err
	}
	if err := c.client.DownloadFile(ctx, rel.URL, dest, onProgress); err != nil {
		return "", fmt.Errorf("download %s: %w", rel.URL, err)
	}

	if rel.SHA256 != "" {
		sum, err := fileSHA256(dest)
		if err != nil {
			return "", err
		}
		if !strings.EqualFold(sum, rel.SHA256) {
			os.Remove(dest)
			return "", fmt.Errorf("%w: got %s, want %s", ErrChecksum, sum, rel.SHA256)
		}
	}

	c.logger.Info("update downloaded", zap.String("path", dest), zap.String("version", rel.Version))
	return dest, nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
