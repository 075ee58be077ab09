// Package fetch downloads release artifacts over HTTP with retry,
// atomic writes, and a content-addressed cache.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/logging"
	"github.com/outfit-dev/outfit/pkg/retry"
)

// Fetcher downloads files with retry and optional caching.
type Fetcher struct {
	client   *http.Client
	cacheDir string
	retry    retry.Config
	logger   zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithRetry replaces the retry configuration.
func WithRetry(cfg retry.Config) Option {
	return func(f *Fetcher) { f.retry = cfg }
}

// New creates a Fetcher caching into cacheDir. An empty cacheDir
// disables caching.
func New(cacheDir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Minute},
		cacheDir: cacheDir,
		retry:    retry.DefaultConfig(),
		logger:   logging.GetLogger("fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Download fetches url into dest, creating parent directories. The
// write is atomic: content lands in a temp file that is renamed into
// place only after the body is fully read.
func (f *Fetcher) Download(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(dest))
	}

	return retry.Do(ctx, f.retry, "download "+url, func() error {
		return f.downloadOnce(ctx, url, dest)
	})
}

func (f *Fetcher) downloadOnce(ctx context.Context, url, dest string) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDownload, "invalid url %s", url)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDownload, "fetching %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrDownloadStatus, "status %d from %s", resp.StatusCode, url).
			WithDetail("status", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".outfit-dl-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "failed to create temp file for %s", dest)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrDownload, "writing %s", dest)
	}

	if resp.ContentLength > 0 && written != resp.ContentLength {
		return errors.Newf(errors.ErrDownload,
			"truncated download of %s: got %d of %d bytes", url, written, resp.ContentLength)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to move download into %s", dest)
	}

	f.logger.Debug().
		Str("url", url).
		Str("dest", dest).
		Int64("bytes", written).
		Dur("duration", time.Since(start)).
		Msg("Download complete")
	return nil
}

// Fetch downloads url and returns the body. Intended for small files
// such as checksum listings and signatures.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, f.retry, "fetch "+url, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return errors.Wrapf(err, errors.ErrDownload, "invalid url %s", url)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return errors.Wrapf(err, errors.ErrDownload, "fetching %s", url)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.Newf(errors.ErrDownloadStatus, "status %d from %s", resp.StatusCode, url)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrapf(err, errors.ErrDownload, "reading %s", url)
		}
		return nil
	})
	return body, err
}

// CachePath returns the content-addressed cache location for a hash.
func (f *Fetcher) CachePath(sha256Hex, name string) string {
	return filepath.Join(f.cacheDir, sha256Hex, name)
}

// Promote moves a verified artifact into the cache, keyed by hash,
// and returns its new location. Subsequent builds reuse it instead of
// downloading again.
func (f *Fetcher) Promote(path, sha256Hex string) (string, error) {
	if f.cacheDir == "" {
		return path, nil
	}

	cached := f.CachePath(sha256Hex, filepath.Base(path))
	if err := os.MkdirAll(filepath.Dir(cached), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create cache dir for %s", cached)
	}
	if err := os.Rename(path, cached); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to cache %s", path)
	}

	f.logger.Debug().Str("path", cached).Msg("Artifact cached")
	return cached, nil
}

// Cached returns the cached artifact path if present.
func (f *Fetcher) Cached(sha256Hex, name string) (string, bool) {
	if f.cacheDir == "" || sha256Hex == "" {
		return "", false
	}
	path := f.CachePath(sha256Hex, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// HashFile computes the hex SHA-256 of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to hash %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes computes the hex SHA-256 of a byte slice.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Checksum formats a file hash in the sha256:<hex> form used by
// sentinels and the summary log.
func Checksum(path string) (string, error) {
	hex, err := HashFile(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%s", hex), nil
}
