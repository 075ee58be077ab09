package verify_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/fetch"
	"github.com/outfit-dev/outfit/pkg/retry"
	"github.com/outfit-dev/outfit/pkg/testutil"
	"github.com/outfit-dev/outfit/pkg/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFetcher() *fetch.Fetcher {
	return fetch.New("", fetch.WithRetry(retry.Config{
		Attempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond,
	}))
}

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool-1.0.0-linux-amd64.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPinnedMatch(t *testing.T) {
	path := writeArtifact(t, "payload")
	v := verify.New(newFetcher(), testutil.NewFakeRunner(), nil)

	res, err := v.File(context.Background(), path, verify.Expectation{
		Pinned: fetch.HashBytes([]byte("payload")),
	})
	require.NoError(t, err)
	assert.Equal(t, verify.TierPinned, res.Tier)
	assert.Equal(t, fetch.HashBytes([]byte("payload")), res.SHA256)
}

func TestPinnedMismatchFailsClosed(t *testing.T) {
	path := writeArtifact(t, "tampered")
	v := verify.New(newFetcher(), testutil.NewFakeRunner(), nil)

	_, err := v.File(context.Background(), path, verify.Expectation{
		Pinned: fetch.HashBytes([]byte("payload")),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrChecksumMismatch))
}

func TestPublishedRawDigest(t *testing.T) {
	path := writeArtifact(t, "payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fetch.HashBytes([]byte("payload")))
	}))
	defer srv.Close()

	v := verify.New(newFetcher(), testutil.NewFakeRunner(), nil)
	res, err := v.File(context.Background(), path, verify.Expectation{
		PublishedURL: srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, verify.TierPublished, res.Tier)
}

func TestPublishedSumsListing(t *testing.T) {
	path := writeArtifact(t, "payload")
	listing := fmt.Sprintf("%s  other.tar.gz\n%s  tool-1.0.0-linux-amd64.tar.gz\n",
		fetch.HashBytes([]byte("other")), fetch.HashBytes([]byte("payload")))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listing)
	}))
	defer srv.Close()

	v := verify.New(newFetcher(), testutil.NewFakeRunner(), nil)
	res, err := v.File(context.Background(), path, verify.Expectation{
		PublishedURL: srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, verify.TierPublished, res.Tier)
}

func TestPublishedMismatchAborts(t *testing.T) {
	path := writeArtifact(t, "tampered")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fetch.HashBytes([]byte("payload")))
	}))
	defer srv.Close()

	v := verify.New(newFetcher(), testutil.NewFakeRunner(), nil)
	_, err := v.File(context.Background(), path, verify.Expectation{
		PublishedURL: srv.URL,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrChecksumMismatch))
}

func TestPublishedMissingEntry(t *testing.T) {
	path := writeArtifact(t, "payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s  unrelated.zip\n", fetch.HashBytes([]byte("x"))) //nolint:errcheck
	}))
	defer srv.Close()

	v := verify.New(newFetcher(), testutil.NewFakeRunner(), nil)
	_, err := v.File(context.Background(), path, verify.Expectation{
		PublishedURL: srv.URL,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrChecksumMissing))
}

func TestTrustOnFirstUseRecordsAndPins(t *testing.T) {
	path := writeArtifact(t, "payload")
	store := verify.NewStore(filepath.Join(t.TempDir(), "checksums.toml"))
	v := verify.New(newFetcher(), testutil.NewFakeRunner(), store)

	res, err := v.File(context.Background(), path, verify.Expectation{})
	require.NoError(t, err)
	assert.Equal(t, verify.TierCalculated, res.Tier)

	// A second run of the identical artifact verifies against the
	// recorded hash.
	res, err = v.File(context.Background(), path, verify.Expectation{})
	require.NoError(t, err)
	assert.Equal(t, verify.TierPinned, res.Tier)

	// A tampered artifact now fails against the recorded hash.
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0644))
	_, err = v.File(context.Background(), path, verify.Expectation{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrChecksumMismatch))
}

func TestGPGVerified(t *testing.T) {
	path := writeArtifact(t, "payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fake-signature"))
	}))
	defer srv.Close()

	r := testutil.NewFakeRunner()
	v := verify.New(newFetcher(), r, nil)

	res, err := v.File(context.Background(), path, verify.Expectation{
		SignatureURL: srv.URL,
		Keyring:      []byte("-----BEGIN PGP PUBLIC KEY BLOCK-----\n..."),
	})
	require.NoError(t, err)
	assert.Equal(t, verify.TierGPG, res.Tier)

	lines := r.CallLines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "--import")
	assert.Contains(t, lines[1], "--verify")
	assert.Contains(t, lines[1], "--trust-model always")
}

func TestGPGBadSignatureIsFatal(t *testing.T) {
	path := writeArtifact(t, "payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fake-signature"))
	}))
	defer srv.Close()

	r := testutil.NewFakeRunner()
	v := verify.New(newFetcher(), r, nil)

	// Any gpg --verify invocation fails.
	r.StubErrorMatch("--verify", errors.New(errors.ErrCommandRun, "gpg: BAD signature"))

	_, err := v.File(context.Background(), path, verify.Expectation{
		SignatureURL: srv.URL,
		Keyring:      []byte("-----BEGIN PGP PUBLIC KEY BLOCK-----\n..."),
		// Pinned would succeed, but a bad signature must abort first.
		Pinned: fetch.HashBytes([]byte("payload")),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSignatureInvalid))
}

func TestGPGUnavailableFallsThrough(t *testing.T) {
	path := writeArtifact(t, "payload")
	r := testutil.NewFakeRunner()
	r.MissingBinaries["gpg"] = true

	v := verify.New(newFetcher(), r, nil)
	res, err := v.File(context.Background(), path, verify.Expectation{
		SignatureURL: "https://example.invalid/sig.asc",
		Keyring:      []byte("key"),
		Pinned:       fetch.HashBytes([]byte("payload")),
	})
	require.NoError(t, err)
	assert.Equal(t, verify.TierPinned, res.Tier)
}
