// Package verify implements the layered download-verification scheme:
// GPG signature, then pinned hash, then vendor-published hash, then a
// calculated trust-on-first-use hash recorded with a warning. A tier
// that positively fails aborts the install; only the absence of a
// tier falls through to the next one.
package verify

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/fetch"
	"github.com/outfit-dev/outfit/pkg/logging"
	"github.com/outfit-dev/outfit/pkg/runner"
)

// Tier identifies which verification level an artifact passed.
type Tier string

const (
	TierGPG        Tier = "gpg"
	TierPinned     Tier = "pinned"
	TierPublished  Tier = "published"
	TierCalculated Tier = "calculated"
)

// Expectation describes the verification material available for an
// artifact. Empty fields disable the corresponding tier.
type Expectation struct {
	// ArtifactName matches entries in published checksum listings.
	// Defaults to the artifact's base name.
	ArtifactName string

	// SignatureURL points at a detached GPG signature. Requires Keyring.
	SignatureURL string

	// Keyring is the armored public key for signature verification.
	Keyring []byte

	// KeyringURL fetches the public key when Keyring is empty. The key
	// itself should be pinned via KeyringSHA256 so the signature tier
	// is not anchored on an unauthenticated download.
	KeyringURL    string
	KeyringSHA256 string

	// Pinned is a known-good hex SHA-256.
	Pinned string

	// PublishedURL points at a vendor checksum file: either a raw hex
	// digest or a sha256sum-style listing.
	PublishedURL string

	// PublishedParser overrides the default sums parser for vendors
	// with structured checksum documents (Google's XML package index).
	PublishedParser func(data []byte, artifactName string) (string, error)
}

// Result reports how an artifact was verified.
type Result struct {
	Tier   Tier
	SHA256 string
}

// Verifier runs the tier chain.
type Verifier struct {
	fetcher *fetch.Fetcher
	runner  runner.Runner
	store   *Store
	logger  zerolog.Logger
}

// New creates a Verifier. store may be nil to disable TOFU recording.
func New(fetcher *fetch.Fetcher, r runner.Runner, store *Store) *Verifier {
	return &Verifier{
		fetcher: fetcher,
		runner:  r,
		store:   store,
		logger:  logging.GetLogger("verify"),
	}
}

// File verifies the artifact at path against the expectation, trying
// each tier in order of strength.
func (v *Verifier) File(ctx context.Context, path string, exp Expectation) (Result, error) {
	name := exp.ArtifactName
	if name == "" {
		name = filepath.Base(path)
	}

	actual, err := fetch.HashFile(path)
	if err != nil {
		return Result{}, err
	}

	// Tier 1: GPG signature. Skipped only when no signature material
	// is configured or gpg itself is unavailable; a bad signature is
	// always fatal.
	if exp.SignatureURL != "" && (len(exp.Keyring) > 0 || exp.KeyringURL != "") {
		if _, err := v.runner.LookPath("gpg"); err != nil {
			v.logger.Warn().Str("artifact", name).
				Msg("gpg unavailable, falling back to checksum verification")
		} else {
			if err := v.verifySignature(ctx, path, exp); err != nil {
				return Result{}, err
			}
			v.logger.Info().Str("artifact", name).Msg("GPG signature verified")
			return Result{Tier: TierGPG, SHA256: actual}, nil
		}
	}

	// Tier 2: pinned hash, including hashes recorded by an earlier
	// trust-on-first-use run.
	pinned := strings.ToLower(strings.TrimSpace(exp.Pinned))
	if pinned == "" && v.store != nil {
		pinned = v.store.Lookup(name)
	}
	if pinned != "" {
		if actual != pinned {
			return Result{}, errors.Newf(errors.ErrChecksumMismatch,
				"pinned checksum mismatch for %s: expected %s, got %s", name, pinned, actual).
				WithDetail("artifact", name)
		}
		v.logger.Info().Str("artifact", name).Msg("Pinned checksum verified")
		return Result{Tier: TierPinned, SHA256: actual}, nil
	}

	// Tier 3: vendor-published checksum.
	if exp.PublishedURL != "" {
		expected, err := v.publishedChecksum(ctx, exp, name)
		if err != nil {
			return Result{}, err
		}
		if actual != expected {
			return Result{}, errors.Newf(errors.ErrChecksumMismatch,
				"published checksum mismatch for %s: expected %s, got %s", name, expected, actual).
				WithDetail("artifact", name)
		}
		v.logger.Info().Str("artifact", name).Msg("Published checksum verified")
		return Result{Tier: TierPublished, SHA256: actual}, nil
	}

	// Tier 4: trust on first use. Record the calculated hash so later
	// builds treat it as pinned.
	v.logger.Warn().
		Str("artifact", name).
		Str("sha256", actual).
		Msg("No verification material available, trusting on first use")
	if v.store != nil {
		if err := v.store.Record(name, actual); err != nil {
			return Result{}, err
		}
	}
	return Result{Tier: TierCalculated, SHA256: actual}, nil
}

// publishedChecksum fetches and parses a vendor checksum file.
func (v *Verifier) publishedChecksum(ctx context.Context, exp Expectation, artifactName string) (string, error) {
	body, err := v.fetcher.Fetch(ctx, exp.PublishedURL)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrChecksumMissing,
			"failed to fetch published checksum from %s", exp.PublishedURL)
	}

	parse := exp.PublishedParser
	if parse == nil {
		parse = ParseSums
	}
	expected, err := parse(body, artifactName)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrChecksumMissing,
			"no usable checksum for %s in %s", artifactName, exp.PublishedURL)
	}
	return expected, nil
}
