package verify

import (
	"context"
	"os"
	"path/filepath"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/fetch"
)

// verifySignature checks a detached GPG signature using a throwaway
// gpg home so the image's keyring state is never touched.
func (v *Verifier) verifySignature(ctx context.Context, artifactPath string, exp Expectation) error {
	sig, err := v.fetcher.Fetch(ctx, exp.SignatureURL)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSignatureInvalid,
			"failed to fetch signature from %s", exp.SignatureURL)
	}

	keyring := exp.Keyring
	if len(keyring) == 0 {
		keyring, err = v.fetchKeyring(ctx, exp)
		if err != nil {
			return err
		}
	}

	home, err := os.MkdirTemp("", "outfit-gpg-")
	if err != nil {
		return errors.Wrap(err, errors.ErrSignatureInvalid, "failed to create gpg home")
	}
	defer os.RemoveAll(home)

	keyPath := filepath.Join(home, "signing-key.asc")
	if err := os.WriteFile(keyPath, keyring, 0600); err != nil {
		return errors.Wrap(err, errors.ErrSignatureInvalid, "failed to write signing key")
	}

	sigPath := filepath.Join(home, "artifact.sig")
	if err := os.WriteFile(sigPath, sig, 0600); err != nil {
		return errors.Wrap(err, errors.ErrSignatureInvalid, "failed to write signature")
	}

	if err := v.runner.Run(ctx, "gpg",
		"--batch", "--no-tty", "--homedir", home, "--import", keyPath); err != nil {
		return errors.Wrap(err, errors.ErrSignatureInvalid, "failed to import signing key")
	}

	if err := v.runner.Run(ctx, "gpg",
		"--batch", "--no-tty", "--homedir", home,
		"--trust-model", "always", "--verify", sigPath, artifactPath); err != nil {
		return errors.Wrapf(err, errors.ErrSignatureInvalid,
			"signature verification failed for %s", filepath.Base(artifactPath))
	}

	return nil
}

// fetchKeyring downloads the signing key, enforcing its pin when one
// is configured.
func (v *Verifier) fetchKeyring(ctx context.Context, exp Expectation) ([]byte, error) {
	keyring, err := v.fetcher.Fetch(ctx, exp.KeyringURL)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSignatureInvalid,
			"failed to fetch signing key from %s", exp.KeyringURL)
	}
	if exp.KeyringSHA256 != "" && fetch.HashBytes(keyring) != exp.KeyringSHA256 {
		return nil, errors.Newf(errors.ErrChecksumMismatch,
			"signing key from %s does not match its pin", exp.KeyringURL)
	}
	return keyring, nil
}
