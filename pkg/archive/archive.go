// Package archive extracts downloaded artifacts. Extraction shells
// out to tar and unzip, which are guaranteed present in the base
// images this tool provisions.
package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/logging"
	"github.com/outfit-dev/outfit/pkg/runner"
)

// Extract unpacks an archive into destDir, choosing the tool from the
// file extension. stripComponents drops leading path components for
// tarballs (vendors love a single wrapping directory).
func Extract(ctx context.Context, r runner.Runner, archivePath, destDir string, stripComponents int) error {
	logger := logging.GetLogger("archive")

	var name string
	var args []string
	switch {
	case strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tgz"):
		name = "tar"
		args = []string{"-xzf", archivePath, "-C", destDir}
		if stripComponents > 0 {
			args = append(args, fmt.Sprintf("--strip-components=%d", stripComponents))
		}
	case strings.HasSuffix(archivePath, ".tar.xz"):
		name = "tar"
		args = []string{"-xJf", archivePath, "-C", destDir}
		if stripComponents > 0 {
			args = append(args, fmt.Sprintf("--strip-components=%d", stripComponents))
		}
	case strings.HasSuffix(archivePath, ".zip"):
		if stripComponents > 0 {
			return errors.New(errors.ErrExtract, "strip-components is not supported for zip archives")
		}
		name = "unzip"
		args = []string{"-q", "-o", archivePath, "-d", destDir}
	default:
		return errors.Newf(errors.ErrExtract, "unsupported archive format: %s", archivePath)
	}

	if _, err := r.LookPath(name); err != nil {
		return errors.Wrapf(err, errors.ErrExtract, "%s is required to extract %s", name, archivePath)
	}

	logger.Debug().
		Str("archive", archivePath).
		Str("dest", destDir).
		Msg("Extracting archive")

	if err := r.Run(ctx, name, args...); err != nil {
		return errors.Wrapf(err, errors.ErrExtract, "failed to extract %s", archivePath)
	}
	return nil
}
