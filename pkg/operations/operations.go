// Package operations defines the declarative steps a feature plans.
// Features describe WHAT should happen to the image; the executor
// decides HOW, which keeps planning pure and makes dry-run a matter
// of printing the plan.
package operations

import (
	"fmt"
	"strings"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/verify"
)

// Type discriminates operations.
type Type string

const (
	// CreateDir ensures a directory exists.
	CreateDir Type = "create_dir"

	// WriteFile writes Content to Target with Mode.
	WriteFile Type = "write_file"

	// CreateSymlink links Target pointing at Source.
	CreateSymlink Type = "create_symlink"

	// Download fetches URL into the cache and records the local path
	// for later steps under Target.
	Download Type = "download"

	// VerifyArtifact checks a downloaded artifact against Expectation.
	VerifyArtifact Type = "verify_artifact"

	// Extract unpacks the artifact at Source into Target.
	Extract Type = "extract"

	// CopyFile places a downloaded artifact at Target with Mode.
	CopyFile Type = "copy_file"

	// AptInstall installs Packages.
	AptInstall Type = "apt_install"

	// RunCommand runs Command with Args, optionally guarded by a
	// Sentinel so it only runs once per content.
	RunCommand Type = "run_command"
)

// Operation is a single planned step.
type Operation struct {
	Type        Type
	Feature     string
	Description string

	// Target is the filesystem destination (dir, file, symlink name,
	// or extraction root). For Download it names the artifact, which
	// later steps reference as the local cached path.
	Target string

	// Source is the symlink destination or the artifact to extract.
	Source string

	// Content and Mode apply to WriteFile.
	Content []byte
	Mode    *uint32

	// URL applies to Download.
	URL string

	// Expectation applies to VerifyArtifact.
	Expectation *verify.Expectation

	// StripComponents applies to Extract.
	StripComponents int

	// Command, Args and Env apply to RunCommand.
	Command string
	Args    []string
	Env     map[string]string

	// Sentinel, when set on RunCommand, keys a run-once guard.
	Sentinel string

	// Packages applies to AptInstall.
	Packages []string
}

// FileMode returns Mode or the default for regular files.
func (o Operation) FileMode() uint32 {
	if o.Mode != nil {
		return *o.Mode
	}
	return 0644
}

// String renders the operation for dry-run output and logs.
func (o Operation) String() string {
	switch o.Type {
	case CreateDir:
		return fmt.Sprintf("create directory %s", o.Target)
	case WriteFile:
		return fmt.Sprintf("write %s (mode %04o)", o.Target, o.FileMode())
	case CreateSymlink:
		return fmt.Sprintf("symlink %s -> %s", o.Target, o.Source)
	case Download:
		return fmt.Sprintf("download %s", o.URL)
	case VerifyArtifact:
		return fmt.Sprintf("verify %s", o.Target)
	case Extract:
		return fmt.Sprintf("extract %s into %s", o.Source, o.Target)
	case CopyFile:
		return fmt.Sprintf("install %s as %s", o.Source, o.Target)
	case AptInstall:
		return fmt.Sprintf("apt install %s", strings.Join(o.Packages, " "))
	case RunCommand:
		cmd := o.Command
		if len(o.Args) > 0 {
			cmd += " " + strings.Join(o.Args, " ")
		}
		if o.Sentinel != "" {
			return fmt.Sprintf("run once: %s", cmd)
		}
		return fmt.Sprintf("run: %s", cmd)
	default:
		return string(o.Type)
	}
}

// Validate rejects operations the executor cannot act on.
func (o Operation) Validate() error {
	missing := func(field string) error {
		return errors.Newf(errors.ErrOpInvalid, "%s operation missing %s", o.Type, field)
	}
	switch o.Type {
	case CreateDir:
		if o.Target == "" {
			return missing("target")
		}
	case WriteFile:
		if o.Target == "" {
			return missing("target")
		}
		if o.Content == nil {
			return missing("content")
		}
	case CreateSymlink:
		if o.Target == "" || o.Source == "" {
			return missing("target or source")
		}
	case Download:
		if o.URL == "" || o.Target == "" {
			return missing("url or target")
		}
	case VerifyArtifact:
		if o.Target == "" {
			return missing("target")
		}
		if o.Expectation == nil {
			return missing("expectation")
		}
	case Extract, CopyFile:
		if o.Source == "" || o.Target == "" {
			return missing("source or target")
		}
	case AptInstall:
		if len(o.Packages) == 0 {
			return missing("packages")
		}
	case RunCommand:
		if o.Command == "" {
			return missing("command")
		}
	default:
		return errors.Newf(errors.ErrOpInvalid, "unknown operation type %q", o.Type)
	}
	return nil
}
