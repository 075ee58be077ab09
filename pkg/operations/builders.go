package operations

import "github.com/outfit-dev/outfit/pkg/verify"

// Constructors used by feature planners. Each returns a fully formed
// Operation so plans read as a flat list of steps.

// MkDir ensures a directory exists.
func MkDir(feature, target string) Operation {
	return Operation{Type: CreateDir, Feature: feature, Target: target}
}

// File writes content to target with the given mode.
func File(feature, target string, content []byte, mode uint32) Operation {
	return Operation{Type: WriteFile, Feature: feature, Target: target, Content: content, Mode: &mode}
}

// Script writes an executable file.
func Script(feature, target string, content []byte) Operation {
	return File(feature, target, content, 0755)
}

// Symlink links target pointing at source.
func Symlink(feature, target, source string) Operation {
	return Operation{Type: CreateSymlink, Feature: feature, Target: target, Source: source}
}

// Fetch downloads url, naming the artifact for later steps.
func Fetch(feature, url, artifact string) Operation {
	return Operation{Type: Download, Feature: feature, URL: url, Target: artifact}
}

// Check verifies a previously downloaded artifact.
func Check(feature, artifact string, exp verify.Expectation) Operation {
	if exp.ArtifactName == "" {
		exp.ArtifactName = artifact
	}
	return Operation{Type: VerifyArtifact, Feature: feature, Target: artifact, Expectation: &exp}
}

// Place copies a downloaded artifact to target with mode.
func Place(feature, artifact, target string, mode uint32) Operation {
	return Operation{Type: CopyFile, Feature: feature, Source: artifact, Target: target, Mode: &mode}
}

// Unpack extracts a downloaded artifact into destDir.
func Unpack(feature, artifact, destDir string, stripComponents int) Operation {
	return Operation{Type: Extract, Feature: feature, Source: artifact, Target: destDir, StripComponents: stripComponents}
}

// Apt installs packages.
func Apt(feature string, packages ...string) Operation {
	return Operation{Type: AptInstall, Feature: feature, Packages: packages}
}

// Run executes a command.
func Run(feature, command string, args ...string) Operation {
	return Operation{Type: RunCommand, Feature: feature, Command: command, Args: args}
}

// RunOnce executes a command guarded by a sentinel key.
func RunOnce(feature, sentinel, command string, args ...string) Operation {
	op := Run(feature, command, args...)
	op.Sentinel = sentinel
	return op
}
