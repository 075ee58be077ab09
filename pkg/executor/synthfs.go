package executor

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	synthops "github.com/arthur-debert/synthfs/pkg/synthfs/operations"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/operations"
)

// convertToSynthfs maps a filesystem operation to its synthfs form.
// synthfs works with paths relative to the filesystem root.
func convertToSynthfs(op operations.Operation) (synthfs.Operation, error) {
	switch op.Type {
	case operations.CreateDir:
		return convertCreateDir(op)
	case operations.WriteFile:
		return convertWriteFile(op)
	case operations.CreateSymlink:
		return convertCreateSymlink(op)
	default:
		return nil, errors.Newf(errors.ErrOpInvalid,
			"not a filesystem operation: %s", op.Type)
	}
}

func relRoot(path string) (string, error) {
	rel, err := filepath.Rel("/", path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrOpInvalid, "failed to convert path: %s", path)
	}
	return rel, nil
}

func convertCreateDir(op operations.Operation) (synthfs.Operation, error) {
	relPath, err := relRoot(op.Target)
	if err != nil {
		return nil, err
	}

	opID := core.OperationID(fmt.Sprintf("create-dir-%s", op.Target))
	createOp := synthops.NewCreateDirectoryOperation(opID, relPath)
	createOp.SetItem(&directoryItem{
		path: relPath,
		mode: 0755,
	})
	return synthfs.NewOperationsPackageAdapter(createOp), nil
}

func convertWriteFile(op operations.Operation) (synthfs.Operation, error) {
	relPath, err := relRoot(op.Target)
	if err != nil {
		return nil, err
	}

	opID := core.OperationID(fmt.Sprintf("write-file-%s", op.Target))
	createOp := synthops.NewCreateFileOperation(opID, relPath)
	createOp.SetItem(&fileItem{
		path:    relPath,
		content: op.Content,
		mode:    fs.FileMode(op.FileMode()),
	})
	return synthfs.NewOperationsPackageAdapter(createOp), nil
}

func convertCreateSymlink(op operations.Operation) (synthfs.Operation, error) {
	relPath, err := relRoot(op.Target)
	if err != nil {
		return nil, err
	}
	relSource, err := relRoot(op.Source)
	if err != nil {
		return nil, err
	}

	opID := core.OperationID(fmt.Sprintf("symlink-%s", op.Target))
	symlinkOp := synthops.NewCreateSymlinkOperation(opID, relPath)
	symlinkOp.SetDescriptionDetail("target", relSource)
	symlinkOp.SetItem(&symlinkItem{
		path:   relPath,
		target: relSource,
	})
	return synthfs.NewOperationsPackageAdapter(symlinkOp), nil
}

// Item types for synthfs operations.

type fileItem struct {
	path    string
	content []byte
	mode    fs.FileMode
}

func (f *fileItem) Path() string       { return f.path }
func (f *fileItem) Type() string       { return "file" }
func (f *fileItem) Content() []byte    { return f.content }
func (f *fileItem) Mode() fs.FileMode  { return f.mode }
func (f *fileItem) IsDir() bool        { return false }
func (f *fileItem) ModTime() time.Time { return time.Now() }
func (f *fileItem) Size() int64        { return int64(len(f.content)) }

type directoryItem struct {
	path string
	mode fs.FileMode
}

func (d *directoryItem) Path() string       { return d.path }
func (d *directoryItem) Type() string       { return "directory" }
func (d *directoryItem) Mode() fs.FileMode  { return d.mode }
func (d *directoryItem) IsDir() bool        { return true }
func (d *directoryItem) ModTime() time.Time { return time.Now() }
func (d *directoryItem) Size() int64        { return 0 }

type symlinkItem struct {
	path   string
	target string
}

func (s *symlinkItem) Path() string   { return s.path }
func (s *symlinkItem) Type() string   { return "symlink" }
func (s *symlinkItem) Target() string { return s.target }
