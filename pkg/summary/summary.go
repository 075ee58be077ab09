// Package summary records provisioning outcomes. Each feature run
// appends one line to the summary log, and the same records feed the
// table shown by the list command.
package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/outfit-dev/outfit/pkg/errors"
)

// Status of a feature run.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Record is one feature outcome.
type Record struct {
	Feature string
	Version string
	Status  Status
	Detail  string
}

// Line renders the record in the summary log format.
func (r Record) Line() string {
	line := fmt.Sprintf("%s feature=%s version=%s status=%s",
		time.Now().UTC().Format(time.RFC3339), r.Feature, orDash(r.Version), r.Status)
	if r.Detail != "" {
		line += " detail=" + fmt.Sprintf("%q", r.Detail)
	}
	return line
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Log appends records to the summary log file.
type Log struct {
	path string
}

// NewLog creates a summary log at path.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Append writes one record.
func (l *Log) Append(r Record) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(l.path))
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to open %s", l.path)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, r.Line()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to append to %s", l.path)
	}
	return nil
}
