package summary_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/outfit-dev/outfit/pkg/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineFormat(t *testing.T) {
	line := summary.Record{Feature: "golang", Version: "1.23.4", Status: summary.StatusOK}.Line()
	assert.Contains(t, line, "feature=golang")
	assert.Contains(t, line, "version=1.23.4")
	assert.Contains(t, line, "status=ok")
}

func TestLineFailureDetail(t *testing.T) {
	line := summary.Record{
		Feature: "awscli",
		Status:  summary.StatusFailed,
		Detail:  "checksum mismatch",
	}.Line()
	assert.Contains(t, line, "version=-")
	assert.Contains(t, line, `detail="checksum mismatch"`)
}

func TestLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "container-features.log")
	l := summary.NewLog(path)

	require.NoError(t, l.Append(summary.Record{Feature: "golang", Version: "1.23.4", Status: summary.StatusOK}))
	require.NoError(t, l.Append(summary.Record{Feature: "java", Status: summary.StatusSkipped}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "feature=golang")
	assert.Contains(t, lines[1], "status=skipped")
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	err := summary.RenderTable(&buf, []summary.FeatureRow{
		{Name: "golang", Description: "Go toolchain", Version: "1.23.4", Enabled: true},
		{Name: "rlang", Description: "R environment", Enabled: false},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "golang")
	assert.Contains(t, out, "1.23.4")
	assert.Contains(t, out, "rlang")
}
