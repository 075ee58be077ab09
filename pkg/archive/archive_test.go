package archive_test

import (
	"context"
	"testing"

	"github.com/outfit-dev/outfit/pkg/archive"
	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTarball(t *testing.T) {
	r := testutil.NewFakeRunner()

	err := archive.Extract(context.Background(), r, "/tmp/go1.23.4.linux-amd64.tar.gz", "/usr/local", 0)
	require.NoError(t, err)
	assert.True(t, r.CalledWith("tar -xzf /tmp/go1.23.4.linux-amd64.tar.gz -C /usr/local"))
}

func TestExtractTarballStripComponents(t *testing.T) {
	r := testutil.NewFakeRunner()

	err := archive.Extract(context.Background(), r, "/tmp/jdk.tar.gz", "/opt/java", 1)
	require.NoError(t, err)
	assert.True(t, r.CalledWith("tar -xzf /tmp/jdk.tar.gz -C /opt/java --strip-components=1"))
}

func TestExtractZip(t *testing.T) {
	r := testutil.NewFakeRunner()

	err := archive.Extract(context.Background(), r, "/tmp/awscli.zip", "/tmp/aws", 0)
	require.NoError(t, err)
	assert.True(t, r.CalledWith("unzip -q -o /tmp/awscli.zip -d /tmp/aws"))
}

func TestExtractZipRejectsStripComponents(t *testing.T) {
	r := testutil.NewFakeRunner()

	err := archive.Extract(context.Background(), r, "/tmp/tool.zip", "/tmp/tool", 1)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))
	assert.Empty(t, r.Calls)
}

func TestExtractUnknownFormat(t *testing.T) {
	r := testutil.NewFakeRunner()

	err := archive.Extract(context.Background(), r, "/tmp/tool.rar", "/tmp/tool", 0)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))
}

func TestExtractMissingTool(t *testing.T) {
	r := testutil.NewFakeRunner()
	r.MissingBinaries["unzip"] = true

	err := archive.Extract(context.Background(), r, "/tmp/tool.zip", "/tmp/tool", 0)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))
	assert.Empty(t, r.Calls)
}

func TestExtractCommandFailure(t *testing.T) {
	r := testutil.NewFakeRunner()
	r.StubError("tar -xzf /tmp/bad.tar.gz -C /opt", errors.New(errors.ErrCommandRun, "tar: unexpected EOF"))

	err := archive.Extract(context.Background(), r, "/tmp/bad.tar.gz", "/opt", 0)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))
}
