package verify_test

import (
	"strings"
	"testing"

	"github.com/outfit-dev/outfit/pkg/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const digestA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
const digestB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

func TestParseSumsRawDigest(t *testing.T) {
	got, err := verify.ParseSums([]byte(strings.ToUpper(digestA)+"\n"), "anything")
	require.NoError(t, err)
	assert.Equal(t, digestA, got)
}

func TestParseSumsListing(t *testing.T) {
	listing := digestA + "  go1.23.4.linux-arm64.tar.gz\n" +
		digestB + "  go1.23.4.linux-amd64.tar.gz\n"

	got, err := verify.ParseSums([]byte(listing), "go1.23.4.linux-amd64.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, digestB, got)
}

func TestParseSumsBinaryModeMarker(t *testing.T) {
	listing := digestA + " *awscli-exe-linux-x86_64.zip\n"

	got, err := verify.ParseSums([]byte(listing), "awscli-exe-linux-x86_64.zip")
	require.NoError(t, err)
	assert.Equal(t, digestA, got)
}

func TestParseSumsSkipsCommentsAndBlanks(t *testing.T) {
	listing := "# release checksums\n\n" + digestA + "  tool.zip\n"

	got, err := verify.ParseSums([]byte(listing), "tool.zip")
	require.NoError(t, err)
	assert.Equal(t, digestA, got)
}

func TestParseSumsPathEntries(t *testing.T) {
	listing := digestA + "  dist/linux/tool.zip\n"

	got, err := verify.ParseSums([]byte(listing), "tool.zip")
	require.NoError(t, err)
	assert.Equal(t, digestA, got)
}

func TestParseSumsMissing(t *testing.T) {
	_, err := verify.ParseSums([]byte(digestA+"  other.zip\n"), "tool.zip")
	assert.Error(t, err)
}

func TestParseSumsEmpty(t *testing.T) {
	_, err := verify.ParseSums([]byte("  \n"), "tool.zip")
	assert.Error(t, err)
}

func TestParseSumsRejectsShortDigest(t *testing.T) {
	_, err := verify.ParseSums([]byte("abc123  tool.zip\n"), "tool.zip")
	assert.Error(t, err)
}
