package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrDownload, "download failed")
	assert.Equal(t, "[DOWNLOAD] download failed", err.Error())
	assert.Equal(t, errors.ErrDownload, errors.GetErrorCode(err))
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("connection reset")
	err := errors.Wrapf(inner, errors.ErrDownload, "fetching %s", "https://example.com/x.tar.gz")

	assert.Contains(t, err.Error(), "connection reset")
	assert.Contains(t, err.Error(), "fetching https://example.com/x.tar.gz")
	assert.ErrorIs(t, err, inner)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrDownload, "should be nil"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrDownload, "should be %s", "nil"))
}

func TestIsErrorCode(t *testing.T) {
	err := errors.New(errors.ErrChecksumMismatch, "tampered artifact")
	wrapped := fmt.Errorf("install: %w", err)

	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrChecksumMismatch))
	assert.False(t, errors.IsErrorCode(wrapped, errors.ErrDownload))
	assert.False(t, errors.IsErrorCode(stderrors.New("plain"), errors.ErrDownload))
}

func TestErrorIsMatchesByCode(t *testing.T) {
	a := errors.New(errors.ErrArchUnsupported, "no riscv64 build")
	b := errors.New(errors.ErrArchUnsupported, "different message")
	assert.True(t, stderrors.Is(a, b))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrArchUnsupported, "unmapped architecture").
		WithDetail("arch", "s390x").
		WithDetail("feature", "golang")

	details := errors.GetErrorDetails(err)
	assert.Equal(t, "s390x", details["arch"])
	assert.Equal(t, "golang", details["feature"])
}

func TestGetErrorCodeUnknown(t *testing.T) {
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
}
