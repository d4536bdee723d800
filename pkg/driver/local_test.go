package driver

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yunpan-go/pkg/log"
)

func TestMain(m *testing.M) {
	log.Init("error", "json", "")
	os.Exit(m.Run())
}

func newLocal(t *testing.T, maxSize int64) *LocalAdapter {
	t.Helper()
	adapter := NewLocalAdapter(LocalConfig{BaseDir: t.TempDir(), MaxFileSize: maxSize})
	require.NoError(t, adapter.Initialize())
	return adapter
}

func TestLocalAdapterRoundTrip(t *testing.T) {
	adapter := newLocal(t, 1024)
	ctx := context.Background()

	content := []byte("hello local storage")
	path, err := adapter.Upload(ctx, bytes.NewReader(content), int64(len(content)), "ab/cd.txt")
	require.NoError(t, err)
	assert.Equal(t, "ab/cd.txt", path)

	rc, err := adapter.Download(ctx, path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	assert.True(t, adapter.Delete(ctx, path))
	assert.False(t, adapter.Delete(ctx, path))

	_, err = adapter.Download(ctx, path)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalAdapterSizeLimit(t *testing.T) {
	adapter := newLocal(t, 10)
	ctx := context.Background()

	_, err := adapter.Upload(ctx, bytes.NewReader(make([]byte, 20)), 20, "big.bin")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLocalAdapterContainsEscapingKeys(t *testing.T) {
	base := t.TempDir()
	adapter := NewLocalAdapter(LocalConfig{BaseDir: base, MaxFileSize: 1024})
	require.NoError(t, adapter.Initialize())
	ctx := context.Background()

	// 带 .. 的键被收敛到基础目录内，不会写到外面
	path, err := adapter.Upload(ctx, bytes.NewReader([]byte("x")), 1, "../../escape.txt")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(base, "escape.txt"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(filepath.Dir(base), "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))

	rc, err := adapter.Download(ctx, path)
	require.NoError(t, err)
	rc.Close()
}

func TestLocalAdapterTestConnection(t *testing.T) {
	adapter := newLocal(t, 1024)
	assert.NoError(t, adapter.TestConnection(context.Background()))

	missing := NewLocalAdapter(LocalConfig{BaseDir: filepath.Join(t.TempDir(), "nope"), MaxFileSize: 1024})
	assert.ErrorIs(t, missing.TestConnection(context.Background()), ErrBackendUnavailable)
}
