package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[f.Name] = string(content)
	}
	return files
}

func TestWriteZip(t *testing.T) {
	var buf bytes.Buffer
	err := WriteZip(&buf, []Entry{
		{RelativePath: "docs/a.txt", Reader: strings.NewReader("alpha")},
		{RelativePath: "docs/sub/b.txt", Reader: strings.NewReader("beta")},
	})
	require.NoError(t, err)

	files := readArchive(t, buf.Bytes())
	assert.Equal(t, map[string]string{
		"docs/a.txt":     "alpha",
		"docs/sub/b.txt": "beta",
	}, files)
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf)
	require.NoError(t, sw.Add("one.txt", strings.NewReader("1")))
	require.NoError(t, sw.Add("dir/two.txt", strings.NewReader("22")))
	require.NoError(t, sw.Close())

	files := readArchive(t, buf.Bytes())
	assert.Len(t, files, 2)
	assert.Equal(t, "22", files["dir/two.txt"])
}
