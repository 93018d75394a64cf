package dump

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDisabledStore(t *testing.T) {

	s := NewStore()
	assert.False(t, s.Enabled())

	path, err := s.Save("run", "AX1", 1, []byte("{}"))
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestSavePlain(t *testing.T) {

	dir := t.TempDir()
	s := NewStore(WithDirectory(dir), WithLogger(zap.NewExample()))

	path, err := s.Save("run-1", "java/sonar way", 2, []byte(`{"rules":[]}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-1", "java_sonar_way-page-2.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"rules":[]}`, string(data))
}

func TestSaveCompressed(t *testing.T) {

	dir := t.TempDir()
	s := NewStore(WithDirectory(dir), WithCompression(true))

	path, err := s.Save("run-1", "AX1", 1, []byte(`{"total":0}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-1", "AX1-page-1.json.gz"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)

	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, `{"total":0}`, string(data))
}
