package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

func tempImage(t *testing.T, blocks int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backing.img")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	require.NoError(t, os.Truncate(path, int64(blocks)*types.BlockSize))
	return path
}

func TestFileLayerReadWrite(t *testing.T) {
	layer, err := OpenFileLayer(tempImage(t, 64))
	require.NoError(t, err)
	defer layer.Close()

	assert.Equal(t, types.BlockCount(64), layer.BlockCount())

	buf, err := layer.AllocateIOBuffer(types.BlockSize, "test block")
	require.NoError(t, err)
	copy(buf, "written through the file layer")
	require.NoError(t, layer.Write(10, 1, buf))

	out, err := layer.AllocateIOBuffer(types.BlockSize, "readback")
	require.NoError(t, err)
	require.NoError(t, layer.Read(10, 1, out))
	assert.Equal(t, buf, out)
}

func TestFileLayerBounds(t *testing.T) {
	layer, err := OpenFileLayer(tempImage(t, 8))
	require.NoError(t, err)
	defer layer.Close()

	buf := make([]byte, types.BlockSize)
	assert.ErrorIs(t, layer.Read(8, 1, buf), status.ErrOutOfRange)
	assert.ErrorIs(t, layer.Write(8, 1, buf), status.ErrOutOfRange)
}

func TestFileLayerExcludesSecondOpener(t *testing.T) {
	path := tempImage(t, 8)
	first, err := OpenFileLayer(path)
	require.NoError(t, err)
	defer first.Close()

	_, err = OpenFileLayer(path)
	assert.Error(t, err, "a second opener must not get the device lock")
}

func TestFileLayerMissingDevice(t *testing.T) {
	_, err := OpenFileLayer(filepath.Join(t.TempDir(), "missing.img"))
	assert.Error(t, err)
}
