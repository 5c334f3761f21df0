package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

func TestMemoryLayerReadWrite(t *testing.T) {
	layer := NewMemoryLayer(16)
	assert.Equal(t, types.BlockCount(16), layer.BlockCount())

	buf, err := layer.AllocateIOBuffer(2*types.BlockSize, "test extent")
	require.NoError(t, err)
	buf[0] = 0x55
	buf[types.BlockSize] = 0xAA
	require.NoError(t, layer.Write(4, 2, buf))

	out, err := layer.AllocateIOBuffer(2*types.BlockSize, "readback")
	require.NoError(t, err)
	require.NoError(t, layer.Read(4, 2, out))
	assert.Equal(t, buf, out)
	assert.Equal(t, byte(0x55), layer.BlockData(4)[0])
	assert.Equal(t, byte(0xAA), layer.BlockData(5)[0])
}

func TestMemoryLayerBounds(t *testing.T) {
	layer := NewMemoryLayer(8)
	buf := make([]byte, types.BlockSize)

	assert.ErrorIs(t, layer.Read(8, 1, buf), status.ErrOutOfRange)
	assert.ErrorIs(t, layer.Write(7, 2, make([]byte, 2*types.BlockSize)), status.ErrOutOfRange)
	assert.ErrorIs(t, layer.Write(0, 2, buf), status.ErrBadLength)
}

func TestMemoryLayerAllocateIOBuffer(t *testing.T) {
	layer := NewMemoryLayer(8)

	buf, err := layer.AllocateIOBuffer(types.BlockSize, "one block")
	require.NoError(t, err)
	assert.Len(t, buf, types.BlockSize)
	assert.Equal(t, make([]byte, types.BlockSize), buf, "buffer must be zeroed")

	_, err = layer.AllocateIOBuffer(100, "unaligned")
	assert.ErrorIs(t, err, status.ErrOutOfRange)
}

func TestMemoryLayerFaultInjection(t *testing.T) {
	layer := NewMemoryLayer(8)
	layer.FailWritesAt(5)
	buf := make([]byte, 4*types.BlockSize)

	// A multi-block write touching the poisoned PBN fails.
	assert.ErrorIs(t, layer.Write(3, 4, buf), status.ErrIOError)
	assert.NoError(t, layer.Write(0, 4, buf))

	countdown := NewMemoryLayer(8)
	countdown.FailAfterWrites(2)
	one := make([]byte, types.BlockSize)
	assert.NoError(t, countdown.Write(0, 1, one))
	assert.NoError(t, countdown.Write(1, 1, one))
	assert.ErrorIs(t, countdown.Write(2, 1, one), status.ErrIOError)
}
