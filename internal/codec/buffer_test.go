package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-vdo/internal/status"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	w := NewWriter(buf)
	w.PutUint8(0xAB)
	w.PutUint16(0x1234)
	w.PutUint32(0xDEADBEEF)
	w.PutUint64(0x0123456789ABCDEF)
	w.PutBytes([]byte{1, 2, 3})
	require.NoError(t, w.Err())
	assert.Equal(t, 18, w.Offset())

	r := NewReader(buf)
	assert.Equal(t, uint8(0xAB), r.Uint8())
	assert.Equal(t, uint16(0x1234), r.Uint16())
	assert.Equal(t, uint32(0xDEADBEEF), r.Uint32())
	assert.Equal(t, uint64(0x0123456789ABCDEF), r.Uint64())
	assert.Equal(t, []byte{1, 2, 3}, r.Bytes(3))
	require.NoError(t, r.Err())
	assert.Equal(t, 14, r.Remaining())
}

func TestWriterLittleEndian(t *testing.T) {
	buf := make([]byte, 4)
	w := NewWriter(buf)
	w.PutUint32(0x01020304)
	require.NoError(t, w.Err())
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)
}

func TestWriterOverflowIsSticky(t *testing.T) {
	w := NewWriter(make([]byte, 2))
	w.PutUint32(1)
	assert.ErrorIs(t, w.Err(), status.ErrBadLength)

	// Later writes stay no-ops and the error is preserved.
	w.PutUint8(9)
	assert.ErrorIs(t, w.Err(), status.ErrBadLength)
	assert.Equal(t, 0, w.Offset())
}

func TestReaderUnderflowIsSticky(t *testing.T) {
	r := NewReader([]byte{1, 2})
	assert.Equal(t, uint32(0), r.Uint32())
	assert.ErrorIs(t, r.Err(), status.ErrBadLength)
	assert.Nil(t, r.Bytes(1))
}
