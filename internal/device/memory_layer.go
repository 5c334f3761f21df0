package device

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// MemoryLayer is a Layer held entirely in memory. Tests use it directly and
// through its fault injection hooks.
type MemoryLayer struct {
	blocks types.BlockCount
	data   []byte

	// failWritesAt makes any write touching one of these PBNs fail.
	failWritesAt map[types.PhysicalBlockNumber]bool

	// failAfterWrites, when non-negative, counts down on each write and
	// fails every write once it reaches zero.
	failAfterWrites int
}

// NewMemoryLayer returns a zeroed in-memory device of the given size.
func NewMemoryLayer(blocks types.BlockCount) *MemoryLayer {
	return &MemoryLayer{
		blocks:          blocks,
		data:            make([]byte, int(blocks)*types.BlockSize),
		failWritesAt:    map[types.PhysicalBlockNumber]bool{},
		failAfterWrites: -1,
	}
}

// FailWritesAt injects an I/O error into any write that touches pbn.
func (l *MemoryLayer) FailWritesAt(pbn types.PhysicalBlockNumber) {
	l.failWritesAt[pbn] = true
}

// FailAfterWrites makes every write fail once n more writes have succeeded.
func (l *MemoryLayer) FailAfterWrites(n int) {
	l.failAfterWrites = n
}

// BlockData returns the stored bytes of one block. Tests mutate the result
// to corrupt the device in place.
func (l *MemoryLayer) BlockData(pbn types.PhysicalBlockNumber) []byte {
	start := int(pbn) * types.BlockSize
	return l.data[start : start+types.BlockSize]
}

// BlockCount returns the size of the device.
func (l *MemoryLayer) BlockCount() types.BlockCount {
	return l.blocks
}

// AllocateIOBuffer returns a zeroed buffer of exactly bytes bytes.
func (l *MemoryLayer) AllocateIOBuffer(bytes int, why string) ([]byte, error) {
	if bytes <= 0 || bytes%types.BlockSize != 0 {
		return nil, errors.Wrapf(status.ErrOutOfRange,
			"buffer for %s must be a positive multiple of the block size, got %d",
			why, bytes)
	}
	return make([]byte, bytes), nil
}

func (l *MemoryLayer) checkExtent(pbn types.PhysicalBlockNumber,
	count types.BlockCount, buf []byte) error {

	if types.BlockCount(pbn)+count > l.blocks {
		return errors.Wrapf(status.ErrOutOfRange,
			"extent [%d, %d) exceeds the %d block device",
			pbn, types.BlockCount(pbn)+count, l.blocks)
	}
	if len(buf) < int(count)*types.BlockSize {
		return errors.Wrapf(status.ErrBadLength,
			"buffer of %d bytes cannot hold %d blocks", len(buf), count)
	}
	return nil
}

// Read copies count blocks at pbn into buf.
func (l *MemoryLayer) Read(pbn types.PhysicalBlockNumber, count types.BlockCount, buf []byte) error {
	if err := l.checkExtent(pbn, count, buf); err != nil {
		return err
	}
	start := int(pbn) * types.BlockSize
	copy(buf, l.data[start:start+int(count)*types.BlockSize])
	return nil
}

// Write copies count blocks from buf at pbn, honouring any injected faults.
func (l *MemoryLayer) Write(pbn types.PhysicalBlockNumber, count types.BlockCount, buf []byte) error {
	if err := l.checkExtent(pbn, count, buf); err != nil {
		return err
	}
	for b := types.BlockCount(0); b < count; b++ {
		if l.failWritesAt[pbn+types.PhysicalBlockNumber(b)] {
			return errors.Wrapf(status.ErrIOError,
				"injected write failure at PBN %d", pbn+types.PhysicalBlockNumber(b))
		}
	}
	if l.failAfterWrites == 0 {
		return errors.Wrapf(status.ErrIOError,
			"injected write failure at PBN %d", pbn)
	}
	if l.failAfterWrites > 0 {
		l.failAfterWrites--
	}
	start := int(pbn) * types.BlockSize
	copy(l.data[start:start+int(count)*types.BlockSize], buf)
	return nil
}
