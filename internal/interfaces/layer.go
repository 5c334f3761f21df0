package interfaces

import "github.com/deploymenttheory/go-vdo/internal/types"

// Layer is the narrow synchronous block interface the format engine consumes.
// Writes are durable on return. No ordering between distinct writes is
// guaranteed; callers that need ordering must sequence the calls themselves.
type Layer interface {
	// BlockCount returns the total number of blocks available. The count is
	// stable for the duration of a format.
	BlockCount() types.BlockCount

	// AllocateIOBuffer returns a zeroed buffer of exactly bytes bytes,
	// aligned for direct I/O. The why string names the occasion for the
	// allocation and appears in the error on failure.
	AllocateIOBuffer(bytes int, why string) ([]byte, error)

	// Read reads count blocks starting at pbn into buf.
	Read(pbn types.PhysicalBlockNumber, count types.BlockCount, buf []byte) error

	// Write writes count blocks from buf starting at pbn.
	Write(pbn types.PhysicalBlockNumber, count types.BlockCount, buf []byte) error
}
