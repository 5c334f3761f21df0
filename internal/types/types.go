package types

// PhysicalBlockNumber is a 0-based block offset into the backing device.
type PhysicalBlockNumber uint64

// BlockCount is a number of 4 KiB blocks.
type BlockCount uint64

// Nonce is the 64-bit per-volume identifier used to detect stale metadata
// across re-formats.
type Nonce uint64

// ReleaseVersionNumber identifies a format revision of the on-disk layout.
type ReleaseVersionNumber uint32

// ZoneCount is a number of physical zones in the slab depot.
type ZoneCount uint32

// SlabCount is a number of slabs in the depot.
type SlabCount uint64

// ComponentID identifies a versioned on-disk component. The registry of IDs
// is shared by every header written to the device.
type ComponentID uint32

const (
	ComponentSuperBlock      ComponentID = 0
	ComponentFixedLayout     ComponentID = 1
	ComponentRecoveryJournal ComponentID = 2
	ComponentSlabDepot       ComponentID = 3
	ComponentBlockMap        ComponentID = 4
	ComponentGeometryBlock   ComponentID = 5
	ComponentVDO             ComponentID = 6
)

// VDOConfig carries the format-time parameters of a volume. It is persisted
// verbatim inside the VDO component of the super block.
type VDOConfig struct {
	LogicalBlocks       BlockCount
	PhysicalBlocks      BlockCount
	SlabSize            BlockCount
	RecoveryJournalSize BlockCount
	SlabJournalBlocks   BlockCount
}
