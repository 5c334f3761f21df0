package types

// BlockSize is the size of every on-disk block, in bytes.
const BlockSize = 4096

const (
	// BlockMapEntriesPerPage is the number of logical-to-physical mappings
	// carried by one block map page.
	BlockMapEntriesPerPage = 812

	// DefaultBlockMapTreeRootCount is the number of roots the block map
	// forest is partitioned across.
	DefaultBlockMapTreeRootCount = 60

	// BlockMapTreeHeight bounds the depth of each block map tree.
	BlockMapTreeHeight = 5
)

const (
	// MaxSlabs is the largest number of slabs a depot can hold.
	MaxSlabs = 8192

	// MaxPhysicalZones is the largest number of zones the depot can be
	// split across.
	MaxPhysicalZones = 16

	// SlabSummaryEntriesPerBlock is how many 2-byte summary entries fit in
	// one block.
	SlabSummaryEntriesPerBlock = BlockSize / 2

	// SlabSummaryBlocksPerZone is the per-zone extent of the slab summary.
	SlabSummaryBlocksPerZone = MaxSlabs / SlabSummaryEntriesPerBlock

	// SlabSummaryBlocks is the total size of the slab summary partition.
	SlabSummaryBlocks = SlabSummaryBlocksPerZone * MaxPhysicalZones

	// SlabSummaryFullnessShift converts a free block count into the 6-bit
	// fullness hint stored in a summary entry.
	SlabSummaryFullnessShift = 6
)

const (
	// MinSlabBlocks and MaxSlabBlocks bound the slab size, in blocks. Both
	// bounds are powers of two; slab sizes must be as well.
	MinSlabBlocks BlockCount = 128
	MaxSlabBlocks BlockCount = 1 << 23

	// MinSlabJournalBlocks is the smallest usable per-slab journal.
	MinSlabJournalBlocks BlockCount = 8

	// BytesPerReferenceCount is the on-disk size of one reference counter.
	BytesPerReferenceCount = 1

	// ReferenceCountsPerBlock is how many counters one block holds.
	ReferenceCountsPerBlock = BlockSize / BytesPerReferenceCount
)

const (
	// MinRecoveryJournalBlocks is the smallest usable recovery journal.
	MinRecoveryJournalBlocks BlockCount = 8

	// MaxLogicalBlocks caps the logical capacity of a volume (4 PB).
	MaxLogicalBlocks BlockCount = 1 << 40
)

// Release version numbers recognised by this format revision. A volume
// written by any other release is rejected rather than upgraded.
const (
	OxygenReleaseVersionNumber    ReleaseVersionNumber = 109583
	FluorineReleaseVersionNumber  ReleaseVersionNumber = 115838
	NeonReleaseVersionNumber      ReleaseVersionNumber = 120965
	SodiumReleaseVersionNumber    ReleaseVersionNumber = 127441
	MagnesiumReleaseVersionNumber ReleaseVersionNumber = 131337
	AluminumReleaseVersionNumber  ReleaseVersionNumber = 133524

	// CurrentReleaseVersionNumber is the revision this package writes.
	CurrentReleaseVersionNumber = AluminumReleaseVersionNumber
)

// IsKnownReleaseVersion reports whether a release version appears in the
// release table.
func IsKnownReleaseVersion(version ReleaseVersionNumber) bool {
	switch version {
	case OxygenReleaseVersionNumber,
		FluorineReleaseVersionNumber,
		NeonReleaseVersionNumber,
		SodiumReleaseVersionNumber,
		MagnesiumReleaseVersionNumber,
		AluminumReleaseVersionNumber:
		return true
	}
	return false
}
