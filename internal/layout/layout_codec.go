package layout

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/codec"
	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// encodedLayoutSize covers the bounds, the partition count, and the four
// partition records.
const encodedLayoutSize = 8 + 8 + 4 + int(partitionCount)*20

// LayoutHeader is the versioned header the layout is written under.
var LayoutHeader = codec.Header{
	ID:      types.ComponentFixedLayout,
	Version: codec.VersionNumber{Major: 3, Minor: 0},
	Size:    uint32(encodedLayoutSize),
}

// Encode writes the layout record, header first, to w.
func (l *VDOLayout) Encode(w *codec.Writer) {
	LayoutHeader.Encode(w)
	w.PutUint64(uint64(l.FirstBlock))
	w.PutUint64(uint64(l.LastBlock))
	w.PutUint32(uint32(partitionCount))
	for _, p := range l.Partitions {
		w.PutUint32(uint32(p.ID))
		w.PutUint64(uint64(p.Offset))
		w.PutUint64(uint64(p.Length))
	}
}

// DecodeLayout reads a layout record and re-checks its tiling invariants.
func DecodeLayout(r *codec.Reader) (*VDOLayout, error) {
	header := codec.DecodeHeader(r)
	if err := codec.ValidateHeader(LayoutHeader, header, true, "fixed layout"); err != nil {
		return nil, err
	}

	l := &VDOLayout{
		FirstBlock: types.PhysicalBlockNumber(r.Uint64()),
		LastBlock:  types.PhysicalBlockNumber(r.Uint64()),
	}
	if count := r.Uint32(); count != uint32(partitionCount) {
		return nil, errors.Wrapf(status.ErrCorrupt,
			"layout has %d partitions, not %d", count, partitionCount)
	}
	for i := range l.Partitions {
		l.Partitions[i] = Partition{
			ID:     PartitionID(r.Uint32()),
			Offset: types.PhysicalBlockNumber(r.Uint64()),
			Length: types.BlockCount(r.Uint64()),
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	offset := l.FirstBlock
	for i, p := range l.Partitions {
		if p.ID != PartitionID(i) || p.Offset != offset || p.Length == 0 {
			return nil, errors.Wrapf(status.ErrCorrupt,
				"partition %d does not tile the layout", i)
		}
		offset += types.PhysicalBlockNumber(p.Length)
	}
	if offset != l.LastBlock {
		return nil, errors.Wrapf(status.ErrCorrupt,
			"partitions end at PBN %d, layout claims %d", offset, l.LastBlock)
	}
	return l, nil
}
