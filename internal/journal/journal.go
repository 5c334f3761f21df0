// Package journal carries the recovery journal's persisted state and the
// partition initialisation used during format.
package journal

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/codec"
	"github.com/deploymenttheory/go-vdo/internal/interfaces"
	"github.com/deploymenttheory/go-vdo/internal/layout"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// State is the recovery journal component persisted in the super block. For
// a fresh volume both sequence numbers start at one.
type State struct {
	Head uint64
	Tail uint64
}

// NewState returns the state of an empty journal.
func NewState() State {
	return State{Head: 1, Tail: 1}
}

// encodedStateSize covers the two sequence numbers.
const encodedStateSize = 8 + 8

// StateHeader is the versioned header the journal state is written under.
var StateHeader = codec.Header{
	ID:      types.ComponentRecoveryJournal,
	Version: codec.VersionNumber{Major: 7, Minor: 0},
	Size:    encodedStateSize,
}

// Encode writes the journal state, header first, to w.
func (s State) Encode(w *codec.Writer) {
	StateHeader.Encode(w)
	w.PutUint64(s.Head)
	w.PutUint64(s.Tail)
}

// DecodeState reads a journal state, validating its header.
func DecodeState(r *codec.Reader) (State, error) {
	header := codec.DecodeHeader(r)
	if err := codec.ValidateHeader(StateHeader, header, true, "recovery journal"); err != nil {
		return State{}, err
	}
	s := State{
		Head: r.Uint64(),
		Tail: r.Uint64(),
	}
	return s, r.Err()
}

// maxClearChunkBlocks caps the zeroing buffer at 16 MiB.
const maxClearChunkBlocks types.BlockCount = 4096

// ClearPartition writes zeros across every block of the partition. The
// chunk size is the largest power-of-two divisor of the partition length,
// capped at 4096 blocks, so each block is written exactly once. A failed
// sub-write surfaces immediately; earlier writes are not rolled back, which
// is safe because the geometry has not been written yet.
func ClearPartition(layer interfaces.Layer, p layout.Partition) error {
	chunkBlocks := types.BlockCount(1)
	for n := p.Length; chunkBlocks < maxClearChunkBlocks && n&1 == 0; n >>= 1 {
		chunkBlocks <<= 1
	}

	buf, err := layer.AllocateIOBuffer(int(chunkBlocks)*types.BlockSize, "zero buffer")
	if err != nil {
		return err
	}

	end := p.Offset + types.PhysicalBlockNumber(p.Length)
	for pbn := p.Offset; pbn < end; pbn += types.PhysicalBlockNumber(chunkBlocks) {
		if err := layer.Write(pbn, chunkBlocks, buf); err != nil {
			return errors.Wrapf(err, "cannot clear %s partition", p.ID)
		}
	}
	return nil
}
