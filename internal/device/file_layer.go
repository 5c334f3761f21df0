// Package device provides the Layer implementations the format engine runs
// on: a file or block device on disk, and an in-memory buffer for tests.
package device

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/flock"

	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// FileLayer is a Layer backed by a regular file or block device. The file
// is held under an exclusive advisory lock for the lifetime of the layer,
// so no two processes can format or reconfigure the same device at once.
type FileLayer struct {
	file   *os.File
	lock   *flock.Flock
	blocks types.BlockCount
}

// OpenFileLayer opens path read-write and takes its lock. The block count
// is fixed at open time from the device size.
func OpenFileLayer(path string) (*FileLayer, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", path)
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "cannot lock %s", path)
	}
	if !locked {
		_ = file.Close()
		return nil, errors.Newf("%s is locked by another process", path)
	}

	// Seek rather than stat: block devices report zero size from stat.
	size, err := file.Seek(0, 2)
	if err != nil {
		_ = file.Close()
		_ = lock.Unlock()
		return nil, errors.Wrapf(err, "cannot size %s", path)
	}

	return &FileLayer{
		file:   file,
		lock:   lock,
		blocks: types.BlockCount(size / types.BlockSize),
	}, nil
}

// BlockCount returns the number of whole blocks the device holds.
func (l *FileLayer) BlockCount() types.BlockCount {
	return l.blocks
}

// AllocateIOBuffer returns a zeroed buffer of exactly bytes bytes.
func (l *FileLayer) AllocateIOBuffer(bytes int, why string) ([]byte, error) {
	if bytes <= 0 || bytes%types.BlockSize != 0 {
		return nil, errors.Wrapf(status.ErrOutOfRange,
			"buffer for %s must be a positive multiple of the block size, got %d",
			why, bytes)
	}
	return make([]byte, bytes), nil
}

func (l *FileLayer) checkExtent(pbn types.PhysicalBlockNumber,
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

// Read reads count blocks at pbn into buf.
func (l *FileLayer) Read(pbn types.PhysicalBlockNumber, count types.BlockCount, buf []byte) error {
	if err := l.checkExtent(pbn, count, buf); err != nil {
		return err
	}
	n := int(count) * types.BlockSize
	if _, err := l.file.ReadAt(buf[:n], int64(pbn)*types.BlockSize); err != nil {
		return errors.Wrapf(status.ErrIOError, "read of %d blocks at PBN %d: %v",
			count, pbn, err)
	}
	return nil
}

// Write writes count blocks from buf at pbn and syncs, so the write is
// durable on return.
func (l *FileLayer) Write(pbn types.PhysicalBlockNumber, count types.BlockCount, buf []byte) error {
	if err := l.checkExtent(pbn, count, buf); err != nil {
		return err
	}
	n := int(count) * types.BlockSize
	if _, err := l.file.WriteAt(buf[:n], int64(pbn)*types.BlockSize); err != nil {
		return errors.Wrapf(status.ErrIOError, "write of %d blocks at PBN %d: %v",
			count, pbn, err)
	}
	if err := l.file.Sync(); err != nil {
		return errors.Wrapf(status.ErrIOError, "sync after write at PBN %d: %v",
			pbn, err)
	}
	return nil
}

// Close releases the device and its lock.
func (l *FileLayer) Close() error {
	err := l.file.Close()
	if unlockErr := l.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}
