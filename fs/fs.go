// Package fs implements the SimpleFS engine: the mount/format protocol, the
// inode allocator, the free-space tracker, and the byte-range read/write
// path, on top of the block and ondisk packages.
//
// Each operation is a FileSystem handle borrowing an attached block.Device,
// returning a plain sentinel value rather than Go's usual (value, error)
// pair: Stat, Read, and Write return a signed byte count with -1 as the
// universal failure sentinel, and Create/Remove/Mount/Format return a
// returned identifier or boolean. The block package underneath still
// reports failures as sfserrors values; this package collapses those into
// the sentinel returns at each call site.
package fs

import (
	"github.com/boljen/go-bitmap"

	"github.com/sixletters/simplefs/block"
	"github.com/sixletters/simplefs/ondisk"
)

// FileSystem is a mounted SimpleFS handle. It owns a bitmap reconstructed at
// mount time and a copy of the on-disk superblock; it borrows (does not
// own) the attached block.Device, which the caller opened and is
// responsible for closing.
type FileSystem struct {
	device *block.Device
	bitmap bitmap.Bitmap
	meta   ondisk.Superblock
}

// Mounted reports whether fs currently has an attached device.
func (fs *FileSystem) Mounted() bool {
	return fs.device != nil
}

// Meta returns a copy of the superblock this FileSystem was mounted with.
// The zero value is returned if fs is not mounted.
func (fs *FileSystem) Meta() ondisk.Superblock {
	return fs.meta
}
