package fs

import (
	"github.com/sixletters/simplefs/block"
	"github.com/sixletters/simplefs/ondisk"
)

// Stat returns the logical size, in bytes, of inodeNumber, or -1 if it is
// out of range or not allocated.
func Stat(fs *FileSystem, inodeNumber uint64) int64 {
	if fs == nil || !fs.Mounted() {
		return -1
	}
	tableBlock, slot, ok := fs.locateInode(inodeNumber)
	if !ok {
		return -1
	}

	var buf [block.Size]byte
	if _, err := fs.device.Read(block.ID(tableBlock), buf[:]); err != nil {
		return -1
	}
	inodes := ondisk.DecodeInodeTable(buf[:])
	if !inodes[slot].IsValid() {
		return -1
	}
	return int64(inodes[slot].Size)
}
