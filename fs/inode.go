package fs

import (
	"github.com/sixletters/simplefs/ondisk"
)

// locateInode computes which inode table block and slot an inode number
// maps to, and fails if that table block falls outside the mounted
// file system's inode table.
func (fs *FileSystem) locateInode(inodeNumber uint64) (tableBlock uint32, slot uint32, ok bool) {
	if inodeNumber >= uint64(fs.meta.Inodes) {
		return 0, 0, false
	}
	tableBlock = uint32(inodeNumber/ondisk.InodesPerBlock) + 1
	slot = uint32(inodeNumber % ondisk.InodesPerBlock)
	return tableBlock, slot, true
}
