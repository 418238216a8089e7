package fs

import (
	"github.com/sixletters/simplefs/block"
	"github.com/sixletters/simplefs/ondisk"
)

// Create scans the inode table for a free slot, marks it allocated with a
// zeroed size and pointers, persists it, and returns its global inode
// number. It returns -1 if the file system is not mounted or no free slot
// exists.
func Create(fs *FileSystem) int64 {
	if fs == nil || !fs.Mounted() {
		return -1
	}

	var buf [block.Size]byte
	for tableBlock := uint32(1); tableBlock < 1+fs.meta.InodeBlocks; tableBlock++ {
		if _, err := fs.device.Read(block.ID(tableBlock), buf[:]); err != nil {
			return -1
		}
		inodes := ondisk.DecodeInodeTable(buf[:])

		for slot := range inodes {
			if inodes[slot].IsValid() {
				continue
			}

			inodes[slot] = ondisk.Inode{Valid: 1}
			encoded := ondisk.EncodeInodeTable(inodes)
			if _, err := fs.device.Write(block.ID(tableBlock), encoded[:]); err != nil {
				return -1
			}
			return int64((tableBlock-1)*ondisk.InodesPerBlock + uint32(slot))
		}
	}
	return -1
}
