package fs

import (
	"github.com/sixletters/simplefs/block"
	"github.com/sixletters/simplefs/ondisk"
)

// Remove frees every block inodeNumber's inode references — its direct
// pointers and, if present, its indirect block and the pointers packed
// inside it — then clears the inode itself. The bitmap update is
// in-memory only; a subsequent mount rebuilds it from the now-cleared
// inode, so nothing needs to be persisted beyond the inode table write.
func Remove(fs *FileSystem, inodeNumber uint64) bool {
	if fs == nil || !fs.Mounted() {
		return false
	}
	tableBlock, slot, ok := fs.locateInode(inodeNumber)
	if !ok {
		return false
	}

	var buf [block.Size]byte
	if _, err := fs.device.Read(block.ID(tableBlock), buf[:]); err != nil {
		return false
	}
	inodes := ondisk.DecodeInodeTable(buf[:])
	inode := inodes[slot]
	if !inode.IsValid() {
		return false
	}

	for _, ptr := range inode.Direct {
		// Entries equal to 0 free block 0, a known inefficiency: write
		// never allocates block 0, so this never costs a real data block.
		fs.freeBlock(ptr)
	}

	if inode.Size > ondisk.DirectSpanBytes {
		fs.freeBlock(inode.Indirect)

		var indirectBuf [block.Size]byte
		if _, err := fs.device.Read(block.ID(inode.Indirect), indirectBuf[:]); err != nil {
			return false
		}
		pointers := ondisk.DecodePointerBlock(indirectBuf[:])

		count := ceilDiv(inode.Size-ondisk.DirectSpanBytes, ondisk.BlockSize)
		for i := uint32(0); i < count && i < ondisk.PointersPerBlock; i++ {
			fs.freeBlock(pointers[i])
		}
	}

	inodes[slot].Valid = 0
	inodes[slot].Size = 0
	encoded := ondisk.EncodeInodeTable(inodes)
	if _, err := fs.device.Write(block.ID(tableBlock), encoded[:]); err != nil {
		return false
	}
	return true
}

// freeBlock marks b free in the bitmap if it is a valid bitmap index.
func (fs *FileSystem) freeBlock(b uint32) {
	if b < fs.meta.TotalBlocks {
		fs.bitmap.Set(int(b), true)
	}
}
