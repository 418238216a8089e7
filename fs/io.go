package fs

import (
	"github.com/sixletters/simplefs/block"
	"github.com/sixletters/simplefs/ondisk"
)

// Read copies up to length bytes from inodeNumber starting at offset into
// buf, clamping to the inode's logical size, and returns the number of
// bytes copied. A hole — a block index with no assigned pointer, which
// mount can leave behind for a sparsely written inode — reads as zeros. It
// returns -1 if the file system is not mounted or the inode is invalid.
func Read(fs *FileSystem, inodeNumber uint64, buf []byte, length uint64, offset uint64) int64 {
	if fs == nil || !fs.Mounted() {
		return -1
	}
	tableBlock, slot, ok := fs.locateInode(inodeNumber)
	if !ok {
		return -1
	}

	var tableBuf [block.Size]byte
	if _, err := fs.device.Read(block.ID(tableBlock), tableBuf[:]); err != nil {
		return -1
	}
	inodes := ondisk.DecodeInodeTable(tableBuf[:])
	inode := inodes[slot]
	if !inode.IsValid() {
		return -1
	}

	size := uint64(inode.Size)
	if offset >= size {
		return 0
	}
	if length > size-offset {
		length = size - offset
	}

	var indirect [ondisk.PointersPerBlock]uint32
	indirectLoaded := false

	pos := offset
	var copied uint64
	for copied < length {
		k := uint32(pos / ondisk.BlockSize)
		offInBlock := uint32(pos % ondisk.BlockSize)
		toCopy := ondisk.BlockSize - offInBlock
		if remaining := length - copied; uint64(toCopy) > remaining {
			toCopy = uint32(remaining)
		}

		blockNum, resolveErr := resolveBlockForRead(fs, &inode, k, &indirect, &indirectLoaded)
		if resolveErr {
			return -1
		}

		dest := buf[copied : copied+uint64(toCopy)]
		if blockNum == 0 {
			for i := range dest {
				dest[i] = 0
			}
		} else {
			var dataBuf [block.Size]byte
			if _, err := fs.device.Read(block.ID(blockNum), dataBuf[:]); err != nil {
				return -1
			}
			copy(dest, dataBuf[offInBlock:uint32(offInBlock)+toCopy])
		}

		pos += uint64(toCopy)
		copied += uint64(toCopy)
	}

	return int64(copied)
}

// resolveBlockForRead maps block index k (0-based within the file, not the
// device) to a data block number via the inode's direct pointers or its
// indirect block, loading the indirect block at most once. It returns
// (0, false) for a hole and (_, true) only when the indirect block itself
// could not be read.
func resolveBlockForRead(fs *FileSystem, inode *ondisk.Inode, k uint32, indirect *[ondisk.PointersPerBlock]uint32, loaded *bool) (uint32, bool) {
	if k < ondisk.DirectPointers {
		return inode.Direct[k], false
	}

	idx := k - ondisk.DirectPointers
	if idx >= ondisk.PointersPerBlock || inode.Indirect == 0 {
		return 0, false
	}

	if !*loaded {
		var buf [block.Size]byte
		if _, err := fs.device.Read(block.ID(inode.Indirect), buf[:]); err != nil {
			return 0, true
		}
		*indirect = ondisk.DecodePointerBlock(buf[:])
		*loaded = true
	}
	return indirect[idx], false
}

// Write copies length bytes from buf into inodeNumber starting at offset,
// allocating data blocks (and, on first use, the indirect block) as needed,
// and returns the number of bytes actually written. If the device runs out
// of free data blocks mid-call, it stops and returns the short count rather
// than failing the whole call, after persisting the updated size and any
// newly allocated pointers. It returns -1 if the file system is not mounted
// or the inode is invalid.
func Write(fs *FileSystem, inodeNumber uint64, buf []byte, length uint64, offset uint64) int64 {
	if fs == nil || !fs.Mounted() {
		return -1
	}
	tableBlock, slot, ok := fs.locateInode(inodeNumber)
	if !ok {
		return -1
	}

	var tableBuf [block.Size]byte
	if _, err := fs.device.Read(block.ID(tableBlock), tableBuf[:]); err != nil {
		return -1
	}
	inodes := ondisk.DecodeInodeTable(tableBuf[:])
	inode := inodes[slot]
	if !inode.IsValid() {
		return -1
	}

	var indirect [ondisk.PointersPerBlock]uint32
	indirectLoaded := false
	indirectDirty := false

	pos := offset
	var written uint64
	for written < length {
		k := uint32(pos / ondisk.BlockSize)
		offInBlock := uint32(pos % ondisk.BlockSize)
		toWrite := ondisk.BlockSize - offInBlock
		if remaining := length - written; uint64(toWrite) > remaining {
			toWrite = uint32(remaining)
		}

		blockNum, allocated := resolveOrAllocateBlockForWrite(fs, &inode, k, &indirect, &indirectLoaded, &indirectDirty)
		if !allocated {
			break
		}

		src := buf[written : written+uint64(toWrite)]
		if err := writeBlockRange(fs, blockNum, offInBlock, src); err != nil {
			break
		}

		pos += uint64(toWrite)
		written += uint64(toWrite)
	}

	newSize := uint64(inode.Size)
	if offset+written > newSize {
		newSize = offset + written
	}
	inode.Size = uint32(newSize)
	inodes[slot] = inode

	if indirectDirty {
		encodedIndirect := ondisk.EncodePointerBlock(indirect)
		fs.device.Write(block.ID(inode.Indirect), encodedIndirect[:])
	}

	encodedTable := ondisk.EncodeInodeTable(inodes)
	fs.device.Write(block.ID(tableBlock), encodedTable[:])

	return int64(written)
}

// resolveOrAllocateBlockForWrite is resolveBlockForRead's write-side
// counterpart: it allocates a direct pointer, the indirect block, or an
// indirect pointer slot on first use instead of reporting a hole. It
// returns (_, false) when no free data block remains.
func resolveOrAllocateBlockForWrite(fs *FileSystem, inode *ondisk.Inode, k uint32, indirect *[ondisk.PointersPerBlock]uint32, loaded *bool, dirty *bool) (uint32, bool) {
	if k < ondisk.DirectPointers {
		if inode.Direct[k] == 0 {
			b, ok := fs.allocateBlock()
			if !ok {
				return 0, false
			}
			inode.Direct[k] = b
		}
		return inode.Direct[k], true
	}

	idx := k - ondisk.DirectPointers
	if idx >= ondisk.PointersPerBlock {
		return 0, false
	}

	if inode.Indirect == 0 {
		b, ok := fs.allocateBlock()
		if !ok {
			return 0, false
		}
		inode.Indirect = b
		*indirect = [ondisk.PointersPerBlock]uint32{}
		zeroed := ondisk.EncodePointerBlock(*indirect)
		fs.device.Write(block.ID(b), zeroed[:])
		*loaded = true
	}

	if !*loaded {
		var buf [block.Size]byte
		if _, err := fs.device.Read(block.ID(inode.Indirect), buf[:]); err != nil {
			return 0, false
		}
		*indirect = ondisk.DecodePointerBlock(buf[:])
		*loaded = true
	}

	if indirect[idx] == 0 {
		b, ok := fs.allocateBlock()
		if !ok {
			return 0, false
		}
		indirect[idx] = b
		*dirty = true
	}
	return indirect[idx], true
}

// writeBlockRange stores src, which must fit within one block starting at
// offInBlock, to blockNum: a direct overwrite if src fills the whole block,
// otherwise a read-modify-write.
func writeBlockRange(fs *FileSystem, blockNum uint32, offInBlock uint32, src []byte) error {
	if offInBlock == 0 && len(src) == ondisk.BlockSize {
		_, err := fs.device.Write(block.ID(blockNum), src)
		return err
	}

	var buf [block.Size]byte
	if _, err := fs.device.Read(block.ID(blockNum), buf[:]); err != nil {
		return err
	}
	copy(buf[offInBlock:], src)
	_, err := fs.device.Write(block.ID(blockNum), buf[:])
	return err
}

// allocateBlock scans the bitmap in ascending block-number order for the
// first free data block, marks it allocated, and returns it.
func (fs *FileSystem) allocateBlock() (uint32, bool) {
	dataStart := 1 + fs.meta.InodeBlocks
	for b := dataStart; b < fs.meta.TotalBlocks; b++ {
		if fs.bitmap.Get(int(b)) {
			fs.bitmap.Set(int(b), false)
			return b, true
		}
	}
	return 0, false
}
